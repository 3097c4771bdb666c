package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindConflict:        http.StatusBadRequest,
		KindNotFound:        http.StatusNotFound,
		KindForbidden:       http.StatusForbidden,
		KindUnauthenticated: http.StatusUnauthorized,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus(), kind.String())
	}
}

func TestAsThroughWrapping(t *testing.T) {
	base := Conflict("You have already voted in this poll.")
	wrapped := fmt.Errorf("cast vote: %w", base)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindConflict, got.Kind)
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestIsMatchesKindAndMessage(t *testing.T) {
	err := NotFound("Trip not found.")
	assert.True(t, errors.Is(err, NotFound("Trip not found.")))
	assert.True(t, errors.Is(err, &Error{Kind: KindNotFound}))
	assert.False(t, errors.Is(err, Forbidden("Trip not found.")))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("load trip", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWithDetailsCopies(t *testing.T) {
	base := Validation("Invalid item IDs.")
	detailed := base.WithDetails(map[string]any{"invalid_ids": []uint{9}})
	assert.Nil(t, base.Details)
	assert.Equal(t, []uint{9}, detailed.Details["invalid_ids"])
}
