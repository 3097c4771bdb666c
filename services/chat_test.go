package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner-backend/apperr"
	"tripplanner-backend/testutil"
)

func TestSendMessageValidation(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner")
	outsider := testutil.CreateUser(t, e.db, "outsider")
	trip := testutil.CreateTrip(t, e.db, owner)

	_, err := e.chat.Send(context.Background(), owner.ID, trip.ID, "   ")
	assertKind(t, err, apperr.KindValidation)

	_, err = e.chat.Send(context.Background(), outsider.ID, trip.ID, "let me in")
	assertKind(t, err, apperr.KindForbidden)

	msg, err := e.chat.Send(context.Background(), owner.ID, trip.ID, "  hi  ")
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Message)
	assert.Equal(t, "owner", msg.Sender.Username)
}

func TestListMessagesOldestFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner")
	trip := testutil.CreateTrip(t, e.db, owner)
	for i := 1; i <= 5; i++ {
		_, err := e.chat.Send(ctx, owner.ID, trip.ID, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	msgs, total, err := e.chat.List(ctx, owner.ID, trip.ID, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m3", msgs[0].Message)
	assert.Equal(t, "m4", msgs[1].Message)
}
