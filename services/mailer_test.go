package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderInviteEmailEscapes(t *testing.T) {
	html, err := renderInviteEmail("Smart Trip Planner", InviteEmail{
		To:          "bob@x.com",
		InviterName: "<script>alert(1)</script>",
		TripTitle:   "Alps",
		AcceptURL:   "http://trips.test/api/invites/accept/abc",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Alps")
	assert.Contains(t, html, "http://trips.test/api/invites/accept/abc")
	assert.NotContains(t, html, "<script>")
}

func TestSendGridMailerWithoutKeySkips(t *testing.T) {
	m := NewSendGridMailer("", "noreply@example.com", "Smart Trip Planner")
	assert.NoError(t, m.SendInvite(context.Background(), InviteEmail{To: "bob@x.com"}))
}
