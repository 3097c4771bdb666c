package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner-backend/apperr"
	"tripplanner-backend/models"
	"tripplanner-backend/services"
	"tripplanner-backend/testutil"
)

func TestResolveMembership(t *testing.T) {
	db := testutil.NewTestDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	collab := testutil.CreateUser(t, db, "collab")
	outsider := testutil.CreateUser(t, db, "outsider")
	trip := testutil.CreateTrip(t, db, owner, collab)

	t.Run("owner by username is a member", func(t *testing.T) {
		res, err := services.ResolveMembership(db, trip, "OWNER")
		require.NoError(t, err)
		assert.True(t, res.AlreadyMember)
		assert.Equal(t, owner.ID, res.Account.ID)
	})

	t.Run("collaborator by email is a member", func(t *testing.T) {
		res, err := services.ResolveMembership(db, trip, "Collab@Example.com")
		require.NoError(t, err)
		assert.True(t, res.AlreadyMember)
		assert.Equal(t, "collab@example.com", res.NormalizedEmail)
	})

	t.Run("outsider resolves without flags", func(t *testing.T) {
		res, err := services.ResolveMembership(db, trip, "outsider")
		require.NoError(t, err)
		assert.False(t, res.AlreadyMember)
		assert.False(t, res.AlreadyInvited)
		assert.Equal(t, outsider.ID, res.Account.ID)
		assert.Equal(t, "outsider@example.com", res.NormalizedEmail)
	})

	t.Run("unknown username is not found", func(t *testing.T) {
		_, err := services.ResolveMembership(db, trip, "ghost")
		assertKind(t, err, apperr.KindNotFound)
	})

	t.Run("unknown email is a future invitee", func(t *testing.T) {
		res, err := services.ResolveMembership(db, trip, " Bob@X.com ")
		require.NoError(t, err)
		assert.Nil(t, res.Account)
		assert.False(t, res.AlreadyMember)
		assert.Equal(t, "bob@x.com", res.NormalizedEmail)
	})

	t.Run("empty identifier is invalid", func(t *testing.T) {
		_, err := services.ResolveMembership(db, trip, "   ")
		assertKind(t, err, apperr.KindValidation)
	})

	t.Run("pending invite by email is detected", func(t *testing.T) {
		require.NoError(t, db.Create(&models.TripInvite{TripID: trip.ID, InvitedEmail: "carol@x.com", InvitedByID: owner.ID}).Error)
		res, err := services.ResolveMembership(db, trip, "CAROL@x.com")
		require.NoError(t, err)
		assert.True(t, res.AlreadyInvited)
	})

	t.Run("pending invite by account is detected", func(t *testing.T) {
		require.NoError(t, db.Create(&models.TripInvite{TripID: trip.ID, InvitedEmail: outsider.Email, InvitedUserID: &outsider.ID, InvitedByID: owner.ID}).Error)
		res, err := services.ResolveMembership(db, trip, "outsider")
		require.NoError(t, err)
		assert.True(t, res.AlreadyInvited)
	})
}
