package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tripplanner-backend/apperr"
	"tripplanner-backend/models"
	"tripplanner-backend/services"
	"tripplanner-backend/testutil"
)

func createPoll(t *testing.T, e *env, actor *models.User, trip *models.Trip, options ...string) *models.PollResponse {
	t.Helper()
	req := models.CreatePollRequest{Question: "Where to?"}
	for _, o := range options {
		req.Options = append(req.Options, models.PollOptionRequest{Text: o})
	}
	poll, err := e.polls.Create(context.Background(), actor.ID, trip.ID, req)
	require.NoError(t, err)
	return poll
}

func TestCastVote(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, e.db, "owner")
	a := testutil.CreateUser(t, e.db, "anna")
	trip := testutil.CreateTrip(t, e.db, owner, a)
	poll := createPoll(t, e, owner, trip, "Rome", "Paris")

	got, err := e.polls.CastVote(ctx, a.ID, poll.ID, poll.Options[1].ID)
	require.NoError(t, err)
	assert.True(t, got.HasVoted)
	assert.EqualValues(t, 0, got.Options[0].VoteCount)
	assert.EqualValues(t, 1, got.Options[1].VoteCount)

	_, err = e.polls.CastVote(ctx, a.ID, poll.ID, poll.Options[0].ID)
	assert.ErrorIs(t, err, services.ErrAlreadyVoted)

	_, poll2, _ := testutil.Counters(t, e.db, owner, trip)
	assert.Equal(t, 1, poll2)
	assert.EqualValues(t, 1, testutil.CountRows(t, e.db, &models.Notification{}, "verb = ?", services.VerbVoted))
}

func TestCastVoteRejectsForeignOption(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner")
	trip := testutil.CreateTrip(t, e.db, owner)
	first := createPoll(t, e, owner, trip, "Rome", "Paris")
	second := createPoll(t, e, owner, trip, "Train", "Plane")

	_, err := e.polls.CastVote(context.Background(), owner.ID, first.ID, second.Options[0].ID)
	assert.ErrorIs(t, err, services.ErrInvalidOption)
	assert.Zero(t, testutil.CountRows(t, e.db, &models.Vote{}, ""))
}

func TestCastVoteRequiresMembership(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner")
	outsider := testutil.CreateUser(t, e.db, "outsider")
	trip := testutil.CreateTrip(t, e.db, owner)
	poll := createPoll(t, e, owner, trip, "Rome", "Paris")

	_, err := e.polls.CastVote(context.Background(), outsider.ID, poll.ID, poll.Options[0].ID)
	assertKind(t, err, apperr.KindForbidden)

	_, err = e.polls.CastVote(context.Background(), owner.ID, poll.ID+100, poll.Options[0].ID)
	assertKind(t, err, apperr.KindNotFound)
}

func TestConcurrentVotesPersistExactlyOne(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner")
	a := testutil.CreateUser(t, e.db, "anna")
	trip := testutil.CreateTrip(t, e.db, owner, a)
	poll := createPoll(t, e, owner, trip, "Rome", "Paris")

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.polls.CastVote(context.Background(), a.ID, poll.ID, poll.Options[i%2].ID)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, services.ErrAlreadyVoted)
	}
	assert.Equal(t, 1, ok)
	assert.EqualValues(t, 1, testutil.CountRows(t, e.db, &models.Vote{}, "poll_id = ? AND user_id = ?", poll.ID, a.ID))
}

func TestCastVoteLosingInsertRaceIsAlreadyVoted(t *testing.T) {
	e := newEnv(t)
	owner := testutil.CreateUser(t, e.db, "owner")
	a := testutil.CreateUser(t, e.db, "anna")
	trip := testutil.CreateTrip(t, e.db, owner, a)
	poll := createPoll(t, e, owner, trip, "Rome", "Paris")

	// A second submission by the same user commits right after the
	// already-voted check, so only the unique index can reject this one.
	onceAfterQuery(t, e.db, "votes",
		func(*gorm.Statement) bool { return true },
		func(tx *gorm.DB) {
			require.NoError(t, tx.Create(&models.Vote{PollID: poll.ID, OptionID: poll.Options[0].ID, UserID: a.ID}).Error)
		})

	_, err := e.polls.CastVote(context.Background(), a.ID, poll.ID, poll.Options[1].ID)
	assert.ErrorIs(t, err, services.ErrAlreadyVoted)

	assert.EqualValues(t, 1, testutil.CountRows(t, e.db, &models.Vote{}, "poll_id = ? AND user_id = ?", poll.ID, a.ID))
	assert.EqualValues(t, 1, testutil.CountRows(t, e.db, &models.Vote{}, "option_id = ?", poll.Options[0].ID))
	assert.Zero(t, testutil.CountRows(t, e.db, &models.Notification{}, "verb = ?", services.VerbVoted))
	_, pollUnread, _ := testutil.Counters(t, e.db, owner, trip)
	assert.Zero(t, pollUnread)
}
