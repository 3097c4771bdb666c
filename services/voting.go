package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tripplanner-backend/apperr"
	"tripplanner-backend/database"
	"tripplanner-backend/models"
)

var (
	ErrAlreadyVoted  = apperr.Conflict("You have already voted in this poll. Votes cannot be changed.")
	ErrInvalidOption = apperr.Validation("Invalid option for this poll.")
)

// CastVote records actorID's single vote on a poll. The (poll, user) unique
// index decides concurrent double submissions; the loser gets
// ErrAlreadyVoted like any repeat voter.
func (s *PollService) CastVote(ctx context.Context, actorID uuid.UUID, pollID, optionID uint) (*models.PollResponse, error) {
	db := s.db.WithContext(ctx)

	var poll models.Poll
	if err := db.First(&poll, pollID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPollNotFound
		}
		return nil, apperr.Internal("load poll", err)
	}
	if _, err := requireResourceAccess(db, &poll, actorID); err != nil {
		return nil, err
	}

	var n int64
	if err := db.Model(&models.PollOption{}).Where("id = ? AND poll_id = ?", optionID, poll.ID).Count(&n).Error; err != nil {
		return nil, apperr.Internal("check poll option", err)
	}
	if n == 0 {
		return nil, ErrInvalidOption
	}

	if err := db.Model(&models.Vote{}).Where("poll_id = ? AND user_id = ?", poll.ID, actorID).Count(&n).Error; err != nil {
		return nil, apperr.Internal("check existing vote", err)
	}
	if n > 0 {
		return nil, ErrAlreadyVoted
	}

	var fanOut *FanOut
	err := db.Transaction(func(tx *gorm.DB) error {
		vote := models.Vote{PollID: poll.ID, OptionID: optionID, UserID: actorID}
		if err := tx.Create(&vote).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrAlreadyVoted
			}
			return apperr.Internal("create vote", err)
		}
		trip, err := loadTrip(tx, poll.TripID)
		if err != nil {
			return err
		}
		fanOut, err = s.notifs.Notify(tx, trip, actorID, models.CategoryPoll, VerbVoted)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifs.Deliver(ctx, fanOut)
	return s.get(ctx, poll.ID, actorID)
}
