package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tripplanner-backend/apperr"
	"tripplanner-backend/models"
)

var errPollNotFound = apperr.NotFound("Poll not found.")

type PollService struct {
	db     *gorm.DB
	notifs *NotificationService
}

func NewPollService(db *gorm.DB, notifs *NotificationService) *PollService {
	return &PollService{db: db, notifs: notifs}
}

// validatePollOptions trims option texts and requires at least two distinct
// non-empty ones.
func validatePollOptions(opts []models.PollOptionRequest) ([]string, error) {
	texts := make([]string, 0, len(opts))
	seen := make(map[string]bool, len(opts))
	var dups []string
	for _, o := range opts {
		text := strings.TrimSpace(o.Text)
		if text == "" {
			return nil, apperr.Validation("Option text cannot be empty.")
		}
		if seen[text] {
			dups = append(dups, text)
			continue
		}
		seen[text] = true
		texts = append(texts, text)
	}
	if len(dups) > 0 {
		return nil, apperr.Validation("Duplicate options are not allowed.").
			WithDetails(map[string]any{"duplicates": dups})
	}
	if len(texts) < 2 {
		return nil, apperr.Validation("A poll must have at least 2 options.")
	}
	return texts, nil
}

func (s *PollService) Create(ctx context.Context, actorID, tripID uuid.UUID, req models.CreatePollRequest) (*models.PollResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, apperr.Validation("Question is required.")
	}
	texts, err := validatePollOptions(req.Options)
	if err != nil {
		return nil, err
	}

	var poll models.Poll
	var fanOut *FanOut
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip, err := requireMember(tx, tripID, actorID)
		if err != nil {
			return err
		}
		poll = models.Poll{TripID: trip.ID, Question: question, CreatedByID: actorID}
		for i, text := range texts {
			poll.Options = append(poll.Options, models.PollOption{Text: text, Position: i + 1})
		}
		if err := tx.Create(&poll).Error; err != nil {
			return apperr.Internal("create poll", err)
		}
		fanOut, err = s.notifs.Notify(tx, trip, actorID, models.CategoryPoll, VerbPollCreated)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifs.Deliver(ctx, fanOut)
	return s.get(ctx, poll.ID, actorID)
}

func (s *PollService) List(ctx context.Context, actorID, tripID uuid.UUID) ([]models.PollResponse, error) {
	db := s.db.WithContext(ctx)
	if _, err := requireMember(db, tripID, actorID); err != nil {
		return nil, err
	}
	var polls []models.Poll
	err := db.Preload("CreatedBy").
		Preload("Options", func(q *gorm.DB) *gorm.DB { return q.Order("position") }).
		Where("trip_id = ?", tripID).
		Order("created_at DESC, id DESC").
		Find(&polls).Error
	if err != nil {
		return nil, apperr.Internal("list polls", err)
	}
	return s.toResponses(db, polls, actorID)
}

func (s *PollService) get(ctx context.Context, pollID uint, viewerID uuid.UUID) (*models.PollResponse, error) {
	db := s.db.WithContext(ctx)
	var poll models.Poll
	err := db.Preload("CreatedBy").
		Preload("Options", func(q *gorm.DB) *gorm.DB { return q.Order("position") }).
		First(&poll, pollID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPollNotFound
		}
		return nil, apperr.Internal("load poll", err)
	}
	out, err := s.toResponses(db, []models.Poll{poll}, viewerID)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *PollService) toResponses(db *gorm.DB, polls []models.Poll, viewerID uuid.UUID) ([]models.PollResponse, error) {
	out := make([]models.PollResponse, 0, len(polls))
	if len(polls) == 0 {
		return out, nil
	}
	pollIDs := make([]uint, len(polls))
	for i, p := range polls {
		pollIDs[i] = p.ID
	}

	var counts []struct {
		OptionID uint
		Votes    int64
	}
	err := db.Model(&models.Vote{}).
		Select("option_id, COUNT(*) AS votes").
		Where("poll_id IN ?", pollIDs).
		Group("option_id").
		Scan(&counts).Error
	if err != nil {
		return nil, apperr.Internal("count votes", err)
	}
	byOption := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byOption[c.OptionID] = c.Votes
	}

	var voted []uint
	err = db.Model(&models.Vote{}).
		Where("poll_id IN ? AND user_id = ?", pollIDs, viewerID).
		Pluck("poll_id", &voted).Error
	if err != nil {
		return nil, apperr.Internal("load own votes", err)
	}
	hasVoted := make(map[uint]bool, len(voted))
	for _, id := range voted {
		hasVoted[id] = true
	}

	for _, p := range polls {
		resp := models.PollResponse{
			ID:        p.ID,
			TripID:    p.TripID,
			Question:  p.Question,
			CreatedBy: p.CreatedBy.ToResponse(),
			HasVoted:  hasVoted[p.ID],
			CreatedAt: p.CreatedAt,
			Options:   make([]models.PollOptionResponse, 0, len(p.Options)),
		}
		sort.Slice(p.Options, func(i, j int) bool { return p.Options[i].Position < p.Options[j].Position })
		for _, o := range p.Options {
			resp.Options = append(resp.Options, models.PollOptionResponse{ID: o.ID, Text: o.Text, VoteCount: byOption[o.ID]})
		}
		out = append(out, resp)
	}
	return out, nil
}

// Delete removes a poll with its options and votes. Only the poll creator or
// the trip owner may delete.
func (s *PollService) Delete(ctx context.Context, actorID, tripID uuid.UUID, pollID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip, err := requireMember(tx, tripID, actorID)
		if err != nil {
			return err
		}
		var poll models.Poll
		if err := tx.Where("id = ? AND trip_id = ?", pollID, trip.ID).First(&poll).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errPollNotFound
			}
			return apperr.Internal("load poll", err)
		}
		if !canModify(&poll, trip, actorID) {
			return apperr.Forbidden("Only the poll creator or trip owner can delete this poll.")
		}
		if err := tx.Where("poll_id = ?", poll.ID).Delete(&models.Vote{}).Error; err != nil {
			return apperr.Internal("delete votes", err)
		}
		if err := tx.Where("poll_id = ?", poll.ID).Delete(&models.PollOption{}).Error; err != nil {
			return apperr.Internal("delete poll options", err)
		}
		if err := tx.Delete(&poll).Error; err != nil {
			return apperr.Internal("delete poll", err)
		}
		return nil
	})
}
