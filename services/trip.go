package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tripplanner-backend/apperr"
	"tripplanner-backend/models"
)

type TripService struct {
	db     *gorm.DB
	notifs *NotificationService
}

func NewTripService(db *gorm.DB, notifs *NotificationService) *TripService {
	return &TripService{db: db, notifs: notifs}
}

// Create stores a trip owned by actorID. The owner is dropped from the
// requested collaborators.
func (s *TripService) Create(ctx context.Context, actorID uuid.UUID, req models.CreateTripRequest) (*models.TripResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("Title is required.")
	}
	seen := make(map[uuid.UUID]bool, len(req.CollaboratorIDs))
	collaborators := make([]uuid.UUID, 0, len(req.CollaboratorIDs))
	for _, id := range req.CollaboratorIDs {
		if seen[id] {
			return nil, apperr.Validation("Duplicate collaborators are not allowed.")
		}
		seen[id] = true
		if id != actorID {
			collaborators = append(collaborators, id)
		}
	}

	var trip models.Trip
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(collaborators) > 0 {
			var found []uuid.UUID
			if err := tx.Model(&models.User{}).Where("id IN ?", collaborators).Pluck("id", &found).Error; err != nil {
				return apperr.Internal("check collaborators", err)
			}
			if len(found) != len(collaborators) {
				known := make(map[uuid.UUID]bool, len(found))
				for _, id := range found {
					known[id] = true
				}
				var unknown []uuid.UUID
				for _, id := range collaborators {
					if !known[id] {
						unknown = append(unknown, id)
					}
				}
				return apperr.Validation("Unknown collaborator ids.").
					WithDetails(map[string]any{"invalid_ids": unknown})
			}
		}

		trip = models.Trip{Title: title, Description: req.Description, OwnerID: actorID}
		if err := tx.Create(&trip).Error; err != nil {
			return apperr.Internal("create trip", err)
		}
		for _, id := range collaborators {
			if err := tx.Create(&models.TripCollaborator{TripID: trip.ID, UserID: id}).Error; err != nil {
				return apperr.Internal("add collaborator", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actorID, trip.ID)
}

func memberTripsQuery(db *gorm.DB, userID uuid.UUID) *gorm.DB {
	return db.Model(&models.Trip{}).
		Where("owner_id = ? OR id IN (?)", userID,
			db.Model(&models.TripCollaborator{}).Select("trip_id").Where("user_id = ?", userID))
}

// List returns the trips userID owns or collaborates on, newest first.
func (s *TripService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.TripResponse, int64, error) {
	db := s.db.WithContext(ctx)
	var total int64
	if err := memberTripsQuery(db, userID).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("count trips", err)
	}
	var trips []models.Trip
	err := memberTripsQuery(db, userID).
		Preload("Owner").Preload("Collaborators").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&trips).Error
	if err != nil {
		return nil, 0, apperr.Internal("list trips", err)
	}

	ids := make([]uuid.UUID, len(trips))
	for i, t := range trips {
		ids[i] = t.ID
	}
	unread, err := unreadTotals(db, userID, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.TripResponse, len(trips))
	for i := range trips {
		out[i] = tripResponse(&trips[i], userID, unread[trips[i].ID])
	}
	return out, total, nil
}

func (s *TripService) Get(ctx context.Context, userID, tripID uuid.UUID) (*models.TripResponse, error) {
	db := s.db.WithContext(ctx)
	if _, err := requireMember(db, tripID, userID); err != nil {
		return nil, err
	}
	var trip models.Trip
	if err := db.Preload("Owner").Preload("Collaborators").First(&trip, "id = ?", tripID).Error; err != nil {
		return nil, apperr.Internal("load trip", err)
	}
	unread, err := unreadTotals(db, userID, []uuid.UUID{trip.ID})
	if err != nil {
		return nil, err
	}
	resp := tripResponse(&trip, userID, unread[trip.ID])
	return &resp, nil
}

func tripResponse(t *models.Trip, viewerID uuid.UUID, unread int) models.TripResponse {
	collaborators := make([]models.UserResponse, len(t.Collaborators))
	for i := range t.Collaborators {
		collaborators[i] = t.Collaborators[i].ToResponse()
	}
	return models.TripResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Owner:         t.Owner.ToResponse(),
		Collaborators: collaborators,
		IsOwner:       t.OwnerID == viewerID,
		Notifications: unread,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (s *TripService) Update(ctx context.Context, actorID, tripID uuid.UUID, req models.UpdateTripRequest) (*models.TripResponse, error) {
	updates := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.Validation("Title is required.")
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip, err := requireOwner(tx, tripID, actorID)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(trip).Updates(updates).Error; err != nil {
			return apperr.Internal("update trip", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actorID, tripID)
}

// Delete removes the trip and everything hanging off it.
func (s *TripService) Delete(ctx context.Context, actorID, tripID uuid.UUID) error {
	var members []uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip, err := requireOwner(tx, tripID, actorID)
		if err != nil {
			return err
		}
		if members, err = memberIDs(tx, trip); err != nil {
			return err
		}
		// Invitees lose a pending invite, so their cached counts go stale too.
		pending := func(col string) *gorm.DB {
			return tx.Model(&models.TripInvite{}).Select(col).
				Where("trip_id = ? AND status = ?", trip.ID, models.InviteStatusPending)
		}
		var invitees []uuid.UUID
		err = tx.Model(&models.User{}).
			Where("id IN (?) OR LOWER(email) IN (?)", pending("invited_user_id"), pending("invited_email")).
			Pluck("id", &invitees).Error
		if err != nil {
			return apperr.Internal("load trip invitees", err)
		}
		members = append(members, invitees...)

		polls := tx.Model(&models.Poll{}).Select("id").Where("trip_id = ?", trip.ID)
		steps := []struct {
			what  string
			model any
			query string
			arg   any
		}{
			{"votes", &models.Vote{}, "poll_id IN (?)", polls},
			{"poll options", &models.PollOption{}, "poll_id IN (?)", polls},
			{"polls", &models.Poll{}, "trip_id = ?", trip.ID},
			{"itinerary", &models.ItineraryItem{}, "trip_id = ?", trip.ID},
			{"chat", &models.ChatMessage{}, "trip_id = ?", trip.ID},
			{"invites", &models.TripInvite{}, "trip_id = ?", trip.ID},
			{"notification state", &models.TripNotificationState{}, "trip_id = ?", trip.ID},
			{"notifications", &models.Notification{}, "trip_id = ?", trip.ID},
			{"collaborators", &models.TripCollaborator{}, "trip_id = ?", trip.ID},
		}
		for _, st := range steps {
			if err := tx.Where(st.query, st.arg).Delete(st.model).Error; err != nil {
				return apperr.Internal("delete trip "+st.what, err)
			}
		}
		if err := tx.Delete(trip).Error; err != nil {
			return apperr.Internal("delete trip", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notifs.InvalidateSummary(ctx, members...)
	return nil
}

func findUserByUsername(tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := tx.Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found.")
		}
		return nil, apperr.Internal("find user", err)
	}
	return &user, nil
}

// AddCollaborator adds a registered user directly, bypassing invites.
func (s *TripService) AddCollaborator(ctx context.Context, actorID, tripID uuid.UUID, username string) (*models.TripResponse, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip, err := requireOwner(tx, tripID, actorID)
		if err != nil {
			return err
		}
		user, err := findUserByUsername(tx, username)
		if err != nil {
			return err
		}
		if user.ID == trip.OwnerID {
			return apperr.Validation("Owner cannot be added as a collaborator.")
		}
		member, err := isMember(tx, trip, user.ID)
		if err != nil {
			return err
		}
		if member {
			return ErrAlreadyMember
		}
		err = tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.TripCollaborator{TripID: trip.ID, UserID: user.ID}).Error
		if err != nil {
			return apperr.Internal("add collaborator", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actorID, tripID)
}

func (s *TripService) RemoveCollaborator(ctx context.Context, actorID, tripID uuid.UUID, username string) (*models.TripResponse, error) {
	var removed uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip, err := requireOwner(tx, tripID, actorID)
		if err != nil {
			return err
		}
		user, err := findUserByUsername(tx, username)
		if err != nil {
			return err
		}
		result := tx.Where("trip_id = ? AND user_id = ?", trip.ID, user.ID).Delete(&models.TripCollaborator{})
		if result.Error != nil {
			return apperr.Internal("remove collaborator", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.Validation("User is not a collaborator on this trip.")
		}
		removed = user.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifs.InvalidateSummary(ctx, removed)
	return s.Get(ctx, actorID, tripID)
}
