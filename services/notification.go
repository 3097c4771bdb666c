package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tripplanner-backend/apperr"
	"tripplanner-backend/models"
)

const (
	VerbChatMessage      = "sent a new message"
	VerbPollCreated      = "created a new poll"
	VerbVoted            = "voted in a poll"
	VerbItineraryUpdated = "updated the itinerary"

	targetInvite = "invite"
)

// FanOut is the committed outcome of a Notify call. It is handed to Deliver
// once the surrounding transaction has committed.
type FanOut struct {
	TripID     uuid.UUID
	TripTitle  string
	ActorName  string
	Category   models.NotificationCategory
	Verb       string
	Recipients []uuid.UUID
}

type NotificationService struct {
	db     *gorm.DB
	cache  SummaryCache // optional
	pusher Pusher       // optional
}

func NewNotificationService(db *gorm.DB, cache SummaryCache, pusher Pusher) *NotificationService {
	return &NotificationService{db: db, cache: cache, pusher: pusher}
}

// Notify increments the category counter of every trip member except the
// actor and appends one unread history record per recipient. It runs on tx
// so the fan-out commits or rolls back with the write that triggered it.
func (s *NotificationService) Notify(tx *gorm.DB, trip *models.Trip, actorID uuid.UUID, category models.NotificationCategory, verb string) (*FanOut, error) {
	if !category.Valid() {
		return nil, apperr.Internal("notify", fmt.Errorf("unknown notification category %q", category))
	}

	members, err := memberIDs(tx, trip)
	if err != nil {
		return nil, err
	}
	recipients := make([]uuid.UUID, 0, len(members))
	for _, id := range members {
		if id != actorID {
			recipients = append(recipients, id)
		}
	}

	var actor models.User
	if err := tx.First(&actor, "id = ?", actorID).Error; err != nil {
		return nil, apperr.Internal("load notification actor", err)
	}
	fanOut := &FanOut{
		TripID:     trip.ID,
		TripTitle:  trip.Title,
		ActorName:  actor.DisplayName(),
		Category:   category,
		Verb:       verb,
		Recipients: recipients,
	}
	if len(recipients) == 0 {
		return fanOut, nil
	}

	states := make([]models.TripNotificationState, len(recipients))
	for i, id := range recipients {
		states[i] = models.TripNotificationState{UserID: id, TripID: trip.ID}
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "trip_id"}},
		DoNothing: true,
	}).Create(&states).Error
	if err != nil {
		return nil, apperr.Internal("create notification state", err)
	}

	col := category.Column()
	result := tx.Model(&models.TripNotificationState{}).
		Where("trip_id = ? AND user_id IN ?", trip.ID, recipients).
		Update(col, gorm.Expr(col+" + ?", 1))
	if result.Error != nil {
		return nil, apperr.Internal("increment unread counters", result.Error)
	}
	if result.RowsAffected != int64(len(recipients)) {
		return nil, apperr.Internal("increment unread counters",
			fmt.Errorf("updated %d of %d recipients", result.RowsAffected, len(recipients)))
	}

	tripID := trip.ID
	history := make([]models.Notification, len(recipients))
	for i, id := range recipients {
		history[i] = models.Notification{
			RecipientID: id,
			ActorID:     actorID,
			TripID:      &tripID,
			Verb:        verb,
			TargetType:  string(category),
		}
	}
	if err := tx.Create(&history).Error; err != nil {
		return nil, apperr.Internal("append notification history", err)
	}
	return fanOut, nil
}

// NotifyInvite appends an invite record for a registered invitee. Invites
// have no unread counter.
func (s *NotificationService) NotifyInvite(tx *gorm.DB, trip *models.Trip, actorID, recipientID uuid.UUID) error {
	tripID := trip.ID
	note := models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		TripID:      &tripID,
		Verb:        fmt.Sprintf("invited you to %s", trip.Title),
		TargetType:  targetInvite,
	}
	if err := tx.Create(&note).Error; err != nil {
		return apperr.Internal("append invite notification", err)
	}
	return nil
}

// Deliver runs the side effects of a committed fan-out: cache invalidation
// and push. Failures are logged and never returned.
func (s *NotificationService) Deliver(ctx context.Context, f *FanOut) {
	if f == nil || len(f.Recipients) == 0 {
		return
	}
	s.InvalidateSummary(ctx, f.Recipients...)

	if s.pusher == nil {
		return
	}
	var tokens []string
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id IN ? AND fcm_token <> ''", f.Recipients).
		Pluck("fcm_token", &tokens).Error
	if err != nil {
		slog.Error("❌ Failed to load push tokens", "trip_id", f.TripID, "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}
	body := fmt.Sprintf("%s %s", f.ActorName, f.Verb)
	data := map[string]string{
		"type":    string(f.Category),
		"trip_id": f.TripID.String(),
	}
	if err := s.pusher.Push(ctx, tokens, f.TripTitle, body, data); err != nil {
		slog.Error("❌ Push delivery failed", "trip_id", f.TripID, "error", err)
	}
}

// InvalidateSummary drops cached summaries; errors are only logged.
func (s *NotificationService) InvalidateSummary(ctx context.Context, userIDs ...uuid.UUID) {
	if s.cache == nil || len(userIDs) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, userIDs...); err != nil {
		slog.Warn("⚠️  Failed to invalidate notification summary", "error", err)
	}
}

// Summary returns the caller's pending invite count and per-trip unread
// counters for trips they still belong to.
func (s *NotificationService) Summary(ctx context.Context, userID uuid.UUID) (*models.NotificationSummary, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			slog.Warn("⚠️  Notification summary cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	db := s.db.WithContext(ctx)
	user, err := loadUser(db, userID)
	if err != nil {
		return nil, err
	}

	summary := &models.NotificationSummary{Trips: []models.TripUnreadCounts{}}
	err = pendingInvitesQuery(db, user).Count(&summary.PendingInvites).Error
	if err != nil {
		return nil, apperr.Internal("count pending invites", err)
	}

	var rows []models.TripUnreadCounts
	err = db.Table("trip_notification_states AS s").
		Select("s.trip_id, trips.title AS trip_title, s.unread_chat, s.unread_poll, s.unread_itinerary").
		Joins("JOIN trips ON trips.id = s.trip_id").
		Where("s.user_id = ?", userID).
		Where("(trips.owner_id = ? OR EXISTS (SELECT 1 FROM trip_collaborators tc WHERE tc.trip_id = trips.id AND tc.user_id = ?))", userID, userID).
		Order("trips.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal("load unread counters", err)
	}
	for _, r := range rows {
		r.Total = r.UnreadChat + r.UnreadPoll + r.UnreadItinerary
		summary.Total += r.Total
		summary.Trips = append(summary.Trips, r)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, summary); err != nil {
			slog.Warn("⚠️  Notification summary cache write failed", "error", err)
		}
	}
	return summary, nil
}

// MarkRead zeroes one counter for one trip. A missing state row is a
// successful no-op.
func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, req models.MarkReadRequest) error {
	if req.TripID == uuid.Nil || !req.Category.Valid() {
		return apperr.Validation("trip_id and type (chat, poll or itinerary) are required.")
	}
	err := s.db.WithContext(ctx).Model(&models.TripNotificationState{}).
		Where("user_id = ? AND trip_id = ?", userID, req.TripID).
		Update(req.Category.Column(), 0).Error
	if err != nil {
		return apperr.Internal("mark notifications read", err)
	}
	s.InvalidateSummary(ctx, userID)
	return nil
}

// History lists the caller's notification records, newest first.
func (s *NotificationService) History(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.Notification, int64, error) {
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&models.Notification{}).Where("recipient_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("count notifications", err)
	}
	var notes []models.Notification
	err := db.Preload("Actor").
		Where("recipient_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&notes).Error
	if err != nil {
		return nil, 0, apperr.Internal("list notifications", err)
	}
	return notes, total, nil
}

// MarkNotificationRead flips the read flag of one of the caller's records.
func (s *NotificationService) MarkNotificationRead(ctx context.Context, userID uuid.UUID, id uint) error {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return apperr.Internal("mark notification read", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Notification not found.")
	}
	return nil
}

// unreadTotals maps trip id to the caller's total unread count.
func unreadTotals(db *gorm.DB, userID uuid.UUID, tripIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	totals := make(map[uuid.UUID]int, len(tripIDs))
	if len(tripIDs) == 0 {
		return totals, nil
	}
	var states []models.TripNotificationState
	err := db.Where("user_id = ? AND trip_id IN ?", userID, tripIDs).Find(&states).Error
	if err != nil {
		return nil, apperr.Internal("load unread counters", err)
	}
	for _, st := range states {
		totals[st.TripID] = st.Total()
	}
	return totals, nil
}
