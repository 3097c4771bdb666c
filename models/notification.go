package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationCategory selects one of the three unread counters.
type NotificationCategory string

const (
	CategoryChat      NotificationCategory = "chat"
	CategoryPoll      NotificationCategory = "poll"
	CategoryItinerary NotificationCategory = "itinerary"
)

func (c NotificationCategory) Valid() bool {
	switch c {
	case CategoryChat, CategoryPoll, CategoryItinerary:
		return true
	}
	return false
}

// Column returns the counter column backing c.
func (c NotificationCategory) Column() string {
	return "unread_" + string(c)
}

// TripNotificationState holds per-member unread counters, unique per
// (user, trip). Counters never go negative.
type TripNotificationState struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_notif_state_user_trip,priority:1" json:"-"`
	TripID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_notif_state_user_trip,priority:2" json:"trip_id"`
	UnreadChat      int       `gorm:"not null;default:0" json:"unread_chat"`
	UnreadPoll      int       `gorm:"not null;default:0" json:"unread_poll"`
	UnreadItinerary int       `gorm:"not null;default:0" json:"unread_itinerary"`
	UpdatedAt       time.Time `json:"-"`
}

func (s *TripNotificationState) Total() int {
	return s.UnreadChat + s.UnreadPoll + s.UnreadItinerary
}

// Notification is an append-only history entry. Rows are removed together
// with their trip.
type Notification struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index:idx_notification_recipient,priority:1" json:"-"`
	ActorID     uuid.UUID  `gorm:"type:uuid;not null" json:"-"`
	Actor       User       `gorm:"foreignKey:ActorID" json:"-"`
	TripID      *uuid.UUID `gorm:"type:uuid;index" json:"trip_id"`
	Verb        string     `gorm:"not null;size:255" json:"verb"`
	TargetType  string     `gorm:"size:30" json:"target_type"`
	IsRead      bool       `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time  `gorm:"index:idx_notification_recipient,priority:2" json:"created_at"`
}

type MarkReadRequest struct {
	TripID   uuid.UUID            `json:"trip_id"`
	Category NotificationCategory `json:"type"`
}

type NotificationSummary struct {
	PendingInvites int64              `json:"pending_invites"`
	Trips          []TripUnreadCounts `json:"trips"`
	Total          int                `json:"total"`
}

type TripUnreadCounts struct {
	TripID          uuid.UUID `json:"trip_id"`
	TripTitle       string    `json:"trip_title"`
	UnreadChat      int       `json:"unread_chat"`
	UnreadPoll      int       `json:"unread_poll"`
	UnreadItinerary int       `json:"unread_itinerary"`
	Total           int       `json:"total"`
}

type NotificationResponse struct {
	ID         uint         `json:"id"`
	Actor      UserResponse `json:"actor"`
	TripID     *uuid.UUID   `json:"trip_id"`
	Verb       string       `json:"verb"`
	TargetType string       `json:"target_type"`
	IsRead     bool         `json:"is_read"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (n *Notification) ToResponse() NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Actor:      n.Actor.ToResponse(),
		TripID:     n.TripID,
		Verb:       n.Verb,
		TargetType: n.TargetType,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	}
}
