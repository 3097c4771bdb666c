package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "PENDING"
	InviteStatusAccepted InviteStatus = "ACCEPTED"
	InviteStatusDeclined InviteStatus = "DECLINED"
)

// CanTransitionTo reports whether an invite may move from s to next.
// ACCEPTED and DECLINED are terminal.
func (s InviteStatus) CanTransitionTo(next InviteStatus) bool {
	return s == InviteStatusPending && (next == InviteStatusAccepted || next == InviteStatusDeclined)
}

// TripInvite is unique per (trip, invited email) while PENDING. InvitedEmail
// is always populated and stored lowercased.
type TripInvite struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	TripID        uuid.UUID    `gorm:"type:uuid;not null;index;uniqueIndex:idx_invite_pending_email,where:status = 'PENDING'" json:"trip_id"`
	Trip          Trip         `gorm:"foreignKey:TripID" json:"-"`
	InvitedEmail  string       `gorm:"not null;size:255;uniqueIndex:idx_invite_pending_email,where:status = 'PENDING'" json:"invited_email"`
	InvitedUserID *uuid.UUID   `gorm:"type:uuid;index" json:"invited_user_id"`
	InvitedByID   uuid.UUID    `gorm:"type:uuid;not null" json:"invited_by_id"`
	InvitedBy     User         `gorm:"foreignKey:InvitedByID" json:"-"`
	Token         uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	Status        InviteStatus `gorm:"not null;size:20;default:PENDING" json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (i *TripInvite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Token == uuid.Nil {
		i.Token = uuid.New()
	}
	if i.Status == "" {
		i.Status = InviteStatusPending
	}
	return nil
}

type InviteRequest struct {
	Identifier string `json:"identifier" binding:"required"` // username or email
}

type RespondInviteRequest struct {
	Status string `json:"status" binding:"required"`
}

type InviteResponse struct {
	ID           uuid.UUID    `json:"id"`
	TripID       uuid.UUID    `json:"trip_id"`
	TripTitle    string       `json:"trip_title"`
	InvitedEmail string       `json:"invited_email"`
	InvitedBy    UserResponse `json:"invited_by"`
	Status       InviteStatus `json:"status"`
	Token        uuid.UUID    `json:"token,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (i *TripInvite) ToResponse(withToken bool) InviteResponse {
	resp := InviteResponse{
		ID:           i.ID,
		TripID:       i.TripID,
		TripTitle:    i.Trip.Title,
		InvitedEmail: i.InvitedEmail,
		InvitedBy:    i.InvitedBy.ToResponse(),
		Status:       i.Status,
		CreatedAt:    i.CreatedAt,
	}
	if withToken {
		resp.Token = i.Token
	}
	return resp
}
