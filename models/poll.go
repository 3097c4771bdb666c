package models

import (
	"time"

	"github.com/google/uuid"
)

type Poll struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	TripID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"trip"`
	Question    string       `gorm:"not null;size:500" json:"question"`
	CreatedByID uuid.UUID    `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy   User         `gorm:"foreignKey:CreatedByID" json:"-"`
	Options     []PollOption `gorm:"foreignKey:PollID" json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (p *Poll) TripRef() uuid.UUID      { return p.TripID }
func (p *Poll) OwnerAccount() uuid.UUID { return p.CreatedByID }

// PollOption texts are unique within a poll; the set never changes after
// the poll is created.
type PollOption struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PollID   uint   `gorm:"not null;uniqueIndex:idx_poll_option_text,priority:1" json:"-"`
	Text     string `gorm:"not null;size:200;uniqueIndex:idx_poll_option_text,priority:2" json:"text"`
	Position int    `gorm:"not null" json:"-"`
}

// Vote is unique per (poll, user) at the storage layer.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PollID    uint      `gorm:"not null;uniqueIndex:idx_vote_poll_user,priority:1" json:"poll"`
	OptionID  uint      `gorm:"not null;index" json:"option"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vote_poll_user,priority:2" json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

type CreatePollRequest struct {
	Question string              `json:"question" binding:"required,max=500"`
	Options  []PollOptionRequest `json:"options" binding:"required,dive"`
}

type PollOptionRequest struct {
	Text string `json:"text" binding:"required,max=200"`
}

type VoteRequest struct {
	OptionID uint `json:"option_id" binding:"required"`
}

type PollOptionResponse struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	VoteCount int64  `json:"vote_count"`
}

type PollResponse struct {
	ID        uint                 `json:"id"`
	TripID    uuid.UUID            `json:"trip"`
	Question  string               `json:"question"`
	CreatedBy UserResponse         `json:"created_by"`
	Options   []PollOptionResponse `json:"options"`
	HasVoted  bool                 `json:"has_voted"`
	CreatedAt time.Time            `json:"created_at"`
}
