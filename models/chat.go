package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is immutable once stored.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TripID    uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_trip_created,priority:1" json:"trip"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null" json:"-"`
	Sender    User      `gorm:"foreignKey:SenderID" json:"-"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"index:idx_chat_trip_created,priority:2" json:"created_at"`
}

func (m *ChatMessage) TripRef() uuid.UUID      { return m.TripID }
func (m *ChatMessage) OwnerAccount() uuid.UUID { return m.SenderID }

type SendMessageRequest struct {
	Message string `json:"message"`
}

type ChatMessageResponse struct {
	ID        uint         `json:"id"`
	TripID    uuid.UUID    `json:"trip"`
	Sender    UserResponse `json:"sender"`
	Message   string       `json:"message"`
	CreatedAt time.Time    `json:"created_at"`
}

func (m *ChatMessage) ToResponse() ChatMessageResponse {
	return ChatMessageResponse{
		ID:        m.ID,
		TripID:    m.TripID,
		Sender:    m.Sender.ToResponse(),
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}
