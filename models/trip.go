package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trip is a shared planning workspace. The owner is never stored among the
// collaborators.
type Trip struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string    `gorm:"not null;size:200" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	OwnerID       uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner         User      `gorm:"foreignKey:OwnerID" json:"-"`
	Collaborators []User    `gorm:"many2many:trip_collaborators" json:"-"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Trip) TripRef() uuid.UUID      { return t.ID }
func (t *Trip) OwnerAccount() uuid.UUID { return t.OwnerID }

// TripCollaborator is the join row behind Trip.Collaborators.
type TripCollaborator struct {
	TripID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// Request structs
type CreateTripRequest struct {
	Title           string      `json:"title" binding:"required,max=200"`
	Description     string      `json:"description"`
	CollaboratorIDs []uuid.UUID `json:"collaborator_ids"`
}

type UpdateTripRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description"`
}

type CollaboratorRequest struct {
	Username string `json:"username" binding:"required"`
}

// Response structs
type TripResponse struct {
	ID            uuid.UUID      `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Owner         UserResponse   `json:"owner"`
	Collaborators []UserResponse `json:"collaborators"`
	IsOwner       bool           `json:"is_owner"`
	Notifications int            `json:"notifications"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
