package models

import (
	"time"

	"github.com/google/uuid"
)

// ItineraryItem positions are unique within a trip.
type ItineraryItem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TripID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_itinerary_trip_position,priority:1" json:"trip"`
	Position    int        `gorm:"not null;uniqueIndex:idx_itinerary_trip_position,priority:2" json:"order"`
	Title       string     `gorm:"not null;size:200" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (i *ItineraryItem) TripRef() uuid.UUID { return i.TripID }

func (i *ItineraryItem) OwnerAccount() uuid.UUID {
	if i.CreatedByID == nil {
		return uuid.Nil
	}
	return *i.CreatedByID
}

type CreateItineraryItemRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
}

type ReorderItineraryRequest struct {
	ItemIDs []uint `json:"item_ids" binding:"required"`
}
