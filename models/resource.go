package models

import "github.com/google/uuid"

// TripResource is anything that belongs to a trip and has an owning account.
type TripResource interface {
	TripRef() uuid.UUID
	OwnerAccount() uuid.UUID
}
