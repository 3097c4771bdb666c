package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tripplanner-backend/apperr"
	"tripplanner-backend/models"
)

var (
	errTripNotFound = apperr.NotFound("Trip not found.")
	errNoTripAccess = apperr.Forbidden("You do not have access to this trip.")
	errOwnerOnly    = apperr.Forbidden("Only the trip owner can perform this action.")
)

func loadTrip(tx *gorm.DB, tripID uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	if err := tx.First(&trip, "id = ?", tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errTripNotFound
		}
		return nil, apperr.Internal("load trip", err)
	}
	return &trip, nil
}

func loadUser(tx *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthenticated("User no longer exists.")
		}
		return nil, apperr.Internal("load user", err)
	}
	return &user, nil
}

func isMember(tx *gorm.DB, trip *models.Trip, userID uuid.UUID) (bool, error) {
	if trip.OwnerID == userID {
		return true, nil
	}
	var n int64
	err := tx.Model(&models.TripCollaborator{}).
		Where("trip_id = ? AND user_id = ?", trip.ID, userID).
		Count(&n).Error
	if err != nil {
		return false, apperr.Internal("check membership", err)
	}
	return n > 0, nil
}

// requireMember loads the trip and fails unless userID is its owner or a
// collaborator.
func requireMember(tx *gorm.DB, tripID, userID uuid.UUID) (*models.Trip, error) {
	trip, err := loadTrip(tx, tripID)
	if err != nil {
		return nil, err
	}
	ok, err := isMember(tx, trip, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoTripAccess
	}
	return trip, nil
}

func requireOwner(tx *gorm.DB, tripID, userID uuid.UUID) (*models.Trip, error) {
	trip, err := requireMember(tx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if trip.OwnerID != userID {
		return nil, errOwnerOnly
	}
	return trip, nil
}

// requireResourceAccess resolves the trip a resource belongs to and checks
// that userID is a member of it.
func requireResourceAccess(tx *gorm.DB, res models.TripResource, userID uuid.UUID) (*models.Trip, error) {
	return requireMember(tx, res.TripRef(), userID)
}

// canModify reports whether userID owns res or owns the trip it lives in.
func canModify(res models.TripResource, trip *models.Trip, userID uuid.UUID) bool {
	return res.OwnerAccount() == userID || trip.OwnerAccount() == userID
}

// memberIDs returns the owner followed by every collaborator of trip.
func memberIDs(tx *gorm.DB, trip *models.Trip) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Model(&models.TripCollaborator{}).
		Where("trip_id = ?", trip.ID).
		Order("joined_at").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, apperr.Internal("list trip members", err)
	}
	return append([]uuid.UUID{trip.OwnerID}, ids...), nil
}
