package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"tripplanner-backend/apperr"
	"tripplanner-backend/models"
)

// Resolution describes what an invite identifier points at within a trip.
type Resolution struct {
	Account         *models.User // nil for an unregistered email
	AlreadyMember   bool
	AlreadyInvited  bool
	NormalizedEmail string
}

// IsEmailIdentifier reports whether identifier should be looked up as an
// email rather than a username.
func IsEmailIdentifier(identifier string) bool {
	return strings.Contains(identifier, "@")
}

// ResolveMembership looks identifier up case-insensitively against accounts
// and pending invites of trip. It only reads.
//
// An unknown username is NotFound. An unknown email is not an error: it is
// an invitation for someone who has not registered yet.
func ResolveMembership(tx *gorm.DB, trip *models.Trip, identifier string) (*Resolution, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, apperr.Validation("Username or email is required.")
	}

	res := &Resolution{}
	var account models.User
	var err error
	if IsEmailIdentifier(identifier) {
		res.NormalizedEmail = strings.ToLower(identifier)
		err = tx.Where("LOWER(email) = ?", res.NormalizedEmail).First(&account).Error
	} else {
		err = tx.Where("LOWER(username) = ?", strings.ToLower(identifier)).First(&account).Error
	}
	switch {
	case err == nil:
		res.Account = &account
		res.NormalizedEmail = strings.ToLower(account.Email)
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !IsEmailIdentifier(identifier) {
			return nil, apperr.NotFound("User not found.")
		}
	default:
		return nil, apperr.Internal("resolve invite identifier", err)
	}

	if res.Account != nil {
		member, err := isMember(tx, trip, res.Account.ID)
		if err != nil {
			return nil, err
		}
		res.AlreadyMember = member
	}

	q := tx.Model(&models.TripInvite{}).
		Where("trip_id = ? AND status = ?", trip.ID, models.InviteStatusPending)
	if res.Account != nil {
		q = q.Where("(LOWER(invited_email) = ? OR invited_user_id = ?)", res.NormalizedEmail, res.Account.ID)
	} else {
		q = q.Where("LOWER(invited_email) = ?", res.NormalizedEmail)
	}
	var pending int64
	if err := q.Count(&pending).Error; err != nil {
		return nil, apperr.Internal("check pending invites", err)
	}
	res.AlreadyInvited = pending > 0
	return res, nil
}
