package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tripplanner-backend/apperr"
	"tripplanner-backend/database"
	"tripplanner-backend/models"
)

var (
	ErrAlreadyMember     = apperr.Conflict("User is already a member.")
	ErrAlreadyInvited    = apperr.Conflict("User already invited.")
	ErrInviteNotPending  = apperr.Conflict("Invitation is no longer pending.")
	ErrInviteNotFound    = apperr.NotFound("Invitation not found.")
	errInviteOtherUser   = apperr.Forbidden("This invitation was meant for a different user.")
	errInviteOtherEmail  = apperr.Forbidden("This invitation email does not match your account.")
	errInvalidInviteVerb = apperr.Validation("Status must be ACCEPTED or DECLINED.")
)

// InviteService owns the invite lifecycle: PENDING to ACCEPTED or DECLINED,
// both terminal.
type InviteService struct {
	db     *gorm.DB
	notifs *NotificationService
	mailer Mailer // optional
	appURL string
}

func NewInviteService(db *gorm.DB, notifs *NotificationService, mailer Mailer, appURL string) *InviteService {
	return &InviteService{db: db, notifs: notifs, mailer: mailer, appURL: strings.TrimRight(appURL, "/")}
}

// Invite creates a PENDING invite for identifier on a trip owned by actorID.
func (s *InviteService) Invite(ctx context.Context, actorID, tripID uuid.UUID, identifier string) (*models.TripInvite, error) {
	var invite models.TripInvite
	var res *Resolution
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip, err := requireOwner(tx, tripID, actorID)
		if err != nil {
			return err
		}
		res, err = ResolveMembership(tx, trip, identifier)
		if err != nil {
			return err
		}
		if res.AlreadyMember {
			return ErrAlreadyMember
		}
		if res.AlreadyInvited {
			return ErrAlreadyInvited
		}

		invite = models.TripInvite{
			TripID:       trip.ID,
			InvitedEmail: res.NormalizedEmail,
			InvitedByID:  actorID,
			Status:       models.InviteStatusPending,
		}
		if res.Account != nil {
			invite.InvitedUserID = &res.Account.ID
		}
		if err := tx.Create(&invite).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrAlreadyInvited
			}
			return apperr.Internal("create invite", err)
		}

		if res.Account != nil {
			if err := s.notifs.NotifyInvite(tx, trip, actorID, res.Account.ID); err != nil {
				return err
			}
		}
		return tx.Preload("Trip").Preload("InvitedBy").First(&invite, "id = ?", invite.ID).Error
	})
	if err != nil {
		return nil, err
	}

	if res.Account != nil {
		s.notifs.InvalidateSummary(ctx, res.Account.ID)
	}
	s.sendInviteEmail(ctx, &invite)
	return &invite, nil
}

func (s *InviteService) sendInviteEmail(ctx context.Context, invite *models.TripInvite) {
	if s.mailer == nil {
		return
	}
	err := s.mailer.SendInvite(ctx, InviteEmail{
		To:          invite.InvitedEmail,
		InviterName: invite.InvitedBy.DisplayName(),
		TripTitle:   invite.Trip.Title,
		AcceptURL:   s.AcceptURL(invite.Token),
	})
	if err != nil {
		slog.Error("❌ Failed to send invite email", "invite_id", invite.ID, "to", invite.InvitedEmail, "error", err)
	}
}

// AcceptURL is the link mailed to invitees.
func (s *InviteService) AcceptURL(token uuid.UUID) string {
	return fmt.Sprintf("%s/api/invites/accept/%s", s.appURL, token)
}

func pendingInvitesQuery(db *gorm.DB, user *models.User) *gorm.DB {
	return db.Model(&models.TripInvite{}).
		Where("status = ?", models.InviteStatusPending).
		Where("(invited_user_id = ? OR LOWER(invited_email) = ?)", user.ID, strings.ToLower(user.Email))
}

// ListReceived returns the pending invites addressed to userID, newest first.
func (s *InviteService) ListReceived(ctx context.Context, userID uuid.UUID) ([]models.TripInvite, error) {
	db := s.db.WithContext(ctx)
	user, err := loadUser(db, userID)
	if err != nil {
		return nil, err
	}
	var invites []models.TripInvite
	err = pendingInvitesQuery(db, user).
		Preload("Trip").Preload("InvitedBy").
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		return nil, apperr.Internal("list invites", err)
	}
	return invites, nil
}

// ParseInviteDecision maps a client status to a terminal state. REJECTED is
// accepted as an alias of DECLINED.
func ParseInviteDecision(status string) (models.InviteStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case string(models.InviteStatusAccepted):
		return models.InviteStatusAccepted, nil
	case string(models.InviteStatusDeclined), "REJECTED":
		return models.InviteStatusDeclined, nil
	}
	return "", errInvalidInviteVerb
}

// Respond moves the invite with inviteID to the given status on behalf of
// userID.
func (s *InviteService) Respond(ctx context.Context, userID, inviteID uuid.UUID, status string) (*models.TripInvite, error) {
	next, err := ParseInviteDecision(status)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, userID, next, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id = ?", inviteID)
	})
}

// AcceptByToken accepts the invite identified by its link token.
func (s *InviteService) AcceptByToken(ctx context.Context, userID, token uuid.UUID) (*models.TripInvite, error) {
	return s.transition(ctx, userID, models.InviteStatusAccepted, byToken(token))
}

func (s *InviteService) DeclineByToken(ctx context.Context, userID, token uuid.UUID) (*models.TripInvite, error) {
	return s.transition(ctx, userID, models.InviteStatusDeclined, byToken(token))
}

func byToken(token uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("token = ?", token)
	}
}

// checkInviteEligibility requires the caller to be the linked account, or,
// for an email-only invite, to own the invited email.
func checkInviteEligibility(invite *models.TripInvite, user *models.User) error {
	if invite.InvitedUserID != nil {
		if *invite.InvitedUserID != user.ID {
			return errInviteOtherUser
		}
		return nil
	}
	if !strings.EqualFold(invite.InvitedEmail, user.Email) {
		return errInviteOtherEmail
	}
	return nil
}

func (s *InviteService) transition(ctx context.Context, userID uuid.UUID, next models.InviteStatus, lookup func(*gorm.DB) *gorm.DB) (*models.TripInvite, error) {
	var invite models.TripInvite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		if err := lookup(tx).First(&invite).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInviteNotFound
			}
			return apperr.Internal("load invite", err)
		}
		if !invite.Status.CanTransitionTo(next) {
			return ErrInviteNotPending
		}
		if err := checkInviteEligibility(&invite, user); err != nil {
			return err
		}

		// Guarded on status so a concurrent responder cannot transition twice.
		result := tx.Model(&models.TripInvite{}).
			Where("id = ? AND status = ?", invite.ID, models.InviteStatusPending).
			Updates(map[string]any{"status": next, "invited_user_id": user.ID})
		if result.Error != nil {
			return apperr.Internal("update invite", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInviteNotPending
		}

		if next == models.InviteStatusAccepted {
			trip, err := loadTrip(tx, invite.TripID)
			if err != nil {
				return err
			}
			if trip.OwnerID != user.ID {
				err := tx.Clauses(clause.OnConflict{DoNothing: true}).
					Create(&models.TripCollaborator{TripID: trip.ID, UserID: user.ID}).Error
				if err != nil {
					return apperr.Internal("add collaborator", err)
				}
			}
		}
		return tx.Preload("Trip").Preload("InvitedBy").First(&invite, "id = ?", invite.ID).Error
	})
	if err != nil {
		return nil, err
	}
	s.notifs.InvalidateSummary(ctx, userID)
	return &invite, nil
}
