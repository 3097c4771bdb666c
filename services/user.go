package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tripplanner-backend/apperr"
	"tripplanner-backend/database"
	"tripplanner-backend/models"
)

var errInvalidCredentials = apperr.Unauthenticated("Invalid credentials.")

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates an account. Pending invites for the email stay as they
// are; the invitee accepts them explicitly.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if IsEmailIdentifier(username) {
		return nil, apperr.Validation("Username cannot contain '@'.")
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&models.User{}).Where("LOWER(username) = ?", strings.ToLower(username)).Count(&n).Error; err != nil {
		return nil, apperr.Internal("check username", err)
	}
	if n > 0 {
		return nil, apperr.Conflict("A user with that username already exists.")
	}
	if err := db.Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&n).Error; err != nil {
		return nil, apperr.Internal("check email", err)
	}
	if n > 0 {
		return nil, apperr.Conflict("Email already registered.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	user := models.User{
		Username:     username,
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("Username or email already registered.")
		}
		return nil, apperr.Internal("create user", err)
	}
	return &user, nil
}

// Authenticate checks a password for a username or email.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	column := "LOWER(username) = ?"
	if IsEmailIdentifier(identifier) {
		column = "LOWER(email) = ?"
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where(column, identifier).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, apperr.Internal("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return loadUser(s.db.WithContext(ctx), userID)
}

func (s *UserService) UpdateFCMToken(ctx context.Context, userID uuid.UUID, token string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("fcm_token", strings.TrimSpace(token))
	if result.Error != nil {
		return apperr.Internal("update fcm token", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.Unauthenticated("User no longer exists.")
	}
	return nil
}
