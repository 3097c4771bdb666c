// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tripplanner-backend/database"
	"tripplanner-backend/models"
)

// Password is the plaintext password of every fixture user.
const Password = "password123"

// NewTestDB returns a migrated sqlite database private to t. A single
// connection keeps the in-memory database alive and serialises writers.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(uuid.NewString(), "-", ""))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser stores a user named username with email username@example.com.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Username:     username,
		Email:        strings.ToLower(username) + "@example.com",
		Name:         strings.ToUpper(username[:1]) + username[1:],
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateTrip stores a trip owned by owner with the given collaborators.
func CreateTrip(t testing.TB, db *gorm.DB, owner *models.User, collaborators ...*models.User) *models.Trip {
	t.Helper()
	trip := &models.Trip{Title: owner.Username + "'s trip", OwnerID: owner.ID}
	require.NoError(t, db.Create(trip).Error)
	for _, c := range collaborators {
		AddCollaborator(t, db, trip, c)
	}
	return trip
}

func AddCollaborator(t testing.TB, db *gorm.DB, trip *models.Trip, user *models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.TripCollaborator{TripID: trip.ID, UserID: user.ID}).Error)
}

// Counters returns the (chat, poll, itinerary) unread counters of user on
// trip, or zeros when no state row exists.
func Counters(t testing.TB, db *gorm.DB, user *models.User, trip *models.Trip) (int, int, int) {
	t.Helper()
	var state models.TripNotificationState
	err := db.Where("user_id = ? AND trip_id = ?", user.ID, trip.ID).Limit(1).Find(&state).Error
	require.NoError(t, err)
	return state.UnreadChat, state.UnreadPoll, state.UnreadItinerary
}

// CountRows counts the rows of model matching the optional where clause.
func CountRows(t testing.TB, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
