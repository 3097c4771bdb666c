package database

import (
	"fmt"

	"gorm.io/gorm"

	"tripplanner-backend/models"
)

// Migrate creates or updates every table the API needs.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Trip{}, "Collaborators", &models.TripCollaborator{}); err != nil {
		return fmt.Errorf("setup join table: %w", err)
	}
	err := db.AutoMigrate(
		&models.User{},
		&models.Trip{},
		&models.TripCollaborator{},
		&models.TripInvite{},
		&models.ItineraryItem{},
		&models.Poll{},
		&models.PollOption{},
		&models.Vote{},
		&models.ChatMessage{},
		&models.TripNotificationState{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
