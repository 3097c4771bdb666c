package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tripplanner-backend/apperr"
	"tripplanner-backend/models"
)

type ChatService struct {
	db     *gorm.DB
	notifs *NotificationService
}

func NewChatService(db *gorm.DB, notifs *NotificationService) *ChatService {
	return &ChatService{db: db, notifs: notifs}
}

func (s *ChatService) Send(ctx context.Context, actorID, tripID uuid.UUID, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("Message is required.")
	}

	var msg models.ChatMessage
	var fanOut *FanOut
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip, err := requireMember(tx, tripID, actorID)
		if err != nil {
			return err
		}
		msg = models.ChatMessage{TripID: trip.ID, SenderID: actorID, Message: text}
		if err := tx.Create(&msg).Error; err != nil {
			return apperr.Internal("create chat message", err)
		}
		if fanOut, err = s.notifs.Notify(tx, trip, actorID, models.CategoryChat, VerbChatMessage); err != nil {
			return err
		}
		return tx.Preload("Sender").First(&msg, msg.ID).Error
	})
	if err != nil {
		return nil, err
	}
	s.notifs.Deliver(ctx, fanOut)
	return &msg, nil
}

// List returns a page of messages, oldest first.
func (s *ChatService) List(ctx context.Context, actorID, tripID uuid.UUID, offset, limit int) ([]models.ChatMessage, int64, error) {
	db := s.db.WithContext(ctx)
	if _, err := requireMember(db, tripID, actorID); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := db.Model(&models.ChatMessage{}).Where("trip_id = ?", tripID).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("count chat messages", err)
	}
	var msgs []models.ChatMessage
	err := db.Preload("Sender").
		Where("trip_id = ?", tripID).
		Order("created_at, id").
		Offset(offset).Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, 0, apperr.Internal("list chat messages", err)
	}
	return msgs, total, nil
}
