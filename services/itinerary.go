package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tripplanner-backend/apperr"
	"tripplanner-backend/database"
	"tripplanner-backend/models"
)

// ReorderOffset moves every position clear of 1..N before the final
// positions are written. It is raised above the current maximum when
// positions already exceed it.
const ReorderOffset = 10000

var (
	errItemNotFound      = apperr.NotFound("Itinerary item not found.")
	errItineraryConflict = apperr.Conflict("The itinerary was changed at the same time. Please retry.")
)

type ItineraryService struct {
	db     *gorm.DB
	notifs *NotificationService
}

func NewItineraryService(db *gorm.DB, notifs *NotificationService) *ItineraryService {
	return &ItineraryService{db: db, notifs: notifs}
}

func listItems(tx *gorm.DB, tripID uuid.UUID) ([]models.ItineraryItem, error) {
	var items []models.ItineraryItem
	err := tx.Where("trip_id = ?", tripID).
		Order("position, created_at").
		Find(&items).Error
	if err != nil {
		return nil, apperr.Internal("list itinerary", err)
	}
	return items, nil
}

// lockTrip takes a row lock on the trip so position writers on the same
// itinerary run one at a time.
func lockTrip(tx *gorm.DB, tripID uuid.UUID) error {
	var locked models.Trip
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&locked, "id = ?", tripID).Error
	if err != nil {
		return apperr.Internal("lock trip", err)
	}
	return nil
}

func maxPosition(tx *gorm.DB, tripID uuid.UUID) (int, error) {
	var top int
	err := tx.Model(&models.ItineraryItem{}).
		Where("trip_id = ?", tripID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&top).Error
	if err != nil {
		return 0, apperr.Internal("load max position", err)
	}
	return top, nil
}

func (s *ItineraryService) List(ctx context.Context, actorID, tripID uuid.UUID) ([]models.ItineraryItem, error) {
	db := s.db.WithContext(ctx)
	if _, err := requireMember(db, tripID, actorID); err != nil {
		return nil, err
	}
	return listItems(db, tripID)
}

// Create appends an item after the current last position.
func (s *ItineraryService) Create(ctx context.Context, actorID, tripID uuid.UUID, req models.CreateItineraryItemRequest) (*models.ItineraryItem, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("Title is required.")
	}

	var item models.ItineraryItem
	var fanOut *FanOut
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip, err := requireMember(tx, tripID, actorID)
		if err != nil {
			return err
		}
		if err := lockTrip(tx, trip.ID); err != nil {
			return err
		}
		top, err := maxPosition(tx, trip.ID)
		if err != nil {
			return err
		}
		creator := actorID
		item = models.ItineraryItem{
			TripID:      trip.ID,
			Position:    top + 1,
			Title:       title,
			Description: req.Description,
			CreatedByID: &creator,
		}
		if err := tx.Create(&item).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return errItineraryConflict
			}
			return apperr.Internal("create itinerary item", err)
		}
		fanOut, err = s.notifs.Notify(tx, trip, actorID, models.CategoryItinerary, VerbItineraryUpdated)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifs.Deliver(ctx, fanOut)
	return &item, nil
}

// Delete removes an item. Only its creator or the trip owner may delete it.
func (s *ItineraryService) Delete(ctx context.Context, actorID, tripID uuid.UUID, itemID uint) error {
	var fanOut *FanOut
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip, err := requireMember(tx, tripID, actorID)
		if err != nil {
			return err
		}
		var item models.ItineraryItem
		if err := tx.Where("id = ? AND trip_id = ?", itemID, trip.ID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errItemNotFound
			}
			return apperr.Internal("load itinerary item", err)
		}
		if !canModify(&item, trip, actorID) {
			return apperr.Forbidden("Only the item creator or trip owner can delete this item.")
		}
		if err := tx.Delete(&item).Error; err != nil {
			return apperr.Internal("delete itinerary item", err)
		}
		fanOut, err = s.notifs.Notify(tx, trip, actorID, models.CategoryItinerary, VerbItineraryUpdated)
		return err
	})
	if err != nil {
		return err
	}
	s.notifs.Deliver(ctx, fanOut)
	return nil
}

// checkReorderIDs requires ids to be exactly the current item set, with no
// duplicates. The error details name the offending ids.
func checkReorderIDs(ids, current []uint) error {
	if len(ids) == 0 {
		return apperr.Validation("item_ids must not be empty.")
	}

	seen := make(map[uint]bool, len(ids))
	var dups []uint
	for _, id := range ids {
		if seen[id] {
			dups = append(dups, id)
		}
		seen[id] = true
	}
	if len(dups) > 0 {
		return apperr.Validation("item_ids contains duplicates.").
			WithDetails(map[string]any{"duplicate_ids": sortedIDs(dups)})
	}

	existing := make(map[uint]bool, len(current))
	for _, id := range current {
		existing[id] = true
	}
	var invalid, missing []uint
	for _, id := range ids {
		if !existing[id] {
			invalid = append(invalid, id)
		}
	}
	for _, id := range current {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	if len(invalid) > 0 || len(missing) > 0 {
		details := map[string]any{}
		if len(invalid) > 0 {
			details["invalid_ids"] = sortedIDs(invalid)
		}
		if len(missing) > 0 {
			details["missing_ids"] = sortedIDs(missing)
		}
		return apperr.Validation("item_ids must contain exactly the items of this trip.").WithDetails(details)
	}
	return nil
}

func sortedIDs(ids []uint) []uint {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Reorder assigns position i+1 to ids[i] in two phases inside one
// transaction: first every position is shifted past the current maximum,
// then the final positions are written. The (trip, position) index is never
// violated in between.
func (s *ItineraryService) Reorder(ctx context.Context, actorID, tripID uuid.UUID, ids []uint) ([]models.ItineraryItem, error) {
	var items []models.ItineraryItem
	var fanOut *FanOut
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trip, err := requireMember(tx, tripID, actorID)
		if err != nil {
			return err
		}
		if err := lockTrip(tx, trip.ID); err != nil {
			return err
		}
		var current []uint
		if err := tx.Model(&models.ItineraryItem{}).Where("trip_id = ?", trip.ID).Pluck("id", &current).Error; err != nil {
			return apperr.Internal("load itinerary ids", err)
		}
		if err := checkReorderIDs(ids, current); err != nil {
			return err
		}

		top, err := maxPosition(tx, trip.ID)
		if err != nil {
			return err
		}
		offset := ReorderOffset
		if top+1 > offset {
			offset = top + 1
		}
		res := tx.Model(&models.ItineraryItem{}).
			Where("trip_id = ?", trip.ID).
			Update("position", gorm.Expr("position + ?", offset))
		if res.Error != nil {
			return reorderError(res.Error)
		}
		// Every shifted row must be moved back in phase 2.
		if res.RowsAffected != int64(len(current)) {
			return errItineraryConflict
		}
		for i, id := range ids {
			res := tx.Model(&models.ItineraryItem{}).
				Where("id = ? AND trip_id = ?", id, trip.ID).
				Update("position", i+1)
			if res.Error != nil {
				return reorderError(res.Error)
			}
			if res.RowsAffected != 1 {
				return errItineraryConflict
			}
		}

		if items, err = listItems(tx, trip.ID); err != nil {
			return err
		}
		fanOut, err = s.notifs.Notify(tx, trip, actorID, models.CategoryItinerary, VerbItineraryUpdated)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifs.Deliver(ctx, fanOut)
	return items, nil
}

func reorderError(err error) error {
	if database.IsUniqueViolation(err) {
		return errItineraryConflict
	}
	return apperr.Internal("reorder itinerary", err)
}
