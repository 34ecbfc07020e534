package ticketing

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/valenruiz/puerta/internal/models"
	"gorm.io/gorm"
)

type AssignmentInput struct {
	PromoterID uuid.UUID
	Rate       decimal.Decimal
}

// GetEvent loads an event by id.
func (s *Service) GetEvent(eventID uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := s.db.Where("id = ?", eventID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	} else if err != nil {
		return nil, err
	}
	return &event, nil
}

// Assignments returns the event's promoter assignments with the
// promoter records preloaded.
func (s *Service) Assignments(eventID uuid.UUID) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := s.db.Preload("Promoter").
		Where("event_id = ?", eventID).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// ReplaceAssignments swaps the event's whole assignment set in one
// transaction: readers never observe a partial replacement.
func (s *Service) ReplaceAssignments(eventID uuid.UUID, inputs []AssignmentInput) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("id = ?", eventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if err := tx.Where("event_id = ?", eventID).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}

		if len(inputs) == 0 {
			return nil
		}
		assignments := make([]models.Assignment, 0, len(inputs))
		for _, in := range inputs {
			if in.Rate.IsNegative() {
				return ErrInvalidInput
			}
			assignments = append(assignments, models.Assignment{
				EventID:    eventID,
				PromoterID: in.PromoterID,
				Rate:       in.Rate,
			})
		}
		return tx.Create(&assignments).Error
	})
}

// Deactivate soft-deactivates an event. Tickets stay in place; the
// door refuses them while the event is inactive.
func (s *Service) Deactivate(eventID uuid.UUID) error {
	res := s.db.Model(&models.Event{}).
		Where("id = ?", eventID).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}
