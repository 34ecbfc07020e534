package ticketing

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valenruiz/puerta/internal/models"
	"gorm.io/gorm"
)

type IssueInput struct {
	EventID    uuid.UUID
	PromoterID uuid.UUID
	GuestName  string
	GuestDocID string
	GuestEmail string
}

// IssueTicket creates a ticket for the event if capacity allows. The
// capacity check is a single conditional UPDATE on the event's counter
// inside the insert transaction, so two racing requests for the last
// slot cannot both succeed: the loser's UPDATE matches zero rows.
func (s *Service) IssueTicket(in IssueInput) (*models.Ticket, error) {
	if strings.TrimSpace(in.GuestName) == "" || strings.TrimSpace(in.GuestDocID) == "" {
		return nil, ErrInvalidInput
	}

	if !s.policy.AllowUnassignedIssue {
		var assignment models.Assignment
		err := s.db.Where("event_id = ? AND promoter_id = ?", in.EventID, in.PromoterID).
			First(&assignment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAssigned
		} else if err != nil {
			return nil, err
		}
	}

	var ticket *models.Ticket
	err := s.db.Transaction(func(tx *gorm.DB) error {
		reserve := tx.Model(&models.Event{}).
			Where("id = ? AND active = ? AND tickets_issued < capacity", in.EventID, true).
			UpdateColumn("tickets_issued", gorm.Expr("tickets_issued + 1"))
		if reserve.Error != nil {
			return reserve.Error
		}
		if reserve.RowsAffected == 0 {
			return s.rejectIssue(tx, in.EventID)
		}

		created, err := createWithFreshCode(tx, in)
		if err != nil {
			return err
		}
		ticket = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// rejectIssue re-reads the event to tell the caller why the reservation
// matched nothing.
func (s *Service) rejectIssue(tx *gorm.DB, eventID uuid.UUID) error {
	var event models.Event
	if err := tx.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if !event.Active {
		return ErrEventInactive
	}
	return ErrEventFull
}

// createWithFreshCode inserts the ticket, regenerating the scan code on
// the off chance a random code collides with the unique index.
func createWithFreshCode(tx *gorm.DB, in IssueInput) (*models.Ticket, error) {
	const attempts = 3
	var lastErr error
	for i := 0; i < attempts; i++ {
		code, err := newScanCode()
		if err != nil {
			return nil, err
		}
		ticket := &models.Ticket{
			ScanCode:   code,
			GuestName:  strings.TrimSpace(in.GuestName),
			GuestDocID: strings.TrimSpace(in.GuestDocID),
			GuestEmail: strings.TrimSpace(in.GuestEmail),
			Status:     models.TicketIssued,
			EventID:    in.EventID,
			PromoterID: in.PromoterID,
			IssuedAt:   time.Now().UTC(),
		}
		// Savepoint per attempt: a unique violation must not abort the
		// outer transaction holding the capacity reservation.
		err = tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(ticket).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return ticket, nil
	}
	return nil, lastErr
}
