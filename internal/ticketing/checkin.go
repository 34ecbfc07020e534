package ticketing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/valenruiz/puerta/internal/models"
	"gorm.io/gorm"
)

type ScanStatus string

const (
	// StatusValid: this scan won the check-in. At most one scan per
	// ticket ever gets it.
	StatusValid ScanStatus = "valid"
	// StatusAlreadyUsed: the ticket was checked in before this scan.
	// Expected and frequent (re-scans, retries); door staff see the
	// original check-in, not an error.
	StatusAlreadyUsed ScanStatus = "already_used"
	// StatusInvalid: the ticket cannot admit anyone (unknown code,
	// revoked, or event no longer active).
	StatusInvalid ScanStatus = "invalid"
)

const (
	ReasonNotFound      = "not found"
	ReasonEventInactive = "event inactive"
	ReasonRevoked       = "revoked"
)

type ScanResult struct {
	Status ScanStatus     `json:"status"`
	Reason string         `json:"reason,omitempty"`
	Ticket *models.Ticket `json:"ticket,omitempty"`
}

// Validate is the door scan. The transition to checked_in is one
// conditional UPDATE guarded on the current status still being
// non-terminal; when concurrent scans race on the same code, exactly
// one UPDATE matches and every loser re-reads and reports the winner's
// check-in as already_used.
func (s *Service) Validate(codeOrID string, staffID uuid.UUID) (*ScanResult, error) {
	ticket, err := s.findByCodeOrID(codeOrID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ScanResult{Status: StatusInvalid, Reason: ReasonNotFound}, nil
	} else if err != nil {
		return nil, err
	}

	if ticket.Event != nil && !ticket.Event.Active {
		return &ScanResult{Status: StatusInvalid, Reason: ReasonEventInactive, Ticket: ticket}, nil
	}

	switch ticket.Status {
	case models.TicketInvalidated:
		return &ScanResult{Status: StatusInvalid, Reason: ReasonRevoked, Ticket: ticket}, nil
	case models.TicketCheckedIn:
		return &ScanResult{Status: StatusAlreadyUsed, Ticket: ticket}, nil
	}

	now := time.Now().UTC()
	admit := s.db.Model(&models.Ticket{}).
		Where("id = ? AND status IN ?", ticket.ID, []string{models.TicketIssued, models.TicketSent}).
		Updates(map[string]interface{}{
			"status":        models.TicketCheckedIn,
			"checked_in_at": now,
			"checked_in_by": staffID,
		})
	if admit.Error != nil {
		return nil, admit.Error
	}

	if admit.RowsAffected == 0 {
		// Lost the race: another scanner or an admin moved the ticket
		// between our read and our write. Report what actually happened.
		current, err := s.findByCodeOrID(ticket.ID.String())
		if err != nil {
			return nil, err
		}
		if current.Status == models.TicketInvalidated {
			return &ScanResult{Status: StatusInvalid, Reason: ReasonRevoked, Ticket: current}, nil
		}
		return &ScanResult{Status: StatusAlreadyUsed, Ticket: current}, nil
	}

	ticket.Status = models.TicketCheckedIn
	ticket.CheckedInAt = &now
	ticket.CheckedInBy = &staffID
	return &ScanResult{Status: StatusValid, Ticket: ticket}, nil
}

func (s *Service) findByCodeOrID(codeOrID string) (*models.Ticket, error) {
	var ticket models.Ticket
	query := s.db.Preload("Event").Preload("Promoter")
	if id, err := uuid.Parse(codeOrID); err == nil {
		query = query.Where("scan_code = ? OR id = ?", codeOrID, id)
	} else {
		query = query.Where("scan_code = ?", codeOrID)
	}
	if err := query.First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}
