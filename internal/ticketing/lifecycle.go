package ticketing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/valenruiz/puerta/internal/models"
	"gorm.io/gorm"
)

// DeliverTicket hands the ticket to the configured sender and, on
// success, moves it issued → sent. Re-delivering an already sent or
// checked-in ticket sends again without touching the state; revoked
// tickets are never delivered. A revocation that lands after the
// status check but before the sender finishes can still get the code
// emailed; the ticket itself stays revoked and the door refuses it.
func (s *Service) DeliverTicket(ticketID uuid.UUID) (*models.Ticket, error) {
	ticket, err := s.GetTicket(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == models.TicketInvalidated {
		return nil, ErrTicketRevoked
	}

	if s.sender != nil {
		if err := s.sender.SendTicket(ticket); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	marked := s.db.Model(&models.Ticket{}).
		Where("id = ? AND status = ?", ticket.ID, models.TicketIssued).
		Updates(map[string]interface{}{
			"status":  models.TicketSent,
			"sent_at": now,
		})
	if marked.Error != nil {
		return nil, marked.Error
	}
	if marked.RowsAffected == 0 {
		// The ticket moved while the sender ran (re-sent, checked in or
		// revoked); report whatever state it ended up in.
		return s.GetTicket(ticket.ID)
	}
	ticket.Status = models.TicketSent
	ticket.SentAt = &now
	return ticket, nil
}

// Invalidate revokes a ticket. Only non-terminal tickets can be
// revoked; the guard rides in the UPDATE itself so a ticket that gets
// checked in concurrently is refused, not silently overwritten.
func (s *Service) Invalidate(ticketID uuid.UUID) (*models.Ticket, error) {
	revoke := s.db.Model(&models.Ticket{}).
		Where("id = ? AND status IN ?", ticketID, []string{models.TicketIssued, models.TicketSent}).
		Update("status", models.TicketInvalidated)
	if revoke.Error != nil {
		return nil, revoke.Error
	}
	if revoke.RowsAffected == 0 {
		if _, err := s.GetTicket(ticketID); err != nil {
			return nil, err
		}
		return nil, ErrTicketFinal
	}
	return s.GetTicket(ticketID)
}

// GetTicket loads a ticket with its event and issuing promoter.
func (s *Service) GetTicket(ticketID uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.Preload("Event").Preload("Promoter").
		Where("id = ?", ticketID).First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	} else if err != nil {
		return nil, err
	}
	return &ticket, nil
}
