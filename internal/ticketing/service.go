// Package ticketing is the admission engine: it issues tickets against
// event capacity, runs the door-side check-in and computes promoter
// settlements. All state transitions go through conditional writes so
// concurrent requests can never over-issue an event or check a ticket
// in twice.
package ticketing

import (
	"github.com/valenruiz/puerta/internal/models"
	"gorm.io/gorm"
)

// Policy holds the behaviour knobs read from configuration.
type Policy struct {
	// AllowUnassignedIssue lets promoters without an assignment issue
	// tickets for an event. Such tickets earn nothing: settlement only
	// pays current assignments.
	AllowUnassignedIssue bool
}

// Sender delivers a ticket's scan code to the guest. The engine never
// formats or transmits messages itself.
type Sender interface {
	SendTicket(ticket *models.Ticket) error
}

type Service struct {
	db     *gorm.DB
	policy Policy
	sender Sender
}

func New(db *gorm.DB, policy Policy, sender Sender) *Service {
	return &Service{db: db, policy: policy, sender: sender}
}
