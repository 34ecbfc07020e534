package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TicketIssued      = "issued"
	TicketSent        = "sent"
	TicketCheckedIn   = "checked_in"
	TicketInvalidated = "invalidated"
)

type Ticket struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ScanCode    string     `gorm:"not null;uniqueIndex" json:"scan_code"`
	GuestName   string     `gorm:"not null" json:"guest_name"`
	GuestDocID  string     `gorm:"not null" json:"guest_doc_id"`
	GuestEmail  string     `gorm:"not null" json:"guest_email"`
	Status      string     `gorm:"not null;default:'issued';index" json:"status"`
	EventID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"event_id"`
	PromoterID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"promoter_id"`
	IssuedAt    time.Time  `gorm:"not null" json:"issued_at"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	CheckedInBy *uuid.UUID `gorm:"type:uuid" json:"checked_in_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Event    *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Promoter *User  `gorm:"foreignKey:PromoterID" json:"promoter,omitempty"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}

// Terminal reports whether the ticket can no longer transition.
func (ticket *Ticket) Terminal() bool {
	return ticket.Status == TicketCheckedIn || ticket.Status == TicketInvalidated
}
