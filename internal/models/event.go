package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventNormal  = "normal"
	EventSpecial = "special"
)

// TicketsIssued is the admission counter: it is only ever moved by a
// conditional UPDATE guarded by `tickets_issued < capacity`, so the
// row count of tickets for the event can never exceed Capacity.
type Event struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	Date          time.Time      `gorm:"not null" json:"date"`
	OpeningTime   string         `gorm:"not null" json:"opening_time"`
	Category      string         `gorm:"not null;default:'normal'" json:"category"`
	Capacity      int            `gorm:"not null" json:"capacity"`
	TicketsIssued int            `gorm:"not null;default:0" json:"tickets_issued"`
	Active        bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Assignments []Assignment `json:"assignments,omitempty"`
	Tickets     []Ticket     `json:"tickets,omitempty"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}
