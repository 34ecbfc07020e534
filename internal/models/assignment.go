package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Assignment links a promoter to an event with the commission paid per
// checked-in ticket. The set of assignments for an event is replaced
// wholesale on edit.
type Assignment struct {
	EventID    uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_event_promoter" json:"event_id"`
	PromoterID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_event_promoter" json:"promoter_id"`
	Rate       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"rate"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Promoter *User `gorm:"foreignKey:PromoterID" json:"promoter,omitempty"`
}
