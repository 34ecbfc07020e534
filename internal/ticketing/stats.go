package ticketing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/valenruiz/puerta/internal/models"
	"gorm.io/gorm"
)

type EventStats struct {
	Event     models.Event `json:"event"`
	Issued    int64        `json:"issued"`
	CheckedIn int64        `json:"checked_in"`
	Pending   int64        `json:"pending"`
}

type DoorStats struct {
	Tonight     int64           `json:"tonight"`
	Total       int64           `json:"total"`
	RecentScans []models.Ticket `json:"recent_scans"`
	ActiveEvent *EventStats     `json:"active_event,omitempty"`
}

// EventStats counts the event's tickets by lifecycle stage.
func (s *Service) EventStats(eventID uuid.UUID) (*EventStats, error) {
	event, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	return s.statsFor(event)
}

func (s *Service) statsFor(event *models.Event) (*EventStats, error) {
	stats := &EventStats{Event: *event}

	if err := s.db.Model(&models.Ticket{}).
		Where("event_id = ?", event.ID).
		Count(&stats.Issued).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Ticket{}).
		Where("event_id = ? AND status = ?", event.ID, models.TicketCheckedIn).
		Count(&stats.CheckedIn).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Ticket{}).
		Where("event_id = ? AND status IN ?", event.ID, []string{models.TicketIssued, models.TicketSent}).
		Count(&stats.Pending).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// DoorStats summarises a door-staff member's scanning activity: counts
// for tonight and all time, the latest scans, and the next active
// event's fill level.
func (s *Service) DoorStats(staffID uuid.UUID) (*DoorStats, error) {
	todayStart := time.Now().UTC().Truncate(24 * time.Hour)

	stats := &DoorStats{}
	if err := s.db.Model(&models.Ticket{}).
		Where("checked_in_by = ? AND checked_in_at >= ?", staffID, todayStart).
		Count(&stats.Tonight).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Ticket{}).
		Where("checked_in_by = ?", staffID).
		Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("Event").
		Where("checked_in_by = ? AND checked_in_at >= ?", staffID, todayStart).
		Order("checked_in_at DESC").
		Limit(10).
		Find(&stats.RecentScans).Error; err != nil {
		return nil, err
	}

	var next models.Event
	err := s.db.Where("active = ? AND date >= ?", true, todayStart).
		Order("date ASC").
		First(&next).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		eventStats, err := s.statsFor(&next)
		if err != nil {
			return nil, err
		}
		stats.ActiveEvent = eventStats
	}
	return stats, nil
}

// ScanHistory pages through a staff member's successful check-ins,
// newest first, optionally narrowed to one event.
func (s *Service) ScanHistory(staffID uuid.UUID, eventID *uuid.UUID, page, limit int) ([]models.Ticket, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	query := s.db.Model(&models.Ticket{}).
		Where("checked_in_by = ? AND status = ?", staffID, models.TicketCheckedIn)
	if eventID != nil {
		query = query.Where("event_id = ?", *eventID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tickets []models.Ticket
	err := query.Preload("Event").
		Order("checked_in_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tickets).Error
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}
