package ticketing

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/valenruiz/puerta/internal/models"
)

type SettlementLine struct {
	PromoterID     uuid.UUID       `json:"promoter_id"`
	PromoterName   string          `json:"promoter_name"`
	PromoterEmail  string          `json:"promoter_email"`
	Rate           decimal.Decimal `json:"rate"`
	CountIssued    int64           `json:"count_issued"`
	CountCheckedIn int64           `json:"count_checked_in"`
	AmountDue      decimal.Decimal `json:"amount_due"`
}

type Settlement struct {
	EventID        uuid.UUID        `json:"event_id"`
	EventName      string           `json:"event_name"`
	EventDate      time.Time        `json:"event_date"`
	Lines          []SettlementLine `json:"lines"`
	TotalCheckedIn int64            `json:"total_checked_in"`
	TotalDue       decimal.Decimal  `json:"total_due"`
}

// Settle computes the payout owed to each assigned promoter: checked-in
// count times the assignment rate. Promoters with no tickets still get
// a zero line. Tickets from promoters no longer assigned are not paid;
// settlement reflects current assignments only.
func (s *Service) Settle(eventID uuid.UUID) (*Settlement, error) {
	event, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.Assignments(eventID)
	if err != nil {
		return nil, err
	}

	type tally struct {
		PromoterID uuid.UUID
		Total      int64
		CheckedIn  int64
	}
	var tallies []tally
	err = s.db.Model(&models.Ticket{}).
		Select("promoter_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS checked_in", models.TicketCheckedIn).
		Where("event_id = ?", eventID).
		Group("promoter_id").
		Scan(&tallies).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]tally, len(tallies))
	for _, t := range tallies {
		counts[t.PromoterID] = t
	}

	settlement := &Settlement{
		EventID:   event.ID,
		EventName: event.Name,
		EventDate: event.Date,
		Lines:     make([]SettlementLine, 0, len(assignments)),
		TotalDue:  decimal.Zero,
	}
	for _, a := range assignments {
		line := SettlementLine{
			PromoterID: a.PromoterID,
			Rate:       a.Rate,
		}
		if a.Promoter != nil {
			line.PromoterName = a.Promoter.Name
			line.PromoterEmail = a.Promoter.Email
		}
		if t, ok := counts[a.PromoterID]; ok {
			line.CountIssued = t.Total
			line.CountCheckedIn = t.CheckedIn
		}
		line.AmountDue = a.Rate.Mul(decimal.NewFromInt(line.CountCheckedIn))
		settlement.Lines = append(settlement.Lines, line)
		settlement.TotalCheckedIn += line.CountCheckedIn
		settlement.TotalDue = settlement.TotalDue.Add(line.AmountDue)
	}

	sort.Slice(settlement.Lines, func(i, j int) bool {
		if settlement.Lines[i].PromoterName != settlement.Lines[j].PromoterName {
			return settlement.Lines[i].PromoterName < settlement.Lines[j].PromoterName
		}
		return settlement.Lines[i].PromoterID.String() < settlement.Lines[j].PromoterID.String()
	})
	return settlement, nil
}
