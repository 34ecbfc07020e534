package ticketing

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valenruiz/puerta/internal/models"
)

func TestIssueTicket_Success(t *testing.T) {
	svc, db := newTestService(t, Policy{}, nil)
	promoter := createUser(t, db, "juan", models.RolePromoter)
	event := createEvent(t, db, 10, true)
	assign(t, db, event, promoter, "10.00")

	ticket := mustIssue(t, svc, event, promoter, "lucas")

	assert.Equal(t, models.TicketIssued, ticket.Status)
	assert.Equal(t, event.ID, ticket.EventID)
	assert.Equal(t, promoter.ID, ticket.PromoterID)
	assert.Len(t, ticket.ScanCode, 32)
	assert.False(t, ticket.IssuedAt.IsZero())
	assert.Nil(t, ticket.CheckedInAt)
	assert.Nil(t, ticket.CheckedInBy)

	var stored models.Event
	require.NoError(t, db.First(&stored, "id = ?", event.ID).Error)
	assert.Equal(t, 1, stored.TicketsIssued)
}

func TestIssueTicket_UniqueScanCodes(t *testing.T) {
	svc, db := newTestService(t, Policy{}, nil)
	promoter := createUser(t, db, "juan", models.RolePromoter)
	event := createEvent(t, db, 10, true)
	assign(t, db, event, promoter, "10.00")

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		ticket := mustIssue(t, svc, event, promoter, "guest")
		assert.False(t, seen[ticket.ScanCode])
		seen[ticket.ScanCode] = true
	}
}

func TestIssueTicket_RejectsMissingGuestFields(t *testing.T) {
	svc, db := newTestService(t, Policy{}, nil)
	promoter := createUser(t, db, "juan", models.RolePromoter)
	event := createEvent(t, db, 10, true)
	assign(t, db, event, promoter, "10.00")

	_, err := svc.IssueTicket(IssueInput{
		EventID:    event.ID,
		PromoterID: promoter.ID,
		GuestName:  "  ",
		GuestDocID: "40123456",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.IssueTicket(IssueInput{
		EventID:    event.ID,
		PromoterID: promoter.ID,
		GuestName:  "lucas",
		GuestDocID: "",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIssueTicket_EventNotFound(t *testing.T) {
	svc, db := newTestService(t, Policy{AllowUnassignedIssue: true}, nil)
	promoter := createUser(t, db, "juan", models.RolePromoter)

	_, err := svc.IssueTicket(IssueInput{
		EventID:    uuid.New(),
		PromoterID: promoter.ID,
		GuestName:  "lucas",
		GuestDocID: "40123456",
	})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestIssueTicket_EventInactive(t *testing.T) {
	svc, db := newTestService(t, Policy{}, nil)
	promoter := createUser(t, db, "juan", models.RolePromoter)
	event := createEvent(t, db, 10, false)
	assign(t, db, event, promoter, "10.00")

	_, err := svc.IssueTicket(IssueInput{
		EventID:    event.ID,
		PromoterID: promoter.ID,
		GuestName:  "lucas",
		GuestDocID: "40123456",
	})
	assert.ErrorIs(t, err, ErrEventInactive)
}

func TestIssueTicket_EventFull(t *testing.T) {
	svc, db := newTestService(t, Policy{}, nil)
	promoter := createUser(t, db, "juan", models.RolePromoter)
	event := createEvent(t, db, 1, true)
	assign(t, db, event, promoter, "10.00")

	mustIssue(t, svc, event, promoter, "lucas")

	_, err := svc.IssueTicket(IssueInput{
		EventID:    event.ID,
		PromoterID: promoter.ID,
		GuestName:  "sofia",
		GuestDocID: "41234567",
	})
	assert.ErrorIs(t, err, ErrEventFull)
}

func TestIssueTicket_UnassignedPromoterPolicy(t *testing.T) {
	svc, db := newTestService(t, Policy{}, nil)
	promoter := createUser(t, db, "juan", models.RolePromoter)
	event := createEvent(t, db, 10, true)

	_, err := svc.IssueTicket(IssueInput{
		EventID:    event.ID,
		PromoterID: promoter.ID,
		GuestName:  "lucas",
		GuestDocID: "40123456",
	})
	assert.ErrorIs(t, err, ErrNotAssigned)

	open := New(db, Policy{AllowUnassignedIssue: true}, nil)
	ticket, err := open.IssueTicket(IssueInput{
		EventID:    event.ID,
		PromoterID: promoter.ID,
		GuestName:  "lucas",
		GuestDocID: "40123456",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TicketIssued, ticket.Status)
}

// Capacity invariant: for capacity N and 2N concurrent requests,
// exactly N succeed and N are rejected as full.
func TestIssueTicket_CapacityUnderConcurrency(t *testing.T) {
	const capacity = 5

	svc, db := newTestService(t, Policy{}, nil)
	promoter := createUser(t, db, "juan", models.RolePromoter)
	event := createEvent(t, db, capacity, true)
	assign(t, db, event, promoter, "10.00")

	var wg sync.WaitGroup
	results := make(chan error, 2*capacity)
	for i := 0; i < 2*capacity; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.IssueTicket(IssueInput{
				EventID:    event.ID,
				PromoterID: promoter.ID,
				GuestName:  "guest",
				GuestDocID: "40123456",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var issued, full int
	for err := range results {
		switch {
		case err == nil:
			issued++
		case assert.ErrorIs(t, err, ErrEventFull):
			full++
		}
	}
	assert.Equal(t, capacity, issued)
	assert.Equal(t, capacity, full)

	var count int64
	require.NoError(t, db.Model(&models.Ticket{}).Where("event_id = ?", event.ID).Count(&count).Error)
	assert.Equal(t, int64(capacity), count)

	var stored models.Event
	require.NoError(t, db.First(&stored, "id = ?", event.ID).Error)
	assert.Equal(t, capacity, stored.TicketsIssued)
}

// Two racers, one slot: one ticket, one rejection.
func TestIssueTicket_LastSlotRace(t *testing.T) {
	svc, db := newTestService(t, Policy{}, nil)
	promoter := createUser(t, db, "juan", models.RolePromoter)
	event := createEvent(t, db, 1, true)
	assign(t, db, event, promoter, "10.00")

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.IssueTicket(IssueInput{
				EventID:    event.ID,
				PromoterID: promoter.ID,
				GuestName:  "guest",
				GuestDocID: "40123456",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var issued, full int
	for err := range results {
		if err == nil {
			issued++
		} else if assert.ErrorIs(t, err, ErrEventFull) {
			full++
		}
	}
	assert.Equal(t, 1, issued)
	assert.Equal(t, 1, full)
}
