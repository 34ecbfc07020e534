package ticketing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/valenruiz/puerta/internal/models"
)

// testDB opens a private in-memory database limited to one connection,
// so concurrent test goroutines serialize at the pool exactly like a
// single-writer store.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.User{}, &models.Event{}, &models.Assignment{}, &models.Ticket{})
	require.NoError(t, err)

	return db
}

func newTestService(t *testing.T, policy Policy, sender Sender) (*Service, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	return New(db, policy, sender), db
}

func createUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    name + "@test.local",
		Password: "x",
		Role:     role,
		Active:   true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createEvent(t *testing.T, db *gorm.DB, capacity int, active bool) models.Event {
	t.Helper()
	event := models.Event{
		Name:        "Saturday Night",
		Date:        time.Now().UTC().Add(48 * time.Hour),
		OpeningTime: "23:30",
		Category:    models.EventNormal,
		Capacity:    capacity,
		Active:      active,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func assign(t *testing.T, db *gorm.DB, event models.Event, promoter models.User, rate string) {
	t.Helper()
	r, err := decimal.NewFromString(rate)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Assignment{
		EventID:    event.ID,
		PromoterID: promoter.ID,
		Rate:       r,
	}).Error)
}

func mustIssue(t *testing.T, svc *Service, event models.Event, promoter models.User, guest string) *models.Ticket {
	t.Helper()
	ticket, err := svc.IssueTicket(IssueInput{
		EventID:    event.ID,
		PromoterID: promoter.ID,
		GuestName:  guest,
		GuestDocID: "40123456",
		GuestEmail: guest + "@guests.local",
	})
	require.NoError(t, err)
	return ticket
}

type fakeSender struct {
	sent []uuid.UUID
	err  error
}

func (f *fakeSender) SendTicket(ticket *models.Ticket) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, ticket.ID)
	return nil
}

var errSMTPDown = errors.New("smtp down")
