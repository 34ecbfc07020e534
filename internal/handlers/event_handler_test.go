package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/valenruiz/puerta/internal/middleware"
	"github.com/valenruiz/puerta/internal/models"
	"github.com/valenruiz/puerta/internal/ticketing"
)

func eventTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *ticketing.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Event{}, &models.Assignment{}, &models.Ticket{}))

	svc := ticketing.New(db, ticketing.Policy{}, nil)

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.TicketingMiddleware(svc))
	r.PUT("/v1/events/:id", UpdateEvent)
	return r, db, svc
}

// An event edit that overlaps a ticket issuance must not write back the
// admission counter it read before the issuance landed. Here the
// event's only slot is taken right after the handler loads the row, and
// the edit still has to leave the counter, and the capacity guard,
// intact.
func TestUpdateEvent_KeepsAdmissionCounter(t *testing.T) {
	r, db, svc := eventTestRouter(t)

	promoter := models.User{Name: "juan", Email: "juan@test.local", Password: "x", Role: models.RolePromoter, Active: true}
	require.NoError(t, db.Create(&promoter).Error)
	event := models.Event{
		Name:        "Saturday Night",
		Date:        time.Now().UTC().Add(48 * time.Hour),
		OpeningTime: "23:30",
		Category:    models.EventNormal,
		Capacity:    1,
		Active:      true,
	}
	require.NoError(t, db.Create(&event).Error)
	require.NoError(t, db.Create(&models.Assignment{
		EventID:    event.ID,
		PromoterID: promoter.ID,
		Rate:       decimal.RequireFromString("10.00"),
	}).Error)

	issued := false
	var issueErr error
	err := db.Callback().Query().After("gorm:query").Register("issue_between_read_and_write", func(tx *gorm.DB) {
		if issued || tx.Statement.Table != "events" {
			return
		}
		issued = true
		_, issueErr = svc.IssueTicket(ticketing.IssueInput{
			EventID:    event.ID,
			PromoterID: promoter.ID,
			GuestName:  "lucas",
			GuestDocID: "40123456",
		})
	})
	require.NoError(t, err)

	body, err := json.Marshal(gin.H{
		"name":         "Saturday Night",
		"date":         event.Date.Format(time.RFC3339),
		"opening_time": "23:00",
		"capacity":     1,
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/v1/events/"+event.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, issued)
	require.NoError(t, issueErr)

	var stored models.Event
	require.NoError(t, db.Where("id = ?", event.ID).First(&stored).Error)
	assert.Equal(t, 1, stored.TicketsIssued)
	assert.Equal(t, "23:00", stored.OpeningTime)

	_, err = svc.IssueTicket(ticketing.IssueInput{
		EventID:    event.ID,
		PromoterID: promoter.ID,
		GuestName:  "sofia",
		GuestDocID: "40987654",
	})
	assert.ErrorIs(t, err, ticketing.ErrEventFull)

	var count int64
	require.NoError(t, db.Model(&models.Ticket{}).Where("event_id = ?", event.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
