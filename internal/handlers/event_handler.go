package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/valenruiz/puerta/internal/helpers"
	"github.com/valenruiz/puerta/internal/models"
	"github.com/valenruiz/puerta/internal/ticketing"
)

type EventRequest struct {
	Name        string `json:"name" binding:"required"`
	Date        string `json:"date" binding:"required"`
	OpeningTime string `json:"opening_time" binding:"required"`
	Category    string `json:"category" binding:"omitempty,oneof=normal special"`
	Capacity    int    `json:"capacity" binding:"required,gt=0"`
}

type EventUpdateRequest struct {
	Name        string            `json:"name" binding:"required"`
	Date        string            `json:"date" binding:"required"`
	OpeningTime string            `json:"opening_time" binding:"required"`
	Category    string            `json:"category" binding:"omitempty,oneof=normal special"`
	Capacity    int               `json:"capacity" binding:"required,gt=0"`
	Active      *bool             `json:"active"`
	Assignments []AssignmentInput `json:"assignments"`
}

type AssignmentInput struct {
	PromoterID uuid.UUID       `json:"promoter_id" binding:"required"`
	Rate       decimal.Decimal `json:"rate"`
}

func CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid date format.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	category := req.Category
	if category == "" {
		category = models.EventNormal
	}

	event := models.Event{
		Name:        req.Name,
		Date:        date,
		OpeningTime: req.OpeningTime,
		Category:    category,
		Capacity:    req.Capacity,
		Active:      true,
	}

	if err := gormDB.Create(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create event.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Event created successfully.",
		"event_id": event.ID,
	})
}

func ListEvents(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	query := gormDB.Model(&models.Event{})
	if c.Query("all") != "true" {
		query = query.Where("active = ?", true)
	}

	var events []models.Event
	if err := query.Order("date DESC").Find(&events).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func GetEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	service, exists := c.Get("ticketing")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}
	svc := service.(*ticketing.Service)

	stats, err := svc.EventStats(eventID)
	if err != nil {
		if errors.Is(err, ticketing.ErrEventNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	assignments, err := svc.Assignments(eventID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving assignments.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event":       stats.Event,
		"issued":      stats.Issued,
		"checked_in":  stats.CheckedIn,
		"pending":     stats.Pending,
		"assignments": assignments,
	})
}

func UpdateEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	var req EventUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid date format.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.Where("id = ?", eventID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding event.")
		return
	}

	updates := map[string]interface{}{
		"name":         req.Name,
		"date":         date,
		"opening_time": req.OpeningTime,
		"capacity":     req.Capacity,
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	// tickets_issued belongs to the admission path: writing the whole
	// row back would overwrite the counter with the value read above
	// and erase any issuance that committed in between.
	if err := gormDB.Model(&event).Updates(updates).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event.")
		return
	}

	if err := gormDB.Where("id = ?", eventID).First(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error reloading event.")
		return
	}

	if req.Assignments != nil {
		service, exists := c.Get("ticketing")
		if !exists {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
			return
		}
		svc := service.(*ticketing.Service)

		inputs := make([]ticketing.AssignmentInput, 0, len(req.Assignments))
		for _, a := range req.Assignments {
			inputs = append(inputs, ticketing.AssignmentInput{
				PromoterID: a.PromoterID,
				Rate:       a.Rate,
			})
		}
		if err := svc.ReplaceAssignments(eventID, inputs); err != nil {
			if errors.Is(err, ticketing.ErrInvalidInput) {
				helpers.RespondWithError(c, http.StatusBadRequest, "Assignment rates must not be negative.")
				return
			}
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating assignments.")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully.",
		"event":   event,
	})
}

// DeleteEvent deactivates the event; tickets and history stay.
func DeleteEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	service, exists := c.Get("ticketing")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}
	svc := service.(*ticketing.Service)

	if err := svc.Deactivate(eventID); err != nil {
		if errors.Is(err, ticketing.ErrEventNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to deactivate event.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deactivated."})
}

func GetSettlement(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	service, exists := c.Get("ticketing")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}
	svc := service.(*ticketing.Service)

	settlement, err := svc.Settle(eventID)
	if err != nil {
		if errors.Is(err, ticketing.ErrEventNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error computing settlement.")
		return
	}

	c.JSON(http.StatusOK, settlement)
}
