package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/valenruiz/puerta/internal/helpers"
	"github.com/valenruiz/puerta/internal/ticketing"
)

type ScanRequest struct {
	Code string `json:"code" binding:"required"`
}

// Scan is the door validation endpoint. already_used is reported with
// 409 and the original check-in so staff can tell a re-scan apart from
// a forged or revoked code.
func Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	service, exists := c.Get("ticketing")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}
	svc := service.(*ticketing.Service)

	result, err := svc.Validate(req.Code, userID.(uuid.UUID))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Scan failed, please retry.")
		return
	}

	switch result.Status {
	case ticketing.StatusValid:
		c.JSON(http.StatusOK, result)
	case ticketing.StatusAlreadyUsed:
		c.JSON(http.StatusConflict, result)
	default:
		if result.Reason == ticketing.ReasonNotFound {
			c.JSON(http.StatusNotFound, result)
			return
		}
		c.JSON(http.StatusUnprocessableEntity, result)
	}
}

func DoorStats(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	service, exists := c.Get("ticketing")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}
	svc := service.(*ticketing.Service)

	stats, err := svc.DoorStats(userID.(uuid.UUID))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving stats.")
		return
	}

	c.JSON(http.StatusOK, stats)
}

func DoorHistory(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	service, exists := c.Get("ticketing")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}
	svc := service.(*ticketing.Service)

	page, err := helpers.StringToInt(c.DefaultQuery("page", "1"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limit, err := helpers.StringToInt(c.DefaultQuery("limit", "20"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	var eventID *uuid.UUID
	if raw := c.Query("event_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
			return
		}
		eventID = &parsed
	}

	tickets, total, err := svc.ScanHistory(userID.(uuid.UUID), eventID, page, limit)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving history.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scans": tickets,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
