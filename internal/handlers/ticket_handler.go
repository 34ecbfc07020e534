package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/valenruiz/puerta/internal/helpers"
	"github.com/valenruiz/puerta/internal/models"
	"github.com/valenruiz/puerta/internal/ticketing"
)

type TicketRequest struct {
	EventID    uuid.UUID `json:"event_id" binding:"required"`
	GuestName  string    `json:"guest_name" binding:"required"`
	GuestDocID string    `json:"guest_doc_id" binding:"required"`
	GuestEmail string    `json:"guest_email" binding:"required,email"`
}

func IssueTicket(c *gin.Context) {
	var req TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
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

	ticket, err := svc.IssueTicket(ticketing.IssueInput{
		EventID:    req.EventID,
		PromoterID: userID.(uuid.UUID),
		GuestName:  req.GuestName,
		GuestDocID: req.GuestDocID,
		GuestEmail: req.GuestEmail,
	})
	if err != nil {
		switch {
		case errors.Is(err, ticketing.ErrEventNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		case errors.Is(err, ticketing.ErrEventInactive):
			helpers.RespondWithError(c, http.StatusUnprocessableEntity, "Event is not active.")
		case errors.Is(err, ticketing.ErrEventFull):
			helpers.RespondWithError(c, http.StatusConflict, "Event capacity reached.")
		case errors.Is(err, ticketing.ErrNotAssigned):
			helpers.RespondWithError(c, http.StatusForbidden, "You are not assigned to this event.")
		case errors.Is(err, ticketing.ErrInvalidInput):
			helpers.RespondWithError(c, http.StatusBadRequest, "Guest name and document ID are required.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to issue ticket.")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Ticket issued successfully.",
		"ticket":  ticket,
	})
}

// ListTickets is role-scoped: promoters only ever see their own.
func ListTickets(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	role, _ := c.Get("role")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	query := gormDB.Model(&models.Ticket{})
	if role == models.RolePromoter {
		query = query.Where("promoter_id = ?", userID)
	}
	if eventID := c.Query("event_id"); eventID != "" {
		query = query.Where("event_id = ?", eventID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var tickets []models.Ticket
	err := query.Preload("Event").Preload("Promoter").
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving tickets.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

func GetTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	service, exists := c.Get("ticketing")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}
	svc := service.(*ticketing.Service)

	ticket, err := svc.GetTicket(ticketID)
	if err != nil {
		if errors.Is(err, ticketing.ErrTicketNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket.")
		return
	}

	if !canSeeTicket(c, ticket) {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to view this ticket.")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// TicketQR renders the ticket's scan code as a PNG.
func TicketQR(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	service, exists := c.Get("ticketing")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}
	svc := service.(*ticketing.Service)

	ticket, err := svc.GetTicket(ticketID)
	if err != nil {
		if errors.Is(err, ticketing.ErrTicketNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket.")
		return
	}

	if !canSeeTicket(c, ticket) {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to view this ticket.")
		return
	}

	qrImage, err := qrcode.Encode(ticket.ScanCode, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

func SendTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	service, exists := c.Get("ticketing")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}
	svc := service.(*ticketing.Service)

	ticket, err := svc.GetTicket(ticketID)
	if err != nil {
		if errors.Is(err, ticketing.ErrTicketNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket.")
		return
	}

	if !canSeeTicket(c, ticket) {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to send this ticket.")
		return
	}

	sent, err := svc.DeliverTicket(ticketID)
	if err != nil {
		if errors.Is(err, ticketing.ErrTicketRevoked) {
			helpers.RespondWithError(c, http.StatusUnprocessableEntity, "Cannot send an invalidated ticket.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to send ticket.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket sent to guest.",
		"ticket":  sent,
	})
}

func InvalidateTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	service, exists := c.Get("ticketing")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Ticketing service not found.")
		return
	}
	svc := service.(*ticketing.Service)

	ticket, err := svc.Invalidate(ticketID)
	if err != nil {
		switch {
		case errors.Is(err, ticketing.ErrTicketNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		case errors.Is(err, ticketing.ErrTicketFinal):
			helpers.RespondWithError(c, http.StatusConflict, "Ticket is already checked in or invalidated.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to invalidate ticket.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket invalidated.",
		"ticket":  ticket,
	})
}

func canSeeTicket(c *gin.Context, ticket *models.Ticket) bool {
	role, _ := c.Get("role")
	if role != models.RolePromoter {
		return true
	}
	userID, exists := c.Get("user_id")
	if !exists {
		return false
	}
	return ticket.PromoterID == userID.(uuid.UUID)
}
