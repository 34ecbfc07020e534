package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/valenruiz/puerta/internal/ticketing"
	"gorm.io/gorm"
)

func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	}
}

func TicketingMiddleware(service *ticketing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("ticketing", service)
		c.Next()
	}
}
