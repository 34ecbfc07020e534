package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/valenruiz/puerta/config"
	"github.com/valenruiz/puerta/internal/handlers"
	"github.com/valenruiz/puerta/internal/mailer"
	"github.com/valenruiz/puerta/internal/middleware"
	"github.com/valenruiz/puerta/internal/models"
	"github.com/valenruiz/puerta/internal/ticketing"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	smtpCfg, err := config.LoadSMTPConfig()
	if err != nil {
		return fmt.Errorf("failed to load smtp config: %v", err)
	}

	service := ticketing.New(db,
		ticketing.Policy{AllowUnassignedIssue: cfg.AllowUnassignedIssue},
		mailer.NewSMTPSender(smtpCfg),
	)

	r := gin.Default()

	setupRoutes(r, db, service)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, service *ticketing.Service) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.TicketingMiddleware(service))

	public := r.Group("/v1")
	{
		public.POST("/login", handlers.Login)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.POST("/change-password", handlers.ChangePassword)

		events := protected.Group("/events")
		{
			events.GET("", handlers.ListEvents)
			events.GET("/:id", handlers.GetEvent)
		}

		tickets := protected.Group("/tickets")
		{
			tickets.GET("", handlers.ListTickets)
			tickets.POST("", handlers.IssueTicket)
			tickets.GET("/:id", handlers.GetTicket)
			tickets.GET("/:id/qr", handlers.TicketQR)
			tickets.POST("/:id/send", handlers.SendTicket)
		}

		protected.POST("/scan", middleware.RequireRole(models.RoleAdmin, models.RoleDoor), handlers.Scan)

		door := protected.Group("/door")
		door.Use(middleware.RequireRole(models.RoleAdmin, models.RoleDoor))
		{
			door.GET("/stats", handlers.DoorStats)
			door.GET("/history", handlers.DoorHistory)
		}

		admin := protected.Group("")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/events", handlers.CreateEvent)
			admin.PUT("/events/:id", handlers.UpdateEvent)
			admin.DELETE("/events/:id", handlers.DeleteEvent)
			admin.GET("/events/:id/settlement", handlers.GetSettlement)

			admin.POST("/tickets/:id/invalidate", handlers.InvalidateTicket)

			admin.POST("/users", handlers.CreateUser)
			admin.GET("/users", handlers.ListUsers)
			admin.PUT("/users/:id", handlers.UpdateUser)
			admin.GET("/users/promoters", handlers.ListPromoters)
		}
	}
}
