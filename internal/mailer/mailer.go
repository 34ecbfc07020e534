package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/valenruiz/puerta/config"
	"github.com/valenruiz/puerta/internal/models"
)

// SMTPSender delivers guest tickets over plain SMTP. It satisfies
// ticketing.Sender; the engine only cares that delivery succeeded.
type SMTPSender struct {
	cfg *config.SMTPConfig
}

func NewSMTPSender(cfg *config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendTicket(ticket *models.Ticket) error {
	if s.cfg.Host == "" {
		return fmt.Errorf("smtp not configured")
	}

	eventName := ""
	openingTime := ""
	if ticket.Event != nil {
		eventName = ticket.Event.Name
		openingTime = ticket.Event.OpeningTime
	}

	var body strings.Builder
	body.WriteString(fmt.Sprintf("From: %s\r\n", s.cfg.From))
	body.WriteString(fmt.Sprintf("To: %s\r\n", ticket.GuestEmail))
	body.WriteString(fmt.Sprintf("Subject: Your ticket for %s\r\n", eventName))
	body.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	body.WriteString(fmt.Sprintf("Hi %s,\r\n\r\n", ticket.GuestName))
	body.WriteString(fmt.Sprintf("Here is your admission code for %s (doors %s):\r\n\r\n", eventName, openingTime))
	body.WriteString(fmt.Sprintf("    %s\r\n\r\n", ticket.ScanCode))
	body.WriteString("Show this code at the door. See you there!\r\n")

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return smtp.SendMail(addr, auth, s.cfg.From, []string{ticket.GuestEmail}, []byte(body.String()))
}
