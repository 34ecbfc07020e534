package ticketing

import "errors"

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrEventInactive  = errors.New("event is not active")
	ErrEventFull      = errors.New("event capacity reached")
	ErrInvalidInput   = errors.New("missing or invalid fields")
	ErrNotAssigned    = errors.New("promoter is not assigned to this event")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTicketRevoked  = errors.New("ticket was invalidated")
	ErrTicketFinal    = errors.New("ticket is in a terminal state")
)
