package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened        EventType = "ticket_opened"
	EventTicketClaimed       EventType = "ticket_claimed"
	EventTicketReleased      EventType = "ticket_released"
	EventTicketClosed        EventType = "ticket_closed"
	EventTicketMessageLogged EventType = "ticket_message_logged"
	EventRatingSubmitted     EventType = "rating_submitted"
)

// Event represents a domain event emitted by services. Payloads carry a
// snapshot of the ticket state at emission time so handlers never re-read
// the store.
type Event struct {
	ID        string       `json:"id"`
	Type      EventType    `json:"type"`
	TicketID  int          `json:"ticket_id"`
	Actor     domain.Actor `json:"actor"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   interface{}  `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}

// TicketReleasedPayload payload.
type TicketReleasedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}

// TicketMessageLoggedPayload payload.
type TicketMessageLoggedPayload struct {
	Ticket  domain.Ticket        `json:"ticket"`
	Message domain.MessageRecord `json:"message"`
}

// RatingSubmittedPayload payload.
type RatingSubmittedPayload struct {
	Rating domain.Rating `json:"rating"`
	Edited bool          `json:"edited"`
}
