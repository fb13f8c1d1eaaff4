package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ActorPayload identifies the platform user behind an inbound action.
type ActorPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Staff bool   `json:"staff"`
}

// ActionRequest is one inbound platform interaction: a component id plus the
// channel it fired on and, for select menus, the chosen value.
type ActionRequest struct {
	Actor       ActorPayload `json:"actor"`
	ChannelID   string       `json:"channel_id"`
	ComponentID string       `json:"component_id"`
	Value       string       `json:"value"`
}

// MessageRequest is one channel message offered for ticket logging.
type MessageRequest struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	AuthorID    string    `json:"author_id"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Attachments []string  `json:"attachments"`
}

// TicketSummary response.
type TicketSummary struct {
	ID        int                 `json:"id"`
	ChannelID string              `json:"channel_id"`
	UserID    string              `json:"user_id"`
	Username  string              `json:"username"`
	Category  domain.Category     `json:"category"`
	Status    domain.TicketStatus `json:"status"`
	ClaimedBy *string             `json:"claimed_by,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	ClosedAt  *time.Time          `json:"closed_at,omitempty"`
}

// TicketDetail response.
type TicketDetail struct {
	TicketSummary
	ClosedBy     *string `json:"closed_by,omitempty"`
	ClaimedAt    *string `json:"claimed_at,omitempty"`
	MessageCount int     `json:"message_count"`
}

// UserTicketsResponse response.
type UserTicketsResponse struct {
	Open   []TicketSummary `json:"open"`
	Closed int             `json:"closed"`
	Total  int             `json:"total"`
}

// RatingResponse response.
type RatingResponse struct {
	TicketID  int        `json:"ticket_id"`
	Username  string     `json:"username"`
	Value     int        `json:"value"`
	Stars     string     `json:"stars"`
	StaffName *string    `json:"staff_name,omitempty"`
	Editable  bool       `json:"editable"`
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}

// StaffAverageResponse response.
type StaffAverageResponse struct {
	StaffID   string  `json:"staff_id"`
	StaffName string  `json:"staff_name"`
	Average   float64 `json:"average"`
	Count     int     `json:"count"`
}

// StatsResponse response.
type StatsResponse struct {
	TotalTickets  int                    `json:"total_tickets"`
	OpenTickets   int                    `json:"open_tickets"`
	ClosedTickets int                    `json:"closed_tickets"`
	ByCategory    map[string]int         `json:"by_category"`
	AverageRating string                 `json:"average_rating"`
	StaffAverages []StaffAverageResponse `json:"staff_averages"`
}
