package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen    TicketStatus = "OPEN"
	TicketStatusClaimed TicketStatus = "CLAIMED"
	TicketStatusClosed  TicketStatus = "CLOSED"
)

// Category enumerates the ticket categories offered on the panel.
type Category string

const (
	CategorySupport Category = "Support"
	CategoryGeneral Category = "General"
	CategoryBilling Category = "Billing"
	CategoryReport  Category = "Report"
)

// ParseCategory maps a panel category key to a Category. Unknown keys fall
// back to Support.
func ParseCategory(key string) Category {
	switch key {
	case "support":
		return CategorySupport
	case "general":
		return CategoryGeneral
	case "billing":
		return CategoryBilling
	case "report":
		return CategoryReport
	default:
		return CategorySupport
	}
}

// MessageRecord captures one message posted on a ticket channel.
type MessageRecord struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	AuthorID    string    `json:"authorId"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Attachments []string  `json:"attachments,omitempty"`
}

// Ticket is the aggregate for support requests. One ticket is bound to
// exactly one conversation channel; tickets are never deleted.
type Ticket struct {
	ID            int             `json:"id"`
	ChannelID     string          `json:"channelId"`
	UserID        string          `json:"userId"`
	Username      string          `json:"username"`
	Category      Category        `json:"category"`
	CreatedAt     time.Time       `json:"createdAt"`
	Closed        bool            `json:"closed"`
	ClosedAt      *time.Time      `json:"closedAt,omitempty"`
	ClosedBy      *string         `json:"closedBy,omitempty"`
	ClosedByName  *string         `json:"closedByName,omitempty"`
	ClaimedBy     *string         `json:"claimedBy,omitempty"`
	ClaimedByName *string         `json:"claimedByName,omitempty"`
	ClaimedAt     *time.Time      `json:"claimedAt,omitempty"`
	Messages      []MessageRecord `json:"messages"`
}

// Status derives the lifecycle state from the persisted fields.
func (t *Ticket) Status() TicketStatus {
	switch {
	case t.Closed:
		return TicketStatusClosed
	case t.ClaimedBy != nil:
		return TicketStatusClaimed
	default:
		return TicketStatusOpen
	}
}

// IsClaimed reports whether a claim is active.
func (t *Ticket) IsClaimed() bool {
	return t.ClaimedBy != nil
}
