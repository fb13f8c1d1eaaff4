package domain

import "time"

// RatingMin and RatingMax bound the accepted satisfaction scores.
const (
	RatingMin = 1
	RatingMax = 5
)

// Rating is a satisfaction score tied to a closed, staff-claimed ticket.
// At most one rating exists per ticket; after the single permitted edit
// Editable flips to false and the rating is frozen.
type Rating struct {
	TicketID  int        `json:"ticketId"`
	UserID    string     `json:"userId"`
	Username  string     `json:"username"`
	Value     int        `json:"rating"`
	StaffID   *string    `json:"claimedBy,omitempty"`
	StaffName *string    `json:"claimedByName,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
	Editable  bool       `json:"editable"`
}

// ValidRatingValue reports whether v is an accepted score.
func ValidRatingValue(v int) bool {
	return v >= RatingMin && v <= RatingMax
}
