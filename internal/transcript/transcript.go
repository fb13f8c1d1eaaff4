// Package transcript renders the textual export of a ticket's conversation.
package transcript

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// FileName returns the attachment name for a ticket's transcript.
func FileName(ticketID int) string {
	return fmt.Sprintf("ticket-%d-transcript.txt", ticketID)
}

// Render produces the transcript text: a header block describing the ticket
// followed by one line per message in chronological order.
func Render(ticket *domain.Ticket, messages []domain.MessageRecord) string {
	sorted := make([]domain.MessageRecord, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "=== TICKET TRANSCRIPT #%d ===\n", ticket.ID)
	fmt.Fprintf(&b, "Category: %s\n", ticket.Category)
	fmt.Fprintf(&b, "User: %s (%s)\n", ticket.Username, ticket.UserID)
	fmt.Fprintf(&b, "Created: %s\n", ticket.CreatedAt.Format(timeLayout))
	if ticket.ClosedAt != nil {
		fmt.Fprintf(&b, "Closed: %s\n", ticket.ClosedAt.Format(timeLayout))
	}
	if ticket.ClosedByName != nil {
		fmt.Fprintf(&b, "Closed by: %s\n", *ticket.ClosedByName)
	}
	if ticket.ClaimedByName != nil {
		fmt.Fprintf(&b, "Claimed by: %s\n", *ticket.ClaimedByName)
	}
	b.WriteString("\n=== MESSAGES ===\n\n")

	for _, msg := range sorted {
		content := msg.Content
		if content == "" {
			content = "[No text content]"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", msg.Timestamp.Format(timeLayout), msg.Author, content)
	}
	return b.String()
}
