package transcript

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "ticket-42-transcript.txt", FileName(42))
}

func TestRenderHeader(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	closed := created.Add(2 * time.Hour)
	closerName := "sam"
	claimerName := "sue"

	ticket := &domain.Ticket{
		ID:            7,
		UserID:        "u1",
		Username:      "alice",
		Category:      domain.CategoryBilling,
		CreatedAt:     created,
		Closed:        true,
		ClosedAt:      &closed,
		ClosedByName:  &closerName,
		ClaimedByName: &claimerName,
	}

	text := Render(ticket, nil)
	assert.Contains(t, text, "=== TICKET TRANSCRIPT #7 ===")
	assert.Contains(t, text, "Category: Billing")
	assert.Contains(t, text, "User: alice (u1)")
	assert.Contains(t, text, "Created: 2024-03-01 10:00:00")
	assert.Contains(t, text, "Closed: 2024-03-01 12:00:00")
	assert.Contains(t, text, "Closed by: sam")
	assert.Contains(t, text, "Claimed by: sue")
	assert.Contains(t, text, "=== MESSAGES ===")
}

func TestRenderOmitsAbsentHeaderLines(t *testing.T) {
	ticket := &domain.Ticket{
		ID:        1,
		UserID:    "u1",
		Username:  "alice",
		Category:  domain.CategorySupport,
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	text := Render(ticket, nil)
	assert.NotContains(t, text, "Closed:")
	assert.NotContains(t, text, "Closed by:")
	assert.NotContains(t, text, "Claimed by:")
}

func TestRenderSortsMessagesChronologically(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{ID: 1, UserID: "u1", Username: "alice", Category: domain.CategorySupport, CreatedAt: base}

	messages := []domain.MessageRecord{
		{ID: "m2", Author: "bob", Content: "second", Timestamp: base.Add(2 * time.Minute)},
		{ID: "m1", Author: "alice", Content: "first", Timestamp: base.Add(1 * time.Minute)},
		{ID: "m3", Author: "alice", Content: "", Timestamp: base.Add(3 * time.Minute)},
	}

	text := Render(ticket, messages)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	assert.Equal(t, "[2024-03-01 10:01:00] alice: first", lines[len(lines)-3])
	assert.Equal(t, "[2024-03-01 10:02:00] bob: second", lines[len(lines)-2])
	assert.Equal(t, "[2024-03-01 10:03:00] alice: [No text content]", lines[len(lines)-1])
}
