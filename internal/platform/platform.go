// Package platform defines the boundary to the external chat platform. The
// core calls into it for channel creation, message delivery and history; it
// never depends on how a concrete platform renders or routes anything.
package platform

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
)

// Severity maps to the display color of a structured message.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityAccent  Severity = "accent"
)

// Field is one labelled value in a structured message.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Attachment carries a file delivered with a message, e.g. a transcript.
type Attachment struct {
	Name string
	Data []byte
}

// Message is the structured notification the core hands to the platform for
// rendering. The platform decides how to display it.
type Message struct {
	Title       string
	Description string
	Severity    Severity
	Fields      []Field
	Attachment  *Attachment
}

// VisibilityRules describe who can see a newly created conversation surface:
// default visibility is denied, the owner and the configured staff/admin
// roles are granted access.
type VisibilityRules struct {
	OwnerID       string
	SupportRoleID string
	AdminRoleID   string
}

// Platform is the external collaborator the core notifies and queries.
type Platform interface {
	// CreateConversationSurface creates the ticket channel and returns its
	// opaque reference.
	CreateConversationSurface(ctx context.Context, parentCategory string, rules VisibilityRules) (string, error)

	// Notify delivers a structured message to a channel or directly to an
	// actor (DM). Failures are expected to be recoverable; callers degrade
	// gracefully.
	Notify(ctx context.Context, target string, msg Message) error

	// FetchRecentMessages returns up to limit messages from a channel in
	// chronological order, used to build transcripts at close time.
	FetchRecentMessages(ctx context.Context, channelID string, limit int) ([]domain.MessageRecord, error)
}
