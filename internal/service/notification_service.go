package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/platform"
	"github.com/spec-kit/support-desk/internal/transcript"
)

// NotificationService turns domain events into platform notifications: the
// ticket-channel embeds, the audit log channel, transcript delivery and the
// rating prompt. Every delivery failure degrades gracefully.
type NotificationService struct {
	dispatcher events.Dispatcher
	sink       platform.Platform
	tickets    *TicketService
	logger     *zap.Logger
	cfg        config.TicketsConfig
	features   config.FeatureConfig
	audit      config.AuditConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sink platform.Platform, tickets *TicketService, logger *zap.Logger, cfg config.TicketsConfig, features config.FeatureConfig, audit config.AuditConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		sink:       sink,
		tickets:    tickets,
		logger:     logger,
		cfg:        cfg,
		features:   features,
		audit:      audit,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketOpened, n.handleTicketOpened)
	n.dispatcher.Subscribe(events.EventTicketClaimed, n.handleTicketClaimed)
	n.dispatcher.Subscribe(events.EventTicketReleased, n.handleTicketReleased)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
	n.dispatcher.Subscribe(events.EventTicketMessageLogged, n.handleMessageLogged)
	n.dispatcher.Subscribe(events.EventRatingSubmitted, n.handleRatingSubmitted)
}

func (n *NotificationService) handleTicketOpened(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketOpenedPayload)
	if !ok {
		return nil
	}
	ticket := payload.Ticket

	n.notify(ctx, ticket.ChannelID, platform.Message{
		Title:       fmt.Sprintf("Ticket #%d - %s", ticket.ID, ticket.Category),
		Description: fmt.Sprintf("Welcome %s, a staff member will be with you shortly.", ticket.Username),
		Severity:    platform.SeveritySuccess,
		Fields: []platform.Field{
			{Name: "Category", Value: string(ticket.Category), Inline: true},
			{Name: "Created by", Value: ticket.Username, Inline: true},
			{Name: "Status", Value: "Open", Inline: true},
		},
	})

	if n.audit.TicketCreation {
		n.auditLog(ctx, platform.Message{
			Title:    "Ticket Created",
			Severity: platform.SeveritySuccess,
			Fields: []platform.Field{
				{Name: "Ticket", Value: fmt.Sprintf("#%d", ticket.ID), Inline: true},
				{Name: "User", Value: ticket.Username, Inline: true},
				{Name: "Category", Value: string(ticket.Category), Inline: true},
			},
		})
	}
	return nil
}

func (n *NotificationService) handleTicketClaimed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClaimedPayload)
	if !ok {
		return nil
	}
	ticket := payload.Ticket

	n.notify(ctx, ticket.ChannelID, platform.Message{
		Title:       "Ticket Claimed",
		Description: fmt.Sprintf("%s has claimed this ticket.", event.Actor.Name),
		Severity:    platform.SeveritySuccess,
	})

	if n.audit.TicketClaim {
		n.auditLog(ctx, platform.Message{
			Title:    "Ticket Claimed",
			Severity: platform.SeverityInfo,
			Fields: []platform.Field{
				{Name: "Ticket", Value: fmt.Sprintf("#%d", ticket.ID), Inline: true},
				{Name: "Staff", Value: event.Actor.Name, Inline: true},
			},
		})
	}
	return nil
}

func (n *NotificationService) handleTicketReleased(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketReleasedPayload)
	if !ok {
		return nil
	}
	n.notify(ctx, payload.Ticket.ChannelID, platform.Message{
		Title:       "Ticket Released",
		Description: fmt.Sprintf("%s has released this ticket.", event.Actor.Name),
		Severity:    platform.SeverityWarning,
	})
	return nil
}

func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return nil
	}
	ticket := payload.Ticket

	claimant := "Not claimed"
	if ticket.ClaimedByName != nil {
		claimant = *ticket.ClaimedByName
	}
	n.notify(ctx, ticket.ChannelID, platform.Message{
		Title:       "Ticket Closed",
		Description: fmt.Sprintf("This ticket has been closed by %s.", event.Actor.Name),
		Severity:    platform.SeverityError,
		Fields: []platform.Field{
			{Name: "Closed by", Value: event.Actor.Name, Inline: true},
			{Name: "Claimed by", Value: claimant, Inline: true},
		},
	})

	text := n.tickets.Transcript(ctx, &ticket)
	attachment := &platform.Attachment{
		Name: transcript.FileName(ticket.ID),
		Data: []byte(text),
	}

	n.auditLog(ctx, platform.Message{
		Title:    fmt.Sprintf("Ticket #%d Closed", ticket.ID),
		Severity: platform.SeveritySuccess,
		Fields: []platform.Field{
			{Name: "User", Value: ticket.Username, Inline: true},
			{Name: "Category", Value: string(ticket.Category), Inline: true},
			{Name: "Closed by", Value: event.Actor.Name, Inline: true},
		},
		Attachment: attachment,
	})

	if n.audit.TicketClose {
		n.auditLog(ctx, platform.Message{
			Title:    "Ticket Closed",
			Severity: platform.SeverityError,
			Fields: []platform.Field{
				{Name: "Ticket", Value: fmt.Sprintf("#%d", ticket.ID), Inline: true},
				{Name: "User", Value: ticket.Username, Inline: true},
				{Name: "Closed by", Value: event.Actor.Name, Inline: true},
				{Name: "Claimed by", Value: claimant, Inline: true},
			},
		})
	}

	if n.features.TranscriptDM {
		n.notify(ctx, ticket.UserID, platform.Message{
			Title:       fmt.Sprintf("Ticket #%d - Transcript", ticket.ID),
			Description: "Your ticket has been closed. Here is the transcript:",
			Severity:    platform.SeveritySuccess,
			Fields: []platform.Field{
				{Name: "Category", Value: string(ticket.Category), Inline: true},
				{Name: "Closed by", Value: event.Actor.Name, Inline: true},
				{Name: "Staff", Value: claimant, Inline: true},
			},
			Attachment: attachment,
		})
	}

	if n.features.RatingEnabled && ticket.ClaimedBy != nil {
		n.notify(ctx, ticket.UserID, platform.Message{
			Title: "Rate Your Experience",
			Description: fmt.Sprintf(
				"Your ticket #%d has been closed.\n\nPlease rate your experience with the support staff:",
				ticket.ID),
			Severity: platform.SeverityAccent,
		})
	}
	return nil
}

func (n *NotificationService) handleMessageLogged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketMessageLoggedPayload)
	if !ok {
		return nil
	}
	content := truncateContent(payload.Message.Content, maxMirroredContentBytes)
	msg := platform.Message{
		Title:    fmt.Sprintf("Message in Ticket #%d", payload.Ticket.ID),
		Severity: platform.SeverityInfo,
		Fields: []platform.Field{
			{Name: "Author", Value: payload.Message.Author, Inline: true},
			{Name: "Content", Value: content},
		},
	}
	if len(payload.Message.Attachments) > 0 {
		msg.Fields = append(msg.Fields, platform.Field{
			Name:  "Attachments",
			Value: strings.Join(payload.Message.Attachments, "\n"),
		})
	}
	n.auditLog(ctx, msg)
	return nil
}

func (n *NotificationService) handleRatingSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RatingSubmittedPayload)
	if !ok {
		return nil
	}
	if !n.audit.TicketRating {
		return nil
	}
	staff := "N/A"
	if payload.Rating.StaffName != nil {
		staff = *payload.Rating.StaffName
	}
	n.auditLog(ctx, platform.Message{
		Title:    "Rating Submitted",
		Severity: platform.SeverityAccent,
		Fields: []platform.Field{
			{Name: "Ticket", Value: fmt.Sprintf("#%d", payload.Rating.TicketID), Inline: true},
			{Name: "Rating", Value: Stars(payload.Rating.Value), Inline: true},
			{Name: "Staff", Value: staff, Inline: true},
		},
	})
	return nil
}

func (n *NotificationService) auditLog(ctx context.Context, msg platform.Message) {
	if n.cfg.LogChannelID == "" {
		return
	}
	n.notify(ctx, n.cfg.LogChannelID, msg)
}

func (n *NotificationService) notify(ctx context.Context, target string, msg platform.Message) {
	if err := n.sink.Notify(ctx, target, msg); err != nil {
		n.logger.Warn("notification delivery failed",
			zap.String("target", target),
			zap.String("title", msg.Title),
			zap.Error(err))
	}
}

// maxMirroredContentBytes caps mirrored message bodies in audit embeds.
const maxMirroredContentBytes = 1000

// truncateContent shortens s to at most max bytes without splitting a rune.
func truncateContent(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Stars renders a 1-5 score as filled and empty stars.
func Stars(value int) string {
	return strings.Repeat("★", value) + strings.Repeat("☆", domain.RatingMax-value)
}
