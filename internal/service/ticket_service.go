package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/platform"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/transcript"
	"github.com/spec-kit/support-desk/pkg/util"
)

// TicketRepositoryAPI is the repository surface the lifecycle needs.
type TicketRepositoryAPI interface {
	Create(ctx context.Context, userID, username, channelID string, category domain.Category) (*domain.Ticket, error)
	FindByID(ctx context.Context, id int) (*domain.Ticket, error)
	FindByChannel(ctx context.Context, channelID string) (*domain.Ticket, error)
	OpenByOwner(ctx context.Context, userID string) ([]domain.Ticket, error)
	ByOwner(ctx context.Context, userID string) ([]domain.Ticket, error)
	OpenTickets(ctx context.Context) ([]domain.Ticket, error)
	All(ctx context.Context) ([]domain.Ticket, error)
	AppendMessage(ctx context.Context, ticketID int, record domain.MessageRecord) error
	Close(ctx context.Context, ticketID int, actor domain.Actor) (*domain.Ticket, error)
	Claim(ctx context.Context, ticketID int, actor domain.Actor) (*domain.Ticket, error)
	Release(ctx context.Context, ticketID int) (*domain.Ticket, error)
}

var _ TicketRepositoryAPI = (*repository.TicketRepository)(nil)

// TicketService drives the ticket lifecycle: Open, optionally Claimed, then
// Closed via a two-step confirmation. Guards run against repository state;
// side effects go out as domain events.
type TicketService struct {
	tickets    TicketRepositoryAPI
	platform   platform.Platform
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.TicketsConfig
	features   config.FeatureConfig

	mu           sync.Mutex
	pendingClose map[string]string // channel id -> requesting actor id
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo TicketRepositoryAPI
	Platform   platform.Platform
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Tickets    config.TicketsConfig
	Features   config.FeatureConfig
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:      deps.TicketRepo,
		platform:     deps.Platform,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		cfg:          deps.Tickets,
		features:     deps.Features,
		pendingClose: make(map[string]string),
	}
}

// Open creates a conversation surface and the ticket bound to it. The
// repository enforces the per-owner open-ticket cap; it is pre-checked here
// to avoid creating a channel that immediately has to be abandoned.
func (s *TicketService) Open(ctx context.Context, actor domain.Actor, category domain.Category) (*domain.Ticket, error) {
	open, err := s.tickets.OpenByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(open) >= s.cfg.MaxPerUser {
		return nil, util.NewLimitExceeded(len(open), s.cfg.MaxPerUser)
	}

	channelID, err := s.platform.CreateConversationSurface(ctx, s.cfg.CategoryID, platform.VisibilityRules{
		OwnerID:       actor.ID,
		SupportRoleID: s.cfg.SupportRoleID,
		AdminRoleID:   s.cfg.AdminRoleID,
	})
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	ticket, err := s.tickets.Create(ctx, actor.ID, actor.Name, channelID, category)
	if err != nil {
		// The surface exists but the ticket does not; the channel is
		// orphaned and left to the platform's cleanup tooling.
		s.logger.Warn("ticket create failed after surface creation",
			zap.String("channel_id", channelID), zap.Error(err))
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketOpened,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload:  events.TicketOpenedPayload{Ticket: *ticket},
	})
	return ticket, nil
}

// Claim assigns the ticket bound to the channel to a staff actor. First
// claim wins.
func (s *TicketService) Claim(ctx context.Context, channelID string, actor domain.Actor) (*domain.Ticket, error) {
	if !actor.Staff {
		return nil, util.NewForbidden("claiming requires the support role or management permission")
	}
	ticket, err := s.tickets.FindByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	claimed, err := s.tickets.Claim(ctx, ticket.ID, actor)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketClaimed,
		TicketID: claimed.ID,
		Actor:    actor,
		Payload:  events.TicketClaimedPayload{Ticket: *claimed},
	})
	return claimed, nil
}

// Release clears the active claim on the channel's ticket. No ownership
// check: any actor who can press the button may release.
func (s *TicketService) Release(ctx context.Context, channelID string, actor domain.Actor) (*domain.Ticket, error) {
	ticket, err := s.tickets.FindByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	released, err := s.tickets.Release(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketReleased,
		TicketID: released.ID,
		Actor:    actor,
		Payload:  events.TicketReleasedPayload{Ticket: *released},
	})
	return released, nil
}

// RequestClose validates the channel's ticket and records a pending close
// confirmation in memory. Nothing is persisted until ConfirmClose.
func (s *TicketService) RequestClose(ctx context.Context, channelID string, actor domain.Actor) (*domain.Ticket, error) {
	ticket, err := s.tickets.FindByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ticket.Closed {
		return nil, util.NewAlreadyClosed(ticket.ID)
	}
	s.mu.Lock()
	s.pendingClose[channelID] = actor.ID
	s.mu.Unlock()
	return ticket, nil
}

// ConfirmClose completes a previously requested close: it stamps the closer,
// persists the terminal state and emits the closed event that drives
// transcript capture, the rating prompt and audit logging.
func (s *TicketService) ConfirmClose(ctx context.Context, channelID string, actor domain.Actor) (*domain.Ticket, error) {
	s.mu.Lock()
	_, pending := s.pendingClose[channelID]
	delete(s.pendingClose, channelID)
	s.mu.Unlock()
	if !pending {
		return nil, util.NewValidationError("no close confirmation pending for this channel", nil)
	}

	ticket, err := s.tickets.FindByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	closed, err := s.tickets.Close(ctx, ticket.ID, actor)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: closed.ID,
		Actor:    actor,
		Payload:  events.TicketClosedPayload{Ticket: *closed},
	})
	return closed, nil
}

// CancelClose drops a pending close confirmation. Always a no-op on
// persisted state.
func (s *TicketService) CancelClose(channelID string) {
	s.mu.Lock()
	delete(s.pendingClose, channelID)
	s.mu.Unlock()
}

// LogMessage appends an inbound channel message to its open ticket when
// message logging is enabled. Messages on closed or unknown channels are
// dropped silently.
func (s *TicketService) LogMessage(ctx context.Context, channelID string, record domain.MessageRecord) error {
	if !s.features.LogAllMessages {
		return nil
	}
	ticket, err := s.tickets.FindByChannel(ctx, channelID)
	if err != nil {
		if util.HasCode(err, util.CodeNotFound) {
			return nil
		}
		return err
	}
	if ticket.Closed {
		return nil
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	if err := s.tickets.AppendMessage(ctx, ticket.ID, record); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketMessageLogged,
		TicketID: ticket.ID,
		Actor:    domain.Actor{ID: record.AuthorID, Name: record.Author},
		Payload:  events.TicketMessageLoggedPayload{Ticket: *ticket, Message: record},
	})
	return nil
}

// OpenTickets lists all open tickets.
func (s *TicketService) OpenTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.OpenTickets(ctx)
}

// TicketByID returns one ticket.
func (s *TicketService) TicketByID(ctx context.Context, id int) (*domain.Ticket, error) {
	return s.tickets.FindByID(ctx, id)
}

// UserTicketInfo summarizes one owner's tickets.
type UserTicketInfo struct {
	Open   []domain.Ticket
	Closed int
	Total  int
}

// TicketsForUser returns the owner's open tickets plus counts.
func (s *TicketService) TicketsForUser(ctx context.Context, userID string) (*UserTicketInfo, error) {
	all, err := s.tickets.ByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := &UserTicketInfo{Total: len(all)}
	for _, t := range all {
		if t.Closed {
			info.Closed++
		} else {
			info.Open = append(info.Open, t)
		}
	}
	return info, nil
}

// Transcript renders the ticket's conversation. Channel history is
// preferred; the messages persisted on the ticket are the fallback when the
// platform has none.
func (s *TicketService) Transcript(ctx context.Context, ticket *domain.Ticket) string {
	msgs, err := s.platform.FetchRecentMessages(ctx, ticket.ChannelID, 100)
	if err != nil {
		s.logger.Warn("channel history fetch failed, using stored messages",
			zap.Int("ticket_id", ticket.ID), zap.Error(err))
		msgs = nil
	}
	if len(msgs) == 0 {
		msgs = ticket.Messages
	}
	return transcript.Render(ticket, msgs)
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
