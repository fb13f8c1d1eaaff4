package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/store"
	"github.com/spec-kit/support-desk/pkg/util"
)

// TicketRepository encapsulates ticket persistence. Every mutation is a
// read-whole-document, mutate, write-whole-document cycle: a mutex
// serializes in-process writers and the store's version token catches any
// writer the mutex cannot see, so racing claim/close on one ticket resolve
// first-wins with the loser failing its guard against fresh state.
type TicketRepository struct {
	store      store.Store
	logger     *zap.Logger
	maxPerUser int

	mu sync.Mutex
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(st store.Store, logger *zap.Logger, maxPerUser int) *TicketRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketRepository{store: st, logger: logger, maxPerUser: maxPerUser}
}

func emptyTicketsDocument() *ticketsDocument {
	return &ticketsDocument{Tickets: []domain.Ticket{}, Counter: 0}
}

func (r *TicketRepository) load(ctx context.Context) (*ticketsDocument, int64, error) {
	return loadDocument(ctx, r.store, store.CollectionTickets, r.logger, emptyTicketsDocument)
}

// update runs mutate against a fresh document and persists the result. On a
// version conflict the document is reloaded and mutate re-validates against
// the new state. Guard failures persist nothing.
func (r *TicketRepository) update(ctx context.Context, mutate func(doc *ticketsDocument) (*domain.Ticket, error)) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < saveAttempts; attempt++ {
		doc, version, err := r.load(ctx)
		if err != nil {
			return nil, util.NewStoreUnavailable(err)
		}
		ticket, err := mutate(doc)
		if errors.Is(err, errNoop) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, util.NewInternalError(err)
		}
		if err := r.store.Save(ctx, store.CollectionTickets, data, version); err != nil {
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			r.logger.Error("ticket document save failed", zap.Error(err))
			return nil, util.NewStoreUnavailable(err)
		}
		result := *ticket
		return &result, nil
	}
	return nil, util.NewStoreUnavailable(store.ErrConflict)
}

// Create allocates the next counter value and appends the new ticket in a
// single document write. Fails with LimitExceeded when the owner already has
// the maximum number of open tickets.
func (r *TicketRepository) Create(ctx context.Context, userID, username, channelID string, category domain.Category) (*domain.Ticket, error) {
	return r.update(ctx, func(doc *ticketsDocument) (*domain.Ticket, error) {
		open := 0
		for i := range doc.Tickets {
			t := &doc.Tickets[i]
			if t.ChannelID == channelID {
				return nil, util.NewValidationError("channel already bound to a ticket",
					map[string]any{"channel_id": channelID, "ticket_id": t.ID})
			}
			if t.UserID == userID && !t.Closed {
				open++
			}
		}
		if open >= r.maxPerUser {
			return nil, util.NewLimitExceeded(open, r.maxPerUser)
		}

		ticket := domain.Ticket{
			ID:        doc.Counter + 1,
			ChannelID: channelID,
			UserID:    userID,
			Username:  username,
			Category:  category,
			CreatedAt: time.Now().UTC(),
			Messages:  []domain.MessageRecord{},
		}
		doc.Counter = ticket.ID
		doc.Tickets = append(doc.Tickets, ticket)
		return &doc.Tickets[len(doc.Tickets)-1], nil
	})
}

// FindByID returns the ticket with the given id.
func (r *TicketRepository) FindByID(ctx context.Context, id int) (*domain.Ticket, error) {
	doc, _, err := r.load(ctx)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	for i := range doc.Tickets {
		if doc.Tickets[i].ID == id {
			ticket := doc.Tickets[i]
			return &ticket, nil
		}
	}
	return nil, util.NewTicketNotFound(map[string]any{"ticket_id": id})
}

// FindByChannel returns the ticket bound to the given channel.
func (r *TicketRepository) FindByChannel(ctx context.Context, channelID string) (*domain.Ticket, error) {
	doc, _, err := r.load(ctx)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	for i := range doc.Tickets {
		if doc.Tickets[i].ChannelID == channelID {
			ticket := doc.Tickets[i]
			return &ticket, nil
		}
	}
	return nil, util.NewTicketNotFound(map[string]any{"channel_id": channelID})
}

// OpenByOwner returns the owner's open tickets in insertion order.
func (r *TicketRepository) OpenByOwner(ctx context.Context, userID string) ([]domain.Ticket, error) {
	doc, _, err := r.load(ctx)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	var result []domain.Ticket
	for i := range doc.Tickets {
		if doc.Tickets[i].UserID == userID && !doc.Tickets[i].Closed {
			result = append(result, doc.Tickets[i])
		}
	}
	return result, nil
}

// ByOwner returns every ticket the owner has created, open or closed.
func (r *TicketRepository) ByOwner(ctx context.Context, userID string) ([]domain.Ticket, error) {
	doc, _, err := r.load(ctx)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	var result []domain.Ticket
	for i := range doc.Tickets {
		if doc.Tickets[i].UserID == userID {
			result = append(result, doc.Tickets[i])
		}
	}
	return result, nil
}

// OpenTickets returns all open tickets in insertion order.
func (r *TicketRepository) OpenTickets(ctx context.Context) ([]domain.Ticket, error) {
	doc, _, err := r.load(ctx)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	var result []domain.Ticket
	for i := range doc.Tickets {
		if !doc.Tickets[i].Closed {
			result = append(result, doc.Tickets[i])
		}
	}
	return result, nil
}

// All returns every ticket in the store.
func (r *TicketRepository) All(ctx context.Context) ([]domain.Ticket, error) {
	doc, _, err := r.load(ctx)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	return doc.Tickets, nil
}

// AppendMessage appends a message record to an open ticket. Closed or absent
// tickets make this a no-op.
func (r *TicketRepository) AppendMessage(ctx context.Context, ticketID int, record domain.MessageRecord) error {
	_, err := r.update(ctx, func(doc *ticketsDocument) (*domain.Ticket, error) {
		for i := range doc.Tickets {
			t := &doc.Tickets[i]
			if t.ID != ticketID {
				continue
			}
			if t.Closed {
				return nil, errNoop
			}
			t.Messages = append(t.Messages, record)
			return t, nil
		}
		return nil, errNoop
	})
	return err
}

// Close stamps the ticket closed. Fails with NotFound or AlreadyClosed.
func (r *TicketRepository) Close(ctx context.Context, ticketID int, actor domain.Actor) (*domain.Ticket, error) {
	return r.update(ctx, func(doc *ticketsDocument) (*domain.Ticket, error) {
		t := findTicket(doc, ticketID)
		if t == nil {
			return nil, util.NewTicketNotFound(map[string]any{"ticket_id": ticketID})
		}
		if t.Closed {
			return nil, util.NewAlreadyClosed(ticketID)
		}
		now := time.Now().UTC()
		t.Closed = true
		t.ClosedAt = &now
		t.ClosedBy = &actor.ID
		t.ClosedByName = &actor.Name
		return t, nil
	})
}

// Claim records an exclusive staff assignment. First claim wins; a second
// claim fails with AlreadyClaimed and leaves the original claimant intact.
func (r *TicketRepository) Claim(ctx context.Context, ticketID int, actor domain.Actor) (*domain.Ticket, error) {
	return r.update(ctx, func(doc *ticketsDocument) (*domain.Ticket, error) {
		t := findTicket(doc, ticketID)
		if t == nil {
			return nil, util.NewTicketNotFound(map[string]any{"ticket_id": ticketID})
		}
		if t.ClaimedBy != nil {
			return nil, util.NewAlreadyClaimed(ticketID, *t.ClaimedBy)
		}
		now := time.Now().UTC()
		t.ClaimedBy = &actor.ID
		t.ClaimedByName = &actor.Name
		t.ClaimedAt = &now
		return t, nil
	})
}

// Release clears an active claim. Fails with NotClaimed when no claim is
// active. Any staff-capable actor may release, not only the claimant.
func (r *TicketRepository) Release(ctx context.Context, ticketID int) (*domain.Ticket, error) {
	return r.update(ctx, func(doc *ticketsDocument) (*domain.Ticket, error) {
		t := findTicket(doc, ticketID)
		if t == nil {
			return nil, util.NewTicketNotFound(map[string]any{"ticket_id": ticketID})
		}
		if t.ClaimedBy == nil {
			return nil, util.NewNotClaimed(ticketID)
		}
		t.ClaimedBy = nil
		t.ClaimedByName = nil
		t.ClaimedAt = nil
		return t, nil
	})
}

func findTicket(doc *ticketsDocument, id int) *domain.Ticket {
	for i := range doc.Tickets {
		if doc.Tickets[i].ID == id {
			return &doc.Tickets[i]
		}
	}
	return nil
}
