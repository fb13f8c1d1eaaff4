package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service/mocks"
	"github.com/spec-kit/support-desk/internal/store"
	"github.com/spec-kit/support-desk/pkg/util"
)

var (
	requester = domain.Actor{ID: "u1", Name: "alice"}
	staff     = domain.Actor{ID: "s1", Name: "sam", Staff: true}
)

type ticketFixture struct {
	service    *TicketService
	platform   *mocks.PlatformMock
	dispatcher events.Dispatcher
	published  *[]events.Event
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	repo := repository.NewTicketRepository(fs, zap.NewNop(), 3)
	dispatcher := events.NewInMemoryDispatcher()
	published := &[]events.Event{}
	for _, et := range []events.EventType{
		events.EventTicketOpened, events.EventTicketClaimed, events.EventTicketReleased,
		events.EventTicketClosed, events.EventTicketMessageLogged,
	} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			*published = append(*published, e)
			return nil
		})
	}

	sink := &mocks.PlatformMock{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Platform:   sink,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		Tickets:    config.TicketsConfig{MaxPerUser: 3, SupportRoleID: "role-support"},
		Features:   config.FeatureConfig{LogAllMessages: true},
	})
	return &ticketFixture{service: svc, platform: sink, dispatcher: dispatcher, published: published}
}

func (f *ticketFixture) eventTypes() []events.EventType {
	types := make([]events.EventType, 0, len(*f.published))
	for _, e := range *f.published {
		types = append(types, e.Type)
	}
	return types
}

func TestOpenCreatesSurfaceAndTicket(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket, err := f.service.Open(ctx, requester, domain.CategorySupport)
	require.NoError(t, err)
	assert.Equal(t, 1, ticket.ID)
	assert.Equal(t, "u1", ticket.UserID)
	require.Len(t, f.platform.CreatedChannels, 1)
	assert.Equal(t, f.platform.CreatedChannels[0], ticket.ChannelID)
	assert.Equal(t, []events.EventType{events.EventTicketOpened}, f.eventTypes())
}

func TestOpenRejectedAtCapWithoutCreatingSurface(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.service.Open(ctx, requester, domain.CategorySupport)
		require.NoError(t, err)
	}

	_, err := f.service.Open(ctx, requester, domain.CategoryGeneral)
	require.Error(t, err)
	assert.True(t, util.HasCode(err, util.CodeLimitExceeded))
	assert.Len(t, f.platform.CreatedChannels, 3)
}

func TestClaimRequiresStaff(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket, err := f.service.Open(ctx, requester, domain.CategorySupport)
	require.NoError(t, err)

	_, err = f.service.Claim(ctx, ticket.ChannelID, requester)
	require.Error(t, err)
	assert.True(t, util.HasCode(err, util.CodeForbidden))

	claimed, err := f.service.Claim(ctx, ticket.ChannelID, staff)
	require.NoError(t, err)
	require.NotNil(t, claimed.ClaimedBy)
	assert.Equal(t, "s1", *claimed.ClaimedBy)
}

func TestReleaseHasNoOwnershipCheck(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket, err := f.service.Open(ctx, requester, domain.CategorySupport)
	require.NoError(t, err)
	_, err = f.service.Claim(ctx, ticket.ChannelID, staff)
	require.NoError(t, err)

	released, err := f.service.Release(ctx, ticket.ChannelID, requester)
	require.NoError(t, err)
	assert.Nil(t, released.ClaimedBy)
}

func TestCloseNeedsConfirmation(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket, err := f.service.Open(ctx, requester, domain.CategorySupport)
	require.NoError(t, err)

	// Confirming without a pending request is rejected.
	_, err = f.service.ConfirmClose(ctx, ticket.ChannelID, staff)
	require.Error(t, err)
	assert.True(t, util.HasCode(err, util.CodeValidation))

	// Requesting close persists nothing.
	pending, err := f.service.RequestClose(ctx, ticket.ChannelID, staff)
	require.NoError(t, err)
	assert.False(t, pending.Closed)
	current, err := f.service.TicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, current.Closed)

	closed, err := f.service.ConfirmClose(ctx, ticket.ChannelID, staff)
	require.NoError(t, err)
	assert.True(t, closed.Closed)
	require.NotNil(t, closed.ClosedBy)
	assert.Equal(t, "s1", *closed.ClosedBy)
	assert.Contains(t, f.eventTypes(), events.EventTicketClosed)

	// The confirmation is consumed.
	_, err = f.service.ConfirmClose(ctx, ticket.ChannelID, staff)
	assert.True(t, util.HasCode(err, util.CodeValidation))
}

func TestCancelCloseDropsPendingConfirmation(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket, err := f.service.Open(ctx, requester, domain.CategorySupport)
	require.NoError(t, err)

	_, err = f.service.RequestClose(ctx, ticket.ChannelID, staff)
	require.NoError(t, err)
	f.service.CancelClose(ticket.ChannelID)

	_, err = f.service.ConfirmClose(ctx, ticket.ChannelID, staff)
	require.Error(t, err)
	assert.True(t, util.HasCode(err, util.CodeValidation))

	current, err := f.service.TicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, current.Closed)
}

func TestRequestCloseOnClosedTicket(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket, err := f.service.Open(ctx, requester, domain.CategorySupport)
	require.NoError(t, err)
	_, err = f.service.RequestClose(ctx, ticket.ChannelID, staff)
	require.NoError(t, err)
	_, err = f.service.ConfirmClose(ctx, ticket.ChannelID, staff)
	require.NoError(t, err)

	_, err = f.service.RequestClose(ctx, ticket.ChannelID, staff)
	require.Error(t, err)
	assert.True(t, util.HasCode(err, util.CodeAlreadyClosed))
}

func TestLogMessage(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket, err := f.service.Open(ctx, requester, domain.CategorySupport)
	require.NoError(t, err)

	record := domain.MessageRecord{ID: "m1", Author: "alice", AuthorID: "u1", Content: "hi"}
	require.NoError(t, f.service.LogMessage(ctx, ticket.ChannelID, record))

	current, err := f.service.TicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, current.Messages, 1)
	assert.False(t, current.Messages[0].Timestamp.IsZero())
	assert.Contains(t, f.eventTypes(), events.EventTicketMessageLogged)

	// Unknown channels are dropped silently.
	assert.NoError(t, f.service.LogMessage(ctx, "chan-unknown", record))
}

func TestLogMessageDisabled(t *testing.T) {
	f := newTicketFixture(t)
	f.service.features.LogAllMessages = false
	ctx := context.Background()

	ticket, err := f.service.Open(ctx, requester, domain.CategorySupport)
	require.NoError(t, err)

	require.NoError(t, f.service.LogMessage(ctx, ticket.ChannelID, domain.MessageRecord{ID: "m1", Content: "hi"}))
	current, err := f.service.TicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, current.Messages)
}

func TestTicketsForUser(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	t1, err := f.service.Open(ctx, requester, domain.CategorySupport)
	require.NoError(t, err)
	_, err = f.service.Open(ctx, requester, domain.CategoryBilling)
	require.NoError(t, err)

	_, err = f.service.RequestClose(ctx, t1.ChannelID, staff)
	require.NoError(t, err)
	_, err = f.service.ConfirmClose(ctx, t1.ChannelID, staff)
	require.NoError(t, err)

	info, err := f.service.TicketsForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, info.Total)
	assert.Equal(t, 1, info.Closed)
	require.Len(t, info.Open, 1)
	assert.Equal(t, domain.CategoryBilling, info.Open[0].Category)
}

func TestTranscriptFallsBackToStoredMessages(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket, err := f.service.Open(ctx, requester, domain.CategorySupport)
	require.NoError(t, err)
	require.NoError(t, f.service.LogMessage(ctx, ticket.ChannelID,
		domain.MessageRecord{ID: "m1", Author: "alice", AuthorID: "u1", Content: "stored message"}))

	// Platform history is empty so the persisted messages are used.
	current, err := f.service.TicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	text := f.service.Transcript(ctx, current)
	assert.Contains(t, text, "stored message")

	f.platform.FetchRecentMessagesFunc = func(_ context.Context, _ string, _ int) ([]domain.MessageRecord, error) {
		return []domain.MessageRecord{{ID: "h1", Author: "bob", AuthorID: "u2", Content: "history message"}}, nil
	}
	text = f.service.Transcript(ctx, current)
	assert.Contains(t, text, "history message")
	assert.NotContains(t, text, "stored message")
}
