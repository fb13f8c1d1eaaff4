// Package mocks provides hand-rolled test doubles for service dependencies.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/platform"
)

// PlatformMock records every call and lets tests override behaviour per
// method. Zero value is usable: channels get sequential ids, Notify succeeds,
// history is empty.
type PlatformMock struct {
	mu sync.Mutex

	CreateConversationSurfaceFunc func(ctx context.Context, parentCategory string, rules platform.VisibilityRules) (string, error)
	NotifyFunc                    func(ctx context.Context, target string, msg platform.Message) error
	FetchRecentMessagesFunc       func(ctx context.Context, channelID string, limit int) ([]domain.MessageRecord, error)

	CreatedChannels []string
	Notifications   []Notification

	channelSeq int
}

// Notification is one recorded Notify call.
type Notification struct {
	Target  string
	Message platform.Message
}

func (m *PlatformMock) CreateConversationSurface(ctx context.Context, parentCategory string, rules platform.VisibilityRules) (string, error) {
	if m.CreateConversationSurfaceFunc != nil {
		return m.CreateConversationSurfaceFunc(ctx, parentCategory, rules)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channelSeq++
	id := fmt.Sprintf("chan-%d", m.channelSeq)
	m.CreatedChannels = append(m.CreatedChannels, id)
	return id, nil
}

func (m *PlatformMock) Notify(ctx context.Context, target string, msg platform.Message) error {
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, target, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, Notification{Target: target, Message: msg})
	return nil
}

func (m *PlatformMock) FetchRecentMessages(ctx context.Context, channelID string, limit int) ([]domain.MessageRecord, error) {
	if m.FetchRecentMessagesFunc != nil {
		return m.FetchRecentMessagesFunc(ctx, channelID, limit)
	}
	return nil, nil
}

// NotifyTargets returns the targets of all recorded notifications in order.
func (m *PlatformMock) NotifyTargets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	targets := make([]string, 0, len(m.Notifications))
	for _, n := range m.Notifications {
		targets = append(targets, n.Target)
	}
	return targets
}
