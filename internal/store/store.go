package store

import "context"

// Collection names for the two persisted documents.
const (
	CollectionTickets = "tickets"
	CollectionRatings = "ratings"
)

// Snapshot is one whole-document read: the raw JSON payload plus the
// version token to present on the next Save. A missing collection loads as
// {Data: nil, Version: 0}.
type Snapshot struct {
	Data    []byte
	Version int64
}

// Store persists whole JSON documents keyed by collection name. Every
// mutation is a full-document rewrite guarded by an optimistic version
// token: Save with a stale expected version fails with ErrConflict so a
// racing writer's update is never silently clobbered. Save must be atomic
// with respect to process crash.
type Store interface {
	Load(ctx context.Context, collection string) (Snapshot, error)
	Save(ctx context.Context, collection string, data []byte, expectedVersion int64) error
	Ping(ctx context.Context) error
}
