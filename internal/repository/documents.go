package repository

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/store"
)

// ticketsDocument is the persisted shape of the tickets collection. The
// counter travels with the tickets so an id is never allocated without its
// ticket being written in the same document.
type ticketsDocument struct {
	Tickets []domain.Ticket `json:"tickets"`
	Counter int             `json:"counter"`
}

// ratingsDocument is the persisted shape of the ratings collection.
type ratingsDocument struct {
	Ratings []domain.Rating `json:"ratings"`
}

// saveAttempts bounds the reload-and-retry loop on version conflicts.
const saveAttempts = 5

// errNoop signals that a mutation decided not to write anything; the caller
// treats it as success with no result.
var errNoop = errors.New("repository: no-op")

// loadDocument reads and decodes one collection. Store read failures are
// masked by the empty default (logged); an undecodable document also
// resurfaces as the default rather than failing every caller.
func loadDocument[T any](ctx context.Context, st store.Store, collection string, logger *zap.Logger, empty func() *T) (*T, int64, error) {
	snap, err := st.Load(ctx, collection)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, err
		}
		logger.Warn("store read failed, serving empty default",
			zap.String("collection", collection), zap.Error(err))
		return empty(), 0, nil
	}
	if snap.Data == nil {
		return empty(), snap.Version, nil
	}
	doc := empty()
	if err := json.Unmarshal(snap.Data, doc); err != nil {
		logger.Warn("unreadable document, serving empty default",
			zap.String("collection", collection), zap.Error(err))
		return empty(), snap.Version, nil
	}
	return doc, snap.Version, nil
}
