package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/store"
	"github.com/spec-kit/support-desk/pkg/util"
)

// RatingRepository encapsulates rating persistence and enforces the
// single-edit contract: the first submission for a ticket is stored
// editable, the one permitted edit overwrites it in place and freezes it,
// and anything after that fails with AlreadyRated. The check runs inside the
// serialized write cycle so concurrent submissions cannot both pass it.
type RatingRepository struct {
	store  store.Store
	logger *zap.Logger

	mu sync.Mutex
}

// NewRatingRepository instantiates the repository.
func NewRatingRepository(st store.Store, logger *zap.Logger) *RatingRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingRepository{store: st, logger: logger}
}

func emptyRatingsDocument() *ratingsDocument {
	return &ratingsDocument{Ratings: []domain.Rating{}}
}

func (r *RatingRepository) load(ctx context.Context) (*ratingsDocument, int64, error) {
	return loadDocument(ctx, r.store, store.CollectionRatings, r.logger, emptyRatingsDocument)
}

// Submit stores a new rating or applies the single permitted edit.
func (r *RatingRepository) Submit(ctx context.Context, rating domain.Rating) (*domain.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < saveAttempts; attempt++ {
		doc, version, err := r.load(ctx)
		if err != nil {
			return nil, util.NewStoreUnavailable(err)
		}

		var stored *domain.Rating
		existing := findRating(doc, rating.TicketID)
		if existing != nil {
			if !existing.Editable {
				return nil, util.NewAlreadyRated(rating.TicketID)
			}
			now := time.Now().UTC()
			rating.CreatedAt = existing.CreatedAt
			rating.EditedAt = &now
			rating.Editable = false
			*existing = rating
			stored = existing
		} else {
			rating.CreatedAt = time.Now().UTC()
			rating.EditedAt = nil
			rating.Editable = true
			doc.Ratings = append(doc.Ratings, rating)
			stored = &doc.Ratings[len(doc.Ratings)-1]
		}

		data, err := json.Marshal(doc)
		if err != nil {
			return nil, util.NewInternalError(err)
		}
		if err := r.store.Save(ctx, store.CollectionRatings, data, version); err != nil {
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			r.logger.Error("rating document save failed", zap.Error(err))
			return nil, util.NewStoreUnavailable(err)
		}
		result := *stored
		return &result, nil
	}
	return nil, util.NewStoreUnavailable(store.ErrConflict)
}

// FindByTicket returns the rating for a ticket, if any.
func (r *RatingRepository) FindByTicket(ctx context.Context, ticketID int) (*domain.Rating, error) {
	doc, _, err := r.load(ctx)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	if rating := findRating(doc, ticketID); rating != nil {
		result := *rating
		return &result, nil
	}
	return nil, util.NewDomainError(util.CodeNotFound, "rating not found", http.StatusNotFound,
		map[string]any{"ticket_id": ticketID})
}

// EditableByUser returns the user's still-editable rating, if any.
func (r *RatingRepository) EditableByUser(ctx context.Context, userID string) (*domain.Rating, error) {
	doc, _, err := r.load(ctx)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	for i := range doc.Ratings {
		if doc.Ratings[i].UserID == userID && doc.Ratings[i].Editable {
			result := doc.Ratings[i]
			return &result, nil
		}
	}
	return nil, util.NewDomainError(util.CodeNotFound, "no editable rating", http.StatusNotFound, nil)
}

// List returns every stored rating.
func (r *RatingRepository) List(ctx context.Context) ([]domain.Rating, error) {
	doc, _, err := r.load(ctx)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	return doc.Ratings, nil
}

func findRating(doc *ratingsDocument, ticketID int) *domain.Rating {
	for i := range doc.Ratings {
		if doc.Ratings[i].TicketID == ticketID {
			return &doc.Ratings[i]
		}
	}
	return nil
}
