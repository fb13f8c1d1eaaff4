package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/pkg/util"
)

// RatingRepositoryAPI is the repository surface the rating subsystem needs.
type RatingRepositoryAPI interface {
	Submit(ctx context.Context, rating domain.Rating) (*domain.Rating, error)
	FindByTicket(ctx context.Context, ticketID int) (*domain.Rating, error)
	EditableByUser(ctx context.Context, userID string) (*domain.Rating, error)
	List(ctx context.Context) ([]domain.Rating, error)
}

var _ RatingRepositoryAPI = (*repository.RatingRepository)(nil)

// StaffAverage is one staff member's aggregate rating.
type StaffAverage struct {
	StaffID   string
	StaffName string
	Average   float64
	Count     int
}

// RatingService captures post-closure satisfaction scores. A rating targets
// the rater's most recent closed and claimed ticket by ClosedAt; the
// ticket id is never taken from the caller.
type RatingService struct {
	ratings    RatingRepositoryAPI
	tickets    TicketRepositoryAPI
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewRatingService constructs the service.
func NewRatingService(ratings RatingRepositoryAPI, tickets TicketRepositoryAPI, dispatcher events.Dispatcher, logger *zap.Logger) *RatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{ratings: ratings, tickets: tickets, dispatcher: dispatcher, logger: logger}
}

// Submit records the actor's score for their most recent ratable ticket.
// The first submission is stored editable; the one permitted edit freezes
// the rating.
func (s *RatingService) Submit(ctx context.Context, actor domain.Actor, value int) (*domain.Rating, error) {
	if !domain.ValidRatingValue(value) {
		return nil, util.NewValidationError("rating must be between 1 and 5",
			map[string]any{"value": value})
	}

	ticket, err := s.ratableTicket(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	edited := false
	if existing, err := s.ratings.FindByTicket(ctx, ticket.ID); err == nil && existing != nil {
		edited = true
	}

	rating, err := s.ratings.Submit(ctx, domain.Rating{
		TicketID:  ticket.ID,
		UserID:    actor.ID,
		Username:  actor.Name,
		Value:     value,
		StaffID:   ticket.ClaimedBy,
		StaffName: ticket.ClaimedByName,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventRatingSubmitted,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload:  events.RatingSubmittedPayload{Rating: *rating, Edited: edited},
	})
	return rating, nil
}

// EditableFor returns the actor's still-editable rating, used to show the
// current score before the single permitted edit.
func (s *RatingService) EditableFor(ctx context.Context, userID string) (*domain.Rating, error) {
	return s.ratings.EditableByUser(ctx, userID)
}

// Recent returns the latest ratings, newest first, capped at limit.
func (s *RatingService) Recent(ctx context.Context, limit int) ([]domain.Rating, error) {
	ratings, err := s.ratings.List(ctx)
	if err != nil {
		return nil, err
	}
	sorted := make([]domain.Rating, len(ratings))
	copy(sorted, ratings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// Average returns the arithmetic mean of all rating values. ok is false
// when no ratings exist.
func (s *RatingService) Average(ctx context.Context) (avg float64, count int, ok bool, err error) {
	ratings, err := s.ratings.List(ctx)
	if err != nil {
		return 0, 0, false, err
	}
	if len(ratings) == 0 {
		return 0, 0, false, nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	return float64(sum) / float64(len(ratings)), len(ratings), true, nil
}

// AverageByStaff returns the mean score attributed to one staff member. ok
// is false when the staff member has no ratings.
func (s *RatingService) AverageByStaff(ctx context.Context, staffID string) (avg float64, count int, ok bool, err error) {
	ratings, err := s.ratings.List(ctx)
	if err != nil {
		return 0, 0, false, err
	}
	sum := 0
	for _, r := range ratings {
		if r.StaffID != nil && *r.StaffID == staffID {
			sum += r.Value
			count++
		}
	}
	if count == 0 {
		return 0, 0, false, nil
	}
	return float64(sum) / float64(count), count, true, nil
}

// StaffAverages aggregates ratings per staff member.
func (s *RatingService) StaffAverages(ctx context.Context) ([]StaffAverage, error) {
	ratings, err := s.ratings.List(ctx)
	if err != nil {
		return nil, err
	}
	type acc struct {
		name  string
		sum   int
		count int
	}
	byStaff := make(map[string]*acc)
	order := []string{}
	for _, r := range ratings {
		if r.StaffID == nil {
			continue
		}
		a, seen := byStaff[*r.StaffID]
		if !seen {
			a = &acc{}
			if r.StaffName != nil {
				a.name = *r.StaffName
			}
			byStaff[*r.StaffID] = a
			order = append(order, *r.StaffID)
		}
		a.sum += r.Value
		a.count++
	}
	result := make([]StaffAverage, 0, len(order))
	for _, id := range order {
		a := byStaff[id]
		result = append(result, StaffAverage{
			StaffID:   id,
			StaffName: a.name,
			Average:   float64(a.sum) / float64(a.count),
			Count:     a.count,
		})
	}
	return result, nil
}

// ratableTicket selects the actor's most recent closed and claimed ticket
// by ClosedAt.
func (s *RatingService) ratableTicket(ctx context.Context, userID string) (*domain.Ticket, error) {
	all, err := s.tickets.ByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	var best *domain.Ticket
	for i := range all {
		t := &all[i]
		if !t.Closed || t.ClaimedBy == nil || t.ClosedAt == nil {
			continue
		}
		if best == nil || t.ClosedAt.After(*best.ClosedAt) {
			best = t
		}
	}
	if best == nil {
		return nil, util.NewNoRatableTicket()
	}
	result := *best
	return &result, nil
}

func (s *RatingService) publish(ctx context.Context, event events.Event) {
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
