package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/support-desk/internal/domain"
)

// Stats summarizes the ticket and rating collections.
type Stats struct {
	TotalTickets  int
	OpenTickets   int
	ClosedTickets int
	ByCategory    map[domain.Category]int
	AverageRating string // formatted to one decimal, "N/A" when empty
	StaffAverages []StaffAverage
}

// StatsService computes aggregate views for the admin surface.
type StatsService struct {
	tickets TicketRepositoryAPI
	ratings *RatingService
}

// NewStatsService constructs the service.
func NewStatsService(tickets TicketRepositoryAPI, ratings *RatingService) *StatsService {
	return &StatsService{tickets: tickets, ratings: ratings}
}

// Overview reduces both collections into a Stats snapshot.
func (s *StatsService) Overview(ctx context.Context) (*Stats, error) {
	all, err := s.tickets.All(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalTickets: len(all),
		ByCategory:   make(map[domain.Category]int),
	}
	for _, t := range all {
		if t.Closed {
			stats.ClosedTickets++
		} else {
			stats.OpenTickets++
		}
		stats.ByCategory[t.Category]++
	}

	avg, _, ok, err := s.ratings.Average(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		stats.AverageRating = fmt.Sprintf("%.1f", avg)
	} else {
		stats.AverageRating = "N/A"
	}

	stats.StaffAverages, err = s.ratings.StaffAverages(ctx)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
