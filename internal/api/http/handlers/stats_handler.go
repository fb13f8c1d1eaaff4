package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/service"
)

// recentRatingsLimit caps the ratings listing, newest first.
const recentRatingsLimit = 10

// StatsHandler serves the admin aggregate endpoints.
type StatsHandler struct {
	stats   *service.StatsService
	ratings *service.RatingService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(stats *service.StatsService, ratings *service.RatingService) *StatsHandler {
	return &StatsHandler{stats: stats, ratings: ratings}
}

// Overview GET /stats.
func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	stats, err := h.stats.Overview(c.UserContext())
	if err != nil {
		return err
	}

	byCategory := make(map[string]int, len(stats.ByCategory))
	for category, count := range stats.ByCategory {
		byCategory[string(category)] = count
	}
	staffAverages := make([]dto.StaffAverageResponse, 0, len(stats.StaffAverages))
	for _, sa := range stats.StaffAverages {
		staffAverages = append(staffAverages, dto.StaffAverageResponse{
			StaffID:   sa.StaffID,
			StaffName: sa.StaffName,
			Average:   sa.Average,
			Count:     sa.Count,
		})
	}

	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		TotalTickets:  stats.TotalTickets,
		OpenTickets:   stats.OpenTickets,
		ClosedTickets: stats.ClosedTickets,
		ByCategory:    byCategory,
		AverageRating: stats.AverageRating,
		StaffAverages: staffAverages,
	}})
}

// RecentRatings GET /ratings.
func (h *StatsHandler) RecentRatings(c *fiber.Ctx) error {
	ratings, err := h.ratings.Recent(c.UserContext(), recentRatingsLimit)
	if err != nil {
		return err
	}
	items := make([]dto.RatingResponse, 0, len(ratings))
	for i := range ratings {
		items = append(items, ratingResponse(&ratings[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
