package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/actions"
	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/pkg/util"
)

// ActionsHandler is the inbound event surface: it decodes a platform
// component id once and dispatches the tagged action to the services.
type ActionsHandler struct {
	tickets *service.TicketService
	ratings *service.RatingService
	metrics *observability.Metrics
}

// NewActionsHandler constructs handler.
func NewActionsHandler(tickets *service.TicketService, ratings *service.RatingService, metrics *observability.Metrics) *ActionsHandler {
	return &ActionsHandler{tickets: tickets, ratings: ratings, metrics: metrics}
}

// Dispatch POST /actions.
func (h *ActionsHandler) Dispatch(c *fiber.Ctx) error {
	var req dto.ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Actor.ID == "" {
		return util.NewValidationError("actor id required", nil)
	}

	action, err := actions.Decode(req.ComponentID, req.Value)
	if err != nil {
		return err
	}
	h.metrics.RecordAction(string(action.Kind))

	actor := domain.Actor{ID: req.Actor.ID, Name: req.Actor.Name, Staff: req.Actor.Staff}
	ctx := c.UserContext()

	switch action.Kind {
	case actions.KindOpenTicket:
		ticket, err := h.tickets.Open(ctx, actor, action.Category)
		if err != nil {
			return err
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})

	case actions.KindClaim:
		ticket, err := h.tickets.Claim(ctx, req.ChannelID, actor)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": ticketSummary(ticket)})

	case actions.KindRelease:
		ticket, err := h.tickets.Release(ctx, req.ChannelID, actor)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": ticketSummary(ticket)})

	case actions.KindRequestClose:
		ticket, err := h.tickets.RequestClose(ctx, req.ChannelID, actor)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": fiber.Map{
			"ticket":       ticketSummary(ticket),
			"confirmation": "pending",
		}})

	case actions.KindConfirmClose:
		ticket, err := h.tickets.ConfirmClose(ctx, req.ChannelID, actor)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": ticketSummary(ticket)})

	case actions.KindCancelClose:
		h.tickets.CancelClose(req.ChannelID)
		return c.JSON(fiber.Map{"data": fiber.Map{"confirmation": "cancelled"}})

	case actions.KindRate:
		rating, err := h.ratings.Submit(ctx, actor, action.Value)
		if err != nil {
			return err
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ratingResponse(rating)})

	case actions.KindEditRating:
		rating, err := h.ratings.EditableFor(ctx, actor.ID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": ratingResponse(rating)})

	default:
		return util.NewValidationError("unsupported action", nil)
	}
}
