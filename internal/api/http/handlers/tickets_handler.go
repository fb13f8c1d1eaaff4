package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/pkg/util"
)

// TicketsHandler serves the ticket query and message-logging endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListOpen GET /tickets.
func (h *TicketsHandler) ListOpen(c *fiber.Ctx) error {
	tickets, err := h.service.OpenTickets(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return util.NewValidationError("ticket id must be an integer", nil)
	}
	ticket, err := h.service.TicketByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Transcript GET /tickets/:id/transcript.
func (h *TicketsHandler) Transcript(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return util.NewValidationError("ticket id must be an integer", nil)
	}
	ticket, err := h.service.TicketByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	text := h.service.Transcript(c.UserContext(), ticket)
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(text)
}

// ForUser GET /users/:id/tickets.
func (h *TicketsHandler) ForUser(c *fiber.Ctx) error {
	info, err := h.service.TicketsForUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	open := make([]dto.TicketSummary, 0, len(info.Open))
	for i := range info.Open {
		open = append(open, ticketSummary(&info.Open[i]))
	}
	return c.JSON(fiber.Map{"data": dto.UserTicketsResponse{
		Open:   open,
		Closed: info.Closed,
		Total:  info.Total,
	}})
}

// LogMessage POST /channels/:id/messages.
func (h *TicketsHandler) LogMessage(c *fiber.Ctx) error {
	var req dto.MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.AuthorID) == "" {
		return util.NewValidationError("author_id required", nil)
	}
	record := domain.MessageRecord{
		ID:          req.ID,
		Author:      req.Author,
		AuthorID:    req.AuthorID,
		Content:     req.Content,
		Timestamp:   req.Timestamp,
		Attachments: req.Attachments,
	}
	if err := h.service.LogMessage(c.UserContext(), c.Params("id"), record); err != nil {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}

func ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:        t.ID,
		ChannelID: t.ChannelID,
		UserID:    t.UserID,
		Username:  t.Username,
		Category:  t.Category,
		Status:    t.Status(),
		ClaimedBy: t.ClaimedByName,
		CreatedAt: t.CreatedAt,
		ClosedAt:  t.ClosedAt,
	}
}

func ticketDetail(t *domain.Ticket) dto.TicketDetail {
	detail := dto.TicketDetail{
		TicketSummary: ticketSummary(t),
		ClosedBy:      t.ClosedByName,
		MessageCount:  len(t.Messages),
	}
	if t.ClaimedAt != nil {
		claimedAt := t.ClaimedAt.Format("2006-01-02 15:04:05")
		detail.ClaimedAt = &claimedAt
	}
	return detail
}

func ratingResponse(r *domain.Rating) dto.RatingResponse {
	return dto.RatingResponse{
		TicketID:  r.TicketID,
		Username:  r.Username,
		Value:     r.Value,
		Stars:     service.Stars(r.Value),
		StaffName: r.StaffName,
		Editable:  r.Editable,
		CreatedAt: r.CreatedAt,
		EditedAt:  r.EditedAt,
	}
}
