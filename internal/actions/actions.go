// Package actions decodes platform component identifiers into a tagged
// action type once at the boundary. Everything past the decoder dispatches
// on the Kind, never on the raw string.
package actions

import (
	"strconv"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/pkg/util"
)

// Kind tags the decoded action variant.
type Kind string

const (
	KindOpenTicket   Kind = "open_ticket"
	KindClaim        Kind = "claim"
	KindRelease      Kind = "release"
	KindRequestClose Kind = "request_close"
	KindConfirmClose Kind = "confirm_close"
	KindCancelClose  Kind = "cancel_close"
	KindRate         Kind = "rate"
	KindEditRating   Kind = "edit_rating"
)

// Component identifiers as emitted by the ticket panel and embeds.
const (
	componentOpenPrefix   = "open_ticket_"
	componentSelectGroup  = "select_ticket_category"
	componentClaim        = "claim_ticket"
	componentRelease      = "release_ticket"
	componentRequestClose = "close_ticket"
	componentConfirmClose = "confirm_close"
	componentCancelClose  = "cancel_close"
	componentRatePrefix   = "rate_"
	componentEditRating   = "edit_rating"
)

// Action is the decoded inbound event. Category is set for KindOpenTicket,
// Value for KindRate.
type Action struct {
	Kind     Kind
	Category domain.Category
	Value    int
}

// Decode parses a component identifier, with the select-menu value when one
// accompanies it, into an Action. Unknown identifiers fail with a
// validation error.
func Decode(componentID, value string) (Action, error) {
	switch {
	case strings.HasPrefix(componentID, componentOpenPrefix):
		key := strings.TrimPrefix(componentID, componentOpenPrefix)
		return Action{Kind: KindOpenTicket, Category: domain.ParseCategory(key)}, nil

	case componentID == componentSelectGroup:
		if value == "" {
			return Action{}, util.NewValidationError("category selection requires a value", nil)
		}
		return Action{Kind: KindOpenTicket, Category: domain.ParseCategory(value)}, nil

	case componentID == componentClaim:
		return Action{Kind: KindClaim}, nil

	case componentID == componentRelease:
		return Action{Kind: KindRelease}, nil

	case componentID == componentRequestClose:
		return Action{Kind: KindRequestClose}, nil

	case componentID == componentConfirmClose:
		return Action{Kind: KindConfirmClose}, nil

	case componentID == componentCancelClose:
		return Action{Kind: KindCancelClose}, nil

	case strings.HasPrefix(componentID, componentRatePrefix):
		raw := strings.TrimPrefix(componentID, componentRatePrefix)
		v, err := strconv.Atoi(raw)
		if err != nil || !domain.ValidRatingValue(v) {
			return Action{}, util.NewValidationError("invalid rating value",
				map[string]any{"component_id": componentID})
		}
		return Action{Kind: KindRate, Value: v}, nil

	case componentID == componentEditRating:
		return Action{Kind: KindEditRating}, nil

	default:
		return Action{}, util.NewValidationError("unknown component id",
			map[string]any{"component_id": componentID})
	}
}
