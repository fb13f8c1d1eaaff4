package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/pkg/util"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		componentID string
		value       string
		want        Action
	}{
		{"open via button", "open_ticket_support", "", Action{Kind: KindOpenTicket, Category: domain.CategorySupport}},
		{"open billing", "open_ticket_billing", "", Action{Kind: KindOpenTicket, Category: domain.CategoryBilling}},
		{"open unknown key falls back to support", "open_ticket_weird", "", Action{Kind: KindOpenTicket, Category: domain.CategorySupport}},
		{"open via select menu", "select_ticket_category", "report", Action{Kind: KindOpenTicket, Category: domain.CategoryReport}},
		{"claim", "claim_ticket", "", Action{Kind: KindClaim}},
		{"release", "release_ticket", "", Action{Kind: KindRelease}},
		{"request close", "close_ticket", "", Action{Kind: KindRequestClose}},
		{"confirm close", "confirm_close", "", Action{Kind: KindConfirmClose}},
		{"cancel close", "cancel_close", "", Action{Kind: KindCancelClose}},
		{"rate one", "rate_1", "", Action{Kind: KindRate, Value: 1}},
		{"rate five", "rate_5", "", Action{Kind: KindRate, Value: 5}},
		{"edit rating", "edit_rating", "", Action{Kind: KindEditRating}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.componentID, tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name        string
		componentID string
		value       string
	}{
		{"unknown id", "do_something", ""},
		{"empty id", "", ""},
		{"select without value", "select_ticket_category", ""},
		{"rating below range", "rate_0", ""},
		{"rating above range", "rate_6", ""},
		{"rating not a number", "rate_x", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.componentID, tc.value)
			require.Error(t, err)
			assert.True(t, util.HasCode(err, util.CodeValidation))
		})
	}
}
