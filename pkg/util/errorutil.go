package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared between services and the HTTP layer.
const (
	CodeLimitExceeded    = "LIMIT_EXCEEDED"
	CodeNotFound         = "NOT_FOUND"
	CodeAlreadyClosed    = "ALREADY_CLOSED"
	CodeAlreadyClaimed   = "ALREADY_CLAIMED"
	CodeNotClaimed       = "NOT_CLAIMED"
	CodeNoRatableTicket  = "NO_RATABLE_TICKET"
	CodeAlreadyRated     = "ALREADY_RATED"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeValidation       = "VALIDATION_FAILED"
	CodeForbidden        = "FORBIDDEN"
	CodeInternal         = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewLimitExceeded(openCount, max int) error {
	return NewDomainError(CodeLimitExceeded,
		fmt.Sprintf("open ticket limit reached (%d of %d)", openCount, max),
		http.StatusConflict,
		map[string]any{"open": openCount, "max": max})
}

func NewTicketNotFound(details map[string]any) error {
	return NewDomainError(CodeNotFound, "ticket not found", http.StatusNotFound, details)
}

func NewAlreadyClosed(ticketID int) error {
	return NewDomainError(CodeAlreadyClosed, "ticket is already closed", http.StatusConflict,
		map[string]any{"ticket_id": ticketID})
}

func NewAlreadyClaimed(ticketID int, claimedBy string) error {
	return NewDomainError(CodeAlreadyClaimed, "ticket is already claimed", http.StatusConflict,
		map[string]any{"ticket_id": ticketID, "claimed_by": claimedBy})
}

func NewNotClaimed(ticketID int) error {
	return NewDomainError(CodeNotClaimed, "ticket is not claimed", http.StatusConflict,
		map[string]any{"ticket_id": ticketID})
}

func NewNoRatableTicket() error {
	return NewDomainError(CodeNoRatableTicket, "no closed ticket available to rate", http.StatusNotFound, nil)
}

func NewAlreadyRated(ticketID int) error {
	return NewDomainError(CodeAlreadyRated, "rating already submitted and edited once", http.StatusConflict,
		map[string]any{"ticket_id": ticketID})
}

func NewStoreUnavailable(err error) error {
	return &DomainError{
		Code:       CodeStoreUnavailable,
		Message:    "persistent store unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
