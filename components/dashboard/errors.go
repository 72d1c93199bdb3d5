package dashboard

import (
	"errors"
	"fmt"
)

var (
	errMissingClient   = errors.New("dashboard: analytics client not configured")
	errMissingProvider = errors.New("dashboard: view provider not registered")

	// ErrUnknownSlot and ErrUnknownView reject codes missing from the registry.
	ErrUnknownSlot = errors.New("dashboard: unknown slot")
	ErrUnknownView = errors.New("dashboard: unknown view")

	// ErrMissingCustomerID is returned before any lookup when the id is blank.
	ErrMissingCustomerID = errors.New("dashboard: customer id is required")
	// ErrMissingRequiredFiles rejects uploads without customers and products files.
	ErrMissingRequiredFiles = errors.New("dashboard: customers and products files are required")
	// ErrInvalidFileType rejects file names that do not end in .csv.
	ErrInvalidFileType = errors.New("dashboard: upload file is not a csv")
	// ErrIncompleteEvent rejects track requests with missing identifiers.
	ErrIncompleteEvent = errors.New("dashboard: customer_id, product_id and event_type are required")
)

// PayloadError is returned when the analytics API answers with an
// {"error": "..."} payload.
type PayloadError struct {
	Status  int
	Message string
}

func (e *PayloadError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("analytics: api error (%d): %s", e.Status, e.Message)
	}
	return "analytics: api error: " + e.Message
}

// UserMessage returns the text shown to a user for err: the static message
// of a validation sentinel, the backend's own text for a PayloadError, or
// err.Error() otherwise.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCustomerID):
		return MsgMissingCustomerID
	case errors.Is(err, ErrMissingRequiredFiles):
		return MsgMissingFiles
	case errors.Is(err, ErrInvalidFileType):
		return MsgInvalidFileType
	}
	if payload, ok := AsPayloadError(err); ok {
		return payload.Message
	}
	return err.Error()
}

// AsPayloadError extracts a PayloadError from an error chain.
func AsPayloadError(err error) (*PayloadError, bool) {
	var target *PayloadError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
