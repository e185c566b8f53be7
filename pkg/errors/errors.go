package errors

import (
	"fmt"
	"strings"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict is returned when the requested work is already in progress
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when submission fields are missing or malformed
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// UserError is one entry of a mutation payload's userErrors list
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

// GatewayError is returned when an Admin API call fails, either in transport
// or with userErrors in the mutation payload.
type GatewayError struct {
	Op         string
	Message    string
	UserErrors []UserError
	Err        error
}

func (e *GatewayError) Error() string {
	var b strings.Builder
	b.WriteString("shopify ")
	b.WriteString(e.Op)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.UserErrors) > 0 {
		msgs := make([]string, len(e.UserErrors))
		for i, ue := range e.UserErrors {
			if len(ue.Field) > 0 {
				msgs[i] = strings.Join(ue.Field, ".") + ": " + ue.Message
			} else {
				msgs[i] = ue.Message
			}
		}
		b.WriteString(": user errors: ")
		b.WriteString(strings.Join(msgs, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// SyncError is fatal to one catalog sync run; entries cached by earlier runs stay intact
type SyncError struct {
	Stage  string
	Reason string
	Err    error
}

func (e *SyncError) Error() string {
	msg := fmt.Sprintf("catalog sync %s: %s", e.Stage, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
