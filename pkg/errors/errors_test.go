package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGatewayError_MessageIncludesUserErrors(t *testing.T) {
	err := &GatewayError{
		Op: "draftOrderCreate",
		UserErrors: []UserError{
			{Field: []string{"input", "lineItems"}, Message: "Variant is invalid"},
			{Message: "Customer is blocked"},
		},
	}
	assert.Equal(t, "shopify draftOrderCreate: user errors: input.lineItems: Variant is invalid; Customer is blocked", err.Error())
}

func TestGatewayError_UnwrapsTransportError(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", &GatewayError{Op: "shop", Err: context.DeadlineExceeded})

	var gwErr *GatewayError
	assert.True(t, stderrors.As(wrapped, &gwErr))
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
}

func TestSyncError_Message(t *testing.T) {
	err := &SyncError{Stage: "poll", Reason: "timeout"}
	assert.Equal(t, "catalog sync poll: timeout", err.Error())

	err = &SyncError{Stage: "download", Reason: "fetch failed", Err: stderrors.New("status 403")}
	assert.Equal(t, "catalog sync download: fetch failed: status 403", err.Error())
}

func TestErrValidation_DefaultMessage(t *testing.T) {
	assert.Equal(t, "validation failed", (&ErrValidation{}).Error())
	assert.Equal(t, "all fields are required", (&ErrValidation{Message: "all fields are required"}).Error())
}
