package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := ErrDelivery.WithCause(fmt.Errorf("smtp timeout"))
	assert.Equal(t, "DELIVERY_ERROR: delivery failed (caused by: smtp timeout)", err.Error())

	cfgErr := Configurationf("trigger", "rule %q has no trigger", "post_published")
	assert.Equal(t, `CONFIGURATION_ERROR: rule "post_published" has no trigger`, cfgErr.Error())
	assert.Equal(t, "trigger", cfgErr.Details["field"])
}

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	_ = ErrStorage.WithDetail("user_id", "5")
	assert.Empty(t, ErrStorage.Details)
}

func TestClassification(t *testing.T) {
	wrapped := fmt.Errorf("dispatch: %w", ErrDelivery.WithCause(stderrors.New("boom")))

	assert.True(t, IsDelivery(wrapped))
	assert.False(t, IsStorage(wrapped))
	assert.True(t, IsConfiguration(Configurationf("name", "empty")))
	assert.True(t, IsRenderValidation(ErrRenderValidation.WithDetail("arg", "post_id")))
	assert.True(t, IsNotFound(ErrNotFound))
	assert.False(t, IsValidation(stderrors.New("plain")))
}

func TestRetryableAndFatal(t *testing.T) {
	assert.True(t, ErrDelivery.IsRetryable())
	assert.False(t, ErrConfiguration.IsRetryable())
	assert.True(t, ErrConfiguration.IsFatal())
	assert.True(t, ErrStorage.AsFatal().IsFatal())
	assert.True(t, ErrValidation.AsRetryable().IsRetryable())
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrUnauthorized.WithDetail("header", "X-User-ID"))
	assert.Equal(t, "UNAUTHORIZED", resp.ErrorCode)
	assert.Equal(t, "X-User-ID", resp.Details["header"])

	resp = ToErrorResponse(stderrors.New("unknown"))
	assert.Equal(t, "INTERNAL_ERROR", resp.ErrorCode)
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(stderrors.New("unknown")))
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(ErrNotFound))
}

func TestRecoverPanic(t *testing.T) {
	assert.Nil(t, RecoverPanic(nil))

	err := RecoverPanic("channel exploded")
	require.Error(t, err)

	var appErr *Error
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, true, appErr.Details["panic"])
	assert.True(t, appErr.IsFatal())
	assert.Contains(t, err.Error(), "panic: channel exploded")
}

func TestGuard(t *testing.T) {
	err := Guard(func() error { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: boom")
	assert.True(t, IsPanic(fmt.Errorf("handler: %w", err)))
	assert.False(t, IsPanic(ErrInternal))

	sentinel := stderrors.New("plain")
	assert.Equal(t, sentinel, Guard(func() error { return sentinel }))
	assert.NoError(t, Guard(func() error { return nil }))
}
