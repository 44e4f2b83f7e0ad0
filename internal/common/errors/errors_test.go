package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := stderrors.New("boom")

	tests := []struct {
		name      string
		err       *StandardError
		code      ErrorCode
		retryable bool
	}{
		{"transport", NewTransportError("search", cause), ErrCodeTransport, true},
		{"parse", NewParseError("filter", cause), ErrCodeParse, false},
		{"auth", NewAuthError("smtp", cause), ErrCodeAuth, false},
		{"config", NewConfigError("customers file missing", cause), ErrCodeConfig, false},
		{"compose", NewComposeFailedError(cause), ErrCodeComposeFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.ErrorIs(t, tt.err, cause)
			assert.Contains(t, tt.err.Error(), string(tt.code))
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("customer acme: %w", NewParseError("filter", nil))

	assert.Equal(t, ErrCodeParse, CodeOf(wrapped))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestIsCode_FollowsCauseChain(t *testing.T) {
	inner := NewTransportError("generation", stderrors.New("connection reset"))
	outer := NewComposeFailedError(inner)

	assert.True(t, IsCode(outer, ErrCodeComposeFailed))
	assert.True(t, IsCode(outer, ErrCodeTransport))
	assert.False(t, IsCode(outer, ErrCodeAuth))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeTransport))
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))

	std := NewValidationError("bad address")
	assert.Same(t, std, Normalize(std))

	got := Normalize(stderrors.New("unexpected"))
	require.NotNil(t, got)
	assert.Equal(t, ErrCodeInternal, got.Code)
	assert.Equal(t, "unexpected", got.Details)
}

func TestWithMetadata(t *testing.T) {
	err := NewTransportError("search", nil).WithMetadata("status", 503)
	assert.Equal(t, 503, err.Metadata["status"])
}
