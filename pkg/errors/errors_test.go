package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndCode(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeUpstreamError, "weather fetch failed", cause)

	require.EqualError(t, err, "weather fetch failed: boom")
	require.True(t, IsCode(err, CodeUpstreamError))
	require.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("handler: %w", err)
	require.Equal(t, CodeUpstreamError, CodeOf(wrapped))
	require.Empty(t, CodeOf(cause))
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(CodeInvalidInput, "city_name is required", nil)
	require.EqualError(t, err, "city_name is required")
	require.Nil(t, errors.Unwrap(err))
}
