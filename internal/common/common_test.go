package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dinah/internal/service"
)

func fastRetry() service.RetryOptions {
	return service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestWithRetry_RetriesBusy(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("insert: %w", ErrBusy)
		}
		return nil
	}, fastRetry())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_BusinessErrorsReturnAtOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return ErrInsufficientBalance
	}, fastRetry())

	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_GivesUp(t *testing.T) {
	t.Parallel()

	err := WithRetry(context.Background(), func() error { return ErrBusy }, fastRetry())

	require.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Hour, MaxDelay: time.Hour}

	err := WithRetry(ctx, func() error { return ErrBusy }, opts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRetryable(ErrBusy))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("flaky"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("bad"), Retryable: false}))
	assert.False(t, IsRetryable(ErrNotFound))
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", NewUserError("Conta não encontrada.", ErrNotFound))
	assert.Equal(t, "Conta não encontrada.", UserMessage(err, "fallback"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "fallback", UserMessage(errors.New("plain"), "fallback"))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Not parallel: it swaps the default logger.
func TestSetupLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	require.NoError(t, SetupLogger(&buf, slog.LevelInfo, "json"))
	LogInfo("Account created", Fields{"account_id": "a1"})
	assert.Contains(t, buf.String(), `"account_id":"a1"`)

	assert.ErrorIs(t, SetupLogger(&buf, slog.LevelInfo, "xml"), ErrInvalidConfig)
}
