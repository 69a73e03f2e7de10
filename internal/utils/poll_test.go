package utils_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/airpen/airpen-backend/internal/utils"
)

func TestPoll_DoneOnFirstAttempt(t *testing.T) {
	calls := 0
	err := utils.Poll(context.Background(), time.Hour, 5, func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestPoll_DoneAfterRetries(t *testing.T) {
	calls := 0
	err := utils.Poll(context.Background(), time.Millisecond, 10, func(ctx context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestPoll_Exhausted(t *testing.T) {
	calls := 0
	err := utils.Poll(context.Background(), time.Millisecond, 4, func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	})
	require.ErrorIs(t, err, utils.ErrPollExhausted)
	require.Equal(t, 4, calls)
}

func TestPoll_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := utils.Poll(context.Background(), time.Millisecond, 10, func(ctx context.Context) (bool, error) {
		calls++
		return false, boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestPoll_RespectsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := utils.Poll(ctx, time.Hour, 10, func(ctx context.Context) (bool, error) {
		cancel()
		return false, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
