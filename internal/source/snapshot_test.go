package source_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/repository/mocks"
	"github.com/rpggio/geodash/internal/source"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_FetchesOnce(t *testing.T) {
	records := generator(20, 9).Generate()
	provider := &mocks.Provider{}
	provider.On("Fetch", mock.Anything).Return(records, nil).Once()

	snap := source.NewSnapshot(provider)
	var wg sync.WaitGroup
	sizes := make(chan int, 5)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := snap.Fetch(context.Background())
			if err == nil {
				sizes <- len(got)
			}
		}()
	}
	wg.Wait()
	close(sizes)

	var seen []int
	for n := range sizes {
		seen = append(seen, n)
	}
	require.Equal(t, []int{20, 20, 20, 20, 20}, seen)
	provider.AssertExpectations(t)
}

func TestSnapshot_FailureIsNotCached(t *testing.T) {
	provider := &mocks.Provider{}
	provider.On("Fetch", mock.Anything).Return(nil, errors.New("timeout")).Once()
	provider.On("Fetch", mock.Anything).Return(generator(3, 1).Generate(), nil).Once()

	snap := source.NewSnapshot(provider)
	_, err := snap.Fetch(context.Background())
	require.Error(t, err)

	got, err := snap.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	snap.Reset()
	provider.On("Fetch", mock.Anything).Return(generator(4, 1).Generate(), nil).Once()
	got, err = snap.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)
	provider.AssertExpectations(t)
}

func TestSnapshot_ListStatuses(t *testing.T) {
	provider := &mocks.Provider{}
	provider.On("ListStatuses").Return([]record.Status{record.StatusActive})
	require.Equal(t, []record.Status{record.StatusActive}, source.NewSnapshot(provider).ListStatuses())

	plain := record.ProviderFunc(func(context.Context) ([]record.Record, error) { return nil, nil })
	require.Equal(t, record.Statuses(), source.NewSnapshot(plain).ListStatuses())
}

func TestWithLatency(t *testing.T) {
	inner := record.ProviderFunc(func(context.Context) ([]record.Record, error) {
		return generator(2, 1).Generate(), nil
	})
	_, unwrapped := source.WithLatency(inner, 0).(record.ProviderFunc)
	require.True(t, unwrapped)

	start := time.Now()
	got, err := source.WithLatency(inner, 20*time.Millisecond).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = source.WithLatency(inner, time.Hour).Fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSnapshot_WaiterHonoursOwnContext(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	snap := source.NewSnapshot(record.ProviderFunc(func(ctx context.Context) ([]record.Record, error) {
		calls.Add(1)
		select {
		case <-release:
			return generator(5, 2).Generate(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := snap.Fetch(firstCtx)
		first <- err
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	// A second caller with a short deadline gives up without waiting out the fetch.
	shortCtx, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	_, err := snap.Fetch(shortCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// Cancelling the first caller does not cancel the shared fetch.
	cancelFirst()
	require.ErrorIs(t, <-first, context.Canceled)
	close(release)

	got, err := snap.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 5)
	require.Equal(t, int32(1), calls.Load())
}

func TestSnapshot_FetchTimeout(t *testing.T) {
	snap := source.NewSnapshot(record.ProviderFunc(func(ctx context.Context) ([]record.Record, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})).WithFetchTimeout(10 * time.Millisecond)

	_, err := snap.Fetch(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
