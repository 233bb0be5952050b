package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmitSpacesRapidCallsFromSameUser(t *testing.T) {
	l := NewUserLimiter(100 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, l.Admit(ctx, 1))
	require.NoError(t, l.Admit(ctx, 1))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestAdmitNoDelayWhenAlreadySpaced(t *testing.T) {
	l := NewUserLimiter(50 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Admit(ctx, 1))
	time.Sleep(60 * time.Millisecond)

	start := time.Now()
	require.NoError(t, l.Admit(ctx, 1))
	assert.Less(t, time.Since(start), 30*time.Millisecond)
}

func TestAdmitBypassesUnknownSender(t *testing.T) {
	l := NewUserLimiter(time.Hour)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, l.Admit(ctx, 0))
	require.NoError(t, l.Admit(ctx, 0))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestAdmitDisabledWhenIntervalZero(t *testing.T) {
	l := NewUserLimiter(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Admit(ctx, 1))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestAdmitIndependentUsersDoNotBlockEachOther(t *testing.T) {
	l := NewUserLimiter(200 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Admit(ctx, 1))

	start := time.Now()
	require.NoError(t, l.Admit(ctx, 2))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestAdmitReturnsOnCancellation(t *testing.T) {
	l := NewUserLimiter(time.Hour)
	require.NoError(t, l.Admit(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := l.Admit(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAdmitConcurrentCallsKeepSpacing(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	l := NewUserLimiter(50 * time.Millisecond)
	ctx := context.Background()

	var (
		mu       sync.Mutex
		admitted []time.Time
		wg       sync.WaitGroup
	)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Admit(ctx, 7); err != nil {
				return
			}
			mu.Lock()
			admitted = append(admitted, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, admitted, 3)
	// Admission timestamps are recorded at call time, so three concurrent
	// calls cannot all return immediately.
	var earliest, latest time.Time
	for _, ts := range admitted {
		if earliest.IsZero() || ts.Before(earliest) {
			earliest = ts
		}
		if ts.After(latest) {
			latest = ts
		}
	}
	assert.GreaterOrEqual(t, latest.Sub(earliest), 40*time.Millisecond)
}
