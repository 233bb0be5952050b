package bot

import (
	"context"
	"sync"
	"time"
)

// UserLimiter smooths the inbound command stream per user: two accepted
// actions from the same user are spaced at least minInterval apart. It
// delays, never denies. State is owned by the limiter instance so tests
// construct a fresh one.
type UserLimiter struct {
	mu          sync.Mutex
	last        map[int64]time.Time
	minInterval time.Duration
}

func NewUserLimiter(minInterval time.Duration) *UserLimiter {
	return &UserLimiter{
		last:        make(map[int64]time.Time),
		minInterval: minInterval,
	}
}

// Admit blocks the caller until the user's previous admission is at least
// minInterval old, then returns. The admission timestamp is recorded at
// call time, before any delay, so a slow handler does not stretch the
// spacing seen by the next call. A zero userID (no identifiable sender)
// bypasses throttling. The wait is cut short when ctx is cancelled.
func (l *UserLimiter) Admit(ctx context.Context, userID int64) error {
	if userID == 0 || l.minInterval <= 0 {
		return nil
	}

	now := time.Now()

	l.mu.Lock()
	var delay time.Duration
	if last, ok := l.last[userID]; ok {
		if elapsed := now.Sub(last); elapsed < l.minInterval {
			delay = l.minInterval - elapsed
		}
	}
	l.last[userID] = now
	l.mu.Unlock()

	if delay <= 0 {
		return nil
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
