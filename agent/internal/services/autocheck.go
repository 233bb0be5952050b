package services

import (
	"context"
	"sync"
	"time"

	"brn-watcher/agent/database"
	"brn-watcher/shared/config"
	"brn-watcher/shared/localization"
	"brn-watcher/shared/logger"
)

// CheckerState names the phase the auto-checker is currently in.
type CheckerState string

const (
	StateCollecting   CheckerState = "collecting"
	StateDispatching  CheckerState = "dispatching"
	StateResting      CheckerState = "resting"
	StateErrorBackoff CheckerState = "error-backoff"
)

// NotifyFunc delivers one text message to a user chat. A returned error
// means this delivery failed; the checker logs it and moves on.
type NotifyFunc func(chatID int64, text string) error

// AutoChecker periodically fetches balances for every wallet whose owner
// enabled auto-check and pushes the reports out in throttled chunks.
// One cycle: collect a snapshot, dispatch it, rest. A failing collection
// query backs off without consuming the rest interval.
type AutoChecker struct {
	store  database.Store
	client BalanceFetcher
	notify NotifyFunc
	log    *logger.Logger

	chunkSize    int
	entryDelay   time.Duration
	chunkDelay   time.Duration
	rest         time.Duration
	errorBackoff time.Duration

	mu        sync.Mutex
	state     CheckerState
	lastCycle time.Time
}

func NewAutoChecker(store database.Store, client BalanceFetcher, notify NotifyFunc, cfg config.AutoCheckConfig, log *logger.Logger) *AutoChecker {
	return &AutoChecker{
		store:        store,
		client:       client,
		notify:       notify,
		log:          log,
		chunkSize:    cfg.ChunkSize,
		entryDelay:   cfg.EntryDelay(),
		chunkDelay:   cfg.ChunkDelay(),
		rest:         cfg.Rest(),
		errorBackoff: cfg.ErrorBackoff(),
		state:        StateCollecting,
	}
}

// State reports the current phase for the health endpoint.
func (ac *AutoChecker) State() CheckerState {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.state
}

// LastCycle reports when the previous full cycle finished (zero before the
// first one completes).
func (ac *AutoChecker) LastCycle() time.Time {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.lastCycle
}

func (ac *AutoChecker) setState(s CheckerState) {
	ac.mu.Lock()
	ac.state = s
	ac.mu.Unlock()
}

// Run executes the collect → dispatch → rest cycle until ctx is cancelled.
// Cancellation takes effect at the next wait or between entries.
func (ac *AutoChecker) Run(ctx context.Context) {
	ac.log.Info("Auto-check scheduler started",
		"chunkSize", ac.chunkSize,
		"rest", ac.rest)

	for {
		ac.setState(StateCollecting)
		entries, err := ac.store.ListAutoCheckEntries(ctx)
		if err != nil {
			if ctx.Err() != nil {
				ac.log.Info("Auto-check scheduler stopped")
				return
			}
			ac.log.Error("Auto-check collection query failed, backing off", "error", err)
			ac.setState(StateErrorBackoff)
			if !sleepCtx(ctx, ac.errorBackoff) {
				ac.log.Info("Auto-check scheduler stopped")
				return
			}
			continue
		}

		ac.log.Info("Starting periodic check", "wallets", len(entries))

		ac.setState(StateDispatching)
		if !ac.dispatch(ctx, entries) {
			ac.log.Info("Auto-check scheduler stopped")
			return
		}

		ac.log.Info("Periodic check completed", "wallets", len(entries))
		ac.mu.Lock()
		ac.lastCycle = time.Now()
		ac.mu.Unlock()

		ac.setState(StateResting)
		if !sleepCtx(ctx, ac.rest) {
			ac.log.Info("Auto-check scheduler stopped")
			return
		}
	}
}

// dispatch processes the snapshot in fixed-size chunks, sequentially within
// a chunk, with the configured delays between entries and between chunks.
// Per-entry failures are logged and isolated. Returns false when cancelled.
func (ac *AutoChecker) dispatch(ctx context.Context, entries []database.AutoCheckEntry) bool {
	chunkSize := ac.chunkSize
	if chunkSize <= 0 {
		chunkSize = 1
	}

	for start := 0; start < len(entries); start += chunkSize {
		if start > 0 {
			if !sleepCtx(ctx, ac.chunkDelay) {
				return false
			}
		}

		end := start + chunkSize
		if end > len(entries) {
			end = len(entries)
		}

		for i, entry := range entries[start:end] {
			if i > 0 {
				if !sleepCtx(ctx, ac.entryDelay) {
					return false
				}
			}
			if ctx.Err() != nil {
				return false
			}
			ac.processEntry(ctx, entry)
		}
	}
	return true
}

// processEntry fetches one wallet and delivers the report. A fetch failure
// still notifies the user with the localized generic error, matching the
// manual check behavior.
func (ac *AutoChecker) processEntry(ctx context.Context, entry database.AutoCheckEntry) {
	lang := localization.ParseLanguage(entry.Language)

	var body string
	report, err := ac.client.Fetch(ctx, entry.Address)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		ac.log.Error("Auto-check balance fetch failed",
			"user", entry.UserID, "wallet", entry.Address, "error", err)
		body = localization.Text(lang, localization.MsgErrorOccurred)
	} else {
		body = FormatReport(lang, report)
	}

	text := localization.Text(lang, localization.MsgWalletInfo) + "\n\n" + body
	if err := ac.notify(entry.UserID, text); err != nil {
		ac.log.Error("Auto-check notification delivery failed",
			"user", entry.UserID, "wallet", entry.Address, "error", err)
	}
}
