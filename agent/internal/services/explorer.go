package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"brn-watcher/shared/config"
	"brn-watcher/shared/localization"
	"brn-watcher/shared/logger"

	"github.com/shopspring/decimal"
)

// brnDecimals is the fixed-point scale of the chain's native token.
const brnDecimals = 18

// txCountUnavailable is rendered when the counters endpoint fails while
// the balance call succeeded.
const txCountUnavailable = "N/A"

// WalletReport is the result of one successful balance fetch.
type WalletReport struct {
	Address string
	Balance decimal.Decimal
	TxCount string
}

// BalanceFetcher is the surface the auto-checker and the bot handlers
// depend on; ExplorerClient is the production implementation.
type BalanceFetcher interface {
	Fetch(ctx context.Context, wallet string) (*WalletReport, error)
}

// ExplorerClient fetches wallet balances from the Blockscout-style explorer
// API. One pooled http.Client is shared across all fetches; its Timeout is
// the per-attempt budget.
type ExplorerClient struct {
	httpClient  *http.Client
	baseURL     string
	maxAttempts int
	retryBase   time.Duration
	log         *logger.Logger
}

func NewExplorerClient(baseURL string, cfg config.ExplorerConfig, log *logger.Logger) *ExplorerClient {
	return &ExplorerClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:     baseURL,
		maxAttempts: cfg.MaxAttempts,
		retryBase:   cfg.RetryBase(),
		log:         log,
	}
}

type addressResponse struct {
	// Blockscout returns coin_balance as a big-integer string;
	// decimal.Decimal unmarshals both quoted and bare numbers.
	CoinBalance decimal.Decimal `json:"coin_balance"`
}

type countersResponse struct {
	TransactionsCount string `json:"transactions_count"`
}

// Fetch retrieves the balance and transaction count for an already
// validated wallet address. The balance call is retried up to the attempt
// budget with linearly growing delays; the counters call is best-effort
// and degrades to an unavailable sentinel on a non-success status.
func (c *ExplorerClient) Fetch(ctx context.Context, wallet string) (*WalletReport, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		report, err := c.fetchOnce(ctx, wallet)
		if err == nil {
			return report, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.log.Warn("Explorer fetch attempt failed",
			"wallet", wallet, "attempt", attempt, "error", err)

		if attempt < c.maxAttempts {
			if !sleepCtx(ctx, time.Duration(attempt)*c.retryBase) {
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("explorer fetch for %s failed after %d attempts: %w", wallet, c.maxAttempts, lastErr)
}

func (c *ExplorerClient) fetchOnce(ctx context.Context, wallet string) (*WalletReport, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/%s", c.baseURL, wallet))
	if err != nil {
		return nil, err
	}

	var addr addressResponse
	if err := json.Unmarshal(body, &addr); err != nil {
		return nil, fmt.Errorf("decode address response: %w", err)
	}

	report := &WalletReport{
		Address: wallet,
		Balance: addr.CoinBalance.Shift(-brnDecimals),
		TxCount: txCountUnavailable,
	}

	// Counters are best-effort: a failing counters endpoint must not throw
	// away an already fetched balance.
	countersBody, err := c.get(ctx, fmt.Sprintf("%s/%s/counters", c.baseURL, wallet))
	if err != nil {
		c.log.Warn("Explorer counters call failed, reporting count as unavailable",
			"wallet", wallet, "error", err)
		return report, nil
	}

	var counters countersResponse
	if err := json.Unmarshal(countersBody, &counters); err != nil {
		c.log.Warn("Explorer counters response malformed, reporting count as unavailable",
			"wallet", wallet, "error", err)
		return report, nil
	}

	if counters.TransactionsCount == "" {
		report.TxCount = "0"
	} else {
		report.TxCount = counters.TransactionsCount
	}
	return report, nil
}

func (c *ExplorerClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// FormatReport renders one wallet report in the user's language:
//
//	Wallet: 0x...
//	Balance: 1.500000 BRN
//	Transaction count: 42
func FormatReport(lang localization.Language, r *WalletReport) string {
	return fmt.Sprintf("%s %s\n%s %s BRN\n%s %s",
		localization.Text(lang, localization.MsgWallet), r.Address,
		localization.Text(lang, localization.MsgBalance), r.Balance.StringFixed(6),
		localization.Text(lang, localization.MsgTxCount), r.TxCount,
	)
}

// sleepCtx waits for d or until ctx is cancelled. Returns false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
