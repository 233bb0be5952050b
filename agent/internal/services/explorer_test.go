package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"brn-watcher/shared/config"
	"brn-watcher/shared/localization"
	"brn-watcher/shared/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(logger.Config{Level: "error"})
	require.NoError(t, err)
	return log
}

func newTestClient(t *testing.T, baseURL string, attempts, retryBaseSeconds int) *ExplorerClient {
	t.Helper()
	cfg := config.ExplorerConfig{
		TimeoutSeconds:   2,
		MaxAttempts:      attempts,
		RetryBaseSeconds: retryBaseSeconds,
	}
	return NewExplorerClient(baseURL, cfg, testLogger(t))
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var balanceCalls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/counters") {
			fmt.Fprint(w, `{"transactions_count":"42"}`)
			return
		}
		if atomic.AddInt32(&balanceCalls, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"coin_balance":"1500000000000000000"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3, 0)
	report, err := client.Fetch(context.Background(), "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)

	assert.Equal(t, "1.500000", report.Balance.StringFixed(6))
	assert.Equal(t, "42", report.TxCount)
	assert.EqualValues(t, 3, atomic.LoadInt32(&balanceCalls))
}

func TestFetchFailsAfterMaxAttempts(t *testing.T) {
	var balanceCalls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&balanceCalls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3, 0)
	_, err := client.Fetch(context.Background(), "0x1111111111111111111111111111111111111111")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.EqualValues(t, 3, atomic.LoadInt32(&balanceCalls))
}

func TestFetchRetryDelaysGrowLinearly(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3, 1)
	start := time.Now()
	_, err := client.Fetch(context.Background(), "0x1111111111111111111111111111111111111111")
	elapsed := time.Since(start)

	require.Error(t, err)
	// 1s after the first attempt plus 2s after the second.
	assert.GreaterOrEqual(t, elapsed, 3*time.Second)
	assert.Less(t, elapsed, 6*time.Second)
}

func TestFetchCountersUnavailable(t *testing.T) {
	var balanceCalls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/counters") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		atomic.AddInt32(&balanceCalls, 1)
		fmt.Fprint(w, `{"coin_balance":"1000000000000000000"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3, 0)
	report, err := client.Fetch(context.Background(), "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)

	assert.Equal(t, "N/A", report.TxCount)
	assert.Equal(t, "1.000000", report.Balance.StringFixed(6))
	// A failing counters endpoint must not re-run the balance call.
	assert.EqualValues(t, 1, atomic.LoadInt32(&balanceCalls))
}

func TestFetchCountersMissingFieldDefaultsToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/counters") {
			fmt.Fprint(w, `{}`)
			return
		}
		fmt.Fprint(w, `{"coin_balance":"0"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3, 0)
	report, err := client.Fetch(context.Background(), "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "0", report.TxCount)
}

func TestFetchContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, srv.URL, 3, 0)
	_, err := client.Fetch(ctx, "0x1111111111111111111111111111111111111111")
	require.Error(t, err)
}

func TestAddressResponseDecoding(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"quoted big integer", `{"coin_balance":"1500000000000000000"}`, "1500000000000000000"},
		{"bare number", `{"coin_balance":1500000000000000000}`, "1500000000000000000"},
		{"missing field", `{}`, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp addressResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &resp))
			assert.Equal(t, tt.want, resp.CoinBalance.String())
		})
	}
}

func TestBalanceRendering(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1500000000000000000", "1.500000"},
		{"0", "0.000000"},
		{"1", "0.000000"},
		{"123456789012345678", "0.123457"},
		{"1000000000000000000000", "1000.000000"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			raw := decimal.RequireFromString(tt.raw)
			assert.Equal(t, tt.want, raw.Shift(-brnDecimals).StringFixed(6))
		})
	}
}

func TestFormatReport(t *testing.T) {
	report := &WalletReport{
		Address: "0x1111111111111111111111111111111111111111",
		Balance: decimal.RequireFromString("1500000000000000000").Shift(-brnDecimals),
		TxCount: "7",
	}

	got := FormatReport(localization.LanguageEN, report)
	assert.Contains(t, got, "Wallet: 0x1111111111111111111111111111111111111111")
	assert.Contains(t, got, "Balance: 1.500000 BRN")
	assert.Contains(t, got, "Transaction count: 7")

	gotRU := FormatReport(localization.LanguageRU, report)
	assert.Contains(t, gotRU, "Баланс: 1.500000 BRN")
}
