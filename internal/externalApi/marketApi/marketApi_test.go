package marketApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finbridge/portfolio_engine/config"
	"github.com/finbridge/portfolio_engine/internal/externalApi"
	"github.com/finbridge/portfolio_engine/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		API: config.API{
			Timeout:   5 * time.Second,
			StockApi:  config.StockApi{Url: url},
			CryptoApi: config.CryptoApi{Url: url},
			ForexApi:  config.ForexApi{Url: url},
		},
	}
}

func TestGetStockQuotes_BatchesAndFilters(t *testing.T) {
	var gotSymbols string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbols = r.URL.Query().Get("symbols")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quotes": [
			{"symbol": "AAPL", "price": 123.45},
			{"symbol": "STR", "price": "10.5"},
			{"symbol": "ZERO", "price": 0},
			{"symbol": "NEG", "price": -5},
			{"symbol": "JUNK", "price": "n/a"},
			{"symbol": "NULL", "price": null}
		]}`))
	}))
	defer srv.Close()

	api := New(testConfig(srv.URL))

	quotes, err := api.GetStockQuotes(context.Background(), []string{"AAPL", "STR", "ZERO", "NEG", "JUNK", "NULL"})

	require.NoError(t, err)
	assert.Equal(t, "AAPL,STR,ZERO,NEG,JUNK,NULL", gotSymbols)

	// only the two parseable positive prices survive
	require.Len(t, quotes, 2)
	assert.Equal(t, "AAPL", quotes[0].Symbol)
	assert.True(t, quotes[0].Price.Equal(decimal.NewFromFloat(123.45)))
	assert.Equal(t, "STR", quotes[1].Symbol)
	assert.True(t, quotes[1].Price.Equal(decimal.NewFromFloat(10.5)))
	assert.Equal(t, model.AssetClassStock, quotes[0].AssetClass)
}

func TestGetForexQuotes_HyphenRouting(t *testing.T) {
	var gotSymbols string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbols = r.URL.Query().Get("symbols")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quotes": [{"symbol": "EUR/USD", "price": 1.1}]}`))
	}))
	defer srv.Close()

	api := New(testConfig(srv.URL))

	quotes, err := api.GetForexQuotes(context.Background(), []string{"EUR/USD", "GBP/USD"})

	require.NoError(t, err)
	assert.Equal(t, "EUR-USD,GBP-USD", gotSymbols)
	require.Len(t, quotes, 1)
	assert.Equal(t, model.AssetClassForex, quotes[0].AssetClass)
}

func TestGetQuotes_EmptyBatchSkipsCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	api := New(testConfig(srv.URL))

	quotes, err := api.GetCryptoQuotes(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, quotes)
	assert.Equal(t, 0, calls)
}

func TestGetQuotes_SourceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	api := New(testConfig(srv.URL))

	_, err := api.GetStockQuotes(context.Background(), []string{"AAPL"})
	assert.ErrorIs(t, err, externalApi.ErrSourceUnavailable)
}

func TestGetQuotes_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	api := New(testConfig(srv.URL))

	_, err := api.GetCryptoQuotes(context.Background(), []string{"BTCUSDT"})
	assert.ErrorIs(t, err, externalApi.ErrSourceUnavailable)
}
