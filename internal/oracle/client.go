/*

This file fetches the current SOL/BTC quote from the external price oracle.

The quote is advisory input for an admin workflow: a fetch never writes to any
store, and a failed fetch is surfaced immediately so the admin can decide
whether to retry. The response schema is validated strictly before anything
leaves this package.

*/

package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/wind-network/wind/internal/logger"
	"github.com/wind-network/wind/internal/types"
)

var oracleLogger = logger.GetForComponent("oracle_gateway")

// Candidate is a parsed, validated quote that has not yet been committed to
// the price store.
type Candidate struct {
	SolPrice float64 `json:"sol_price"`
	BtcPrice float64 `json:"btc_price"`
}

// quoteResponse mirrors the oracle's simple-price schema. Pointers distinguish
// missing fields from zero values.
type quoteResponse struct {
	Solana struct {
		USD *float64 `json:"usd"`
	} `json:"solana"`
	Bitcoin struct {
		USD *float64 `json:"usd"`
	} `json:"bitcoin"`
}

// Client talks to the external price oracle over HTTP with a bounded timeout.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient builds an oracle client. The timeout bounds the whole request;
// there is no internal retry.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch requests a quote and validates it into a Candidate. Any network,
// schema, or range failure surfaces as UpstreamUnavailable.
func (c *Client) Fetch(ctx context.Context) (Candidate, error) {
	candidate, _, err := c.fetchAndValidate(ctx)
	return candidate, err
}

// FetchRaw requests and validates a quote but returns the raw serialized body,
// for the read-through boundary call that does not persist anything.
func (c *Client) FetchRaw(ctx context.Context) (string, error) {
	_, raw, err := c.fetchAndValidate(ctx)
	return raw, err
}

func (c *Client) fetchAndValidate(ctx context.Context) (Candidate, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Candidate{}, "", types.NewError(types.KindUpstreamUnavailable, "failed to build oracle request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		oracleLogger.Warn().Err(err).Str("url", c.url).Msg("Oracle request failed")
		return Candidate{}, "", types.NewError(types.KindUpstreamUnavailable, "oracle request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		oracleLogger.Warn().Int("statusCode", resp.StatusCode).Msg("Oracle returned non-200 status")
		return Candidate{}, "", types.NewError(types.KindUpstreamUnavailable, "oracle returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Candidate{}, "", types.NewError(types.KindUpstreamUnavailable, "failed to read oracle response: %v", err)
	}
	if len(body) == 0 {
		return Candidate{}, "", types.NewError(types.KindUpstreamUnavailable, "empty oracle response body")
	}

	var quote quoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		oracleLogger.Warn().Err(err).Msg("Failed to parse oracle response")
		return Candidate{}, "", types.NewError(types.KindUpstreamUnavailable, "malformed oracle response: %v", err)
	}

	candidate, err := validateQuote(quote)
	if err != nil {
		oracleLogger.Warn().Err(err).Msg("Oracle quote failed validation")
		return Candidate{}, "", types.NewError(types.KindUpstreamUnavailable, "invalid oracle quote: %v", err)
	}

	oracleLogger.Debug().
		Float64("solPrice", candidate.SolPrice).
		Float64("btcPrice", candidate.BtcPrice).
		Msg("Oracle quote fetched and validated")

	return candidate, string(body), nil
}

// validateQuote enforces the strict schema: both symbols present, both
// numeric, both strictly positive and finite.
func validateQuote(quote quoteResponse) (Candidate, error) {
	fields := []struct {
		symbol string
		value  *float64
	}{
		{types.SymbolSOL, quote.Solana.USD},
		{types.SymbolBTC, quote.Bitcoin.USD},
	}

	for _, field := range fields {
		if field.value == nil {
			return Candidate{}, fmt.Errorf("missing %s price", field.symbol)
		}
		if math.IsNaN(*field.value) || math.IsInf(*field.value, 0) {
			return Candidate{}, fmt.Errorf("%s price is not finite: %f", field.symbol, *field.value)
		}
		if *field.value <= 0 {
			return Candidate{}, fmt.Errorf("%s price must be positive: %f", field.symbol, *field.value)
		}
	}

	return Candidate{
		SolPrice: *quote.Solana.USD,
		BtcPrice: *quote.Bitcoin.USD,
	}, nil
}
