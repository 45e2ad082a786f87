package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wind-network/wind/internal/auth"
	"github.com/wind-network/wind/internal/oracle"
	"github.com/wind-network/wind/internal/service"
	"github.com/wind-network/wind/internal/state"
	"github.com/wind-network/wind/internal/types"
)

const adminPrincipal = "admin-1"

func newTestServer(t *testing.T, oracleURL string) *WebServer {
	t.Helper()

	registry := auth.NewAdminRegistry([]string{adminPrincipal})
	svc, err := service.New(service.Config{
		Guard:    auth.NewGuard(registry),
		Registry: registry,
		Stores:   state.NewMemoryStores(),
		Oracle:   oracle.NewClient(oracleURL, 2*time.Second),
	})
	require.NoError(t, err)

	return NewWebServer("0", svc, "memory", nil)
}

func doRequest(ws *WebServer, method, path, caller string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if caller != "" {
		req.Header.Set(callerHeader, caller)
	}
	recorder := httptest.NewRecorder()
	ws.Handler().ServeHTTP(recorder, req)
	return recorder
}

func errorKind(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error   bool   `json:"error"`
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.True(t, payload.Error)
	return payload.Kind
}

func TestGetPrices_EmptyReturnsNull(t *testing.T) {
	ws := newTestServer(t, "http://127.0.0.1:0")

	recorder := doRequest(ws, http.MethodGet, "/api/prices", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, "null", recorder.Body.String())
}

func TestUpdatePrices_AuthMatrix(t *testing.T) {
	ws := newTestServer(t, "http://127.0.0.1:0")
	payload := map[string]float64{"sol_price": 150.0, "btc_price": 45000.0}

	recorder := doRequest(ws, http.MethodPost, "/api/prices", "", payload)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, string(types.KindNotAuthenticated), errorKind(t, recorder))

	recorder = doRequest(ws, http.MethodPost, "/api/prices", "user-42", payload)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, string(types.KindPermissionDenied), errorKind(t, recorder))

	recorder = doRequest(ws, http.MethodPost, "/api/prices", adminPrincipal, payload)
	assert.Equal(t, http.StatusOK, recorder.Code)

	// Round trip through the read endpoint, field for field
	recorder = doRequest(ws, http.MethodGet, "/api/prices", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var pair types.PricePair
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &pair))
	assert.Equal(t, 150.0, pair.SolPrice)
	assert.Equal(t, 45000.0, pair.BtcPrice)
	assert.NotZero(t, pair.Timestamp)
}

func TestUpdatePrices_InvalidInput(t *testing.T) {
	ws := newTestServer(t, "http://127.0.0.1:0")

	recorder := doRequest(ws, http.MethodPost, "/api/prices", adminPrincipal, map[string]float64{"sol_price": 0, "btc_price": 100})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, string(types.KindInvalidInput), errorKind(t, recorder))

	// State unchanged
	recorder = doRequest(ws, http.MethodGet, "/api/prices", "", nil)
	assert.JSONEq(t, "null", recorder.Body.String())
}

func TestBenchmarkEndpoints(t *testing.T) {
	ws := newTestServer(t, "http://127.0.0.1:0")

	// Snapshot with no current price fails NoCurrentPrice (409)
	recorder := doRequest(ws, http.MethodPost, "/api/benchmarks/snapshot", adminPrincipal, nil)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, string(types.KindNoCurrentPrice), errorKind(t, recorder))

	doRequest(ws, http.MethodPost, "/api/prices", adminPrincipal, map[string]float64{"sol_price": 150.0, "btc_price": 45000.0})

	recorder = doRequest(ws, http.MethodPost, "/api/benchmarks/snapshot", adminPrincipal, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(ws, http.MethodGet, "/api/benchmarks", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var benchmarks []types.Benchmark
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &benchmarks))
	require.Len(t, benchmarks, 2)
	assert.Equal(t, types.Benchmark{Symbol: "SOL", Value: 150.0}, benchmarks[0])
	assert.Equal(t, types.Benchmark{Symbol: "BTC", Value: 45000.0}, benchmarks[1])

	// Explicit-value form
	recorder = doRequest(ws, http.MethodPut, "/api/benchmarks", adminPrincipal, map[string]float64{"sol_price": 120.0, "btc_price": 40000.0})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(ws, http.MethodGet, "/api/benchmarks", "", nil)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &benchmarks))
	assert.Equal(t, 120.0, benchmarks[0].Value)
	assert.Equal(t, 40000.0, benchmarks[1].Value)
}

func TestRecordReward_RoundTrip(t *testing.T) {
	ws := newTestServer(t, "http://127.0.0.1:0")

	// Build a satisfied SOL trigger: benchmark 150, current 195.
	doRequest(ws, http.MethodPost, "/api/prices", adminPrincipal, map[string]float64{"sol_price": 150.0, "btc_price": 45000.0})
	doRequest(ws, http.MethodPost, "/api/benchmarks/snapshot", adminPrincipal, nil)
	doRequest(ws, http.MethodPost, "/api/prices", adminPrincipal, map[string]float64{"sol_price": 195.0, "btc_price": 45000.0})

	payload := map[string]string{
		"recipient":         "wallet123",
		"amount":            "0.5",
		"trigger_condition": "SOL+30%",
	}
	recorder := doRequest(ws, http.MethodPost, "/api/rewards", adminPrincipal, payload)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created types.RewardEvent
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.Equal(t, "wallet123", created.Recipient)
	assert.True(t, created.Amount.Equal(sdkmath.LegacyMustNewDecFromStr("0.5")), "amount must survive encoding without precision loss")

	recorder = doRequest(ws, http.MethodGet, "/api/rewards", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var history []types.RewardEvent
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, created.ID, history[0].ID)
	assert.True(t, history[0].Amount.Equal(created.Amount))
	assert.Equal(t, created.Timestamp, history[0].Timestamp)
}

func TestRecordReward_Denied(t *testing.T) {
	ws := newTestServer(t, "http://127.0.0.1:0")
	payload := map[string]string{
		"recipient":         "wallet123",
		"amount":            "0.5",
		"trigger_condition": "SOL+30%",
	}

	recorder := doRequest(ws, http.MethodPost, "/api/rewards", "user-42", payload)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = doRequest(ws, http.MethodGet, "/api/rewards", "", nil)
	assert.JSONEq(t, "[]", recorder.Body.String())
}

func TestRecordReward_BadAmount(t *testing.T) {
	ws := newTestServer(t, "http://127.0.0.1:0")
	payload := map[string]string{
		"recipient":         "wallet123",
		"amount":            "not-a-number",
		"trigger_condition": "SOL+30%",
	}

	recorder := doRequest(ws, http.MethodPost, "/api/rewards", adminPrincipal, payload)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, string(types.KindInvalidInput), errorKind(t, recorder))
}

func TestAuthCheck_NeverErrors(t *testing.T) {
	ws := newTestServer(t, "http://127.0.0.1:0")

	for _, caller := range []string{"", "user-42", adminPrincipal} {
		recorder := doRequest(ws, http.MethodGet, "/api/auth/check", caller, nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var payload map[string]bool
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
		assert.Equal(t, caller == adminPrincipal, payload["is_admin"])
	}
}

func TestFetchPriceData_RawPassthrough(t *testing.T) {
	quote := `{"solana":{"usd":171.23},"bitcoin":{"usd":45210.5}}`
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(quote))
	}))
	defer upstream.Close()

	ws := newTestServer(t, upstream.URL)

	recorder := doRequest(ws, http.MethodPost, "/api/prices/fetch", adminPrincipal, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, quote, recorder.Body.String())

	// Nothing persisted by the read-through call
	recorder = doRequest(ws, http.MethodGet, "/api/prices", "", nil)
	assert.JSONEq(t, "null", recorder.Body.String())
}

func TestFetchPriceData_UpstreamDown(t *testing.T) {
	ws := newTestServer(t, "http://127.0.0.1:1")

	recorder := doRequest(ws, http.MethodPost, "/api/prices/fetch", adminPrincipal, nil)
	assert.Equal(t, http.StatusBadGateway, recorder.Code)
	assert.Equal(t, string(types.KindUpstreamUnavailable), errorKind(t, recorder))
}

func TestProfileEndpoints(t *testing.T) {
	ws := newTestServer(t, "http://127.0.0.1:0")

	recorder := doRequest(ws, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doRequest(ws, http.MethodGet, "/api/profile", "user-42", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, "null", recorder.Body.String())

	profile := types.UserProfile{Name: "Alice", Wallet: "wallet123"}
	recorder = doRequest(ws, http.MethodPut, "/api/profile", "user-42", profile)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(ws, http.MethodGet, "/api/profile", "user-42", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var stored types.UserProfile
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &stored))
	assert.Equal(t, profile, stored)
}

func TestHealth(t *testing.T) {
	ws := newTestServer(t, "http://127.0.0.1:0")

	recorder := doRequest(ws, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, "OK", payload["status"])
}
