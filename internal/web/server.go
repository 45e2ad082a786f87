package web

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/gorilla/mux"

	"github.com/wind-network/wind/internal/logger"
	"github.com/wind-network/wind/internal/service"
	"github.com/wind-network/wind/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

// callerHeader carries the opaque principal resolved by the fronting identity
// provider. An absent or empty header means the caller is anonymous.
const callerHeader = "X-Caller-Principal"

// WebServer handles HTTP requests for the Wind dashboard backend.
type WebServer struct {
	router  *mux.Router
	port    string
	svc     *service.Service
	backend string
	// healthCheck probes the store backend; nil means always healthy
	// (memory mode).
	healthCheck func() error
	startedAt   time.Time
	httpServer  *http.Server
}

// NewWebServer creates a new web server instance.
func NewWebServer(port string, svc *service.Service, backend string, healthCheck func() error) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:      mux.NewRouter(),
		port:        port,
		svc:         svc,
		backend:     backend,
		healthCheck: healthCheck,
		startedAt:   time.Now(),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes.
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	api := ws.router.PathPrefix("/api").Subrouter()

	// Unrestricted reads
	api.HandleFunc("/prices", ws.handleGetPrices).Methods("GET")
	api.HandleFunc("/benchmarks", ws.handleGetBenchmarks).Methods("GET")
	api.HandleFunc("/rewards", ws.handleGetRewards).Methods("GET")
	api.HandleFunc("/auth/check", ws.handleAuthCheck).Methods("GET")

	// Identity-scoped profile access
	api.HandleFunc("/profile", ws.handleGetProfile).Methods("GET")
	api.HandleFunc("/profile", ws.handleSaveProfile).Methods("PUT")

	// Admin-authorized writes
	api.HandleFunc("/prices", ws.handleUpdatePrices).Methods("POST")
	api.HandleFunc("/benchmarks", ws.handleSetBenchmarks).Methods("PUT")
	api.HandleFunc("/benchmarks/snapshot", ws.handleSnapshotBenchmarks).Methods("POST")
	api.HandleFunc("/rewards", ws.handleRecordReward).Methods("POST")
	api.HandleFunc("/prices/fetch", ws.handleFetchPriceData).Methods("POST")

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server and blocks until it stops.
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	ws.httpServer = &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return ws.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	if ws.httpServer == nil {
		return nil
	}
	webLogger.Info().Msg("Shutting down web server")
	return ws.httpServer.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

func callerFrom(r *http.Request) types.Principal {
	return types.Principal(r.Header.Get(callerHeader))
}

// handleHealth returns server health status.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	storeHealthy := true
	if ws.healthCheck != nil {
		if err := ws.healthCheck(); err != nil {
			webLogger.Error().Err(err).Msg("Store backend health check failed")
			storeHealthy = false
		}
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !storeHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
			"uptime_seconds":   int64(time.Since(ws.startedAt).Seconds()),
		},
		"component": map[string]interface{}{
			"name":          "wind-price-reward-backend",
			"state_backend": ws.backend,
			"store_healthy": storeHealthy,
		},
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetPrices returns the current price snapshot, or null when empty.
func (ws *WebServer) handleGetPrices(w http.ResponseWriter, r *http.Request) {
	pair, err := ws.svc.GetCurrentPrices(r.Context())
	if err != nil {
		ws.writeDomainError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, pair)
}

// handleGetBenchmarks returns the ordered (symbol, value) benchmark pairs.
func (ws *WebServer) handleGetBenchmarks(w http.ResponseWriter, r *http.Request) {
	benchmarks, err := ws.svc.GetPriceBenchmarks(r.Context())
	if err != nil {
		ws.writeDomainError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, benchmarks)
}

// handleGetRewards returns the reward history in insertion order.
func (ws *WebServer) handleGetRewards(w http.ResponseWriter, r *http.Request) {
	events, err := ws.svc.GetRewardHistory(r.Context())
	if err != nil {
		ws.writeDomainError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, events)
}

// handleAuthCheck reports admin membership. Never errors.
func (ws *WebServer) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	isAdmin := ws.svc.IsCallerAdmin(callerFrom(r))
	ws.writeJSONResponse(w, http.StatusOK, map[string]bool{"is_admin": isAdmin})
}

// handleGetProfile returns the caller's own profile, or null when none exists.
func (ws *WebServer) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := ws.svc.GetCallerProfile(r.Context(), callerFrom(r))
	if err != nil {
		ws.writeDomainError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, profile)
}

// handleSaveProfile upserts the caller's own profile.
func (ws *WebServer) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var profile types.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		ws.writeDomainError(w, types.NewError(types.KindInvalidInput, "malformed profile payload: %v", err))
		return
	}

	if err := ws.svc.SaveCallerProfile(r.Context(), callerFrom(r), profile); err != nil {
		ws.writeDomainError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, profile)
}

type pricePayload struct {
	SolPrice float64 `json:"sol_price"`
	BtcPrice float64 `json:"btc_price"`
}

// handleUpdatePrices replaces the price snapshot (admin only).
func (ws *WebServer) handleUpdatePrices(w http.ResponseWriter, r *http.Request) {
	var payload pricePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		ws.writeDomainError(w, types.NewError(types.KindInvalidInput, "malformed price payload: %v", err))
		return
	}

	pair, err := ws.svc.UpdateCurrentPrices(r.Context(), callerFrom(r), payload.SolPrice, payload.BtcPrice)
	if err != nil {
		ws.writeDomainError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, pair)
}

// handleSetBenchmarks writes an explicit benchmark pair (admin only).
func (ws *WebServer) handleSetBenchmarks(w http.ResponseWriter, r *http.Request) {
	var payload pricePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		ws.writeDomainError(w, types.NewError(types.KindInvalidInput, "malformed benchmark payload: %v", err))
		return
	}

	benchmarks, err := ws.svc.SetBenchmarks(r.Context(), callerFrom(r), payload.SolPrice, payload.BtcPrice)
	if err != nil {
		ws.writeDomainError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, benchmarks)
}

// handleSnapshotBenchmarks copies current prices into the benchmarks (admin only).
func (ws *WebServer) handleSnapshotBenchmarks(w http.ResponseWriter, r *http.Request) {
	benchmarks, err := ws.svc.SnapshotBenchmarks(r.Context(), callerFrom(r))
	if err != nil {
		ws.writeDomainError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, benchmarks)
}

type rewardPayload struct {
	Recipient        string `json:"recipient"`
	Amount           string `json:"amount"`
	TriggerCondition string `json:"trigger_condition"`
}

// handleRecordReward appends a reward event to the ledger (admin only).
func (ws *WebServer) handleRecordReward(w http.ResponseWriter, r *http.Request) {
	var payload rewardPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		ws.writeDomainError(w, types.NewError(types.KindInvalidInput, "malformed reward payload: %v", err))
		return
	}

	amount, err := sdkmath.LegacyNewDecFromStr(payload.Amount)
	if err != nil {
		ws.writeDomainError(w, types.NewError(types.KindInvalidInput, "invalid reward amount %q: %v", payload.Amount, err))
		return
	}

	event, err := ws.svc.RecordRewardEvent(r.Context(), callerFrom(r), payload.Recipient, amount, payload.TriggerCondition)
	if err != nil {
		ws.writeDomainError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusCreated, event)
}

// handleFetchPriceData performs the read-through oracle call and returns the
// raw serialized quote. Nothing is persisted.
func (ws *WebServer) handleFetchPriceData(w http.ResponseWriter, r *http.Request) {
	raw, err := ws.svc.FetchPriceData(r.Context(), callerFrom(r))
	if err != nil {
		ws.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(raw)); err != nil {
		webLogger.Error().Err(err).Msg("Failed to write raw quote response")
	}
}

// writeJSONResponse writes a JSON response.
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeDomainError maps a typed boundary error onto an HTTP status and a
// (kind, message) JSON body so clients can branch without string matching.
func (ws *WebServer) writeDomainError(w http.ResponseWriter, err error) {
	kind := types.KindOf(err)

	statusCode := http.StatusInternalServerError
	switch kind {
	case types.KindNotAuthenticated:
		statusCode = http.StatusUnauthorized
	case types.KindPermissionDenied:
		statusCode = http.StatusForbidden
	case types.KindInvalidInput:
		statusCode = http.StatusBadRequest
	case types.KindNoCurrentPrice:
		statusCode = http.StatusConflict
	case types.KindUpstreamUnavailable:
		statusCode = http.StatusBadGateway
	}

	message := err.Error()
	if kind == types.KindInternal {
		webLogger.Error().Err(err).Msg("Internal error at HTTP boundary")
		message = "internal error"
	}

	response := map[string]interface{}{
		"error":   true,
		"kind":    kind,
		"message": message,
	}
	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers.
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+callerHeader)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests.
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code.
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
