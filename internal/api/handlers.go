package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yegors/flightboard/internal/board"
	"github.com/yegors/flightboard/internal/routes"
	"github.com/yegors/flightboard/internal/storage/sqlite"
	"github.com/yegors/flightboard/pkg/logger"
)

// BoardSource exposes the published board and loop health
type BoardSource interface {
	Board() *board.Board
	Status() board.Status
}

// RouteSource exposes the route cache
type RouteSource interface {
	Snapshot() []routes.Record
	Resolve(callsign string) (routes.Record, bool)
}

// HistorySource reads stored observations
type HistorySource interface {
	GetHistory(callsign string, limit int) ([]sqlite.Observation, error)
}

// ConnectionHandler upgrades a request to a WebSocket
type ConnectionHandler interface {
	HandleConnection(w http.ResponseWriter, r *http.Request)
}

// Handler contains the API handlers
type Handler struct {
	board   BoardSource
	routes  RouteSource
	history HistorySource
	ws      ConnectionHandler
	logger  *logger.Logger
}

// NewHandler creates a new API handler. history and ws may be nil.
func NewHandler(boardSource BoardSource, routeSource RouteSource, history HistorySource, ws ConnectionHandler, log *logger.Logger) *Handler {
	return &Handler{
		board:   boardSource,
		routes:  routeSource,
		history: history,
		ws:      ws,
		logger:  log.Named("api-handler"),
	}
}

// GetHealth returns the health of the refresh and poll loops
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	st := h.board.Status()

	status := "ok"
	if !st.PollOK || !st.RefreshOK {
		status = "degraded"
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": status,
		"loops":  st,
	})
}

// GetBoard returns the latest board
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.board.Board())
}

// GetRoutes returns the route cache keyed by callsign
func (h *Handler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	snapshot := h.routes.Snapshot()
	byCallsign := make(map[string]routes.Record, len(snapshot))
	for _, rec := range snapshot {
		byCallsign[rec.Callsign] = rec
	}
	WriteJSON(w, http.StatusOK, byCallsign)
}

// GetRoute returns one route. Unknown callsigns get 404 with the fallback
// record in the body.
func (h *Handler) GetRoute(w http.ResponseWriter, r *http.Request) {
	callsign := strings.TrimSpace(chi.URLParam(r, "callsign"))
	if callsign == "" {
		http.Error(w, "Missing callsign", http.StatusBadRequest)
		return
	}

	rec, ok := h.routes.Resolve(callsign)
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	WriteJSON(w, status, map[string]interface{}{
		"known": ok,
		"route": rec,
	})
}

// GetHistory returns stored observations for a callsign, newest first
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		http.Error(w, "History is not enabled", http.StatusServiceUnavailable)
		return
	}

	callsign := routes.NormalizeCallsign(chi.URLParam(r, "callsign"))
	if callsign == "" {
		http.Error(w, "Missing callsign", http.StatusBadRequest)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	obs, err := h.history.GetHistory(callsign, limit)
	if err != nil {
		h.logger.Error("Failed to read history", logger.String("callsign", callsign), logger.Error(err))
		http.Error(w, "Failed to read history", http.StatusInternalServerError)
		return
	}
	if obs == nil {
		obs = []sqlite.Observation{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"callsign":     callsign,
		"count":        len(obs),
		"observations": obs,
	})
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
