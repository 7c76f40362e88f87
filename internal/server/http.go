package server

import (
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"TimetableSim/internal/campus"
	"TimetableSim/internal/store"
)

//go:generate go run ./cmd/webbuild

/* ------------------------------ Embeds ------------------------------ */

//go:embed web/index.html
var htmlIndex []byte

//go:embed web/client.js
var jsClient []byte

/* ------------------------------- HTTP ------------------------------- */

// NewRouter returns every route of the viewer behind the CORS policy.
func NewRouter(h *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(htmlIndex)
	})
	mux.HandleFunc("GET /client.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write(jsClient)
	})
	mux.HandleFunc("/ws", h.serveWS)
	mux.HandleFunc("GET /api/schedules", h.handleSchedules)
	mux.HandleFunc("GET /api/rooms", h.handleRooms)
	mux.HandleFunc("GET /api/occupation", h.handleOccupation)
	mux.HandleFunc("GET /api/runs", h.handleRuns)
	mux.HandleFunc("GET /api/runs/{id}", h.handleRun)

	c := cors.New(cors.Options{
		AllowedOrigins: h.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	})
	return c.Handler(mux)
}

func (h *Hub) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("encode response", zap.Error(err))
	}
}

func (h *Hub) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// handleSchedules lists every schedule, or one with ?id=.
func (h *Hub) handleSchedules(w http.ResponseWriter, r *http.Request) {
	rep, err := h.state.Report()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	all := schedulesFromReport(rep)
	raw := r.URL.Query().Get("id")
	if raw == "" {
		h.writeJSON(w, http.StatusOK, all)
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}
	for _, s := range all {
		if s.ID == id {
			h.writeJSON(w, http.StatusOK, s)
			return
		}
	}
	h.writeError(w, http.StatusNotFound, campus.ErrUnknownEntity.Error())
}

func (h *Hub) handleRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.state.Rooms()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, roomsFromMap(rooms))
}

func (h *Hub) handleOccupation(w http.ResponseWriter, r *http.Request) {
	rep, err := h.state.Report()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, occupancyFromReport(rep))
}

func (h *Hub) handleRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.writeError(w, http.StatusNotFound, "no run store configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, runsToDTO(runs))
}

func (h *Hub) handleRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.writeError(w, http.StatusNotFound, "no run store configured")
		return
	}
	rep, err := h.runs.LoadReport(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrRunNotFound) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"seed":      rep.Seed,
		"hosts":     rep.Hosts,
		"schedules": schedulesFromReport(rep),
		"occupancy": occupancyFromReport(rep),
	})
}
