package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/swiftfind/swiftfind/internal/apperr"
	"github.com/swiftfind/swiftfind/internal/service"
	"github.com/swiftfind/swiftfind/internal/transport"
)

// Handler holds API route handlers.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Query handles POST /api/query: the raw JSON command facade. The
// response is always 200 with a tagged envelope; errors travel inside
// it as {status: "err", error: {code, message}}.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(transport.HandleJSON(h.svc, payload)); err != nil {
		slog.Error("query response write failed", slog.String("error", err.Error()))
	}
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Launch handles POST /api/launch.
func (h *Handler) Launch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req LaunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.Launch(req.ID, req.Path); err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidRequest):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrItemNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		default:
			slog.Error("launch failed", slog.String("id", req.ID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, LaunchResponse{Launched: true})
}

// Rebuild handles POST /api/rebuild.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.RebuildWithReport()
	if err != nil {
		slog.Error("rebuild failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	resp := RebuildResponse{
		IndexedTotal: report.IndexedTotal,
		RemovedTotal: report.RemovedTotal,
		Providers:    make([]ProviderReport, 0, len(report.Providers)),
	}
	for _, p := range report.Providers {
		resp.Providers = append(resp.Providers, ProviderReport{
			Provider:   p.Provider,
			Discovered: p.Discovered,
			ElapsedMS:  p.ElapsedMS,
			Error:      p.Err,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Status handles GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.ItemCount()
	if err != nil {
		slog.Error("status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		ConfigVersion:  h.svc.Config().Version,
		IndexedItems:   count,
		PluginWarnings: h.svc.PluginWarnings(),
	})
}
