package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/lighthorse/backend/internal/cache"
	"github.com/wonny/lighthorse/backend/internal/dashboard"
	"github.com/wonny/lighthorse/backend/internal/rankchange"
	"github.com/wonny/lighthorse/backend/pkg/logger"
)

// ViewHandler serves catalog views as JSON
// ⭐ SSOT: 뷰 API 핸들러는 이 구조체에서만
type ViewHandler struct {
	service *dashboard.Service
	cache   *cache.ResponseCache
	logger  *logger.Logger
}

// NewViewHandler creates a new view handler
func NewViewHandler(svc *dashboard.Service, rc *cache.ResponseCache, log *logger.Logger) *ViewHandler {
	return &ViewHandler{
		service: svc,
		cache:   rc,
		logger:  log,
	}
}

// ListViews returns the catalog
// GET /api/views
func (h *ViewHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	cat := h.service.Catalog()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"title": cat.Title,
		"pages": cat.Pages,
		"count": len(cat.Views()),
	})
}

// GetView returns a loaded view
// GET /api/views/{key}?q=삼성
func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	view, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// RankChangesResponse is the rank-change table for the latest date
type RankChangesResponse struct {
	View        string               `json:"view"`
	Kind        rankchange.Kind      `json:"kind"`
	Latest      *string              `json:"latest,omitempty"`
	Previous    *string              `json:"previous,omitempty"`
	RankChanges []dashboard.DeltaRow `json:"rank_changes"`
	Warnings    []rankchange.Warning `json:"warnings,omitempty"`
	Notices     []dashboard.Notice   `json:"notices,omitempty"`
	FetchedAt   *time.Time           `json:"fetched_at,omitempty"`
}

// GetRankChanges returns only the rank-change analysis of a view
// GET /api/views/{key}/rank-changes
func (h *ViewHandler) GetRankChanges(w http.ResponseWriter, r *http.Request) {
	view, ok := h.load(w, r)
	if !ok {
		return
	}

	resp := RankChangesResponse{
		View:        view.Key,
		Kind:        view.Kind,
		RankChanges: []dashboard.DeltaRow{},
		Notices:     view.Notices,
		FetchedAt:   view.FetchedAt,
	}
	if view.Analysis != nil {
		resp.RankChanges = view.Rows
		resp.Warnings = view.Analysis.Warnings
		resp.Latest = displayDate(view.Analysis.Latest)
		resp.Previous = displayDate(view.Analysis.Previous)
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetCacheStats returns response cache statistics
// GET /api/cache
func (h *ViewHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cache.Stats())
}

func (h *ViewHandler) load(w http.ResponseWriter, r *http.Request) (*dashboard.View, bool) {
	key := mux.Vars(r)["key"]
	q := dashboard.Query{Search: r.URL.Query().Get("q")}

	view, err := h.service.Load(r.Context(), key, q)
	if errors.Is(err, dashboard.ErrUnknownView) {
		respondError(w, http.StatusNotFound, "Unknown view: "+key)
		return nil, false
	}
	if err != nil {
		h.logger.WithError(err).WithField("view", key).Error("Failed to load view")
		respondError(w, http.StatusInternalServerError, "Failed to load view")
		return nil, false
	}
	return view, true
}

func displayDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

