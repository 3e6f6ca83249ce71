package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"almanac/internal/domain"
)

const defaultMinSimilarity = 50

func queryInt(r *http.Request, key string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseFilter(r *http.Request) (domain.ItemFilter, string) {
	var filter domain.ItemFilter
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return filter, "invalid status: " + raw
		}
		filter.Status = &status
	}
	if raw := q.Get("sourceId"); raw != "" {
		filter.SourceID = &raw
	}
	if raw := q.Get("contentType"); raw != "" {
		ct := domain.ContentType(raw)
		if !ct.Valid() {
			return filter, "invalid contentType: " + raw
		}
		filter.ContentType = &ct
	}

	var ok bool
	if filter.MinQuality, ok = queryInt(r, "minQuality", 0); !ok {
		return filter, "minQuality must be an integer"
	}
	if filter.Page, ok = queryInt(r, "page", 1); !ok {
		return filter, "page must be an integer"
	}
	if filter.Limit, ok = queryInt(r, "limit", 0); !ok {
		return filter, "limit must be an integer"
	}
	return filter, ""
}

func (s *Server) listQueue(w http.ResponseWriter, r *http.Request) {
	filter, problem := parseFilter(r)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	page, err := s.queue.List(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type bulkUpdateRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

func (s *Server) bulkUpdateQueue(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids array required")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status required")
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	n, err := s.queue.BulkUpdateStatus(r.Context(), req.IDs, status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

func (s *Server) getQueueItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.queue.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type itemUpdateRequest struct {
	Status      *string         `json:"status"`
	ReviewNotes *string         `json:"reviewNotes"`
	Normalized  json.RawMessage `json:"normalized"`
}

func (s *Server) updateQueueItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req itemUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := domain.ItemUpdate{ReviewNotes: req.ReviewNotes}
	if req.Status != nil && *req.Status != "" {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		update.Status = &status
	}

	if len(req.Normalized) > 0 && string(req.Normalized) != "null" {
		current, err := s.queue.Get(r.Context(), id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		// Decode the override with the item's own content type.
		payload := domain.Item{ContentType: current.ContentType}
		if err := payload.SetNormalizedJSON(req.Normalized); err != nil {
			writeError(w, http.StatusBadRequest, "invalid normalized payload")
			return
		}
		update.Project, update.Article = payload.Project, payload.Article
	}

	item, err := s.queue.Update(r.Context(), id, update)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) deleteQueueItem(w http.ResponseWriter, r *http.Request) {
	if err := s.queue.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) similarQueueItems(w http.ResponseWriter, r *http.Request) {
	minScore, ok := queryInt(r, "minScore", defaultMinSimilarity)
	if !ok {
		writeError(w, http.StatusBadRequest, "minScore must be an integer")
		return
	}

	similar, err := s.queue.SimilarItems(r.Context(), chi.URLParam(r, "id"), minScore)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": similar})
}
