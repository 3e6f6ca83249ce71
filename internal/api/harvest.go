package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"almanac/internal/domain"
	"almanac/internal/source/manual"
)

const (
	actionStats      = "stats"
	actionSources    = "sources"
	actionInitialize = "initialize"
	actionHarvest    = "harvest"
	actionHarvestAll = "harvest-all"
	actionPublish    = "publish"
)

func (s *Server) getHarvest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch action := r.URL.Query().Get("action"); action {
	case actionStats:
		stats, err := s.queue.Stats(ctx)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)

	case actionSources:
		sources, err := s.sources.List(ctx)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sources)

	case "":
		stats, err := s.queue.Stats(ctx)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		sources, err := s.sources.List(ctx)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"stats": stats, "sources": sources})

	default:
		writeError(w, http.StatusBadRequest, "unknown action: "+action)
	}
}

type harvestRequest struct {
	Action     string `json:"action"`
	SourceSlug string `json:"sourceSlug"`
}

func (s *Server) postHarvest(w http.ResponseWriter, r *http.Request) {
	var req harvestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ctx := r.Context()

	switch req.Action {
	case actionInitialize:
		created, updated, err := s.harvester.InitializeSources(ctx, s.definitions())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Sources initialized",
			"created": created,
			"updated": updated,
		})

	case actionHarvest:
		if req.SourceSlug == "" {
			writeError(w, http.StatusBadRequest, "sourceSlug required")
			return
		}
		stats, err := s.harvester.RunBySlug(ctx, req.SourceSlug)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})

	case actionHarvestAll:
		results, err := s.harvester.RunAll(ctx)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": results})

	case actionPublish:
		report, err := s.promoter.PublishApproved(ctx)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"published":   report.Published,
			"errors":      report.Errors,
			"unsupported": report.Unsupported,
		})

	default:
		writeError(w, http.StatusBadRequest, "unknown action: "+req.Action)
	}
}

type importRequest struct {
	SourceSlug  string             `json:"sourceSlug"`
	ContentType domain.ContentType `json:"contentType"`
	Records     json.RawMessage    `json:"records"`
}

func (s *Server) postImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceSlug == "" {
		writeError(w, http.StatusBadRequest, "sourceSlug required")
		return
	}
	if req.ContentType == "" {
		req.ContentType = domain.ContentProject
	}

	records, err := manual.DecodeRecords(bytes.NewReader(req.Records))
	if err != nil {
		writeError(w, http.StatusBadRequest, "records must be a JSON array")
		return
	}

	stats, err := s.harvester.Import(r.Context(), req.SourceSlug, req.ContentType, records)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}
