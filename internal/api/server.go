// Package api exposes the operator HTTP surface: harvest actions, imports
// and queue moderation.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"almanac/internal/domain"
	"almanac/internal/service"
)

type Harvester interface {
	InitializeSources(ctx context.Context, defs []domain.Source) (int, int, error)
	RunBySlug(ctx context.Context, slug string) (*domain.HarvestStats, error)
	RunAll(ctx context.Context) ([]domain.HarvestStats, error)
	Import(ctx context.Context, slug string, contentType domain.ContentType, records []any) (*domain.HarvestStats, error)
}

type Promoter interface {
	PublishApproved(ctx context.Context) (*domain.PublishReport, error)
}

type Queue interface {
	List(ctx context.Context, filter domain.ItemFilter) (*service.ItemPage, error)
	Get(ctx context.Context, id string) (*domain.Item, error)
	Update(ctx context.Context, id string, update domain.ItemUpdate) (*domain.Item, error)
	BulkUpdateStatus(ctx context.Context, ids []string, status domain.HarvestStatus) (int, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*domain.QueueStats, error)
	SimilarItems(ctx context.Context, id string, minScore int) ([]service.SimilarItem, error)
}

type SourceLister interface {
	List(ctx context.Context) ([]domain.Source, error)
}

type Server struct {
	harvester   Harvester
	promoter    Promoter
	queue       Queue
	sources     SourceLister
	definitions func() []domain.Source
	adminToken  string
	logger      *slog.Logger
}

type Deps struct {
	Harvester   Harvester
	Promoter    Promoter
	Queue       Queue
	Sources     SourceLister
	Definitions func() []domain.Source
	AdminToken  string
}

func NewServer(deps Deps, logger *slog.Logger) *Server {
	return &Server{
		harvester:   deps.Harvester,
		promoter:    deps.Promoter,
		queue:       deps.Queue,
		sources:     deps.Sources,
		definitions: deps.Definitions,
		adminToken:  deps.AdminToken,
		logger:      logger.With("component", "api"),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/admin/harvest", func(r chi.Router) {
		r.Use(s.requireAdmin)

		r.Get("/", s.getHarvest)
		r.Post("/", s.postHarvest)
		r.Post("/import", s.postImport)

		r.Get("/queue", s.listQueue)
		r.Patch("/queue", s.bulkUpdateQueue)
		r.Get("/queue/{id}", s.getQueueItem)
		r.Patch("/queue/{id}", s.updateQueueItem)
		r.Delete("/queue/{id}", s.deleteQueueItem)
		r.Get("/queue/{id}/similar", s.similarQueueItems)
	})

	return r
}

// requireAdmin checks a bearer token against the configured admin token.
// With no token configured every admin request is refused.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok || s.adminToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	code := strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// fail maps service errors onto HTTP statuses. Unexpected errors are logged
// and reported without detail.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrUnsupportedContentType),
		errors.Is(err, domain.ErrInvalidMapping):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSourceInactive):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	return dec.Decode(v)
}

const maxBodyBytes = 10 << 20
