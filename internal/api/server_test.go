package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"almanac/internal/config"
	"almanac/internal/domain"
	"almanac/internal/service"
	"almanac/internal/source"
	"almanac/internal/source/manual"
	"almanac/internal/storage/memory"
)

const testToken = "test-admin-token"

type ServerTestSuite struct {
	suite.Suite
	ctx     context.Context
	handler http.Handler
	harvest *service.HarvestService
	queue   *service.QueueService
}

func (s *ServerTestSuite) SetupTest() {
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default().Harvest

	sources := memory.NewSourceStore()
	items := memory.NewItemStore()
	projects := memory.NewProjectStore()
	registry := source.NewRegistry(logger).Register(domain.SourceManual, manual.New(logger))

	s.harvest = service.NewHarvestService(sources, items, registry, logger, cfg)
	s.queue = service.NewQueueService(sources, items, logger)
	publish := service.NewPublishService(items, projects, projects, memory.TransactionManager{}, nil, logger, cfg)

	srv := NewServer(Deps{
		Harvester:   s.harvest,
		Promoter:    publish,
		Queue:       s.queue,
		Sources:     sources,
		Definitions: source.Definitions,
		AdminToken:  testToken,
	}, logger)
	s.handler = srv.Routes()
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *ServerTestSuite) initializeAndHarvest() {
	rec := s.do(http.MethodPost, "/api/admin/harvest", map[string]string{"action": "initialize"})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/admin/harvest", map[string]string{
		"action":     "harvest",
		"sourceSlug": source.FlagshipSlug,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (s *ServerTestSuite) firstQueueItem() domain.Item {
	page, err := s.queue.List(s.ctx, domain.ItemFilter{})
	s.Require().NoError(err)
	s.Require().NotEmpty(page.Items)
	return page.Items[0]
}

func (s *ServerTestSuite) TestHealth_NoAuth() {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ServerTestSuite) TestAdmin_RequiresToken() {
	for _, authz := range []string{"", "Bearer wrong", "Basic " + testToken, testToken} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/harvest", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		s.Equal(http.StatusUnauthorized, rec.Code, authz)
	}
}

func (s *ServerTestSuite) TestPostHarvest_Initialize() {
	rec := s.do(http.MethodPost, "/api/admin/harvest", map[string]string{"action": "initialize"})
	s.Equal(http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Created int  `json:"created"`
		Updated int  `json:"updated"`
	}
	s.decode(rec, &body)
	s.True(body.Success)
	s.Equal(len(source.Definitions()), body.Created)
	s.Zero(body.Updated)

	rec = s.do(http.MethodGet, "/api/admin/harvest?action=sources", nil)
	s.Equal(http.StatusOK, rec.Code)
	var sources []domain.Source
	s.decode(rec, &sources)
	s.Len(sources, len(source.Definitions()))
}

func (s *ServerTestSuite) TestPostHarvest_Validation() {
	rec := s.do(http.MethodPost, "/api/admin/harvest", map[string]string{"action": "harvest"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/admin/harvest", map[string]string{"action": "explode"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/admin/harvest", map[string]string{"action": "harvest", "sourceSlug": "missing"})
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/harvest?action=bogus", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) TestHarvestThenStats() {
	s.initializeAndHarvest()

	rec := s.do(http.MethodGet, "/api/admin/harvest?action=stats", nil)
	s.Equal(http.StatusOK, rec.Code)

	var stats domain.QueueStats
	s.decode(rec, &stats)
	s.Equal(10, stats.Totals.Approved)
	s.Equal(10, stats.Totals.Total)

	rec = s.do(http.MethodGet, "/api/admin/harvest", nil)
	s.Equal(http.StatusOK, rec.Code)
	var both map[string]json.RawMessage
	s.decode(rec, &both)
	s.Contains(both, "stats")
	s.Contains(both, "sources")
}

func (s *ServerTestSuite) TestListQueue_Pagination() {
	s.initializeAndHarvest()

	rec := s.do(http.MethodGet, "/api/admin/harvest/queue?status=APPROVED&limit=4&page=3", nil)
	s.Equal(http.StatusOK, rec.Code)

	var page service.ItemPage
	s.decode(rec, &page)
	s.Equal(10, page.Total)
	s.Equal(3, page.TotalPages)
	s.Equal(3, page.Page)
	s.Len(page.Items, 2)
	for i := 1; i < len(page.Items); i++ {
		s.GreaterOrEqual(page.Items[i-1].Quality, page.Items[i].Quality)
	}
}

func (s *ServerTestSuite) TestListQueue_InvalidFilters() {
	for _, query := range []string{"status=BOGUS", "contentType=VIDEO", "page=two", "minQuality=high"} {
		rec := s.do(http.MethodGet, "/api/admin/harvest/queue?"+query, nil)
		s.Equal(http.StatusBadRequest, rec.Code, query)
	}
}

func (s *ServerTestSuite) TestUpdateQueueItem() {
	s.initializeAndHarvest()
	item := s.firstQueueItem()

	rec := s.do(http.MethodPatch, "/api/admin/harvest/queue/"+item.ID, map[string]any{
		"status":      "NEEDS_INFO",
		"reviewNotes": "missing contact",
		"normalized":  map[string]any{"name": "Renamed Project", "tagline": "", "description": ""},
	})
	s.Equal(http.StatusOK, rec.Code, rec.Body.String())

	var updated domain.Item
	s.decode(rec, &updated)
	s.Equal(domain.StatusNeedsInfo, updated.Status)
	s.Equal("missing contact", *updated.ReviewNotes)
	s.Equal("Renamed Project", updated.Project.Name)
	s.NotNil(updated.ReviewedAt)

	rec = s.do(http.MethodPatch, "/api/admin/harvest/queue/"+item.ID, map[string]any{"status": "PUBLISHED"})
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPatch, "/api/admin/harvest/queue/"+item.ID, map[string]any{"status": "LOST"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPatch, "/api/admin/harvest/queue/missing", map[string]any{"status": "REJECTED"})
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerTestSuite) TestBulkUpdateQueue() {
	s.initializeAndHarvest()
	page, err := s.queue.List(s.ctx, domain.ItemFilter{Limit: 3})
	s.Require().NoError(err)

	ids := []string{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID}
	rec := s.do(http.MethodPatch, "/api/admin/harvest/queue", map[string]any{"ids": ids, "status": "REJECTED"})
	s.Equal(http.StatusOK, rec.Code)

	var body map[string]int
	s.decode(rec, &body)
	s.Equal(3, body["updated"])

	rec = s.do(http.MethodPatch, "/api/admin/harvest/queue", map[string]any{"ids": []string{}, "status": "REJECTED"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPatch, "/api/admin/harvest/queue", map[string]any{"ids": ids})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPatch, "/api/admin/harvest/queue", map[string]any{"ids": ids, "status": "PUBLISHED"})
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *ServerTestSuite) TestPublish() {
	s.initializeAndHarvest()

	rec := s.do(http.MethodPost, "/api/admin/harvest", map[string]string{"action": "publish"})
	s.Equal(http.StatusOK, rec.Code)

	var body struct {
		Success   bool     `json:"success"`
		Published int      `json:"published"`
		Errors    []string `json:"errors"`
	}
	s.decode(rec, &body)
	s.True(body.Success)
	s.Equal(10, body.Published)
	s.Empty(body.Errors)
}

func (s *ServerTestSuite) TestImport() {
	rec := s.do(http.MethodPost, "/api/admin/harvest", map[string]string{"action": "initialize"})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/admin/harvest/import", map[string]any{
		"sourceSlug": "community-energy",
		"records": []any{
			map[string]any{"id": 17, "name": "Brixton Energy", "type": "solar"},
			map[string]any{"name": "Bristol Energy Cooperative", "type": "wind"},
			map[string]any{"type": "hydro"},
		},
	})
	s.Equal(http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Stats domain.HarvestStats `json:"stats"`
	}
	s.decode(rec, &body)
	s.Equal(2, body.Stats.ItemsProcessed)
	s.Equal(2, body.Stats.ItemsCreated)

	rec = s.do(http.MethodPost, "/api/admin/harvest/import", map[string]any{
		"sourceSlug": "community-energy",
		"records":    map[string]any{"name": "not an array"},
	})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/admin/harvest/import", map[string]any{
		"sourceSlug":  "community-energy",
		"contentType": "VIDEO",
		"records":     []any{},
	})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) TestDeleteAndSimilar() {
	s.initializeAndHarvest()
	item := s.firstQueueItem()

	rec := s.do(http.MethodGet, "/api/admin/harvest/queue/"+item.ID+"/similar?minScore=0", nil)
	s.Equal(http.StatusOK, rec.Code)
	var similar struct {
		Items []service.SimilarItem `json:"items"`
	}
	s.decode(rec, &similar)
	s.Len(similar.Items, 9)

	rec = s.do(http.MethodDelete, "/api/admin/harvest/queue/"+item.ID, nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/harvest/queue/"+item.ID, nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/api/admin/harvest/queue/"+item.ID, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}
