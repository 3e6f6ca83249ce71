package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"almanac/internal/domain"
	"almanac/testdata/utils"
)

type fakeHarvester struct {
	mu     sync.Mutex
	ran    []string
	runAll int
	err    error
}

func (f *fakeHarvester) RunByID(ctx context.Context, id string) (*domain.HarvestStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = append(f.ran, id)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("missing deadline")
	}
	return &domain.HarvestStats{SourceID: id}, f.err
}

func (f *fakeHarvester) RunAll(context.Context) ([]domain.HarvestStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runAll++
	return nil, f.err
}

type fakePromoter struct {
	calls int
}

func (f *fakePromoter) PublishApproved(context.Context) (*domain.PublishReport, error) {
	f.calls++
	return &domain.PublishReport{Published: 1}, nil
}

type fakeSources struct {
	sources []domain.Source
	err     error
}

func (f fakeSources) ListActive(context.Context) ([]domain.Source, error) {
	return f.sources, f.err
}

type SchedulerTestSuite struct {
	suite.Suite
	harvester *fakeHarvester
	promoter  *fakePromoter
	logger    *slog.Logger
}

func (s *SchedulerTestSuite) SetupTest() {
	s.harvester = &fakeHarvester{}
	s.promoter = &fakePromoter{}
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

func (s *SchedulerTestSuite) runAllEntries(sched *Scheduler) {
	for _, entry := range sched.cron.Entries() {
		entry.WrappedJob.Run()
	}
}

func (s *SchedulerTestSuite) TestSchedule_SourcesWithSchedules() {
	sources := fakeSources{sources: []domain.Source{
		{ID: "a", Slug: "a", Schedule: utils.Ptr("0 */6 * * *")},
		{ID: "b", Slug: "b"},
		{ID: "c", Slug: "c", Schedule: utils.Ptr("")},
		{ID: "d", Slug: "d", Schedule: utils.Ptr("0 0 * * 0")},
	}}
	sched := NewScheduler(s.harvester, s.promoter, sources, Config{}, s.logger)

	n, err := sched.schedule(context.Background())
	s.NoError(err)
	s.Equal(2, n)

	s.runAllEntries(sched)
	s.ElementsMatch([]string{"a", "d"}, s.harvester.ran)
}

func (s *SchedulerTestSuite) TestSchedule_InvalidSourceScheduleSkipped() {
	sources := fakeSources{sources: []domain.Source{
		{ID: "a", Slug: "a", Schedule: utils.Ptr("not a cron")},
		{ID: "b", Slug: "b", Schedule: utils.Ptr("@daily")},
	}}
	sched := NewScheduler(s.harvester, s.promoter, sources, Config{}, s.logger)

	n, err := sched.schedule(context.Background())
	s.NoError(err)
	s.Equal(1, n)
}

func (s *SchedulerTestSuite) TestSchedule_GlobalJobs() {
	cfg := Config{RunAll: "0 3 * * *", Publish: "*/30 * * * *"}
	sched := NewScheduler(s.harvester, s.promoter, fakeSources{}, cfg, s.logger)

	n, err := sched.schedule(context.Background())
	s.NoError(err)
	s.Equal(2, n)

	s.runAllEntries(sched)
	s.Equal(1, s.harvester.runAll)
	s.Equal(1, s.promoter.calls)
}

func (s *SchedulerTestSuite) TestSchedule_InvalidGlobalSchedule() {
	sched := NewScheduler(s.harvester, s.promoter, fakeSources{}, Config{Publish: "every now and then"}, s.logger)

	_, err := sched.schedule(context.Background())
	s.ErrorContains(err, "schedule publish")
}

func (s *SchedulerTestSuite) TestSchedule_ListError() {
	sched := NewScheduler(s.harvester, s.promoter, fakeSources{err: errors.New("db down")}, Config{}, s.logger)

	_, err := sched.schedule(context.Background())
	s.ErrorContains(err, "db down")
}

func (s *SchedulerTestSuite) TestJob_FailureDoesNotPanic() {
	s.harvester.err = errors.New("boom")
	sources := fakeSources{sources: []domain.Source{{ID: "a", Slug: "a", Schedule: utils.Ptr("@hourly")}}}
	sched := NewScheduler(s.harvester, s.promoter, sources, Config{RunTimeout: time.Second}, s.logger)

	_, err := sched.schedule(context.Background())
	s.Require().NoError(err)

	s.NotPanics(func() { s.runAllEntries(sched) })
	s.Equal([]string{"a"}, s.harvester.ran)
}

func (s *SchedulerTestSuite) TestStart_StopsOnCancel() {
	sched := NewScheduler(s.harvester, s.promoter, fakeSources{}, Config{}, s.logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(5 * time.Second):
		s.Fail("scheduler did not stop")
	}
}
