package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/diamond-insights/internal/domain/game"
	"github.com/riskibarqy/diamond-insights/internal/domain/player"
	"github.com/stretchr/testify/mock"
)

type statsProviderMock struct {
	mock.Mock
}

func newStatsProviderMock(t *testing.T) *statsProviderMock {
	t.Helper()

	m := &statsProviderMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *statsProviderMock) FetchSchedule(ctx context.Context, startDate, endDate time.Time) ([]game.DateBucket, error) {
	args := m.Called(ctx, startDate, endDate)
	buckets, _ := args.Get(0).([]game.DateBucket)
	return buckets, args.Error(1)
}

func (m *statsProviderMock) FetchLeaders(ctx context.Context, query LeadersQuery) ([]LeaderRecord, error) {
	args := m.Called(ctx, query)
	leaders, _ := args.Get(0).([]LeaderRecord)
	return leaders, args.Error(1)
}

func (m *statsProviderMock) FetchPerson(ctx context.Context, personID int64) (ExternalPerson, error) {
	args := m.Called(ctx, personID)
	person, _ := args.Get(0).(ExternalPerson)
	return person, args.Error(1)
}

func (m *statsProviderMock) FetchSeasonStats(ctx context.Context, personID int64, group player.Group, season int) (ExternalSeasonStats, error) {
	args := m.Called(ctx, personID, group, season)
	stats, _ := args.Get(0).(ExternalSeasonStats)
	return stats, args.Error(1)
}

func dateArg(date string) any {
	return mock.MatchedBy(func(v time.Time) bool { return v.Format(time.DateOnly) == date })
}

type recordingMetrics struct {
	mu      sync.Mutex
	dropped map[string]int
	probes  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{dropped: map[string]int{}}
}

func (r *recordingMetrics) PlayerDropped(group string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped[group]++
}

func (r *recordingMetrics) ScheduleProbed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probes++
}

func (r *recordingMetrics) droppedFor(group string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped[group]
}

func (r *recordingMetrics) probeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.probes
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 15, 30, 0, 0, time.UTC) }
}
