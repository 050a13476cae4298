package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/diamond-insights/internal/domain/game"
	"github.com/riskibarqy/diamond-insights/internal/domain/player"
)

// StatsProvider is the upstream statistics gateway. Implementations decode
// provider JSON once and return typed values; absent optional fields are zero.
type StatsProvider interface {
	FetchSchedule(ctx context.Context, startDate, endDate time.Time) ([]game.DateBucket, error)
	FetchLeaders(ctx context.Context, query LeadersQuery) ([]LeaderRecord, error)
	FetchPerson(ctx context.Context, personID int64) (ExternalPerson, error)
	FetchSeasonStats(ctx context.Context, personID int64, group player.Group, season int) (ExternalSeasonStats, error)
}

type LeadersQuery struct {
	Category string
	Group    player.Group
	Season   int
	Limit    int
}

// LeaderRecord is one ranked row of a leaders query. It only lives long
// enough to be fused into a player.Player.
type LeaderRecord struct {
	PersonID   int64
	PersonName string
	TeamID     int64
	TeamName   string
	Rank       int
	Value      string
	Group      player.Group
}

type ExternalPerson struct {
	ID           int64
	FullName     string
	Position     string
	PositionName string
	Bio          player.Bio
}

// ExternalSeasonStats holds the first season split's raw stat block.
// Stat is nil when the provider returned no splits.
type ExternalSeasonStats struct {
	PersonID int64
	Group    player.Group
	Season   int
	Stat     map[string]any
}

// AggregationMetrics receives aggregation counters. A nil value is replaced by a no-op.
type AggregationMetrics interface {
	PlayerDropped(group string)
	ScheduleProbed()
}

type noopAggregationMetrics struct{}

func (noopAggregationMetrics) PlayerDropped(string) {}
func (noopAggregationMetrics) ScheduleProbed()      {}

func resolveMetrics(m AggregationMetrics) AggregationMetrics {
	if m == nil {
		return noopAggregationMetrics{}
	}
	return m
}

// resolveSeason returns configured when set, otherwise the calendar year of now.
func resolveSeason(configured int, now time.Time) int {
	if configured > 0 {
		return configured
	}
	return now.Year()
}
