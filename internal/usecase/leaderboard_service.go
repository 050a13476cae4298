package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/diamond-insights/internal/domain/player"
	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
)

const (
	DefaultHittingCategory  = "battingAverage"
	DefaultPitchingCategory = "earnedRunAverage"
)

type LeaderboardConfig struct {
	HittingCategory  string
	PitchingCategory string
	// Season 0 means the current calendar year.
	Season int
	Fanout FanoutConfig
}

func (c LeaderboardConfig) normalized() LeaderboardConfig {
	if strings.TrimSpace(c.HittingCategory) == "" {
		c.HittingCategory = DefaultHittingCategory
	}
	if strings.TrimSpace(c.PitchingCategory) == "" {
		c.PitchingCategory = DefaultPitchingCategory
	}
	if c.Season < 0 {
		c.Season = 0
	}
	c.Fanout = c.Fanout.normalized()
	return c
}

// LeaderboardService builds ranked player lists for the hitting and pitching categories.
type LeaderboardService struct {
	provider StatsProvider
	cfg      LeaderboardConfig
	fuser    *leaderFuser
	now      func() time.Time
	logger   *logging.Logger
}

type LeaderboardOption func(*LeaderboardService)

func WithLeaderboardClock(now func() time.Time) LeaderboardOption {
	return func(s *LeaderboardService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewLeaderboardService(provider StatsProvider, cfg LeaderboardConfig, logger *logging.Logger, metrics AggregationMetrics, opts ...LeaderboardOption) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = cfg.normalized()
	svc := &LeaderboardService{
		provider: provider,
		cfg:      cfg,
		fuser:    newLeaderFuser(provider, cfg.Fanout, logger, metrics),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *LeaderboardService) GetTopHitters(ctx context.Context, limit int) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetTopHitters", attribute.Int("leaders.limit", limit))
	defer span.End()

	return s.topPlayers(ctx, player.GroupHitting, limit)
}

func (s *LeaderboardService) GetTopPitchers(ctx context.Context, limit int) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetTopPitchers", attribute.Int("leaders.limit", limit))
	defer span.End()

	return s.topPlayers(ctx, player.GroupPitching, limit)
}

func (s *LeaderboardService) topPlayers(ctx context.Context, group player.Group, limit int) ([]player.Player, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1", ErrInvalidInput)
	}

	season := s.season()
	leaders, err := s.fetchLeaders(ctx, group, season, limit)
	if err != nil {
		return nil, err
	}

	players, err := s.fuser.fuse(ctx, leaders, season)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "leaderboard fused",
		"group", string(group),
		"leaders", len(leaders),
		"players", len(players),
	)
	return players, nil
}

// fetchLeaders returns the ranked leader rows for group, each tagged with group.
func (s *LeaderboardService) fetchLeaders(ctx context.Context, group player.Group, season, limit int) ([]LeaderRecord, error) {
	query := LeadersQuery{
		Category: s.categoryFor(group),
		Group:    group,
		Season:   season,
		Limit:    limit,
	}
	leaders, err := s.provider.FetchLeaders(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch %s leaders: %w", query.Category, err)
	}
	for i := range leaders {
		leaders[i].Group = group
	}
	return leaders, nil
}

func (s *LeaderboardService) categoryFor(group player.Group) string {
	if group == player.GroupPitching {
		return s.cfg.PitchingCategory
	}
	return s.cfg.HittingCategory
}

func (s *LeaderboardService) season() int {
	return resolveSeason(s.cfg.Season, s.now())
}
