package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/diamond-insights/internal/domain/game"
	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
)

type ScheduleConfig struct {
	WindowDays      int
	ProbeStepDays   int
	ProbeWindowDays int
	ProbeAttempts   int
	GamesWindowDays int
	Location        *time.Location
}

func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		WindowDays:      7,
		ProbeStepDays:   5,
		ProbeWindowDays: 5,
		ProbeAttempts:   12,
		GamesWindowDays: 30,
		Location:        time.UTC,
	}
}

func (c ScheduleConfig) normalized() ScheduleConfig {
	def := DefaultScheduleConfig()
	if c.WindowDays <= 0 {
		c.WindowDays = def.WindowDays
	}
	if c.ProbeStepDays <= 0 {
		c.ProbeStepDays = def.ProbeStepDays
	}
	if c.ProbeWindowDays <= 0 {
		c.ProbeWindowDays = def.ProbeWindowDays
	}
	if c.ProbeAttempts < 0 {
		c.ProbeAttempts = def.ProbeAttempts
	}
	if c.GamesWindowDays <= 0 {
		c.GamesWindowDays = def.GamesWindowDays
	}
	if c.Location == nil {
		c.Location = def.Location
	}
	return c
}

// ScheduleService resolves the next non-empty window of scheduled games.
type ScheduleService struct {
	provider StatsProvider
	cfg      ScheduleConfig
	now      func() time.Time
	logger   *logging.Logger
	metrics  AggregationMetrics
}

type ScheduleOption func(*ScheduleService)

func WithScheduleClock(now func() time.Time) ScheduleOption {
	return func(s *ScheduleService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithScheduleMetrics(metrics AggregationMetrics) ScheduleOption {
	return func(s *ScheduleService) {
		s.metrics = resolveMetrics(metrics)
	}
}

func NewScheduleService(provider StatsProvider, cfg ScheduleConfig, logger *logging.Logger, opts ...ScheduleOption) *ScheduleService {
	if logger == nil {
		logger = logging.Default()
	}
	svc := &ScheduleService{
		provider: provider,
		cfg:      cfg.normalized(),
		now:      time.Now,
		logger:   logger,
		metrics:  noopAggregationMetrics{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// GetSchedule returns the initial window when it has games, otherwise the
// first non-empty probe window. ErrNotFound once every probe came back empty.
func (s *ScheduleService) GetSchedule(ctx context.Context) ([]game.DateBucket, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GetSchedule")
	defer span.End()

	today := s.today()
	buckets, err := s.provider.FetchSchedule(ctx, today, addDays(today, s.cfg.WindowDays))
	if err != nil {
		return nil, fmt.Errorf("fetch schedule window: %w", err)
	}
	if game.CountGames(buckets) > 0 {
		return buckets, nil
	}

	for attempt := 1; attempt <= s.cfg.ProbeAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := addDays(today, attempt*s.cfg.ProbeStepDays)
		end := addDays(start, s.cfg.ProbeWindowDays)
		s.metrics.ScheduleProbed()

		buckets, err := s.provider.FetchSchedule(ctx, start, end)
		if err != nil {
			return nil, fmt.Errorf("fetch schedule probe %d: %w", attempt, err)
		}
		if game.CountGames(buckets) > 0 {
			s.logger.DebugContext(ctx, "schedule probe found games",
				"attempt", attempt,
				"start_date", start.Format(time.DateOnly),
			)
			return buckets, nil
		}
	}

	s.logger.InfoContext(ctx, "no scheduled games within lookahead",
		"probe_attempts", s.cfg.ProbeAttempts,
		"lookahead_days", s.cfg.ProbeAttempts*s.cfg.ProbeStepDays,
	)
	return nil, fmt.Errorf("%w: no scheduled games in the next %d days", ErrNotFound, s.cfg.ProbeAttempts*s.cfg.ProbeStepDays)
}

// GetScheduleGames returns at most limit games from the games window,
// keeping date grouping and chronological order.
func (s *ScheduleService) GetScheduleGames(ctx context.Context, limit int) ([]game.DateBucket, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GetScheduleGames", attribute.Int("schedule.limit", limit))
	defer span.End()

	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1", ErrInvalidInput)
	}

	today := s.today()
	buckets, err := s.provider.FetchSchedule(ctx, today, addDays(today, s.cfg.GamesWindowDays))
	if err != nil {
		return nil, fmt.Errorf("fetch games window: %w", err)
	}
	return clipBuckets(buckets, limit), nil
}

func (s *ScheduleService) today() time.Time {
	now := s.now().In(s.cfg.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.cfg.Location)
}

func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// clipBuckets takes games bucket by bucket until limit is reached. Buckets
// that contribute nothing are dropped.
func clipBuckets(buckets []game.DateBucket, limit int) []game.DateBucket {
	out := make([]game.DateBucket, 0, len(buckets))
	remaining := limit
	for _, bucket := range buckets {
		if remaining <= 0 {
			break
		}
		if len(bucket.Games) == 0 {
			continue
		}
		take := len(bucket.Games)
		if take > remaining {
			take = remaining
		}
		games := make([]game.Game, take)
		copy(games, bucket.Games[:take])
		out = append(out, game.DateBucket{Date: bucket.Date, Games: games})
		remaining -= take
	}
	return out
}
