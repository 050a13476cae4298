package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/diamond-insights/internal/domain/player"
	"github.com/riskibarqy/diamond-insights/internal/domain/teamcolor"
	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
)

const (
	defaultFanoutWorkers = 8
	defaultDetailTimeout = 8 * time.Second
)

type FanoutConfig struct {
	MaxWorkers    int
	DetailTimeout time.Duration
}

func (c FanoutConfig) normalized() FanoutConfig {
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = defaultFanoutWorkers
	}
	if c.DetailTimeout <= 0 {
		c.DetailTimeout = defaultDetailTimeout
	}
	return c
}

// leaderFuser turns leader rows into players by fetching each leader's
// biography and season line. Leaders whose detail fetch fails are dropped.
type leaderFuser struct {
	provider StatsProvider
	cfg      FanoutConfig
	logger   *logging.Logger
	metrics  AggregationMetrics
}

func newLeaderFuser(provider StatsProvider, cfg FanoutConfig, logger *logging.Logger, metrics AggregationMetrics) *leaderFuser {
	return &leaderFuser{
		provider: provider,
		cfg:      cfg.normalized(),
		logger:   logger,
		metrics:  resolveMetrics(metrics),
	}
}

// fuse keeps the input order in its output. The returned error is non-nil
// only when ctx ends or the worker pool cannot be used.
func (f *leaderFuser) fuse(ctx context.Context, leaders []LeaderRecord, season int) ([]player.Player, error) {
	if len(leaders) == 0 {
		return []player.Player{}, nil
	}

	workerCount := f.cfg.MaxWorkers
	if workerCount > len(leaders) {
		workerCount = len(leaders)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	slots := make([]*player.Player, len(leaders))
	var workers sync.WaitGroup
	for i, leader := range leaders {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if ctx.Err() != nil {
				return
			}

			fused, err := f.fuseOne(ctx, leader, season)
			if err != nil {
				if ctx.Err() == nil {
					f.logger.WarnContext(ctx, "drop leader after detail fetch failure",
						"player_id", leader.PersonID,
						"group", string(leader.Group),
						"error", err,
					)
					f.metrics.PlayerDropped(string(leader.Group))
				}
				return
			}
			slots[i] = &fused
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit leader detail task: %w", err)
		}
	}
	workers.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]player.Player, 0, len(slots))
	for _, slot := range slots {
		if slot != nil {
			out = append(out, *slot)
		}
	}
	return out, nil
}

// fuseOne joins the biography and season stat fetches for one leader.
func (f *leaderFuser) fuseOne(ctx context.Context, leader LeaderRecord, season int) (player.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.DetailTimeout)
	defer cancel()

	var (
		person   ExternalPerson
		stats    ExternalSeasonStats
		bioErr   error
		statsErr error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		person, bioErr = f.provider.FetchPerson(ctx, leader.PersonID)
	})
	wg.Go(func() {
		stats, statsErr = f.provider.FetchSeasonStats(ctx, leader.PersonID, leader.Group, season)
	})
	wg.Wait()

	if bioErr != nil {
		return player.Player{}, fmt.Errorf("fetch person %d: %w", leader.PersonID, bioErr)
	}
	if statsErr != nil {
		return player.Player{}, fmt.Errorf("fetch %s stats for person %d: %w", leader.Group, leader.PersonID, statsErr)
	}

	fused := buildPlayer(leader, person, stats)
	if err := fused.Validate(); err != nil {
		return player.Player{}, &FetchError{Kind: ErrDecode, Endpoint: "people", Err: err}
	}
	return fused, nil
}

func buildPlayer(leader LeaderRecord, person ExternalPerson, stats ExternalSeasonStats) player.Player {
	name := person.FullName
	if name == "" {
		name = leader.PersonName
	}
	position := person.Position
	if position == "" {
		position = player.Placeholder
	}

	fused := player.Player{
		ID:           leader.PersonID,
		Name:         name,
		Position:     position,
		PositionName: person.PositionName,
		TeamID:       leader.TeamID,
		TeamName:     leader.TeamName,
		TeamColor:    teamcolor.Lookup(leader.TeamID),
		IsPitcher:    leader.Group == player.GroupPitching,
		Rank:         leader.Rank,
		Bio:          person.Bio,
	}
	fused.Stats = player.NewStats(fused.Group(), stats.Stat)
	return fused
}
