package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/diamond-insights/internal/domain/player"
	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
)

// DirectoryCandidatesPerGroup is how many leaders of each group seed the directory.
const DirectoryCandidatesPerGroup = 50

// PaginationWindow maps a 1-based page and a page size to a half-open index range.
type PaginationWindow struct {
	Page  int
	Limit int
}

func NewPaginationWindow(page, limit int) (PaginationWindow, error) {
	if page < 1 {
		return PaginationWindow{}, fmt.Errorf("%w: page must be at least 1", ErrInvalidInput)
	}
	if limit < 1 {
		return PaginationWindow{}, fmt.Errorf("%w: limit must be at least 1", ErrInvalidInput)
	}
	return PaginationWindow{Page: page, Limit: limit}, nil
}

// Bounds clamps the window to a collection of size n. start == end means an empty page.
func (w PaginationWindow) Bounds(n int) (start, end int) {
	start = (w.Page - 1) * w.Limit
	if start >= n || start < 0 {
		return n, n
	}
	end = start + w.Limit
	if end > n {
		end = n
	}
	return start, end
}

type DirectoryPage struct {
	Players []player.Player
	Page    int
	Limit   int
	Total   int
}

// PlayerDirectoryService serves a searchable, paginated view over the combined
// hitting and pitching leader sets. The candidate set is fetched on every call.
type PlayerDirectoryService struct {
	leaderboard *LeaderboardService
	logger      *logging.Logger
}

func NewPlayerDirectoryService(leaderboard *LeaderboardService, logger *logging.Logger) *PlayerDirectoryService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerDirectoryService{
		leaderboard: leaderboard,
		logger:      logger,
	}
}

func (s *PlayerDirectoryService) GetAllPlayers(ctx context.Context, page, limit int, search string) (DirectoryPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerDirectoryService.GetAllPlayers",
		attribute.Int("directory.page", page),
		attribute.Int("directory.limit", limit),
		attribute.Bool("directory.search", strings.TrimSpace(search) != ""),
	)
	defer span.End()

	window, err := NewPaginationWindow(page, limit)
	if err != nil {
		return DirectoryPage{}, err
	}

	candidates, err := s.candidates(ctx)
	if err != nil {
		return DirectoryPage{}, err
	}

	filtered := filterPlayers(candidates, search)
	sortPlayersByName(filtered)

	start, end := window.Bounds(len(filtered))
	pagePlayers := make([]player.Player, end-start)
	copy(pagePlayers, filtered[start:end])

	return DirectoryPage{
		Players: pagePlayers,
		Page:    window.Page,
		Limit:   window.Limit,
		Total:   len(filtered),
	}, nil
}

// candidates fetches both leader lists concurrently, then fuses them in one
// fan-out. Hitters come before pitchers in the result.
func (s *PlayerDirectoryService) candidates(ctx context.Context) ([]player.Player, error) {
	season := s.leaderboard.season()

	var hitters, pitchers []LeaderRecord
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		hitters, err = s.leaderboard.fetchLeaders(ctx, player.GroupHitting, season, DirectoryCandidatesPerGroup)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		pitchers, err = s.leaderboard.fetchLeaders(ctx, player.GroupPitching, season, DirectoryCandidatesPerGroup)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	leaders := make([]LeaderRecord, 0, len(hitters)+len(pitchers))
	leaders = append(leaders, hitters...)
	leaders = append(leaders, pitchers...)

	players, err := s.leaderboard.fuser.fuse(ctx, leaders, season)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "directory candidates fused",
		"hitters", len(hitters),
		"pitchers", len(pitchers),
		"players", len(players),
	)
	return players, nil
}

func filterPlayers(players []player.Player, search string) []player.Player {
	query := strings.TrimSpace(search)
	if query == "" {
		out := make([]player.Player, len(players))
		copy(out, players)
		return out
	}
	out := make([]player.Player, 0, len(players))
	for _, p := range players {
		if p.MatchesQuery(query) {
			out = append(out, p)
		}
	}
	return out
}

// sortPlayersByName orders by raw byte comparison of names; ties keep input order.
func sortPlayersByName(players []player.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Name < players[j].Name
	})
}
