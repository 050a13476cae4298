package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/diamond-insights/internal/domain/player"
	"github.com/riskibarqy/diamond-insights/internal/domain/teamcolor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func hittingLine(avg string, homeRuns, rbi float64) ExternalSeasonStats {
	return ExternalSeasonStats{
		Group: player.GroupHitting,
		Stat: map[string]any{
			"avg":         avg,
			"homeRuns":    homeRuns,
			"rbi":         rbi,
			"hits":        float64(150),
			"gamesPlayed": float64(140),
		},
	}
}

func TestLeaderboardService_GetTopHitters_DropsFailedLeader(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := newStatsProviderMock(t)
	metrics := newRecordingMetrics()
	service := NewLeaderboardService(provider, LeaderboardConfig{Season: 2025}, nil, metrics)

	leaders := []LeaderRecord{
		{PersonID: 592450, PersonName: "Aaron Judge", TeamID: 147, TeamName: "New York Yankees", Rank: 1, Value: ".331"},
		{PersonID: 660271, PersonName: "Shohei Ohtani", TeamID: 119, TeamName: "Los Angeles Dodgers", Rank: 2, Value: ".310"},
		{PersonID: 665742, PersonName: "Juan Soto", TeamID: 121, TeamName: "New York Mets", Rank: 3, Value: ".288"},
	}
	provider.
		On("FetchLeaders", mock.Anything, LeadersQuery{Category: "battingAverage", Group: player.GroupHitting, Season: 2025, Limit: 3}).
		Return(leaders, nil).
		Once()

	provider.On("FetchPerson", mock.Anything, int64(592450)).Return(ExternalPerson{ID: 592450, FullName: "Aaron Judge", Position: "RF"}, nil).Once()
	provider.On("FetchPerson", mock.Anything, int64(660271)).Return(ExternalPerson{}, &FetchError{Kind: ErrUpstreamStatus, Endpoint: "people", StatusCode: 500}).Once()
	provider.On("FetchPerson", mock.Anything, int64(665742)).Return(ExternalPerson{ID: 665742, FullName: "Juan Soto", Position: "LF"}, nil).Once()

	provider.On("FetchSeasonStats", mock.Anything, int64(592450), player.GroupHitting, 2025).Return(hittingLine(".331", 53, 114), nil).Once()
	provider.On("FetchSeasonStats", mock.Anything, int64(660271), player.GroupHitting, 2025).Return(hittingLine(".310", 54, 130), nil).Once()
	provider.On("FetchSeasonStats", mock.Anything, int64(665742), player.GroupHitting, 2025).Return(hittingLine(".288", 41, 109), nil).Once()

	got, err := service.GetTopHitters(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(592450), got[0].ID)
	assert.Equal(t, int64(665742), got[1].ID)
	for _, p := range got {
		assert.NotEqual(t, teamcolor.DefaultColor, p.TeamColor, "team color for %s", p.Name)
		assert.False(t, p.IsPitcher)
		for _, abbr := range []string{"avg", "hr", "rbi"} {
			assert.NotEqual(t, player.Placeholder, p.Stats[abbr], "stat %s for %s", abbr, p.Name)
		}
	}
	assert.Equal(t, ".331", got[0].Stats["avg"])
	assert.Equal(t, float64(53), got[0].Stats["hr"])
	assert.Equal(t, player.Placeholder, got[0].Stats["sb"])
	assert.Equal(t, 1, metrics.droppedFor("hitting"))
}

func TestLeaderboardService_GetTopPitchers_TagsPitchers(t *testing.T) {
	t.Parallel()

	provider := newStatsProviderMock(t)
	service := NewLeaderboardService(provider, LeaderboardConfig{}, nil, nil, WithLeaderboardClock(fixedClock(2026, time.June, 1)))

	provider.
		On("FetchLeaders", mock.Anything, LeadersQuery{Category: "earnedRunAverage", Group: player.GroupPitching, Season: 2026, Limit: 1}).
		Return([]LeaderRecord{{PersonID: 669373, PersonName: "Tarik Skubal", TeamID: 116, TeamName: "Detroit Tigers", Rank: 1}}, nil).
		Once()
	provider.On("FetchPerson", mock.Anything, int64(669373)).Return(ExternalPerson{ID: 669373, Position: "P"}, nil).Once()
	provider.
		On("FetchSeasonStats", mock.Anything, int64(669373), player.GroupPitching, 2026).
		Return(ExternalSeasonStats{Stat: map[string]any{"era": "2.21", "wins": float64(13), "strikeOuts": float64(241)}}, nil).
		Once()

	got, err := service.GetTopPitchers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsPitcher)
	assert.Equal(t, "Tarik Skubal", got[0].Name)
	assert.Equal(t, "2.21", got[0].Stats["era"])
	assert.Equal(t, float64(241), got[0].Stats["so"])
	assert.Equal(t, teamcolor.Lookup(116), got[0].TeamColor)
}

func TestLeaderboardService_LeadersFailurePropagates(t *testing.T) {
	t.Parallel()

	provider := newStatsProviderMock(t)
	service := NewLeaderboardService(provider, LeaderboardConfig{Season: 2025}, nil, nil)

	provider.
		On("FetchLeaders", mock.Anything, mock.Anything).
		Return(nil, &FetchError{Kind: ErrTransport, Endpoint: "stats/leaders", Err: errors.New("connection reset")}).
		Once()

	_, err := service.GetTopHitters(context.Background(), 5)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	provider.AssertNotCalled(t, "FetchPerson", mock.Anything, mock.Anything)
}

func TestLeaderboardService_RejectsInvalidLimit(t *testing.T) {
	t.Parallel()

	service := NewLeaderboardService(newStatsProviderMock(t), LeaderboardConfig{}, nil, nil)

	if _, err := service.GetTopHitters(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.GetTopPitchers(context.Background(), -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLeaderboardService_DetailTimeoutDropsLeader(t *testing.T) {
	t.Parallel()

	provider := newStatsProviderMock(t)
	metrics := newRecordingMetrics()
	service := NewLeaderboardService(provider, LeaderboardConfig{
		Season: 2025,
		Fanout: FanoutConfig{MaxWorkers: 2, DetailTimeout: 20 * time.Millisecond},
	}, nil, metrics)

	provider.
		On("FetchLeaders", mock.Anything, mock.Anything).
		Return([]LeaderRecord{
			{PersonID: 1, PersonName: "Slow Stats", TeamID: 147, Rank: 1},
			{PersonID: 2, PersonName: "Quick Stats", TeamID: 111, Rank: 2},
		}, nil).
		Once()
	provider.On("FetchPerson", mock.Anything, mock.Anything).Return(ExternalPerson{Position: "1B"}, nil).Twice()
	provider.
		On("FetchSeasonStats", mock.Anything, int64(1), player.GroupHitting, 2025).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(ExternalSeasonStats{}, context.DeadlineExceeded).
		Once()
	provider.On("FetchSeasonStats", mock.Anything, int64(2), player.GroupHitting, 2025).Return(hittingLine(".300", 10, 40), nil).Once()

	got, err := service.GetTopHitters(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Quick Stats", got[0].Name)
	assert.Equal(t, 1, metrics.droppedFor("hitting"))
}

func TestLeaderboardService_MissingSplitsKeepPlaceholders(t *testing.T) {
	t.Parallel()

	provider := newStatsProviderMock(t)
	service := NewLeaderboardService(provider, LeaderboardConfig{Season: 2025}, nil, nil)

	provider.
		On("FetchLeaders", mock.Anything, mock.Anything).
		Return([]LeaderRecord{{PersonID: 7, PersonName: "Rookie", TeamID: 999, Rank: 1}}, nil).
		Once()
	provider.On("FetchPerson", mock.Anything, int64(7)).Return(ExternalPerson{}, nil).Once()
	provider.On("FetchSeasonStats", mock.Anything, int64(7), player.GroupHitting, 2025).Return(ExternalSeasonStats{}, nil).Once()

	got, err := service.GetTopHitters(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Rookie", got[0].Name)
	assert.Equal(t, player.Placeholder, got[0].Position)
	assert.Equal(t, teamcolor.DefaultColor, got[0].TeamColor)
	assert.Equal(t, player.Placeholder, got[0].Stats["avg"])
}

func TestLeaderboardService_DropsNamelessPlayer(t *testing.T) {
	t.Parallel()

	provider := newStatsProviderMock(t)
	metrics := newRecordingMetrics()
	service := NewLeaderboardService(provider, LeaderboardConfig{Season: 2025}, nil, metrics)

	provider.
		On("FetchLeaders", mock.Anything, mock.Anything).
		Return([]LeaderRecord{
			{PersonID: 8, TeamID: 147, Rank: 1},
			{PersonID: 592450, PersonName: "Aaron Judge", TeamID: 147, Rank: 2},
		}, nil).
		Once()
	provider.On("FetchPerson", mock.Anything, int64(8)).Return(ExternalPerson{ID: 8}, nil).Once()
	provider.On("FetchPerson", mock.Anything, int64(592450)).Return(ExternalPerson{ID: 592450, FullName: "Aaron Judge"}, nil).Once()
	provider.On("FetchSeasonStats", mock.Anything, mock.Anything, player.GroupHitting, 2025).Return(hittingLine(".331", 53, 114), nil).Twice()

	got, err := service.GetTopHitters(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(592450), got[0].ID)
	assert.Equal(t, 1, metrics.droppedFor("hitting"))
}

func TestLeaderboardService_CancelledContext(t *testing.T) {
	t.Parallel()

	provider := newStatsProviderMock(t)
	service := NewLeaderboardService(provider, LeaderboardConfig{Season: 2025}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	provider.
		On("FetchLeaders", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return([]LeaderRecord{{PersonID: 1, TeamID: 147, Rank: 1}}, nil).
		Once()

	_, err := service.GetTopHitters(ctx, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestResolveSeason(t *testing.T) {
	t.Parallel()

	now := time.Date(2027, time.February, 3, 0, 0, 0, 0, time.UTC)
	if got := resolveSeason(0, now); got != 2027 {
		t.Fatalf("unexpected season: got=%d want=2027", got)
	}
	if got := resolveSeason(2024, now); got != 2024 {
		t.Fatalf("unexpected season: got=%d want=2024", got)
	}
}
