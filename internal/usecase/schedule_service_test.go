package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/diamond-insights/internal/domain/game"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleBucket(date string, ids ...int64) game.DateBucket {
	games := make([]game.Game, 0, len(ids))
	for _, id := range ids {
		games = append(games, game.Game{
			ID:          id,
			AwayTeam:    game.NewTeamRef(147, "New York Yankees"),
			HomeTeam:    game.NewTeamRef(111, "Boston Red Sox"),
			ScheduledAt: time.Date(2026, 3, 1, 18, 5, 0, 0, time.UTC),
			Status:      "Scheduled",
		})
	}
	return game.DateBucket{Date: date, Games: games}
}

func TestScheduleService_GetSchedule_ReturnsInitialWindow(t *testing.T) {
	t.Parallel()

	provider := newStatsProviderMock(t)
	metrics := newRecordingMetrics()
	service := NewScheduleService(provider, DefaultScheduleConfig(), nil,
		WithScheduleClock(fixedClock(2026, time.March, 1)),
		WithScheduleMetrics(metrics),
	)

	want := []game.DateBucket{sampleBucket("2026-03-02", 745001, 745002)}
	provider.
		On("FetchSchedule", mock.Anything, dateArg("2026-03-01"), dateArg("2026-03-08")).
		Return(want, nil).
		Once()

	got, err := service.GetSchedule(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
	if metrics.probeCount() != 0 {
		t.Fatalf("unexpected probe count: got=%d want=0", metrics.probeCount())
	}
}

func TestScheduleService_GetSchedule_ProbesUntilGamesFound(t *testing.T) {
	t.Parallel()

	provider := newStatsProviderMock(t)
	metrics := newRecordingMetrics()
	service := NewScheduleService(provider, DefaultScheduleConfig(), nil,
		WithScheduleClock(fixedClock(2026, time.January, 10)),
		WithScheduleMetrics(metrics),
	)

	provider.On("FetchSchedule", mock.Anything, dateArg("2026-01-10"), dateArg("2026-01-17")).Return([]game.DateBucket{}, nil).Once()
	provider.On("FetchSchedule", mock.Anything, dateArg("2026-01-15"), dateArg("2026-01-20")).Return([]game.DateBucket{{Date: "2026-01-16"}}, nil).Once()
	provider.On("FetchSchedule", mock.Anything, dateArg("2026-01-20"), dateArg("2026-01-25")).Return(nil, nil).Once()

	want := []game.DateBucket{sampleBucket("2026-01-27", 9001)}
	provider.On("FetchSchedule", mock.Anything, dateArg("2026-01-25"), dateArg("2026-01-30")).Return(want, nil).Once()

	got, err := service.GetSchedule(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
	if metrics.probeCount() != 3 {
		t.Fatalf("unexpected probe count: got=%d want=3", metrics.probeCount())
	}
}

func TestScheduleService_GetSchedule_StopsAfterProbeAttempts(t *testing.T) {
	t.Parallel()

	provider := newStatsProviderMock(t)
	metrics := newRecordingMetrics()
	service := NewScheduleService(provider, DefaultScheduleConfig(), nil,
		WithScheduleClock(fixedClock(2026, time.November, 20)),
		WithScheduleMetrics(metrics),
	)

	provider.
		On("FetchSchedule", mock.Anything, mock.Anything, mock.Anything).
		Return([]game.DateBucket{}, nil).
		Times(13)

	_, err := service.GetSchedule(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if metrics.probeCount() != 12 {
		t.Fatalf("unexpected probe count: got=%d want=12", metrics.probeCount())
	}
}

func TestScheduleService_GetSchedule_PropagatesFetchFailure(t *testing.T) {
	t.Parallel()

	provider := newStatsProviderMock(t)
	service := NewScheduleService(provider, DefaultScheduleConfig(), nil, WithScheduleClock(fixedClock(2026, time.May, 1)))

	provider.On("FetchSchedule", mock.Anything, mock.Anything, mock.Anything).Return([]game.DateBucket{}, nil).Once()
	provider.
		On("FetchSchedule", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &FetchError{Kind: ErrUpstreamStatus, Endpoint: "schedule", StatusCode: 503}).
		Once()

	_, err := service.GetSchedule(context.Background())
	if !errors.Is(err, ErrUpstreamStatus) {
		t.Fatalf("expected ErrUpstreamStatus, got %v", err)
	}
}

func TestScheduleService_GetSchedule_HonorsCancellation(t *testing.T) {
	t.Parallel()

	provider := newStatsProviderMock(t)
	service := NewScheduleService(provider, DefaultScheduleConfig(), nil, WithScheduleClock(fixedClock(2026, time.May, 1)))

	ctx, cancel := context.WithCancel(context.Background())
	provider.
		On("FetchSchedule", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return([]game.DateBucket{}, nil).
		Once()

	_, err := service.GetSchedule(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScheduleService_GetScheduleGames_ClipsToLimit(t *testing.T) {
	t.Parallel()

	provider := newStatsProviderMock(t)
	service := NewScheduleService(provider, DefaultScheduleConfig(), nil, WithScheduleClock(fixedClock(2026, time.April, 1)))

	provider.
		On("FetchSchedule", mock.Anything, dateArg("2026-04-01"), dateArg("2026-05-01")).
		Return([]game.DateBucket{
			sampleBucket("2026-04-01", 1, 2),
			sampleBucket("2026-04-02"),
			sampleBucket("2026-04-03", 3, 4, 5),
			sampleBucket("2026-04-04", 6),
		}, nil).
		Once()

	got, err := service.GetScheduleGames(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "2026-04-01", got[0].Date)
	require.Len(t, got[0].Games, 2)
	require.Equal(t, "2026-04-03", got[1].Date)
	require.Len(t, got[1].Games, 2)
	require.Equal(t, int64(4), got[1].Games[1].ID)
	require.Equal(t, 4, game.CountGames(got))
}

func TestScheduleService_GetScheduleGames_RejectsInvalidLimit(t *testing.T) {
	t.Parallel()

	service := NewScheduleService(newStatsProviderMock(t), DefaultScheduleConfig(), nil)
	for _, limit := range []int{0, -3} {
		_, err := service.GetScheduleGames(context.Background(), limit)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for limit=%d, got %v", limit, err)
		}
	}
}

func TestClipBuckets(t *testing.T) {
	t.Parallel()

	buckets := []game.DateBucket{
		sampleBucket("2026-06-01", 1),
		sampleBucket("2026-06-02", 2, 3),
		sampleBucket("2026-06-03", 4),
	}

	cases := []struct {
		name        string
		limit       int
		wantBuckets int
		wantGames   int
	}{
		{name: "exact first bucket", limit: 1, wantBuckets: 1, wantGames: 1},
		{name: "partial second bucket", limit: 2, wantBuckets: 2, wantGames: 2},
		{name: "more than available", limit: 50, wantBuckets: 3, wantGames: 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := clipBuckets(buckets, tc.limit)
			if len(got) != tc.wantBuckets {
				t.Fatalf("unexpected bucket count: got=%d want=%d", len(got), tc.wantBuckets)
			}
			if game.CountGames(got) != tc.wantGames {
				t.Fatalf("unexpected game count: got=%d want=%d", game.CountGames(got), tc.wantGames)
			}
		})
	}

	if len(buckets[1].Games) != 2 {
		t.Fatalf("input bucket mutated: %d games", len(buckets[1].Games))
	}
}

func TestScheduleService_UsesConfiguredLocation(t *testing.T) {
	t.Parallel()

	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	provider := newStatsProviderMock(t)
	cfg := DefaultScheduleConfig()
	cfg.Location = newYork
	// 02:00 UTC on the 2nd is still the 1st in New York.
	clock := func() time.Time { return time.Date(2026, time.July, 2, 2, 0, 0, 0, time.UTC) }
	service := NewScheduleService(provider, cfg, nil, WithScheduleClock(clock))

	provider.
		On("FetchSchedule", mock.Anything, dateArg("2026-07-01"), dateArg("2026-07-31")).
		Return([]game.DateBucket{sampleBucket("2026-07-01", 1)}, nil).
		Once()

	_, err = service.GetScheduleGames(context.Background(), 5)
	require.NoError(t, err)
}
