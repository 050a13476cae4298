package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/diamond-insights/internal/domain/game"
)

const defaultScheduleGamesLimit = 10

type scheduleGamesQuery struct {
	Limit int `validate:"min=1,max=100"`
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSchedule")
	defer span.End()

	buckets, err := h.scheduleService.GetSchedule(ctx)
	if err != nil {
		h.logFailure(ctx, "get schedule failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scheduleToDTO(buckets))
}

func (h *Handler) GetScheduleGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScheduleGames")
	defer span.End()

	limit, err := queryInt(r, "limit", defaultScheduleGamesLimit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	query := scheduleGamesQuery{Limit: limit}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	buckets, err := h.scheduleService.GetScheduleGames(ctx, query.Limit)
	if err != nil {
		h.logFailure(ctx, "get schedule games failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scheduleToDTO(buckets))
}

type teamRefDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
	Color   string `json:"color"`
}

type gameDTO struct {
	ID          int64      `json:"id"`
	Team1       teamRefDTO `json:"team1"`
	Team2       teamRefDTO `json:"team2"`
	Team1Score  *int       `json:"team1_score"`
	Team2Score  *int       `json:"team2_score"`
	ScheduledAt string     `json:"scheduled_at,omitempty"`
	Venue       string     `json:"venue,omitempty"`
	Status      string     `json:"status,omitempty"`
}

type dateBucketDTO struct {
	Date  string    `json:"date"`
	Games []gameDTO `json:"games"`
}

type scheduleDTO struct {
	TotalGames int             `json:"total_games"`
	Dates      []dateBucketDTO `json:"dates"`
}

func scheduleToDTO(buckets []game.DateBucket) scheduleDTO {
	out := scheduleDTO{
		TotalGames: game.CountGames(buckets),
		Dates:      make([]dateBucketDTO, 0, len(buckets)),
	}
	for _, bucket := range buckets {
		games := make([]gameDTO, 0, len(bucket.Games))
		for _, item := range bucket.Games {
			games = append(games, gameToDTO(item))
		}
		out.Dates = append(out.Dates, dateBucketDTO{Date: bucket.Date, Games: games})
	}
	return out
}

func gameToDTO(v game.Game) gameDTO {
	out := gameDTO{
		ID:         v.ID,
		Team1:      teamRefToDTO(v.AwayTeam),
		Team2:      teamRefToDTO(v.HomeTeam),
		Team1Score: v.AwayScore,
		Team2Score: v.HomeScore,
		Venue:      v.Venue,
		Status:     v.Status,
	}
	if !v.ScheduledAt.IsZero() {
		out.ScheduledAt = v.ScheduledAt.UTC().Format(time.RFC3339)
	}
	return out
}
