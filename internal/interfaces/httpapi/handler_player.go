package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/diamond-insights/internal/domain/player"
)

const (
	defaultLeadersLimit   = 10
	defaultDirectoryPage  = 1
	defaultDirectoryLimit = 20
)

type leadersQuery struct {
	Limit int `validate:"min=1,max=50"`
}

type listPlayersQuery struct {
	Page   int    `validate:"min=1"`
	Limit  int    `validate:"min=1,max=100"`
	Search string `validate:"max=64"`
}

func (h *Handler) GetTopHitters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTopHitters")
	defer span.End()

	query, err := h.parseLeadersQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.leaderboardService.GetTopHitters(ctx, query.Limit)
	if err != nil {
		h.logFailure(ctx, "get top hitters failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(items))
}

func (h *Handler) GetTopPitchers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTopPitchers")
	defer span.End()

	query, err := h.parseLeadersQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.leaderboardService.GetTopPitchers(ctx, query.Limit)
	if err != nil {
		h.logFailure(ctx, "get top pitchers failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(items))
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	page, err := queryInt(r, "page", defaultDirectoryPage)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit", defaultDirectoryLimit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	query := listPlayersQuery{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.directoryService.GetAllPlayers(ctx, query.Page, query.Limit, query.Search)
	if err != nil {
		h.logFailure(ctx, "list players failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerPageDTO{
		Players: playersToDTO(result.Players),
		Page:    result.Page,
		Limit:   result.Limit,
		Total:   result.Total,
	})
}

func (h *Handler) parseLeadersQuery(r *http.Request) (leadersQuery, error) {
	limit, err := queryInt(r, "limit", defaultLeadersLimit)
	if err != nil {
		return leadersQuery{}, err
	}
	query := leadersQuery{Limit: limit}
	if err := h.validateRequest(r.Context(), query); err != nil {
		return leadersQuery{}, err
	}
	return query, nil
}

type playerBioDTO struct {
	BirthDate  string `json:"birth_date,omitempty"`
	BirthPlace string `json:"birth_place,omitempty"`
	Height     string `json:"height,omitempty"`
	Weight     *int   `json:"weight,omitempty"`
	DraftYear  *int   `json:"draft_year,omitempty"`
	DebutDate  string `json:"debut_date,omitempty"`
}

type playerDTO struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Position  string         `json:"position"`
	TeamID    int64          `json:"team_id"`
	Team      string         `json:"team"`
	TeamColor string         `json:"team_color"`
	IsPitcher bool           `json:"is_pitcher"`
	Rank      int            `json:"rank,omitempty"`
	Stats     map[string]any `json:"stats"`
	Bio       playerBioDTO   `json:"bio"`
}

type playerPageDTO struct {
	Players []playerDTO `json:"players"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
	Total   int         `json:"total"`
}

func playersToDTO(items []player.Player) []playerDTO {
	out := make([]playerDTO, 0, len(items))
	for _, item := range items {
		out = append(out, playerToDTO(item))
	}
	return out
}

func playerToDTO(v player.Player) playerDTO {
	stats := make(map[string]any, len(v.Stats))
	for k, stat := range v.Stats {
		stats[k] = stat
	}
	return playerDTO{
		ID:        v.ID,
		Name:      v.Name,
		Position:  v.Position,
		TeamID:    v.TeamID,
		Team:      v.TeamName,
		TeamColor: v.TeamColor,
		IsPitcher: v.IsPitcher,
		Rank:      v.Rank,
		Stats:     stats,
		Bio: playerBioDTO{
			BirthDate:  v.Bio.BirthDate,
			BirthPlace: v.Bio.BirthPlace,
			Height:     v.Bio.Height,
			Weight:     v.Bio.Weight,
			DraftYear:  v.Bio.DraftYear,
			DebutDate:  v.Bio.DebutDate,
		},
	}
}
