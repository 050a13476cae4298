package httpapi

import (
	"net/http"

	"github.com/riskibarqy/diamond-insights/internal/domain/game"
	"github.com/riskibarqy/diamond-insights/internal/domain/teamcolor"
)

type teamColorDTO struct {
	TeamID  int64  `json:"team_id"`
	Color   string `json:"color"`
	Default bool   `json:"default"`
}

func (h *Handler) GetTeamColor(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamColor")
	defer span.End()

	teamID, err := pathInt64(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamColorDTO{
		TeamID:  teamID,
		Color:   teamcolor.Lookup(teamID),
		Default: !teamcolor.Known(teamID),
	})
}

func teamRefToDTO(v game.TeamRef) teamRefDTO {
	return teamRefDTO{
		ID:      v.ID,
		Name:    v.Name,
		LogoURL: v.LogoURL,
		Color:   teamcolor.Lookup(v.ID),
	}
}
