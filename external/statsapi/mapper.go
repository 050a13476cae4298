package statsapi

import (
	"strings"
	"time"

	"github.com/riskibarqy/diamond-insights/internal/domain/game"
	"github.com/riskibarqy/diamond-insights/internal/domain/player"
	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
	"github.com/riskibarqy/diamond-insights/internal/usecase"
)

// mapSchedule converts schedule dates into buckets. Games without an id,
// games whose two sides share a team id, and repeated gamePks are skipped.
// Dates left without games are dropped.
func mapSchedule(envelope ScheduleResponse, logger *logging.Logger) []game.DateBucket {
	out := make([]game.DateBucket, 0, len(envelope.Dates))
	seen := make(map[int64]struct{}, envelope.TotalGames)
	skipped := 0

	for _, date := range envelope.Dates {
		bucket := game.DateBucket{
			Date:  strings.TrimSpace(date.Date),
			Games: make([]game.Game, 0, len(date.Games)),
		}
		for _, item := range date.Games {
			if item.GamePk <= 0 || item.Teams.Away.Team.ID == item.Teams.Home.Team.ID {
				skipped++
				continue
			}
			if _, dup := seen[item.GamePk]; dup {
				skipped++
				continue
			}
			seen[item.GamePk] = struct{}{}
			bucket.Games = append(bucket.Games, mapGame(item))
		}
		if len(bucket.Games) > 0 {
			out = append(out, bucket)
		}
	}

	if skipped > 0 {
		logger.Debug("skipped inconsistent schedule games", "count", skipped)
	}
	return out
}

func mapGame(item ScheduleGame) game.Game {
	return game.Game{
		ID:          item.GamePk,
		AwayTeam:    game.NewTeamRef(item.Teams.Away.Team.ID, strings.TrimSpace(item.Teams.Away.Team.Name)),
		HomeTeam:    game.NewTeamRef(item.Teams.Home.Team.ID, strings.TrimSpace(item.Teams.Home.Team.Name)),
		AwayScore:   item.Teams.Away.Score,
		HomeScore:   item.Teams.Home.Score,
		ScheduledAt: parseGameDate(item.GameDate),
		Venue:       strings.TrimSpace(item.Venue.Name),
		Status:      firstNonEmpty(item.Status.DetailedState, item.Status.AbstractGameState),
	}
}

// parseGameDate returns the zero time when the provider value is missing or malformed.
func parseGameDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}

// mapLeaders reads the category matching the query, falling back to the first
// category when the provider echoes a different name.
func mapLeaders(envelope LeadersResponse, q usecase.LeadersQuery) []usecase.LeaderRecord {
	if len(envelope.LeagueLeaders) == 0 {
		return []usecase.LeaderRecord{}
	}

	category := envelope.LeagueLeaders[0]
	for _, candidate := range envelope.LeagueLeaders {
		if strings.EqualFold(candidate.LeaderCategory, q.Category) &&
			(candidate.StatGroup == "" || strings.EqualFold(candidate.StatGroup, string(q.Group))) {
			category = candidate
			break
		}
	}

	out := make([]usecase.LeaderRecord, 0, len(category.Leaders))
	for _, row := range category.Leaders {
		if row.Person.ID <= 0 {
			continue
		}
		out = append(out, usecase.LeaderRecord{
			PersonID:   row.Person.ID,
			PersonName: strings.TrimSpace(row.Person.FullName),
			TeamID:     row.Team.ID,
			TeamName:   strings.TrimSpace(row.Team.Name),
			Rank:       row.Rank,
			Value:      strings.TrimSpace(row.Value),
			Group:      q.Group,
		})
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}

func mapPerson(detail PersonDetail) usecase.ExternalPerson {
	return usecase.ExternalPerson{
		ID:           detail.ID,
		FullName:     strings.TrimSpace(detail.FullName),
		Position:     firstNonEmpty(detail.PrimaryPosition.Abbreviation, detail.PrimaryPosition.Code),
		PositionName: strings.TrimSpace(detail.PrimaryPosition.Name),
		Bio: player.Bio{
			BirthDate:  strings.TrimSpace(detail.BirthDate),
			BirthPlace: player.BirthPlace(detail.BirthCity, detail.BirthStateProvince, detail.BirthCountry),
			Height:     strings.TrimSpace(detail.Height),
			Weight:     detail.Weight,
			DraftYear:  detail.DraftYear,
			DebutDate:  strings.TrimSpace(detail.MLBDebutDate),
		},
	}
}

// mapSeasonStats takes the first split of the block matching group. A missing
// block or empty splits yields a nil stat line, not an error.
func mapSeasonStats(envelope StatsResponse, personID int64, group player.Group, season int) usecase.ExternalSeasonStats {
	out := usecase.ExternalSeasonStats{
		PersonID: personID,
		Group:    group,
		Season:   season,
	}
	for _, block := range envelope.Stats {
		if block.Group.DisplayName != "" && !strings.EqualFold(block.Group.DisplayName, string(group)) {
			continue
		}
		if len(block.Splits) == 0 {
			continue
		}
		out.Stat = block.Splits[0].Stat
		return out
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
