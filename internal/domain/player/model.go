package player

import (
	"fmt"
	"strconv"
	"strings"
)

// Group is the statsapi stat group a player's line belongs to.
type Group string

const (
	GroupHitting  Group = "hitting"
	GroupPitching Group = "pitching"
)

// Placeholder stands in for any stat the provider did not report.
const Placeholder = "-"

type statField struct {
	Abbr   string
	Source string
}

var hittingFields = []statField{
	{Abbr: "avg", Source: "avg"},
	{Abbr: "hr", Source: "homeRuns"},
	{Abbr: "rbi", Source: "rbi"},
	{Abbr: "h", Source: "hits"},
	{Abbr: "r", Source: "runs"},
	{Abbr: "sb", Source: "stolenBases"},
	{Abbr: "obp", Source: "obp"},
	{Abbr: "slg", Source: "slg"},
	{Abbr: "ops", Source: "ops"},
	{Abbr: "g", Source: "gamesPlayed"},
}

var pitchingFields = []statField{
	{Abbr: "era", Source: "era"},
	{Abbr: "w", Source: "wins"},
	{Abbr: "l", Source: "losses"},
	{Abbr: "so", Source: "strikeOuts"},
	{Abbr: "ip", Source: "inningsPitched"},
	{Abbr: "whip", Source: "whip"},
	{Abbr: "sv", Source: "saves"},
	{Abbr: "g", Source: "gamesPlayed"},
	{Abbr: "gs", Source: "gamesStarted"},
}

func fieldsFor(group Group) []statField {
	if group == GroupPitching {
		return pitchingFields
	}
	return hittingFields
}

// Stats maps a stat abbreviation to a string or float64 value.
type Stats map[string]any

// NewStats picks the group's stat subset out of a raw provider stat block.
// Every abbreviation of the group is present; missing values hold Placeholder.
func NewStats(group Group, raw map[string]any) Stats {
	fields := fieldsFor(group)
	out := make(Stats, len(fields))
	for _, f := range fields {
		out[f.Abbr] = normalizeStatValue(raw[f.Source])
	}
	return out
}

func normalizeStatValue(v any) any {
	switch value := v.(type) {
	case nil:
		return Placeholder
	case string:
		value = strings.TrimSpace(value)
		if value == "" {
			return Placeholder
		}
		return value
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case fmt.Stringer:
		return normalizeStatValue(value.String())
	default:
		return Placeholder
	}
}

// Number returns a numeric reading of the stat when one exists.
// Text rates like ".312" parse; placeholders and provider dashes do not.
func (s Stats) Number(abbr string) (float64, bool) {
	switch value := s[abbr].(type) {
	case float64:
		return value, true
	case string:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Bio holds optional biography fields; empty strings and nil mean unknown.
type Bio struct {
	BirthDate  string
	BirthPlace string
	Height     string
	Weight     *int
	DraftYear  *int
	DebutDate  string
}

// Player is a leader fused with its biography and season line.
type Player struct {
	ID       int64
	Name     string
	Position string
	// PositionName is the long form of Position, e.g. "Shortstop".
	PositionName string
	TeamID       int64
	TeamName     string
	TeamColor    string
	IsPitcher    bool
	Rank         int
	Stats        Stats
	Bio          Bio
}

func (p Player) Group() Group {
	if p.IsPitcher {
		return GroupPitching
	}
	return GroupHitting
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id must be greater than zero")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	return nil
}

// MatchesQuery reports whether query is a case-insensitive substring of the
// player's name, team name or either position form. An empty query matches everyone.
func (p Player) MatchesQuery(query string) bool {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.TeamName), needle) ||
		strings.Contains(strings.ToLower(p.Position), needle) ||
		strings.Contains(strings.ToLower(p.PositionName), needle)
}

// BirthPlace joins the non-empty parts of a provider birth location.
func BirthPlace(city, stateProvince, country string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{city, stateProvince, country} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}
