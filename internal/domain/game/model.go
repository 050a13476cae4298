package game

import (
	"fmt"
	"time"
)

const logoURLFormat = "https://www.mlbstatic.com/team-logos/%d.svg"

type TeamRef struct {
	ID      int64
	Name    string
	LogoURL string
}

func NewTeamRef(id int64, name string) TeamRef {
	ref := TeamRef{ID: id, Name: name}
	if id > 0 {
		ref.LogoURL = fmt.Sprintf(logoURLFormat, id)
	}
	return ref
}

// Game is one scheduled matchup. AwayTeam and HomeTeam never share an id.
type Game struct {
	ID          int64
	AwayTeam    TeamRef
	HomeTeam    TeamRef
	AwayScore   *int
	HomeScore   *int
	ScheduledAt time.Time
	Venue       string
	Status      string
}

// DateBucket groups a calendar date's games in schedule order.
type DateBucket struct {
	Date  string
	Games []Game
}

func CountGames(buckets []DateBucket) int {
	total := 0
	for _, b := range buckets {
		total += len(b.Games)
	}
	return total
}
