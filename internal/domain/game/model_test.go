package game

import "testing"

func TestNewTeamRef_LogoURL(t *testing.T) {
	t.Parallel()

	ref := NewTeamRef(147, "New York Yankees")
	if ref.LogoURL != "https://www.mlbstatic.com/team-logos/147.svg" {
		t.Fatalf("unexpected logo url: %s", ref.LogoURL)
	}
	if empty := NewTeamRef(0, ""); empty.LogoURL != "" {
		t.Fatalf("expected empty logo url for unknown team, got %s", empty.LogoURL)
	}
}

func TestCountGames(t *testing.T) {
	t.Parallel()

	buckets := []DateBucket{
		{Date: "2026-04-01", Games: []Game{{ID: 1}, {ID: 2}}},
		{Date: "2026-04-02"},
		{Date: "2026-04-03", Games: []Game{{ID: 3}}},
	}
	if got := CountGames(buckets); got != 3 {
		t.Fatalf("unexpected game count: got=%d want=3", got)
	}
}
