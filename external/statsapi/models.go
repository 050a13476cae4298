package statsapi

type ScheduleResponse struct {
	TotalGames int            `json:"totalGames"`
	Dates      []ScheduleDate `json:"dates"`
}

type ScheduleDate struct {
	Date  string         `json:"date"`
	Games []ScheduleGame `json:"games"`
}

type ScheduleGame struct {
	GamePk   int64      `json:"gamePk"`
	GameDate string     `json:"gameDate"`
	GameType string     `json:"gameType"`
	Status   GameStatus `json:"status"`
	Teams    GameTeams  `json:"teams"`
	Venue    NamedRef   `json:"venue"`
}

type GameStatus struct {
	AbstractGameState string `json:"abstractGameState"`
	DetailedState     string `json:"detailedState"`
	StatusCode        string `json:"statusCode"`
}

type GameTeams struct {
	Away GameTeam `json:"away"`
	Home GameTeam `json:"home"`
}

type GameTeam struct {
	Score *int     `json:"score"`
	Team  NamedRef `json:"team"`
}

type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LeadersResponse struct {
	LeagueLeaders []LeaderCategory `json:"leagueLeaders"`
}

type LeaderCategory struct {
	LeaderCategory string      `json:"leaderCategory"`
	Season         string      `json:"season"`
	StatGroup      string      `json:"statGroup"`
	Leaders        []LeaderRow `json:"leaders"`
}

type LeaderRow struct {
	Rank   int      `json:"rank"`
	Value  string   `json:"value"`
	Team   NamedRef `json:"team"`
	Person Person   `json:"person"`
}

type Person struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
}

type PeopleResponse struct {
	People []PersonDetail `json:"people"`
}

type PersonDetail struct {
	ID                 int64           `json:"id"`
	FullName           string          `json:"fullName"`
	BirthDate          string          `json:"birthDate"`
	BirthCity          string          `json:"birthCity"`
	BirthStateProvince string          `json:"birthStateProvince"`
	BirthCountry       string          `json:"birthCountry"`
	Height             string          `json:"height"`
	Weight             *int            `json:"weight"`
	DraftYear          *int            `json:"draftYear"`
	MLBDebutDate       string          `json:"mlbDebutDate"`
	PrimaryPosition    PrimaryPosition `json:"primaryPosition"`
	CurrentTeam        NamedRef        `json:"currentTeam"`
}

type PrimaryPosition struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Abbreviation string `json:"abbreviation"`
}

type StatsResponse struct {
	Stats []StatBlock `json:"stats"`
}

type StatBlock struct {
	Type   DisplayName `json:"type"`
	Group  DisplayName `json:"group"`
	Splits []StatSplit `json:"splits"`
}

type DisplayName struct {
	DisplayName string `json:"displayName"`
}

// StatSplit keeps the stat line open: the provider mixes numbers and
// preformatted rate strings such as ".312" within one object.
type StatSplit struct {
	Season string         `json:"season"`
	Stat   map[string]any `json:"stat"`
	Team   NamedRef       `json:"team"`
}
