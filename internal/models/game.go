package models

import (
	"fmt"
	"strings"
	"time"
)

// GameRecord represents one played game for one player. Records are immutable
// once written to the cache; a player's history is ordered by date ascending.
type GameRecord struct {
	GameID            string    `db:"game_id" json:"game_id"`
	Season            string    `db:"season" json:"season"`
	Date              time.Time `db:"game_date" json:"game_date" validate:"required"`
	Matchup           string    `db:"matchup" json:"matchup" validate:"required"`
	Points            float64   `db:"points" json:"pts"`
	Minutes           float64   `db:"minutes" json:"min"`
	FieldGoalAttempts float64   `db:"field_goal_attempts" json:"fga"`
}

// Key returns the deduplication key for the record: the provider-assigned
// game ID when present, otherwise the (date, matchup) pair.
func (g *GameRecord) Key() string {
	if g.GameID != "" {
		return g.GameID
	}
	return fmt.Sprintf("%s|%s", g.Date.Format("2006-01-02"), g.Matchup)
}

// IsHome reports whether the matchup text indicates a home game. Game logs
// use "TEAM vs. OPP" for home games and "TEAM @ OPP" for away games.
func (g *GameRecord) IsHome() bool {
	return strings.Contains(g.Matchup, "vs")
}
