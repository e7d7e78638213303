// Package gamelog loads player game histories from the local cache and the
// stats provider.
package gamelog

import (
	"context"

	"github.com/Gill87/bucket-props/internal/datasource"
	"github.com/Gill87/bucket-props/internal/models"
)

// Status classifies the outcome of a history fetch
type Status string

const (
	// StatusOK means a non-empty history was loaded
	StatusOK Status = "ok"
	// StatusNoData means the provider answered but has no games for the player
	StatusNoData Status = "no_data"
	// StatusFetchFailed means the provider could not be reached or errored
	StatusFetchFailed Status = "fetch_failed"
)

// FetchResult carries a player's history together with the fetch outcome.
// Callers decide skip-vs-abort from Status; Err is diagnostic only.
type FetchResult struct {
	Games  []models.GameRecord
	Status Status
	Err    error
}

// Provider supplies game histories for resolved players
type Provider interface {
	History(ctx context.Context, player datasource.PlayerInfo) FetchResult
}

func okResult(games []models.GameRecord) FetchResult {
	if len(games) == 0 {
		return FetchResult{Status: StatusNoData, Err: models.ErrEmptyHistory}
	}
	return FetchResult{Games: games, Status: StatusOK}
}
