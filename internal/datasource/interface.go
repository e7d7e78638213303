package datasource

import (
	"context"

	"github.com/Gill87/bucket-props/internal/models"
)

// PropSource defines the interface for fetching player prop lines from an
// external projections provider
type PropSource interface {
	// FetchProps retrieves the current slate of points props
	FetchProps(ctx context.Context) ([]models.Prop, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// StatsSource defines the interface for fetching player game logs and
// league rosters from a stats provider
type StatsSource interface {
	// FetchPlayerGames retrieves a player's regular-season game log
	FetchPlayerGames(ctx context.Context, playerID, season string) ([]models.GameRecord, error)

	// ListPlayers retrieves the full player index used for name resolution
	ListPlayers(ctx context.Context) ([]PlayerInfo, error)

	// Name returns the name of the data source
	Name() string
}

// PlayerInfo is a roster entry from the stats provider
type PlayerInfo struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// SourceError represents errors from data source operations
type SourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// NewSourceError creates a new data source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
