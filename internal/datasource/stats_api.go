package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/models"
)

const statsAPISource = "stats_api"

// StatsAPIClient implements StatsSource against the league stats API. Game
// logs are regular-season only.
type StatsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// statsGameLogResponse is the game log payload from the stats API
type statsGameLogResponse struct {
	Games []statsGameEntry `json:"games"`
}

type statsGameEntry struct {
	GameID            string  `json:"game_id"`
	Season            string  `json:"season"`
	GameDate          string  `json:"game_date"`
	Matchup           string  `json:"matchup"`
	Points            float64 `json:"pts"`
	Minutes           float64 `json:"min"`
	FieldGoalAttempts float64 `json:"fga"`
}

type statsPlayersResponse struct {
	Players []PlayerInfo `json:"players"`
}

// NewStatsAPIClient creates a new stats API client
func NewStatsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) *StatsAPIClient {
	return &StatsAPIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

// FetchPlayerGames retrieves a player's regular-season game log for a season
func (c *StatsAPIClient) FetchPlayerGames(ctx context.Context, playerID, season string) ([]models.GameRecord, error) {
	endpoint := fmt.Sprintf("%s/players/%s/gamelog?season=%s&season_type=%s",
		c.baseURL, url.PathEscape(playerID), url.QueryEscape(season), url.QueryEscape("Regular Season"))

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewSourceError(statsAPISource, ErrCodeNotFound, "player not found", models.ErrPlayerNotFound)
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var payload statsGameLogResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewSourceError(statsAPISource, ErrCodeInvalidData, "failed to parse game log", err)
	}

	games := make([]models.GameRecord, 0, len(payload.Games))
	for _, entry := range payload.Games {
		game, err := convertGameEntry(entry, season)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"player_id": playerID,
				"game_id":   entry.GameID,
				"error":     err.Error(),
			}).Warn("Skipping malformed game log entry")
			continue
		}
		games = append(games, game)
	}

	return games, nil
}

// ListPlayers retrieves the full player index
func (c *StatsAPIClient) ListPlayers(ctx context.Context) ([]PlayerInfo, error) {
	resp, err := c.get(ctx, c.baseURL+"/players")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var payload statsPlayersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewSourceError(statsAPISource, ErrCodeInvalidData, "failed to parse player index", err)
	}

	return payload.Players, nil
}

// Name returns the data source name
func (c *StatsAPIClient) Name() string {
	return statsAPISource
}

func (c *StatsAPIClient) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewSourceError(statsAPISource, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewSourceError(statsAPISource, ErrCodeNetworkError, "request failed", err)
	}
	return resp, nil
}

func (c *StatsAPIClient) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return NewSourceError(statsAPISource, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewSourceError(statsAPISource, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return NewSourceError(statsAPISource, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}
	return nil
}

// convertGameEntry normalizes a game log entry, accepting either RFC 3339 or
// date-only timestamps
func convertGameEntry(entry statsGameEntry, season string) (models.GameRecord, error) {
	date, err := time.Parse("2006-01-02", entry.GameDate)
	if err != nil {
		date, err = time.Parse(time.RFC3339, entry.GameDate)
		if err != nil {
			return models.GameRecord{}, fmt.Errorf("invalid game date %q: %w", entry.GameDate, err)
		}
	}
	if entry.Matchup == "" {
		return models.GameRecord{}, fmt.Errorf("missing matchup for game %s", entry.GameID)
	}

	gameSeason := entry.Season
	if gameSeason == "" {
		gameSeason = season
	}

	return models.GameRecord{
		GameID:            entry.GameID,
		Season:            gameSeason,
		Date:              date,
		Matchup:           entry.Matchup,
		Points:            entry.Points,
		Minutes:           entry.Minutes,
		FieldGoalAttempts: entry.FieldGoalAttempts,
	}, nil
}
