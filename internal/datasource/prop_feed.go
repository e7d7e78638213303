package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/models"
)

const propFeedSource = "prop_feed"

// PropFeedClient implements PropSource against a JSON:API projections feed.
// Only standard-odds points props are surfaced; everything else is filtered
// out before the pipeline sees it.
type PropFeedClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	leagueID   int
	perPage    int
	enabled    bool
	logger     *logrus.Logger
}

// projectionEnvelope is the top-level JSON:API response
type projectionEnvelope struct {
	Data     []projection   `json:"data"`
	Included []includedItem `json:"included"`
}

type projection struct {
	ID            string                  `json:"id"`
	Attributes    projectionAttributes    `json:"attributes"`
	Relationships projectionRelationships `json:"relationships"`
}

type projectionAttributes struct {
	StatType     string          `json:"stat_type"`
	OddsType     string          `json:"odds_type"`
	AdjustedOdds any             `json:"adjusted_odds"`
	LineScore    decimal.Decimal `json:"line_score"`
	Team         string          `json:"team"`
	NewPlayerID  json.Number     `json:"new_player_id"`
}

type projectionRelationships struct {
	NewPlayer relationshipRef `json:"new_player"`
	Game      relationshipRef `json:"game"`
}

type relationshipRef struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// includedItem is a polymorphic sideloaded resource; only new_player and
// game entries are used
type includedItem struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		Name                 string  `json:"name"`
		StartTime            *string `json:"start_time"`
		HomeTeamAbbreviation *string `json:"home_team_abbreviation"`
		AwayTeamAbbreviation *string `json:"away_team_abbreviation"`
	} `json:"attributes"`
}

type gameInfo struct {
	startTime *time.Time
	homeTeam  string
	awayTeam  string
}

// NewPropFeedClient creates a new projections feed client
func NewPropFeedClient(httpClient *RateLimitedHTTPClient, baseURL string, leagueID, perPage int, enabled bool, logger *logrus.Logger) *PropFeedClient {
	return &PropFeedClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		leagueID:   leagueID,
		perPage:    perPage,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchProps retrieves the current points props from the feed
func (c *PropFeedClient) FetchProps(ctx context.Context) ([]models.Prop, error) {
	if !c.enabled {
		return nil, NewSourceError(propFeedSource, ErrCodeNetworkError, "data source disabled", nil)
	}

	url := fmt.Sprintf("%s/projections?league_id=%d&per_page=%d", c.baseURL, c.leagueID, c.perPage)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, NewSourceError(propFeedSource, ErrCodeNetworkError, "failed to fetch projections", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewSourceError(propFeedSource, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewSourceError(propFeedSource, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var envelope projectionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, NewSourceError(propFeedSource, ErrCodeInvalidData, "failed to parse response", err)
	}

	props := c.convertProjections(&envelope)

	c.logger.WithFields(logrus.Fields{
		"projections": len(envelope.Data),
		"props":       len(props),
	}).Info("Fetched points props from feed")

	return props, nil
}

// convertProjections applies the points/standard-odds filters and joins the
// sideloaded player and game resources
func (c *PropFeedClient) convertProjections(envelope *projectionEnvelope) []models.Prop {
	playerNames := make(map[string]string)
	games := make(map[string]gameInfo)

	for _, item := range envelope.Included {
		switch item.Type {
		case "new_player":
			playerNames[item.ID] = item.Attributes.Name
		case "game":
			info := gameInfo{}
			if item.Attributes.StartTime != nil {
				if t, err := time.Parse(time.RFC3339, *item.Attributes.StartTime); err == nil {
					info.startTime = &t
				}
			}
			if item.Attributes.HomeTeamAbbreviation != nil {
				info.homeTeam = *item.Attributes.HomeTeamAbbreviation
			}
			if item.Attributes.AwayTeamAbbreviation != nil {
				info.awayTeam = *item.Attributes.AwayTeamAbbreviation
			}
			games[item.ID] = info
		}
	}

	var props []models.Prop
	for _, proj := range envelope.Data {
		attr := proj.Attributes

		if !strings.EqualFold(attr.StatType, "points") {
			continue
		}
		if attr.OddsType != "standard" {
			continue
		}
		// Adjusted odds mark promo/boosted lines that skew the market number
		if attr.AdjustedOdds != nil {
			continue
		}

		playerID := attr.NewPlayerID.String()
		if playerID == "" {
			playerID = proj.Relationships.NewPlayer.Data.ID
		}
		if playerID == "" {
			continue
		}

		playerName, ok := playerNames[playerID]
		if !ok {
			continue
		}

		prop := models.Prop{
			PlayerName: playerName,
			Line:       attr.LineScore,
			Team:       attr.Team,
		}

		if game, ok := games[proj.Relationships.Game.Data.ID]; ok {
			prop.GameTime = game.startTime
			if attr.Team != "" && game.homeTeam != "" && game.awayTeam != "" {
				if attr.Team == game.homeTeam {
					prop.Opponent = game.awayTeam
				} else {
					prop.Opponent = game.homeTeam
				}
			}
		}

		props = append(props, prop)
	}

	return props
}

// Name returns the data source name
func (c *PropFeedClient) Name() string {
	return propFeedSource
}

// IsEnabled returns whether this data source is enabled
func (c *PropFeedClient) IsEnabled() bool {
	return c.enabled
}
