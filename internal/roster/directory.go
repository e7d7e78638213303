// Package roster resolves prop player names against the league player index.
package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Gill87/bucket-props/internal/datasource"
	"github.com/Gill87/bucket-props/internal/models"
)

// Directory maps player names to stats provider IDs. Matching is
// case-insensitive and exact; no fuzzy matching, a misspelled feed name
// simply fails to resolve.
type Directory struct {
	byName map[string]datasource.PlayerInfo
	size   int
}

// Build fetches the player index once and constructs a Directory from it
func Build(ctx context.Context, source datasource.StatsSource, logger *logrus.Logger) (*Directory, error) {
	players, err := source.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load player index: %w", err)
	}

	dir := NewDirectory(players)

	logger.WithField("players", dir.Size()).Info("Built player directory")
	return dir, nil
}

// NewDirectory constructs a Directory from a player list. Later entries win
// on duplicate names.
func NewDirectory(players []datasource.PlayerInfo) *Directory {
	byName := make(map[string]datasource.PlayerInfo, len(players))
	for _, p := range players {
		if p.FullName == "" {
			continue
		}
		byName[strings.ToLower(p.FullName)] = p
	}
	return &Directory{byName: byName, size: len(players)}
}

// Resolve looks up a player by full name, case-insensitively
func (d *Directory) Resolve(name string) (datasource.PlayerInfo, error) {
	p, ok := d.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return datasource.PlayerInfo{}, fmt.Errorf("%w: %s", models.ErrPlayerNotFound, name)
	}
	return p, nil
}

// Size returns the number of players loaded into the directory
func (d *Directory) Size() int {
	return d.size
}
