package roster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gill87/bucket-props/internal/datasource"
	"github.com/Gill87/bucket-props/internal/models"
)

func testDirectory() *Directory {
	return NewDirectory([]datasource.PlayerInfo{
		{ID: "2544", FullName: "LeBron James"},
		{ID: "1628369", FullName: "Jayson Tatum"},
		{ID: "203999", FullName: "Nikola Jokic"},
	})
}

func TestResolveExactName(t *testing.T) {
	dir := testDirectory()

	p, err := dir.Resolve("LeBron James")
	require.NoError(t, err)
	assert.Equal(t, "2544", p.ID)
}

func TestResolveCaseInsensitive(t *testing.T) {
	dir := testDirectory()

	p, err := dir.Resolve("lebron james")
	require.NoError(t, err)
	assert.Equal(t, "2544", p.ID)

	p, err = dir.Resolve("  NIKOLA JOKIC ")
	require.NoError(t, err)
	assert.Equal(t, "203999", p.ID)
}

func TestResolveUnknownPlayer(t *testing.T) {
	dir := testDirectory()

	_, err := dir.Resolve("LeBron Jame")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrPlayerNotFound))

	_, err = dir.Resolve("")
	assert.Error(t, err)
}

func TestDirectorySize(t *testing.T) {
	assert.Equal(t, 3, testDirectory().Size())
	assert.Equal(t, 0, NewDirectory(nil).Size())
}
