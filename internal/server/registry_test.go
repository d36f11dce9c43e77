package server

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordroyale/wordroyale/internal/game"
	"github.com/wordroyale/wordroyale/internal/randutil"
	"github.com/wordroyale/wordroyale/internal/roomcode"
	"github.com/wordroyale/wordroyale/internal/words"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	catalog, err := words.NewCatalog()
	require.NoError(t, err)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return NewRegistry(game.DefaultParameters(), game.DefaultPointSchedule(), catalog, randutil.New(11), quartz.NewMock(t), logger)
}

func TestRegistryCreateAndLookup(t *testing.T) {
	reg := newTestRegistry(t)

	room, err := reg.CreateRoom()
	require.NoError(t, err)
	require.NoError(t, roomcode.Validate(room.Code))

	found, err := reg.Room(room.Code)
	require.NoError(t, err)
	assert.Same(t, room, found)

	_, err = reg.Room("ZZZZZ")
	require.Error(t, err)
	assert.Equal(t, game.CodeRoomNotFound, wireError(err).Code)

	_, err = reg.Room("not-a-code")
	require.Error(t, err)
	assert.Equal(t, game.CodeRoomNotFound, wireError(err).Code)
}

func TestRegistryCodesAreUnique(t *testing.T) {
	reg := newTestRegistry(t)

	seen := map[string]bool{}
	for range 50 {
		room, err := reg.CreateRoom()
		require.NoError(t, err)
		assert.False(t, seen[room.Code])
		seen[room.Code] = true
	}
}

func TestRegistrySummaries(t *testing.T) {
	reg := newTestRegistry(t)

	a, err := reg.CreateRoom()
	require.NoError(t, err)
	b, err := reg.CreateRoom()
	require.NoError(t, err)
	joinPlayer(t, a, "alice")

	summaries := reg.Summaries()
	require.Len(t, summaries, 2)
	assert.Less(t, summaries[0].Code, summaries[1].Code, "sorted by code")
	for _, s := range summaries {
		switch s.Code {
		case a.Code:
			assert.Equal(t, 1, s.PlayerCount)
		case b.Code:
			assert.Zero(t, s.PlayerCount)
		}
	}
}

func TestRegistryListChangedHook(t *testing.T) {
	reg := newTestRegistry(t)

	fired := 0
	reg.SetListChanged(func() { fired++ })

	room, err := reg.CreateRoom()
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	joinPlayer(t, room, "alice")
	assert.Equal(t, 2, fired, "membership changes refresh the listing")
}
