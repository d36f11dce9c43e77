package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordroyale/wordroyale/internal/words"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadServerConfigMissingFile(t *testing.T) {
	cfg, err := LoadServerConfig("/nonexistent/server.hcl")
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())
	require.NoError(t, cfg.Validate())
}

func TestLoadServerConfig(t *testing.T) {
	path := writeConfig(t, `
server {
  address   = "0.0.0.0"
  port      = 9000
  log_level = "debug"
}

game {
  max_guesses              = 5
  guess_time_limit_seconds = 45
  answer_list              = "six_letter"
}

points {
  first_solve_points   = 500
  suggested_guess_cost = 25
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)

	params, err := cfg.GameParameters()
	require.NoError(t, err)
	assert.Equal(t, 5, params.MaxGuesses)
	assert.Equal(t, 45*time.Second, params.GuessTimeLimit)
	assert.Equal(t, words.SixLetter, params.AnswerList)

	schedule := cfg.PointSchedule()
	assert.Equal(t, 500, schedule.FirstSolvePoints)
	assert.Equal(t, 25, schedule.SuggestedGuessCost)
	assert.Equal(t, 10, schedule.RevealAbsentCost, "untouched fields keep defaults")
}

func TestServerConfigValidate(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Server.Port = -1
	require.Error(t, cfg.Validate())

	cfg = DefaultServerConfig()
	cfg.Game = &GameSettings{AnswerList: "klingon"}
	require.Error(t, cfg.Validate())
}

func TestLoadServerConfigBadHCL(t *testing.T) {
	path := writeConfig(t, `server { port = `)
	_, err := LoadServerConfig(path)
	require.Error(t, err)
}
