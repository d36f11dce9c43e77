package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/wordroyale/wordroyale/internal/game"
	"github.com/wordroyale/wordroyale/internal/words"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Game   *GameSettings  `hcl:"game,block"`
	Points *PointSettings `hcl:"points,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// GameSettings contains the default parameters new rooms start with
type GameSettings struct {
	MaxGuesses            int     `hcl:"max_guesses,optional"`
	GuessTimeLimitSeconds float64 `hcl:"guess_time_limit_seconds,optional"`
	AnswerList            string  `hcl:"answer_list,optional"`
}

// PointSettings overrides parts of the default scoring schedule
type PointSettings struct {
	FirstSolvePoints   *int `hcl:"first_solve_points,optional"`
	SuggestedGuessCost *int `hcl:"suggested_guess_cost,optional"`
	RevealAbsentCost   *int `hcl:"reveal_absent_cost,optional"`
	RevealPresentCost  *int `hcl:"reveal_present_cost,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := c.GameParameters(); err != nil {
		return err
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameParameters maps the game block onto room defaults.
func (c *ServerConfig) GameParameters() (game.Parameters, error) {
	params := game.DefaultParameters()
	if c.Game != nil {
		if c.Game.MaxGuesses != 0 {
			params.MaxGuesses = c.Game.MaxGuesses
		}
		if c.Game.GuessTimeLimitSeconds != 0 {
			params.SetGuessTimeLimit(time.Duration(c.Game.GuessTimeLimitSeconds * float64(time.Second)))
		}
		if c.Game.AnswerList != "" {
			lt, err := words.ParseListType(c.Game.AnswerList)
			if err != nil {
				return params, fmt.Errorf("game block: %w", err)
			}
			params.AnswerList = lt
		}
	}
	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}

// PointSchedule maps the points block onto the default schedule.
func (c *ServerConfig) PointSchedule() *game.PointSchedule {
	schedule := game.DefaultPointSchedule()
	if c.Points == nil {
		return schedule
	}
	if c.Points.FirstSolvePoints != nil {
		schedule.FirstSolvePoints = *c.Points.FirstSolvePoints
	}
	if c.Points.SuggestedGuessCost != nil {
		schedule.SuggestedGuessCost = *c.Points.SuggestedGuessCost
	}
	if c.Points.RevealAbsentCost != nil {
		schedule.RevealAbsentCost = *c.Points.RevealAbsentCost
	}
	if c.Points.RevealPresentCost != nil {
		schedule.RevealPresentCost = *c.Points.RevealPresentCost
	}
	return schedule
}
