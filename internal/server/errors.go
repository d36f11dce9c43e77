package server

import (
	"errors"

	"github.com/wordroyale/wordroyale/internal/game"
)

// wireError converts any error into the code+message pair sent to clients.
// Typed game errors keep their code; anything else is reported opaquely.
func wireError(err error) ErrorData {
	var gameErr *game.Error
	if errors.As(err, &gameErr) {
		return ErrorData{Code: gameErr.Code, Message: gameErr.Message}
	}
	return ErrorData{Code: "internal_error", Message: err.Error()}
}
