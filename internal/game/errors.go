package game

import "fmt"

// ErrorKind buckets failures so the transport layer can map them to wire
// error codes without inspecting messages.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindStateConflict ErrorKind = "state_conflict"
	KindPermission    ErrorKind = "permission"
	KindNotFound      ErrorKind = "not_found"
)

// Error is a typed failure returned by room and round operations. State is
// never mutated when one of these is returned.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Stable wire codes.
const (
	CodeAliasTaken       = "alias_taken"
	CodeInvalidGuess     = "invalid_guess"
	CodeGuessOutOfSync   = "guess_out_of_sync"
	CodeBoardComplete    = "board_complete"
	CodeInvalidState     = "invalid_state"
	CodePermissionDenied = "permission_denied"
	CodeRoomNotFound     = "room_not_found"
	CodePlayerNotFound   = "player_not_found"
	CodeBadParameter     = "bad_parameter"
)

func NewValidationError(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewStateConflictError(code, format string, args ...any) *Error {
	return &Error{Kind: KindStateConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewPermissionError(format string, args ...any) *Error {
	return &Error{Kind: KindPermission, Code: CodePermissionDenied, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(code, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}
