package game

// Code is a machine-readable error code returned to clients
type Code string

const (
	CodeRoomNotFound     Code = "ROOM_NOT_FOUND"
	CodeRoomFull         Code = "ROOM_FULL"
	CodeWrongPhase       Code = "WRONG_PHASE"
	CodeNotHost          Code = "NOT_HOST"
	CodeNotEnoughPlayers Code = "NOT_ENOUGH_PLAYERS"
	CodeInvalidVote      Code = "INVALID_VOTE"
	CodeInvalidRounds    Code = "INVALID_ROUNDS"
	CodeNameRequired     Code = "NAME_REQUIRED"
	CodeNotInRoom        Code = "NOT_IN_ROOM"
	CodeSpectator        Code = "SPECTATOR_READ_ONLY"
	CodeStaleTurn        Code = "STALE_TURN"
	CodeUnknownAction    Code = "UNKNOWN_ACTION"
	CodeBadRequest       Code = "BAD_REQUEST"
)

// Error is a validation failure returned synchronously to the caller
type Error struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates a domain error with a code and message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

var (
	ErrRoomNotFound     = NewError(CodeRoomNotFound, "Game not found")
	ErrRoomFull         = NewError(CodeRoomFull, "Game is full")
	ErrWrongPhase       = NewError(CodeWrongPhase, "Action not allowed in the current phase")
	ErrNotHost          = NewError(CodeNotHost, "Only the host can do that")
	ErrNotEnoughPlayers = NewError(CodeNotEnoughPlayers, "Need at least 3 players")
	ErrInvalidVote      = NewError(CodeInvalidVote, "Invalid vote")
	ErrInvalidRounds    = NewError(CodeInvalidRounds, "Invalid number of rounds")
	ErrNameRequired     = NewError(CodeNameRequired, "Name is required")
	ErrNotInRoom        = NewError(CodeNotInRoom, "Not in a game")
	ErrSpectator        = NewError(CodeSpectator, "Spectators cannot do that")
	ErrUnknownAction    = NewError(CodeUnknownAction, "Unknown action")
	ErrBadRequest       = NewError(CodeBadRequest, "Malformed request")

	// ErrStaleTurn rejects a resolution or bot pass that targets a turn which has
	// already moved on. It is internal and never sent to clients.
	ErrStaleTurn = NewError(CodeStaleTurn, "turn already resolved")
)
