package model

import "errors"

// Engine validation errors. These are reported synchronously to the
// initiating caller and never mutate session state.
var (
	ErrUnknownGameType  = errors.New("unknown game type")
	ErrInvalidSettings  = errors.New("invalid session settings")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionFull      = errors.New("session is full")
	ErrAlreadyStarted   = errors.New("session already started")
	ErrNotHost          = errors.New("only the host can perform this action")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNotPlaying       = errors.New("session is not in play")
)

// ErrorCode maps an engine error to a stable machine-readable reason for
// the wire. Unknown errors map to "internal".
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnknownGameType):
		return "unknown-game-type"
	case errors.Is(err, ErrInvalidSettings):
		return "invalid-settings"
	case errors.Is(err, ErrSessionNotFound):
		return "session-not-found"
	case errors.Is(err, ErrSessionFull):
		return "session-full"
	case errors.Is(err, ErrAlreadyStarted):
		return "already-started"
	case errors.Is(err, ErrNotHost):
		return "not-host"
	case errors.Is(err, ErrNotEnoughPlayers):
		return "not-enough-players"
	case errors.Is(err, ErrNotPlaying):
		return "not-playing"
	default:
		return "internal"
	}
}
