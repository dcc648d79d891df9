package model

import "time"

// GameType identifies which rule set governs a session.
type GameType string

const (
	GameTypeWavelength GameType = "wavelength"
	GameTypeDecoy      GameType = "decoy"
)

// SessionStatus is the session lifecycle state.
type SessionStatus string

const (
	StatusLobby    SessionStatus = "lobby"
	StatusPlaying  SessionStatus = "playing"
	StatusFinished SessionStatus = "finished"
)

// Settings are the host-chosen options for a new session.
type Settings struct {
	Rounds       int `json:"rounds"`       // 0 = let the rule set pick
	TimerSeconds int `json:"timerSeconds"` // 0 = no per-round timer hint
}

const (
	MaxRounds       = 20
	MaxTimerSeconds = 600
)

// Validate checks settings bounds shared by every game type.
func (s Settings) Validate() error {
	if s.Rounds < 0 || s.Rounds > MaxRounds {
		return ErrInvalidSettings
	}
	if s.TimerSeconds < 0 || s.TimerSeconds > MaxTimerSeconds {
		return ErrInvalidSettings
	}
	return nil
}

// GameData is the rule-set-owned portion of a session's state. The engine
// never looks inside it; the sanitizer projects it per viewer. Fields the
// concrete type keeps out of Public are hidden from everyone until the rule
// set chooses to surface them in a round summary. PrivateFor returns the
// secret slot addressed to one player, or nil.
type GameData interface {
	Public() any
	PrivateFor(playerID string) any
}

// RoundResults is produced once per round boundary. Scores are per-round
// deltas, not cumulative. Summary is safe to reveal to every player.
type RoundResults struct {
	Round   int            `json:"round"`
	Scores  map[string]int `json:"scores"`
	Summary any            `json:"summary"`
}

// Session is one live game room. Player order is join order and is
// meaningful: rule sets rotate roles through it.
type Session struct {
	Code           string        `json:"code"`
	Type           GameType      `json:"type"`
	Status         SessionStatus `json:"status"`
	Players        []*Player     `json:"players"`
	Round          int           `json:"round"`
	TotalRounds    int           `json:"totalRounds"`
	Data           GameData      `json:"-"`
	TimerSeconds   int           `json:"timerSeconds"`
	HostID         string        `json:"hostId"`
	RoundStartedAt time.Time     `json:"roundStartedAt"`
}

// Player returns the roster entry for id, or nil.
func (s *Session) Player(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ConnectedCount reports how many roster entries have a live connection.
func (s *Session) ConnectedCount() int {
	n := 0
	for _, p := range s.Players {
		if p.IsConnected {
			n++
		}
	}
	return n
}
