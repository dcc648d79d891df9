package game

import (
	"encoding/json"

	"github.com/SamSnead85/622-sub012/internal/model"
)

// Rules is the contract every game type implements. One conforming type
// per game, registered with the engine at startup.
//
// HandleAction must validate the actor, phase and payload itself and no-op
// on any violation: a malformed or out-of-turn action never errors, the
// round simply does not advance. RoundOver and GameOver are pure
// predicates. RoundResults is called by the engine at most once per round
// boundary; scoring is strictly per-round, and a role whose score depends
// on the other players' performance is settled only after theirs.
type Rules interface {
	Type() model.GameType
	MinPlayers() int
	MaxPlayers() int

	// RoundBudget picks the round count when the host did not set one.
	// Called once at start, so it may derive from the roster size.
	RoundBudget(s *model.Session) int

	NewGameData(settings model.Settings) (model.GameData, error)
	StartRound(s *model.Session)
	HandleAction(s *model.Session, playerID, action string, payload json.RawMessage)
	RoundOver(s *model.Session) bool
	RoundResults(s *model.Session) *model.RoundResults
	GameOver(s *model.Session) bool
}
