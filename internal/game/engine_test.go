package game

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/SamSnead85/622-sub012/internal/model"
)

func newTestEngine() *Engine {
	return NewEngine(WavelengthRules{}, DecoyRules{})
}

func testPlayer(id, name string) model.Player {
	return model.Player{ID: id, Name: name}
}

// startedWavelength builds a playing 3-player wavelength session with a
// known target. Round 1's psychic is always the host (roles rotate from
// player 0).
func startedWavelength(t *testing.T, e *Engine, rounds int) (code string) {
	t.Helper()
	snap, err := e.Create(model.GameTypeWavelength, testPlayer("host", "Ana"), model.Settings{Rounds: rounds})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	code = snap.Code
	for _, id := range []string{"p2", "p3"} {
		if _, err := e.Join(code, testPlayer(id, strings.ToUpper(id))); err != nil {
			t.Fatalf("Join %s: %v", id, err)
		}
	}
	if _, err := e.Start(code, "host"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.sessions[code].Data.(*wavelengthData).Target = 50
	return code
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return b
}

func TestCreateCodesUnique(t *testing.T) {
	e := newTestEngine()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		snap, err := e.Create(model.GameTypeWavelength, testPlayer("host", "Ana"), model.Settings{})
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		if len(snap.Code) != codeLength {
			t.Fatalf("code %q has wrong length", snap.Code)
		}
		for _, c := range snap.Code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("code %q uses character outside alphabet", snap.Code)
			}
		}
		if seen[snap.Code] {
			t.Fatalf("duplicate code %q", snap.Code)
		}
		seen[snap.Code] = true
	}
}

func TestCreateValidation(t *testing.T) {
	e := newTestEngine()
	if _, err := e.Create("chess", testPlayer("host", "Ana"), model.Settings{}); err != model.ErrUnknownGameType {
		t.Fatalf("unknown type: got %v", err)
	}
	if _, err := e.Create(model.GameTypeWavelength, testPlayer("host", "Ana"), model.Settings{Rounds: 99}); err != model.ErrInvalidSettings {
		t.Fatalf("rounds out of bounds: got %v", err)
	}
	if _, err := e.Create(model.GameTypeWavelength, testPlayer("host", "Ana"), model.Settings{TimerSeconds: -1}); err != model.ErrInvalidSettings {
		t.Fatalf("negative timer: got %v", err)
	}
}

func TestCreateSeedsHost(t *testing.T) {
	e := newTestEngine()
	snap, err := e.Create(model.GameTypeDecoy, model.Player{ID: "host", Name: "Ana", Score: 42}, model.Settings{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if snap.Status != model.StatusLobby {
		t.Fatalf("status = %s, want lobby", snap.Status)
	}
	if len(snap.Players) != 1 {
		t.Fatalf("players = %d, want 1", len(snap.Players))
	}
	host := snap.Players[0]
	if !host.IsHost || !host.IsConnected || host.Score != 0 {
		t.Fatalf("host not normalized: %+v", host)
	}
	if snap.HostID != "host" {
		t.Fatalf("hostId = %s", snap.HostID)
	}
}

func TestJoinValidation(t *testing.T) {
	e := newTestEngine()
	if _, err := e.Join("NOSUCH", testPlayer("p2", "Bo")); err != model.ErrSessionNotFound {
		t.Fatalf("missing session: got %v", err)
	}

	snap, _ := e.Create(model.GameTypeDecoy, testPlayer("host", "Ana"), model.Settings{})
	code := snap.Code

	// Decoy holds 8 players; fill the room then overflow.
	for i := 0; i < 7; i++ {
		id := string(rune('a' + i))
		if _, err := e.Join(code, testPlayer(id, id)); err != nil {
			t.Fatalf("Join %s: %v", id, err)
		}
	}
	if _, err := e.Join(code, testPlayer("late", "Late")); err != model.ErrSessionFull {
		t.Fatalf("full session: got %v", err)
	}
}

func TestJoinAfterStartRejectsNewPlayers(t *testing.T) {
	e := newTestEngine()
	code := startedWavelength(t, e, 2)
	if _, err := e.Join(code, testPlayer("late", "Late")); err != model.ErrAlreadyStarted {
		t.Fatalf("join after start: got %v", err)
	}
}

func TestRejoinPreservesScoreAndRound(t *testing.T) {
	e := newTestEngine()
	code := startedWavelength(t, e, 3)
	e.sessions[code].Player("p2").Score = 7

	if _, err := e.Disconnect(code, "p2"); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if e.sessions[code].Player("p2").IsConnected {
		t.Fatal("p2 still marked connected")
	}

	res, err := e.Join(code, testPlayer("p2", "P2"))
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if !res.Rejoined {
		t.Fatal("expected rejoin, got fresh join")
	}
	if res.Player.Score != 7 {
		t.Fatalf("score = %d, want 7", res.Player.Score)
	}
	if !res.Player.IsConnected {
		t.Fatal("rejoined player not marked connected")
	}
	if res.Self.Round != 1 {
		t.Fatalf("round = %d, want 1", res.Self.Round)
	}
}

func TestStartValidation(t *testing.T) {
	e := newTestEngine()
	snap, _ := e.Create(model.GameTypeWavelength, testPlayer("host", "Ana"), model.Settings{})
	code := snap.Code
	e.Join(code, testPlayer("p2", "Bo"))
	e.Join(code, testPlayer("p3", "Cy"))

	if _, err := e.Start(code, "p2"); err != model.ErrNotHost {
		t.Fatalf("non-host start: got %v", err)
	}
	view, _ := e.View(code, "host")
	if view.Status != model.StatusLobby {
		t.Fatalf("failed start mutated status to %s", view.Status)
	}

	if _, err := e.Start("NOSUCH", "host"); err != model.ErrSessionNotFound {
		t.Fatalf("missing session: got %v", err)
	}

	short, _ := e.Create(model.GameTypeWavelength, testPlayer("h2", "Di"), model.Settings{})
	if _, err := e.Start(short.Code, "h2"); err != model.ErrNotEnoughPlayers {
		t.Fatalf("under minimum: got %v", err)
	}

	if _, err := e.Start(code, "host"); err != nil {
		t.Fatalf("valid start: %v", err)
	}
	if _, err := e.Start(code, "host"); err != model.ErrAlreadyStarted {
		t.Fatalf("double start: got %v", err)
	}
}

func TestStartAssignsRoleAndBudget(t *testing.T) {
	e := newTestEngine()
	code := startedWavelength(t, e, 0) // 0 rounds = budget from roster size

	s := e.sessions[code]
	if s.Round != 1 {
		t.Fatalf("round = %d, want 1", s.Round)
	}
	if s.TotalRounds != 3 {
		t.Fatalf("totalRounds = %d, want 3 (one per player)", s.TotalRounds)
	}
	d := s.Data.(*wavelengthData)
	if d.PsychicID != "host" {
		t.Fatalf("round 1 psychic = %s, want host", d.PsychicID)
	}
	if d.Target < 1 || d.Target > 100 {
		t.Fatalf("target %d out of range", d.Target)
	}
	if s.RoundStartedAt.IsZero() {
		t.Fatal("roundStartedAt not stamped")
	}
}

func TestWavelengthRoundFlow(t *testing.T) {
	e := newTestEngine()
	code := startedWavelength(t, e, 2)

	// Guessing before a clue exists is a no-op.
	res, err := e.HandleAction(code, "p2", "guess", raw(t, wavelengthGuessPayload{Value: 50}))
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if res.RoundEnded {
		t.Fatal("round ended before clue phase finished")
	}
	if len(e.sessions[code].Data.(*wavelengthData).Guesses) != 0 {
		t.Fatal("guess accepted during clue phase")
	}

	// Non-psychic clue is a no-op, psychic clue advances the phase.
	e.HandleAction(code, "p2", "clue", raw(t, wavelengthCluePayload{Text: "sneaky"}))
	if e.sessions[code].Data.(*wavelengthData).Phase != phaseClue {
		t.Fatal("non-psychic clue accepted")
	}
	e.HandleAction(code, "host", "clue", raw(t, wavelengthCluePayload{Text: "lukewarm bath"}))
	if e.sessions[code].Data.(*wavelengthData).Phase != phaseGuessing {
		t.Fatal("psychic clue did not open guessing")
	}

	// First guesser in: round must not settle yet.
	res, _ = e.HandleAction(code, "p2", "guess", raw(t, wavelengthGuessPayload{Value: 52}))
	if res.RoundEnded {
		t.Fatal("round ended with a guesser outstanding")
	}

	// Last guesser settles the round deterministically:
	// p2 |52-50|=2 -> 4 pts, p3 |80-50|=30 -> 0 pts, psychic mean -> 2.
	res, _ = e.HandleAction(code, "p3", "guess", raw(t, wavelengthGuessPayload{Value: 80}))
	if !res.RoundEnded || res.GameEnded {
		t.Fatalf("roundEnded=%v gameEnded=%v, want true/false", res.RoundEnded, res.GameEnded)
	}
	want := map[string]int{"p2": 4, "p3": 0, "host": 2}
	for id, delta := range want {
		if res.Results.Scores[id] != delta {
			t.Fatalf("round delta for %s = %d, want %d", id, res.Results.Scores[id], delta)
		}
	}
	summary := res.Results.Summary.(*wavelengthSummary)
	if summary.Target != 50 {
		t.Fatalf("summary target = %d, want 50", summary.Target)
	}

	// Round advanced: next psychic by join order, cumulative scores applied.
	s := e.sessions[code]
	if s.Round != 2 {
		t.Fatalf("round = %d, want 2", s.Round)
	}
	if s.Data.(*wavelengthData).PsychicID != "p2" {
		t.Fatalf("round 2 psychic = %s, want p2", s.Data.(*wavelengthData).PsychicID)
	}
	if s.Player("p2").Score != 4 || s.Player("host").Score != 2 {
		t.Fatalf("cumulative scores wrong: host=%d p2=%d", s.Player("host").Score, s.Player("p2").Score)
	}
}

func TestDuplicateGuessIsNoOp(t *testing.T) {
	e := newTestEngine()
	code := startedWavelength(t, e, 2)
	e.HandleAction(code, "host", "clue", raw(t, wavelengthCluePayload{Text: "clue"}))
	e.HandleAction(code, "p2", "guess", raw(t, wavelengthGuessPayload{Value: 40}))

	e.HandleAction(code, "p2", "guess", raw(t, wavelengthGuessPayload{Value: 99}))
	d := e.sessions[code].Data.(*wavelengthData)
	if d.Guesses["p2"] != 40 {
		t.Fatalf("second guess overwrote first: %d", d.Guesses["p2"])
	}
	if len(d.Guesses) != 1 {
		t.Fatalf("guess count = %d, want 1", len(d.Guesses))
	}
}

func TestRoundCompletesWithoutDisconnected(t *testing.T) {
	e := newTestEngine()
	code := startedWavelength(t, e, 2)
	e.HandleAction(code, "host", "clue", raw(t, wavelengthCluePayload{Text: "clue"}))

	if _, err := e.Disconnect(code, "p3"); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	// Only p2 is still eligible; their guess alone completes the round.
	res, err := e.HandleAction(code, "p2", "guess", raw(t, wavelengthGuessPayload{Value: 50}))
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if !res.RoundEnded {
		t.Fatal("round did not complete with disconnected player outstanding")
	}
	if _, scored := res.Results.Scores["p3"]; scored {
		t.Fatal("disconnected player received a round delta")
	}
}

func TestNoDoubleSettlement(t *testing.T) {
	e := newTestEngine()
	code := startedWavelength(t, e, 2)
	e.HandleAction(code, "host", "clue", raw(t, wavelengthCluePayload{Text: "clue"}))
	e.HandleAction(code, "p2", "guess", raw(t, wavelengthGuessPayload{Value: 50}))
	res, _ := e.HandleAction(code, "p3", "guess", raw(t, wavelengthGuessPayload{Value: 50}))
	if !res.RoundEnded {
		t.Fatal("round should have settled")
	}
	scoreAfter := e.sessions[code].Player("p2").Score

	// Round 2 is in clue phase; replaying old guesses must not settle again.
	for i := 0; i < 5; i++ {
		res, err := e.HandleAction(code, "p2", "guess", raw(t, wavelengthGuessPayload{Value: 50}))
		if err != nil {
			t.Fatalf("HandleAction: %v", err)
		}
		if res.RoundEnded {
			t.Fatal("settlement ran twice for one round boundary")
		}
	}
	if got := e.sessions[code].Player("p2").Score; got != scoreAfter {
		t.Fatalf("score drifted from %d to %d without a round boundary", scoreAfter, got)
	}
}

func TestGameEndsExactlyAtBudget(t *testing.T) {
	e := newTestEngine()
	code := startedWavelength(t, e, 1)
	e.HandleAction(code, "host", "clue", raw(t, wavelengthCluePayload{Text: "clue"}))
	e.HandleAction(code, "p2", "guess", raw(t, wavelengthGuessPayload{Value: 51}))
	res, _ := e.HandleAction(code, "p3", "guess", raw(t, wavelengthGuessPayload{Value: 90}))

	if !res.RoundEnded || !res.GameEnded {
		t.Fatalf("roundEnded=%v gameEnded=%v, want true/true", res.RoundEnded, res.GameEnded)
	}

	// Final standings: p2 (4) ahead of host (2) ahead of p3 (0).
	wantOrder := []string{"p2", "host", "p3"}
	if len(res.Final) != 3 {
		t.Fatalf("final standings size = %d", len(res.Final))
	}
	for i, id := range wantOrder {
		if res.Final[i].ID != id {
			t.Fatalf("final[%d] = %s, want %s", i, res.Final[i].ID, id)
		}
	}

	// Finished session rejects further actions but stays retrievable
	// until removal.
	if _, err := e.HandleAction(code, "p2", "guess", raw(t, wavelengthGuessPayload{Value: 10})); err != model.ErrNotPlaying {
		t.Fatalf("action after finish: got %v", err)
	}
	view, err := e.View(code, "p2")
	if err != nil {
		t.Fatalf("View after finish: %v", err)
	}
	if view.Status != model.StatusFinished {
		t.Fatalf("status = %s, want finished", view.Status)
	}

	e.Remove(code)
	if _, err := e.View(code, "p2"); err != model.ErrSessionNotFound {
		t.Fatalf("View after removal: got %v", err)
	}
}

func TestFinalStandingsTieKeepsJoinOrder(t *testing.T) {
	s := &model.Session{Players: []*model.Player{
		{ID: "a", Score: 3},
		{ID: "b", Score: 5},
		{ID: "c", Score: 3},
	}}
	final := finalStandings(s)
	wantOrder := []string{"b", "a", "c"}
	for i, id := range wantOrder {
		if final[i].ID != id {
			t.Fatalf("final[%d] = %s, want %s", i, final[i].ID, id)
		}
	}
}

func TestDisconnectMissingSessionIsQuiet(t *testing.T) {
	e := newTestEngine()
	res, err := e.Disconnect("NOSUCH", "p1")
	if err != nil || res != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", res, err)
	}
}

func TestHandleActionValidation(t *testing.T) {
	e := newTestEngine()
	if _, err := e.HandleAction("NOSUCH", "p1", "guess", nil); err != model.ErrSessionNotFound {
		t.Fatalf("missing session: got %v", err)
	}
	snap, _ := e.Create(model.GameTypeWavelength, testPlayer("host", "Ana"), model.Settings{})
	if _, err := e.HandleAction(snap.Code, "host", "guess", nil); err != model.ErrNotPlaying {
		t.Fatalf("lobby action: got %v", err)
	}
}

func TestReapIdleSparesPlayingSessions(t *testing.T) {
	e := newTestEngine()

	idle, _ := e.Create(model.GameTypeWavelength, testPlayer("h1", "Ana"), model.Settings{})
	playing := startedWavelength(t, e, 2)

	stale := time.Now().Add(-time.Hour)
	e.sessions[idle.Code].RoundStartedAt = stale
	e.sessions[playing].RoundStartedAt = stale

	removed := e.ReapIdle(10 * time.Minute)
	if len(removed) != 1 || removed[0] != idle.Code {
		t.Fatalf("removed = %v, want just %s", removed, idle.Code)
	}
	if _, err := e.Meta(playing); err != nil {
		t.Fatalf("playing session was reaped: %v", err)
	}
}
