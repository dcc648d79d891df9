package game

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/SamSnead85/622-sub012/internal/model"
)

// Engine owns the registry of active sessions. It is the only component
// that mutates a session: transport code and the reaper go through these
// methods and only ever receive value snapshots. One mutex serializes all
// operations, so two actions on the same session can never interleave
// their reads and writes.
type Engine struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	rules    map[model.GameType]Rules
}

// NewEngine creates an engine with the given rule sets registered.
func NewEngine(rules ...Rules) *Engine {
	e := &Engine{
		sessions: make(map[string]*model.Session),
		rules:    make(map[model.GameType]Rules),
	}
	for _, r := range rules {
		e.rules[r.Type()] = r
	}
	return e
}

// JoinResult is returned by Join. Views holds one sanitized snapshot per
// roster player so the relay can push state without re-entering the engine.
type JoinResult struct {
	Self        *Snapshot
	Views       map[string]*Snapshot
	Player      model.Player
	PlayerCount int
	Rejoined    bool
}

// StartResult is returned by Start.
type StartResult struct {
	Round        int
	TotalRounds  int
	TimerSeconds int
	Public       any
	Views        map[string]*Snapshot
}

// ActionResult is returned by HandleAction. Views is populated only when
// the round advanced, because that is when fresh role secrets exist.
type ActionResult struct {
	Round        int
	TotalRounds  int
	TimerSeconds int
	Public       any
	Players      []model.Player
	RoundEnded   bool
	GameEnded    bool
	Results      *model.RoundResults
	Final        []model.Player
	Views        map[string]*Snapshot
}

// LeaveResult is returned by Disconnect.
type LeaveResult struct {
	PlayerID    string
	PlayerCount int
}

// Meta is a lightweight read-only summary of a session.
type Meta struct {
	Code           string
	Type           model.GameType
	Status         model.SessionStatus
	HostName       string
	PlayerCount    int
	RoundStartedAt time.Time
}

// Create allocates a session of the given type with host as player 0.
func (e *Engine) Create(gameType model.GameType, host model.Player, settings model.Settings) (*Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rules, ok := e.rules[gameType]
	if !ok {
		return nil, model.ErrUnknownGameType
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	data, err := rules.NewGameData(settings)
	if err != nil {
		return nil, err
	}

	code, err := newCode(func(c string) bool {
		_, taken := e.sessions[c]
		return taken
	})
	if err != nil {
		return nil, err
	}

	host.Score = 0
	host.IsHost = true
	host.IsConnected = true

	s := &model.Session{
		Code:           code,
		Type:           gameType,
		Status:         model.StatusLobby,
		Players:        []*model.Player{&host},
		Data:           data,
		TimerSeconds:   settings.TimerSeconds,
		HostID:         host.ID,
		RoundStartedAt: time.Now(),
	}
	if settings.Rounds > 0 {
		s.TotalRounds = settings.Rounds
	}
	e.sessions[code] = s

	log.Printf("session %s created: type=%s host=%s", code, gameType, host.ID)
	return sanitize(s, host.ID), nil
}

// Join adds a player to a lobby session. A known player id reconnecting is
// the one exception to the lobby-only rule: it flips IsConnected back on
// at any point before the session finishes, keeping score and identity.
func (e *Engine) Join(code string, player model.Player) (*JoinResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[code]
	if !ok {
		return nil, model.ErrSessionNotFound
	}

	if existing := s.Player(player.ID); existing != nil {
		if s.Status == model.StatusFinished {
			return nil, model.ErrAlreadyStarted
		}
		existing.IsConnected = true
		return &JoinResult{
			Self:        sanitize(s, existing.ID),
			Views:       sanitizeAll(s),
			Player:      *existing,
			PlayerCount: len(s.Players),
			Rejoined:    true,
		}, nil
	}

	if s.Status != model.StatusLobby {
		return nil, model.ErrAlreadyStarted
	}
	if len(s.Players) >= e.rules[s.Type].MaxPlayers() {
		return nil, model.ErrSessionFull
	}

	player.Score = 0
	player.IsHost = false
	player.IsConnected = true
	s.Players = append(s.Players, &player)

	log.Printf("session %s: player %s joined (%d total)", code, player.ID, len(s.Players))
	return &JoinResult{
		Self:        sanitize(s, player.ID),
		Views:       sanitizeAll(s),
		Player:      player,
		PlayerCount: len(s.Players),
	}, nil
}

// Start moves a lobby session into play and seeds round 1.
func (e *Engine) Start(code, requesterID string) (*StartResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[code]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	if s.HostID != requesterID {
		return nil, model.ErrNotHost
	}
	if s.Status != model.StatusLobby {
		return nil, model.ErrAlreadyStarted
	}
	rules := e.rules[s.Type]
	if len(s.Players) < rules.MinPlayers() {
		return nil, model.ErrNotEnoughPlayers
	}

	if s.TotalRounds == 0 {
		s.TotalRounds = rules.RoundBudget(s)
	}
	s.Status = model.StatusPlaying
	s.Round = 1
	rules.StartRound(s)
	s.RoundStartedAt = time.Now()

	log.Printf("session %s: started, %d players, %d rounds", code, len(s.Players), s.TotalRounds)
	return &StartResult{
		Round:        s.Round,
		TotalRounds:  s.TotalRounds,
		TimerSeconds: s.TimerSeconds,
		Public:       s.Data.Public(),
		Views:        sanitizeAll(s),
	}, nil
}

// HandleAction routes a player action into the active rule set and settles
// the round if it just completed. Rule-level invalid actions are silent
// no-ops inside the rule set; only missing or non-playing sessions are
// hard failures.
func (e *Engine) HandleAction(code, playerID, action string, payload json.RawMessage) (*ActionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[code]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	if s.Status != model.StatusPlaying {
		return nil, model.ErrNotPlaying
	}

	rules := e.rules[s.Type]
	rules.HandleAction(s, playerID, action, payload)

	res := &ActionResult{
		Round:        s.Round,
		TotalRounds:  s.TotalRounds,
		TimerSeconds: s.TimerSeconds,
		Public:       s.Data.Public(),
		Players:      copyPlayers(s.Players),
	}
	if !rules.RoundOver(s) {
		return res, nil
	}

	// Settlement runs exactly once per round boundary: StartRound resets
	// the rule set's per-round collections, so RoundOver flips back to
	// false before the lock is released.
	results := rules.RoundResults(s)
	for id, delta := range results.Scores {
		if p := s.Player(id); p != nil {
			p.Score += delta
		}
	}
	s.Round++
	res.RoundEnded = true
	res.Results = results

	if rules.GameOver(s) {
		s.Status = model.StatusFinished
		s.Round = s.TotalRounds
		res.GameEnded = true
		res.Final = finalStandings(s)
		log.Printf("session %s: game over after round %d", code, results.Round)
	} else {
		rules.StartRound(s)
		s.RoundStartedAt = time.Now()
		res.Views = sanitizeAll(s)
	}

	res.Round = s.Round
	res.Public = s.Data.Public()
	res.Players = copyPlayers(s.Players)
	return res, nil
}

// Disconnect marks a player as no longer connected. The roster entry
// stays so score and identity survive a reconnect. A missing session is
// not an error: the caller may race the reaper.
func (e *Engine) Disconnect(code, playerID string) (*LeaveResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[code]
	if !ok {
		return nil, nil
	}
	p := s.Player(playerID)
	if p == nil {
		return nil, nil
	}
	p.IsConnected = false
	return &LeaveResult{PlayerID: playerID, PlayerCount: s.ConnectedCount()}, nil
}

// Remove deletes a session unconditionally.
func (e *Engine) Remove(code string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sessions[code]; ok {
		delete(e.sessions, code)
		log.Printf("session %s removed", code)
	}
}

// View returns the sanitized session state for one viewer.
func (e *Engine) View(code, viewerID string) (*Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[code]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return sanitize(s, viewerID), nil
}

// Meta returns a read-only summary of a session.
func (e *Engine) Meta(code string) (*Meta, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[code]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	m := &Meta{
		Code:           s.Code,
		Type:           s.Type,
		Status:         s.Status,
		PlayerCount:    len(s.Players),
		RoundStartedAt: s.RoundStartedAt,
	}
	if host := s.Player(s.HostID); host != nil {
		m.HostName = host.Name
	}
	return m, nil
}

// Codes lists the codes of all active sessions.
func (e *Engine) Codes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	codes := make([]string, 0, len(e.sessions))
	for code := range e.sessions {
		codes = append(codes, code)
	}
	return codes
}

// ReapIdle removes every session that is not actively playing and whose
// last round activity is older than threshold. Playing sessions are never
// reaped by age alone. Returns the removed codes.
func (e *Engine) ReapIdle(threshold time.Duration) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := time.Now().Add(-threshold)
	var removed []string
	for code, s := range e.sessions {
		if s.Status == model.StatusPlaying {
			continue
		}
		if s.RoundStartedAt.Before(cutoff) {
			delete(e.sessions, code)
			removed = append(removed, code)
			log.Printf("session %s reaped: status=%s idle since %s", code, s.Status, s.RoundStartedAt.Format(time.RFC3339))
		}
	}
	return removed
}

// finalStandings sorts players by cumulative score descending; ties keep
// original join order.
func finalStandings(s *model.Session) []model.Player {
	final := copyPlayers(s.Players)
	sort.SliceStable(final, func(i, j int) bool {
		return final[i].Score > final[j].Score
	})
	return final
}
