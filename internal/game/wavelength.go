package game

import (
	"encoding/json"
	"math/rand"
	"strings"

	"github.com/SamSnead85/622-sub012/internal/model"
)

// Wavelength is a spectrum-guessing game. Each round one player (the
// psychic, rotating through join order) privately sees a target position
// on a spectrum like "freezing .. scorching", gives a one-line clue, and
// everyone else guesses the position. Guessers score by closeness; the
// psychic scores by how well the guessers did.

type wavelengthPhase string

const (
	phaseClue     wavelengthPhase = "clue"
	phaseGuessing wavelengthPhase = "guessing"
)

type spectrumPrompt struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

var spectrumPrompts = []spectrumPrompt{
	{"freezing", "scorching"},
	{"underrated", "overrated"},
	{"useless", "essential"},
	{"terrifying", "adorable"},
	{"guilty pleasure", "openly proud"},
	{"quiet night in", "wild night out"},
	{"ancient", "futuristic"},
	{"cheap", "luxurious"},
	{"forgettable", "unforgettable"},
	{"healthy", "junk food"},
	{"introvert", "extrovert"},
	{"bad habit", "good habit"},
	{"villain", "hero"},
	{"boring", "thrilling"},
	{"tiny", "enormous"},
	{"fragile", "indestructible"},
}

type wavelengthData struct {
	Phase       wavelengthPhase
	Prompts     []spectrumPrompt // shuffled once at session creation
	PromptIndex int              // wraps around the shuffled pool
	PsychicID   string
	Prompt      spectrumPrompt
	Clue        string
	Target      int // 1..100, hidden from everyone but the psychic
	Guesses     map[string]int
}

// wavelengthPublic is the projection every participant may see. The
// target stays out until the round summary reveals it; guess values stay
// out so late guessers are not anchored.
type wavelengthPublic struct {
	Phase     wavelengthPhase `json:"phase"`
	Prompt    spectrumPrompt  `json:"prompt"`
	PsychicID string          `json:"psychicId"`
	Clue      string          `json:"clue,omitempty"`
	Guessed   []string        `json:"guessed"`
}

type wavelengthPrivate struct {
	Target int `json:"target"`
}

type wavelengthSummary struct {
	Target    int            `json:"target"`
	Clue      string         `json:"clue"`
	PsychicID string         `json:"psychicId"`
	Guesses   map[string]int `json:"guesses"`
}

func (d *wavelengthData) Public() any {
	guessed := make([]string, 0, len(d.Guesses))
	for id := range d.Guesses {
		guessed = append(guessed, id)
	}
	return &wavelengthPublic{
		Phase:     d.Phase,
		Prompt:    d.Prompt,
		PsychicID: d.PsychicID,
		Clue:      d.Clue,
		Guessed:   guessed,
	}
}

func (d *wavelengthData) PrivateFor(playerID string) any {
	if playerID == d.PsychicID {
		return &wavelengthPrivate{Target: d.Target}
	}
	return nil
}

// WavelengthRules implements Rules for the spectrum-guessing game.
type WavelengthRules struct{}

func (WavelengthRules) Type() model.GameType { return model.GameTypeWavelength }
func (WavelengthRules) MinPlayers() int      { return 3 }
func (WavelengthRules) MaxPlayers() int      { return 10 }

// RoundBudget gives every player one turn as psychic.
func (WavelengthRules) RoundBudget(s *model.Session) int { return len(s.Players) }

func (WavelengthRules) NewGameData(settings model.Settings) (model.GameData, error) {
	prompts := make([]spectrumPrompt, len(spectrumPrompts))
	copy(prompts, spectrumPrompts)
	rand.Shuffle(len(prompts), func(i, j int) {
		prompts[i], prompts[j] = prompts[j], prompts[i]
	})
	return &wavelengthData{
		Phase:   phaseClue,
		Prompts: prompts,
		Guesses: make(map[string]int),
	}, nil
}

func (WavelengthRules) StartRound(s *model.Session) {
	d := s.Data.(*wavelengthData)
	d.PsychicID = s.Players[(s.Round-1)%len(s.Players)].ID
	d.Prompt = d.Prompts[d.PromptIndex%len(d.Prompts)]
	d.PromptIndex++
	d.Target = 1 + rand.Intn(100)
	d.Clue = ""
	d.Guesses = make(map[string]int)
	d.Phase = phaseClue
}

type wavelengthCluePayload struct {
	Text string `json:"text"`
}

type wavelengthGuessPayload struct {
	Value int `json:"value"`
}

func (WavelengthRules) HandleAction(s *model.Session, playerID, action string, payload json.RawMessage) {
	d := s.Data.(*wavelengthData)

	switch action {
	case "clue":
		if d.Phase != phaseClue || playerID != d.PsychicID {
			return
		}
		var req wavelengthCluePayload
		if err := json.Unmarshal(payload, &req); err != nil {
			return
		}
		req.Text = strings.TrimSpace(req.Text)
		if req.Text == "" {
			return
		}
		d.Clue = req.Text
		d.Phase = phaseGuessing

	case "guess":
		if d.Phase != phaseGuessing || playerID == d.PsychicID {
			return
		}
		if s.Player(playerID) == nil {
			return
		}
		if _, done := d.Guesses[playerID]; done {
			return
		}
		var req wavelengthGuessPayload
		if err := json.Unmarshal(payload, &req); err != nil {
			return
		}
		if req.Value < 1 || req.Value > 100 {
			return
		}
		d.Guesses[playerID] = req.Value
	}
}

// RoundOver: every connected non-psychic player has guessed. Disconnected
// players are not waited on, so a dropout cannot stall the round.
func (WavelengthRules) RoundOver(s *model.Session) bool {
	d := s.Data.(*wavelengthData)
	if d.Phase != phaseGuessing {
		return false
	}
	for _, p := range s.Players {
		if p.ID == d.PsychicID || !p.IsConnected {
			continue
		}
		if _, ok := d.Guesses[p.ID]; !ok {
			return false
		}
	}
	return len(d.Guesses) > 0
}

func (WavelengthRules) RoundResults(s *model.Session) *model.RoundResults {
	d := s.Data.(*wavelengthData)

	scores := make(map[string]int)
	total := 0
	for id, guess := range d.Guesses {
		delta := closenessPoints(guess, d.Target)
		scores[id] = delta
		total += delta
	}
	// The psychic is settled last, from the finished guesser scores.
	if len(d.Guesses) > 0 {
		scores[d.PsychicID] = (total + len(d.Guesses)/2) / len(d.Guesses)
	}

	guesses := make(map[string]int, len(d.Guesses))
	for id, g := range d.Guesses {
		guesses[id] = g
	}
	return &model.RoundResults{
		Round:  s.Round,
		Scores: scores,
		Summary: &wavelengthSummary{
			Target:    d.Target,
			Clue:      d.Clue,
			PsychicID: d.PsychicID,
			Guesses:   guesses,
		},
	}
}

func (WavelengthRules) GameOver(s *model.Session) bool {
	return s.Round > s.TotalRounds
}

func closenessPoints(guess, target int) int {
	diff := guess - target
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 5:
		return 4
	case diff <= 10:
		return 3
	case diff <= 20:
		return 2
	default:
		return 0
	}
}
