package game

import (
	"encoding/json"
	"math/rand"
	"strings"

	"github.com/SamSnead85/622-sub012/internal/model"
)

// Decoy is a two-truths-and-a-lie bluffing game. Each round one player
// (the storyteller, rotating through join order) writes three statements
// about the round's topic, one of them false. Everyone else votes for the
// statement they think is the lie. Correct voters score; the storyteller
// scores for every voter they fooled.

type decoyPhase string

const (
	phaseWriting decoyPhase = "writing"
	phaseVoting  decoyPhase = "voting"
)

var decoyTopics = []string{
	"childhood",
	"travel disasters",
	"food opinions",
	"hidden talents",
	"embarrassing moments",
	"school days",
	"celebrity encounters",
	"pets and animals",
	"sports",
	"first jobs",
	"family traditions",
	"near misses",
}

type decoyData struct {
	Phase         decoyPhase
	Topics        []string // shuffled once at session creation
	TopicIndex    int      // wraps around the shuffled pool
	StorytellerID string
	Topic         string
	Statements    []string
	LieIndex      int // hidden from everyone until the round summary
	Votes         map[string]int
}

type decoyPublic struct {
	Phase         decoyPhase `json:"phase"`
	Topic         string     `json:"topic"`
	StorytellerID string     `json:"storytellerId"`
	Statements    []string   `json:"statements,omitempty"`
	Voted         []string   `json:"voted"`
}

// decoyPrivate echoes the lie index back to its author, so a storyteller
// who reconnects mid-round still knows which statement they planted.
type decoyPrivate struct {
	LieIndex int `json:"lieIndex"`
}

type decoySummary struct {
	Topic         string         `json:"topic"`
	StorytellerID string         `json:"storytellerId"`
	Statements    []string       `json:"statements"`
	LieIndex      int            `json:"lieIndex"`
	Votes         map[string]int `json:"votes"`
}

func (d *decoyData) Public() any {
	voted := make([]string, 0, len(d.Votes))
	for id := range d.Votes {
		voted = append(voted, id)
	}
	return &decoyPublic{
		Phase:         d.Phase,
		Topic:         d.Topic,
		StorytellerID: d.StorytellerID,
		Statements:    d.Statements,
		Voted:         voted,
	}
}

func (d *decoyData) PrivateFor(playerID string) any {
	if playerID == d.StorytellerID && d.Phase == phaseVoting {
		return &decoyPrivate{LieIndex: d.LieIndex}
	}
	return nil
}

// DecoyRules implements Rules for the bluffing game.
type DecoyRules struct{}

func (DecoyRules) Type() model.GameType { return model.GameTypeDecoy }
func (DecoyRules) MinPlayers() int      { return 3 }
func (DecoyRules) MaxPlayers() int      { return 8 }

// RoundBudget gives every player one turn as storyteller.
func (DecoyRules) RoundBudget(s *model.Session) int { return len(s.Players) }

func (DecoyRules) NewGameData(settings model.Settings) (model.GameData, error) {
	topics := make([]string, len(decoyTopics))
	copy(topics, decoyTopics)
	rand.Shuffle(len(topics), func(i, j int) {
		topics[i], topics[j] = topics[j], topics[i]
	})
	return &decoyData{
		Phase:  phaseWriting,
		Topics: topics,
		Votes:  make(map[string]int),
	}, nil
}

func (DecoyRules) StartRound(s *model.Session) {
	d := s.Data.(*decoyData)
	d.StorytellerID = s.Players[(s.Round-1)%len(s.Players)].ID
	d.Topic = d.Topics[d.TopicIndex%len(d.Topics)]
	d.TopicIndex++
	d.Statements = nil
	d.LieIndex = 0
	d.Votes = make(map[string]int)
	d.Phase = phaseWriting
}

type decoyStatementsPayload struct {
	Statements []string `json:"statements"`
	Lie        int      `json:"lie"`
}

type decoyVotePayload struct {
	Index int `json:"index"`
}

func (DecoyRules) HandleAction(s *model.Session, playerID, action string, payload json.RawMessage) {
	d := s.Data.(*decoyData)

	switch action {
	case "statements":
		if d.Phase != phaseWriting || playerID != d.StorytellerID {
			return
		}
		var req decoyStatementsPayload
		if err := json.Unmarshal(payload, &req); err != nil {
			return
		}
		if len(req.Statements) != 3 || req.Lie < 0 || req.Lie > 2 {
			return
		}
		for i, st := range req.Statements {
			req.Statements[i] = strings.TrimSpace(st)
			if req.Statements[i] == "" {
				return
			}
		}
		d.Statements = req.Statements
		d.LieIndex = req.Lie
		d.Phase = phaseVoting

	case "vote":
		if d.Phase != phaseVoting || playerID == d.StorytellerID {
			return
		}
		if s.Player(playerID) == nil {
			return
		}
		if _, done := d.Votes[playerID]; done {
			return
		}
		var req decoyVotePayload
		if err := json.Unmarshal(payload, &req); err != nil {
			return
		}
		if req.Index < 0 || req.Index > 2 {
			return
		}
		d.Votes[playerID] = req.Index
	}
}

// RoundOver: every connected non-storyteller player has voted.
func (DecoyRules) RoundOver(s *model.Session) bool {
	d := s.Data.(*decoyData)
	if d.Phase != phaseVoting {
		return false
	}
	for _, p := range s.Players {
		if p.ID == d.StorytellerID || !p.IsConnected {
			continue
		}
		if _, ok := d.Votes[p.ID]; !ok {
			return false
		}
	}
	return len(d.Votes) > 0
}

func (DecoyRules) RoundResults(s *model.Session) *model.RoundResults {
	d := s.Data.(*decoyData)

	scores := make(map[string]int)
	fooled := 0
	for id, vote := range d.Votes {
		if vote == d.LieIndex {
			scores[id] = 3
		} else {
			scores[id] = 0
			fooled++
		}
	}
	// Storyteller settles last: +2 per voter who picked a truth.
	scores[d.StorytellerID] = fooled * 2

	votes := make(map[string]int, len(d.Votes))
	for id, v := range d.Votes {
		votes[id] = v
	}
	return &model.RoundResults{
		Round:  s.Round,
		Scores: scores,
		Summary: &decoySummary{
			Topic:         d.Topic,
			StorytellerID: d.StorytellerID,
			Statements:    d.Statements,
			LieIndex:      d.LieIndex,
			Votes:         votes,
		},
	}
}

func (DecoyRules) GameOver(s *model.Session) bool {
	return s.Round > s.TotalRounds
}
