package ws

import (
	"encoding/json"

	"github.com/SamSnead85/622-sub012/internal/game"
	"github.com/SamSnead85/622-sub012/internal/model"
)

// Client -> server event types.
const (
	EvtCreate = "create"
	EvtJoin   = "join"
	EvtStart  = "start"
	EvtAction = "action"
	EvtLeave  = "leave"
	EvtInvite = "invite"
)

// Server -> client event types. The first group are acks to the
// initiating caller only; the rest are session-group broadcasts, except
// EvtInviteNotify which goes to one user's personal channel.
const (
	EvtCreated = "created"
	EvtJoined  = "joined"
	EvtStarted = "started"
	EvtInvited = "invited"
	EvtError   = "error"

	EvtPlayerJoined = "player-joined"
	EvtState        = "state"
	EvtRoundStart   = "round-start"
	EvtUpdate       = "update"
	EvtRoundEnd     = "round-end"
	EvtEnded        = "ended"
	EvtPlayerLeft   = "player-left"

	EvtInviteNotify = "invite"
)

type CreateRequest struct {
	GameType string         `json:"gameType"`
	Settings model.Settings `json:"settings"`
}

type JoinRequest struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
}

type StartRequest struct {
	Code string `json:"code"`
}

type ActionRequest struct {
	Code    string          `json:"code"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type LeaveRequest struct {
	Code string `json:"code"`
}

type InviteRequest struct {
	Code         string `json:"code"`
	TargetUserID string `json:"targetUserId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatedPayload struct {
	Code  string         `json:"code"`
	State *game.Snapshot `json:"state"`
}

type JoinedPayload struct {
	State *game.Snapshot `json:"state"`
}

type StartedPayload struct {
	Code string `json:"code"`
}

type InvitedPayload struct {
	Code         string `json:"code"`
	TargetUserID string `json:"targetUserId"`
}

type PlayerJoinedPayload struct {
	Player      model.Player `json:"player"`
	PlayerCount int          `json:"playerCount"`
}

type RoundStartPayload struct {
	Round        int `json:"round"`
	TotalRounds  int `json:"totalRounds"`
	TimerSeconds int `json:"timerSeconds,omitempty"`
	GameData     any `json:"gameData"`
}

type UpdatePayload struct {
	GameData any            `json:"gameData"`
	Players  []model.Player `json:"players"`
	Round    int            `json:"round"`
}

type RoundEndPayload struct {
	Round   int            `json:"round"`
	Scores  map[string]int `json:"scores"`
	Summary any            `json:"summary"`
	Players []model.Player `json:"players"`
}

type EndedPayload struct {
	FinalScores []model.Player `json:"finalScores"`
	Winner      *model.Player  `json:"winner,omitempty"`
}

type PlayerLeftPayload struct {
	PlayerID    string `json:"playerId"`
	PlayerCount int    `json:"playerCount"`
}

type InvitePayload struct {
	Code     string         `json:"code"`
	GameType model.GameType `json:"gameType"`
	HostName string         `json:"hostName"`
}
