package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/SamSnead85/622-sub012/internal/game"
	"github.com/SamSnead85/622-sub012/internal/model"
	"github.com/SamSnead85/622-sub012/internal/repository"
)

const (
	// How long a finished session stays readable so late clients can
	// fetch the final standings.
	defaultEndGrace = 90 * time.Second

	profileTimeout = 2 * time.Second
)

// Relay bridges socket events to engine calls and fans results back out.
// Each connection's events are dispatched serially by its read pump, so
// per-session receipt order is preserved into the engine. Failures are
// answered to the initiating connection only; the rest of the group never
// sees them.
type Relay struct {
	hub      *Hub
	engine   *game.Engine
	profiles repository.ProfileRepo
	endGrace time.Duration
}

// NewRelay creates a relay. grace <= 0 selects the default post-game
// removal window.
func NewRelay(hub *Hub, engine *game.Engine, profiles repository.ProfileRepo, grace time.Duration) *Relay {
	if grace <= 0 {
		grace = defaultEndGrace
	}
	return &Relay{
		hub:      hub,
		engine:   engine,
		profiles: profiles,
		endGrace: grace,
	}
}

// Dispatch routes one decoded client event.
func (r *Relay) Dispatch(conn *Connection, msg Message) {
	switch msg.Type {
	case EvtCreate:
		r.handleCreate(conn, msg.Payload)
	case EvtJoin:
		r.handleJoin(conn, msg.Payload)
	case EvtStart:
		r.handleStart(conn, msg.Payload)
	case EvtAction:
		r.handleAction(conn, msg.Payload)
	case EvtLeave:
		r.handleLeave(conn, msg.Payload)
	case EvtInvite:
		r.handleInvite(conn, msg.Payload)
	default:
		r.sendError(conn, "bad-request", "unknown event type: "+msg.Type)
	}
}

// ConnectionClosed handles a transport-level disconnect: the player is
// marked away but never removed, and the group is told who dropped.
// Destroying abandoned sessions is the reaper's job, not ours.
func (r *Relay) ConnectionClosed(conn *Connection) {
	code, playerID := r.hub.RoomOf(conn)
	r.hub.Unregister(conn)
	if code == "" {
		return
	}
	res, err := r.engine.Disconnect(code, playerID)
	if err != nil || res == nil {
		return
	}
	r.hub.BroadcastToRoom(code, EvtPlayerLeft, &PlayerLeftPayload{
		PlayerID:    res.PlayerID,
		PlayerCount: res.PlayerCount,
	})
}

func (r *Relay) handleCreate(conn *Connection, payload json.RawMessage) {
	var req CreateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		r.sendError(conn, "bad-request", "malformed create payload")
		return
	}

	player := r.resolvePlayer(conn, "")
	snap, err := r.engine.Create(model.GameType(req.GameType), player, req.Settings)
	if err != nil {
		r.sendEngineError(conn, err)
		return
	}

	r.hub.JoinRoom(snap.Code, conn.UserID, conn)
	r.hub.Send(conn, EvtCreated, &CreatedPayload{Code: snap.Code, State: snap})
}

func (r *Relay) handleJoin(conn *Connection, payload json.RawMessage) {
	var req JoinRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		r.sendError(conn, "bad-request", "malformed join payload")
		return
	}

	player := r.resolvePlayer(conn, req.PlayerName)
	res, err := r.engine.Join(req.Code, player)
	if err != nil {
		r.sendEngineError(conn, err)
		return
	}

	r.hub.JoinRoom(req.Code, conn.UserID, conn)
	r.hub.Send(conn, EvtJoined, &JoinedPayload{State: res.Self})

	r.hub.BroadcastToRoom(req.Code, EvtPlayerJoined, &PlayerJoinedPayload{
		Player:      res.Player,
		PlayerCount: res.PlayerCount,
	})
	r.pushViews(req.Code, res.Views)
}

func (r *Relay) handleStart(conn *Connection, payload json.RawMessage) {
	var req StartRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		r.sendError(conn, "bad-request", "malformed start payload")
		return
	}

	res, err := r.engine.Start(req.Code, conn.UserID)
	if err != nil {
		r.sendEngineError(conn, err)
		return
	}

	r.hub.Send(conn, EvtStarted, &StartedPayload{Code: req.Code})
	r.hub.BroadcastToRoom(req.Code, EvtRoundStart, &RoundStartPayload{
		Round:        res.Round,
		TotalRounds:  res.TotalRounds,
		TimerSeconds: res.TimerSeconds,
		GameData:     res.Public,
	})
	r.pushViews(req.Code, res.Views)
}

func (r *Relay) handleAction(conn *Connection, payload json.RawMessage) {
	var req ActionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		r.sendError(conn, "bad-request", "malformed action payload")
		return
	}

	res, err := r.engine.HandleAction(req.Code, conn.UserID, req.Action, req.Payload)
	if err != nil {
		r.sendEngineError(conn, err)
		return
	}

	// Lightweight public refresh on every accepted action.
	r.hub.BroadcastToRoom(req.Code, EvtUpdate, &UpdatePayload{
		GameData: res.Public,
		Players:  res.Players,
		Round:    res.Round,
	})
	if !res.RoundEnded {
		return
	}

	r.hub.BroadcastToRoom(req.Code, EvtRoundEnd, &RoundEndPayload{
		Round:   res.Results.Round,
		Scores:  res.Results.Scores,
		Summary: res.Results.Summary,
		Players: res.Players,
	})

	if res.GameEnded {
		ended := &EndedPayload{FinalScores: res.Final}
		if len(res.Final) > 0 {
			ended.Winner = &res.Final[0]
		}
		r.hub.BroadcastToRoom(req.Code, EvtEnded, ended)

		// Keep the finished session readable for a grace window, then
		// drop it from both the registry and the hub.
		code := req.Code
		time.AfterFunc(r.endGrace, func() {
			r.engine.Remove(code)
			r.hub.DropRoom(code)
		})
		return
	}

	// Round auto-advances; no separate ready step.
	r.hub.BroadcastToRoom(req.Code, EvtRoundStart, &RoundStartPayload{
		Round:        res.Round,
		TotalRounds:  res.TotalRounds,
		TimerSeconds: res.TimerSeconds,
		GameData:     res.Public,
	})
	r.pushViews(req.Code, res.Views)
}

func (r *Relay) handleLeave(conn *Connection, payload json.RawMessage) {
	var req LeaveRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		r.sendError(conn, "bad-request", "malformed leave payload")
		return
	}

	res, err := r.engine.Disconnect(req.Code, conn.UserID)
	r.hub.LeaveRoom(conn)
	if err != nil || res == nil {
		return
	}
	r.hub.BroadcastToRoom(req.Code, EvtPlayerLeft, &PlayerLeftPayload{
		PlayerID:    res.PlayerID,
		PlayerCount: res.PlayerCount,
	})
}

// handleInvite delivers a "come join my game" nudge to one user's
// personal channel. The session is only read to prove it exists; nothing
// is mutated.
func (r *Relay) handleInvite(conn *Connection, payload json.RawMessage) {
	var req InviteRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		r.sendError(conn, "bad-request", "malformed invite payload")
		return
	}

	meta, err := r.engine.Meta(req.Code)
	if err != nil {
		r.sendEngineError(conn, err)
		return
	}

	r.hub.SendToUser(req.TargetUserID, EvtInviteNotify, &InvitePayload{
		Code:     meta.Code,
		GameType: meta.Type,
		HostName: meta.HostName,
	})
	r.hub.Send(conn, EvtInvited, &InvitedPayload{Code: req.Code, TargetUserID: req.TargetUserID})
}

// pushViews sends each roster player their own sanitized state. One
// payload per player: the views differ, sharing one would leak secrets.
func (r *Relay) pushViews(code string, views map[string]*game.Snapshot) {
	for playerID, view := range views {
		r.hub.SendToPlayer(code, playerID, EvtState, view)
	}
}

// resolvePlayer builds the roster identity for this connection. The
// account profile is the source of truth for name and avatar; an explicit
// display name in the request wins, and the token's name is the fallback
// when the profile store is unavailable.
func (r *Relay) resolvePlayer(conn *Connection, displayName string) model.Player {
	player := model.Player{ID: conn.UserID, Name: conn.Name}

	ctx, cancel := context.WithTimeout(context.Background(), profileTimeout)
	defer cancel()
	profile, err := r.profiles.GetByID(ctx, conn.UserID)
	if err != nil {
		log.Printf("ws: profile lookup for %s: %v", conn.UserID, err)
	} else if profile != nil {
		if profile.Name != "" {
			player.Name = profile.Name
		}
		player.AvatarURL = profile.AvatarURL
	}
	if displayName != "" {
		player.Name = displayName
	}
	return player
}

func (r *Relay) sendEngineError(conn *Connection, err error) {
	r.sendError(conn, model.ErrorCode(err), err.Error())
}

func (r *Relay) sendError(conn *Connection, code, message string) {
	r.hub.Send(conn, EvtError, &ErrorPayload{Code: code, Message: message})
}
