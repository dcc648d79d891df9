package game

import "github.com/SamSnead85/622-sub012/internal/model"

// Snapshot is a session as one specific viewer is allowed to see it.
// GameData carries only the rule set's public projection; Private is the
// viewer's own secret slot, if the current round gave them one. Snapshots
// are value copies, safe to hand to transport code after the registry lock
// is released.
type Snapshot struct {
	Code           string              `json:"code"`
	Type           model.GameType      `json:"type"`
	Status         model.SessionStatus `json:"status"`
	Players        []model.Player      `json:"players"`
	Round          int                 `json:"round"`
	TotalRounds    int                 `json:"totalRounds"`
	TimerSeconds   int                 `json:"timerSeconds,omitempty"`
	HostID         string              `json:"hostId"`
	GameData       any                 `json:"gameData,omitempty"`
	Private        any                 `json:"private,omitempty"`
}

// sanitize projects a session down to what viewerID may see. It must be
// recomputed per viewer per push: the private slot differs between
// players, so one shared payload would leak.
func sanitize(s *model.Session, viewerID string) *Snapshot {
	snap := &Snapshot{
		Code:         s.Code,
		Type:         s.Type,
		Status:       s.Status,
		Players:      copyPlayers(s.Players),
		Round:        s.Round,
		TotalRounds:  s.TotalRounds,
		TimerSeconds: s.TimerSeconds,
		HostID:       s.HostID,
	}
	if s.Data != nil {
		snap.GameData = s.Data.Public()
		snap.Private = s.Data.PrivateFor(viewerID)
	}
	return snap
}

// sanitizeAll builds one snapshot per roster player, keyed by player id.
func sanitizeAll(s *model.Session) map[string]*Snapshot {
	views := make(map[string]*Snapshot, len(s.Players))
	for _, p := range s.Players {
		views[p.ID] = sanitize(s, p.ID)
	}
	return views
}

func copyPlayers(players []*model.Player) []model.Player {
	out := make([]model.Player, len(players))
	for i, p := range players {
		out[i] = *p
	}
	return out
}
