package model

// Player is a roster entry in a session. Disconnecting only flips
// IsConnected; the entry (and its score) survives until the session is
// destroyed.
type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Score       int    `json:"score"`
	IsHost      bool   `json:"isHost"`
	IsConnected bool   `json:"isConnected"`
}

// Profile is an account record from the platform's user database. The
// engine copies Name and AvatarURL into the roster at join time; the
// profile itself is never mutated here.
type Profile struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	Name      string `json:"name" bson:"name"`
	AvatarURL string `json:"avatarUrl" bson:"avatarUrl"`
}
