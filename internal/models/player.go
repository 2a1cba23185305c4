package models

// Conn is a live client connection a player or spectator is bound to
type Conn interface {
	// ID returns a process-unique identifier for the connection
	ID() string
	// Send queues an envelope for delivery and reports whether it was accepted
	Send(Envelope) bool
}

// Player represents a roster entry in a session.
// Identity survives reconnects; only Conn changes.
type Player struct {
	ID       string
	Name     string
	Alive    bool
	Impostor bool // round-scoped
	Bot      bool
	Order    int  // cosmetic per-round ordinal, never consulted by rules
	Conn     Conn // nil while disconnected
}

// Connected reports whether the player currently has a live connection
func (p *Player) Connected() bool {
	return p.Conn != nil
}

// Ref returns the public reference to the player
func (p *Player) Ref() PlayerRef {
	return PlayerRef{ID: p.ID, Name: p.Name}
}

// PlayerRef identifies a player in outcomes and reveals
type PlayerRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"username"`
}

// ScoreEntry is one row of a score snapshot
type ScoreEntry struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"username"`
	Score int    `json:"score"`
	Bot   bool   `json:"isBot"`
}
