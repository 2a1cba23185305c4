package models

// Snapshot is a consistent copy of session state taken under the session lock.
// Views for individual recipients are derived from it without touching the session.
type Snapshot struct {
	Code        string
	Version     uint64
	Phase       Phase
	Round       int
	TotalRounds int
	Turn        int
	RoundOver   bool
	Players     []PlayerSnapshot
	Voted       map[string]bool
	ImpostorID  string
	Subject     RoundSubject
	Scores      []ScoreEntry
	Recipients  []Recipient
}

// PlayerSnapshot is a copy of a roster entry
type PlayerSnapshot struct {
	ID        string
	Name      string
	Alive     bool
	Impostor  bool
	Bot       bool
	Order     int
	Connected bool
}

// Recipient is a bound connection; PlayerID is empty for spectators
type Recipient struct {
	Conn     Conn
	PlayerID string
}

// Spectator reports whether the recipient observes without a roster entry
func (r Recipient) Spectator() bool {
	return r.PlayerID == ""
}

// SessionView is the room state as seen by one recipient
type SessionView struct {
	RoomCode          string        `json:"gameId"`
	Version           uint64        `json:"version"`
	Phase             Phase         `json:"status"`
	Turn              int           `json:"round"`
	Round             int           `json:"currentRound"`
	TotalRounds       int           `json:"totalRounds"`
	AwaitingContinue  bool          `json:"awaitingContinue"`
	Scores            []ScoreEntry  `json:"scores"`
	Players           []PlayerView  `json:"players"`
	Subject           *RoundSubject `json:"currentPlayer"`
	IsImpostor        bool          `json:"isImpostor"`
	IsHost            bool          `json:"isHost"`
	IsSpectator       bool          `json:"isSpectator"`
	HasVoted          bool          `json:"hasVoted"`
	AllVoted          bool          `json:"allVoted"`
	VoteCount         int           `json:"voteCounts"`
	TotalAlivePlayers int           `json:"totalAlivePlayers"`
}

// PlayerView is a roster entry as seen by one recipient.
// ID is empty in spectator views.
type PlayerView struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"username"`
	Alive     bool   `json:"isAlive"`
	Bot       bool   `json:"isBot"`
	Order     int    `json:"playerOrder"`
	Connected bool   `json:"connected"`
	HasVoted  bool   `json:"hasVoted"`
}
