package models

// OutcomeKind tags the variant of a round result
type OutcomeKind string

const (
	OutcomeTie         OutcomeKind = "tie"
	OutcomeElimination OutcomeKind = "elimination"
	OutcomeRoundOver   OutcomeKind = "round-over"
)

// Outcome is the result of resolving a voting turn or of a disconnect rule
type Outcome interface {
	OutcomeKind() OutcomeKind
}

// TieOutcome means nobody was eliminated and voting continues with a fresh turn
type TieOutcome struct {
	Kind        OutcomeKind  `json:"kind"`
	Round       int          `json:"currentRound"`
	TotalRounds int          `json:"totalRounds"`
	NextTurn    int          `json:"votingTurn"`
	TieStreak   int          `json:"tieStreak"`
	Scores      []ScoreEntry `json:"scores"`
}

// OutcomeKind implements Outcome
func (TieOutcome) OutcomeKind() OutcomeKind { return OutcomeTie }

// EliminationOutcome means one player was voted out and the round goes on
type EliminationOutcome struct {
	Kind        OutcomeKind  `json:"kind"`
	Round       int          `json:"currentRound"`
	TotalRounds int          `json:"totalRounds"`
	NextTurn    int          `json:"votingTurn"`
	Eliminated  PlayerRef    `json:"eliminated"`
	WasImpostor bool         `json:"isImpostorEliminated"`
	Forced      bool         `json:"forced"`
	Scores      []ScoreEntry `json:"scores"`
}

// OutcomeKind implements Outcome
func (EliminationOutcome) OutcomeKind() OutcomeKind { return OutcomeElimination }

// Reveal discloses the secrets of a finished round
type Reveal struct {
	Impostor PlayerRef    `json:"impostor"`
	Subject  RoundSubject `json:"subject"`
}

// RoundOverOutcome means a winner was determined.
// Eliminated is nil when the round ended without a vote (disconnection).
type RoundOverOutcome struct {
	Kind               OutcomeKind  `json:"kind"`
	Round              int          `json:"currentRound"`
	TotalRounds        int          `json:"totalRounds"`
	Eliminated         *PlayerRef   `json:"eliminated"`
	WasImpostor        bool         `json:"isImpostorEliminated"`
	Forced             bool         `json:"forced"`
	Winner             Winner       `json:"winner"`
	RoundFinished      bool         `json:"roundFinished"`
	TournamentFinished bool         `json:"tournamentFinished"`
	ByDisconnection    bool         `json:"disconnectionWin"`
	Scores             []ScoreEntry `json:"scores"`
	Reveal             Reveal       `json:"reveal"`
}

// OutcomeKind implements Outcome
func (RoundOverOutcome) OutcomeKind() OutcomeKind { return OutcomeRoundOver }
