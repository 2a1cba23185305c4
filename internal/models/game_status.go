package models

// Phase represents the lifecycle phase of a session
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Winner names the side that won a round
type Winner string

const (
	WinnerNone      Winner = ""
	WinnerInnocents Winner = "innocents"
	WinnerImpostors Winner = "impostors"
)
