package ws

// Event type constants
const (
	EventResponse     = "response"
	EventSessionState = "session-state"
	EventRoundResult  = "round-result"
	EventHostLeft     = "host-left"
	EventSuperseded   = "superseded"
	EventError        = "error-message"
)

// Client actions
const (
	ActionCreateSession = "create-session"
	ActionJoin          = "join"
	ActionStart         = "start"
	ActionVote          = "vote"
	ActionContinueRound = "continue-round"
	ActionReset         = "reset"
	ActionLeave         = "leave"
)
