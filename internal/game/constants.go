package game

const (
	// MinPlayers is the minimum number of players required to start a game
	MinPlayers = 3

	// MaxPlayers is the roster capacity of a room
	MaxPlayers = 6

	// MaxTurns is the number of voting turns before a tie forces an elimination
	MaxTurns = 3

	// DefaultTotalRounds is used when start does not specify a round count
	DefaultTotalRounds = 3

	// MaxTotalRounds caps the configurable tournament length
	MaxTotalRounds = 10

	// SkipVote is the vote value for abstaining
	SkipVote = "skip"

	// InnocentWinPoints is awarded to every innocent of the round when innocents win
	InnocentWinPoints = 1

	// ImpostorWinPoints is awarded to the impostor of the round when impostors win
	ImpostorWinPoints = 2

	// SkipChance is the probability a bot abstains
	SkipChance = 0.15

	// SkipChanceAfterTie is the bot abstain probability once the round has seen a tie
	SkipChanceAfterTie = 0.05

	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6

	// RoomCodeChars are the characters used for generating room codes (excluding ambiguous chars)
	RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// BotNames are assigned in order to bots filling a room
var BotNames = []string{
	"Bot_Pelé", "Bot_Maradona", "Bot_Messi",
	"Bot_Cristiano", "Bot_Neymar", "Bot_Mbappé",
}
