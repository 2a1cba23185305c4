package game

import "github.com/aaronzipp/officially-sus-arena/internal/models"

// EvaluateWinner applies the win condition to the alive set
func EvaluateWinner(aliveImpostors, aliveInnocents int) models.Winner {
	if aliveImpostors == 0 && aliveInnocents > 0 {
		return models.WinnerInnocents
	}
	if aliveImpostors > 0 && aliveImpostors >= aliveInnocents {
		return models.WinnerImpostors
	}
	return models.WinnerNone
}

// IsStandoff reports a one impostor versus one innocent endgame.
// A standoff always resolves in favor of the innocent.
func IsStandoff(aliveImpostors, aliveInnocents int) bool {
	return aliveImpostors == 1 && aliveInnocents == 1
}

// RoundWinner combines the standoff rule with the win condition
func RoundWinner(aliveImpostors, aliveInnocents int) models.Winner {
	if IsStandoff(aliveImpostors, aliveInnocents) {
		return models.WinnerInnocents
	}
	return EvaluateWinner(aliveImpostors, aliveInnocents)
}
