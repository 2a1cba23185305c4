package game

import (
	"math/rand"

	"github.com/aaronzipp/officially-sus-arena/internal/models"
)

// BotPolicy decides votes for bot players
type BotPolicy struct {
	SkipChance         float64
	SkipChanceAfterTie float64
}

// DefaultBotPolicy returns the standard abstain probabilities
func DefaultBotPolicy() BotPolicy {
	return BotPolicy{
		SkipChance:         SkipChance,
		SkipChanceAfterTie: SkipChanceAfterTie,
	}
}

// Decide returns the vote of bot given the alive players of the turn.
// Bots have no hidden information: an innocent bot picks among everyone else,
// an impostor bot picks among the innocents.
func (p BotPolicy) Decide(bot *models.Player, alive []*models.Player, tieOccurred bool, rng *rand.Rand) string {
	skipChance := p.SkipChance
	if tieOccurred {
		skipChance = p.SkipChanceAfterTie
	}
	if rng.Float64() < skipChance {
		return SkipVote
	}

	targets := make([]*models.Player, 0, len(alive))
	for _, candidate := range alive {
		if candidate.ID == bot.ID || !candidate.Alive {
			continue
		}
		if bot.Impostor && candidate.Impostor {
			continue
		}
		targets = append(targets, candidate)
	}
	if len(targets) == 0 {
		return SkipVote
	}
	return targets[rng.Intn(len(targets))].ID
}
