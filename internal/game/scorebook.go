package game

import (
	"sort"

	"github.com/aaronzipp/officially-sus-arena/internal/models"
)

// ScoreBook is the per-player point ledger of one session
type ScoreBook struct {
	points map[string]int
}

// NewScoreBook creates an empty ledger
func NewScoreBook() *ScoreBook {
	return &ScoreBook{points: make(map[string]int)}
}

// Reset sets every listed player to zero and forgets everyone else
func (b *ScoreBook) Reset(ids []string) {
	b.points = make(map[string]int, len(ids))
	for _, id := range ids {
		b.points[id] = 0
	}
}

// Award adds points to each listed player. Non-positive amounts are ignored
// so totals never decrease.
func (b *ScoreBook) Award(points int, ids ...string) {
	if points <= 0 {
		return
	}
	for _, id := range ids {
		b.points[id] += points
	}
}

// Points returns the current total of a player
func (b *ScoreBook) Points(id string) int {
	return b.points[id]
}

// Snapshot returns the standings sorted by score, highest first.
// Players tied on score keep roster order.
func (b *ScoreBook) Snapshot(roster []*models.Player) []models.ScoreEntry {
	entries := make([]models.ScoreEntry, 0, len(roster))
	for _, p := range roster {
		entries = append(entries, models.ScoreEntry{
			ID:    p.ID,
			Name:  p.Name,
			Score: b.points[p.ID],
			Bot:   p.Bot,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}
