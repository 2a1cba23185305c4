package subject

import (
	"context"
	"math/rand"
	"sync"

	"github.com/aaronzipp/officially-sus-arena/internal/models"
)

// Deck draws subjects for one session without repeating a name until the
// catalog is exhausted.
type Deck struct {
	provider *Provider

	mu   sync.Mutex
	used map[string]bool
	rng  *rand.Rand
}

// Next draws an unused entry and resolves it
func (d *Deck) Next(ctx context.Context) models.RoundSubject {
	entry, ok := d.draw()
	if !ok {
		return models.RoundSubject{Name: "Mystery Player", ImageURL: PlaceholderImage}
	}
	return d.provider.Resolve(ctx, entry)
}

func (d *Deck) draw() (Entry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	catalog := d.provider.catalog
	if len(catalog) == 0 {
		return Entry{}, false
	}

	available := make([]Entry, 0, len(catalog))
	for _, e := range catalog {
		if !d.used[e.Name] {
			available = append(available, e)
		}
	}
	if len(available) == 0 {
		d.used = make(map[string]bool)
		available = catalog
	}

	entry := available[d.rng.Intn(len(available))]
	d.used[entry.Name] = true
	return entry, true
}

// Reset forgets every drawn subject
func (d *Deck) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.used = make(map[string]bool)
}

// Used returns how many distinct subjects have been drawn since the last reset
func (d *Deck) Used() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.used)
}
