package registry

import (
	"context"
	"log"
	"time"
)

// Reap removes sessions with no bound connection that have been idle for
// longer than the idle timeout. It returns how many were removed.
func (r *Registry) Reap(now time.Time) int {
	removed := 0
	for _, session := range r.store.List() {
		if !session.Closed() && !session.IdleSince(now, r.idleTimeout) {
			continue
		}
		session.Close()
		r.unbindSession(session)
		if r.store.Delete(session.Code, session) {
			removed++
		}
	}
	if removed > 0 {
		log.Printf("Reaper: removed %d idle sessions, %d remaining", removed, r.store.Len())
	}
	return removed
}

// RunReaper calls Reap every interval until ctx is done
func (r *Registry) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Reap(now)
		}
	}
}
