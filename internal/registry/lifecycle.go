package registry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aaronzipp/officially-sus-arena/internal/game"
	"github.com/aaronzipp/officially-sus-arena/internal/models"
	"github.com/aaronzipp/officially-sus-arena/internal/render"
	"github.com/aaronzipp/officially-sus-arena/internal/ws"
)

// Start begins the tournament for the host's room
func (r *Registry) Start(ctx context.Context, conn models.Conn, p models.StartPayload) (models.Response, error) {
	b, err := r.player(conn)
	if err != nil {
		return models.Response{}, err
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("room.code", b.session.Code),
		attribute.Int("rounds.total", p.TotalRounds),
	)

	ended, err := b.session.Start(ctx, b.playerID, p.TotalRounds)
	if err != nil {
		log.Printf("Start: code=%s player=%s rejected: %v", b.session.Code, b.playerID, err)
		return models.Response{}, err
	}
	log.Printf("Start: code=%s rounds=%d", b.session.Code, p.TotalRounds)

	r.afterRoundStart(b.session, ended)
	return models.Response{Success: true, RoomCode: b.session.Code}, nil
}

// ContinueRound deals the next round after a round result
func (r *Registry) ContinueRound(ctx context.Context, conn models.Conn) (models.Response, error) {
	b, err := r.player(conn)
	if err != nil {
		return models.Response{}, err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("room.code", b.session.Code))

	ended, err := b.session.ContinueRound(ctx)
	if err != nil {
		return models.Response{}, err
	}
	log.Printf("ContinueRound: code=%s by=%s", b.session.Code, b.playerID)

	r.afterRoundStart(b.session, ended)
	return models.Response{Success: true, RoomCode: b.session.Code}, nil
}

// afterRoundStart publishes a freshly dealt round. A round that ended on the
// spot because of absent players is published as a result instead.
func (r *Registry) afterRoundStart(session *game.Session, ended *models.RoundOverOutcome) {
	r.broadcastState(session)
	if ended != nil {
		r.publishOutcome(session, ended)
		return
	}
	r.driveBots(session)
}

// Reset returns the host's room to the waiting phase
func (r *Registry) Reset(ctx context.Context, conn models.Conn) (models.Response, error) {
	b, err := r.player(conn)
	if err != nil {
		return models.Response{}, err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("room.code", b.session.Code))

	if err := b.session.Reset(b.playerID); err != nil {
		return models.Response{}, err
	}
	log.Printf("Reset: code=%s", b.session.Code)

	r.broadcastState(b.session)
	view := render.ViewFor(b.session.Snapshot(), b.playerID)
	return models.Response{Success: true, RoomCode: b.session.Code, SessionView: &view}, nil
}

// Disconnect detaches conn from its room. Leaving explicitly and losing the
// transport take the same path.
func (r *Registry) Disconnect(ctx context.Context, conn models.Conn) {
	b, ok := r.unbind(conn)
	if !ok {
		return
	}
	session := b.session
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("room.code", session.Code))

	res := session.Disconnect(conn, b.playerID)
	switch res.Kind {
	case game.DisconnectIgnored:
		if debug {
			log.Printf("Disconnect: code=%s conn=%s already superseded", session.Code, conn.ID())
		}
		return
	case game.DisconnectHost:
		r.hostLeft(session)
		return
	}

	log.Printf("Disconnect: code=%s player=%q", session.Code, b.playerID)

	if res.Empty {
		r.removeSession(session)
		return
	}
	r.broadcastState(session)
	if res.Outcome != nil {
		r.publishOutcome(session, res.Outcome)
		return
	}
	r.scheduleResolve(session, session.TurnKey())
	r.driveBots(session)
}

// hostLeft tells everyone still connected that the room is gone and drops
// it from the store after a short grace period.
func (r *Registry) hostLeft(session *game.Session) {
	log.Printf("Host left: closing session %s", session.Code)

	recipients := session.Recipients()
	r.unbindSession(session)
	ws.Broadcast(recipients, ws.EventHostLeft, models.HostLeftNotice{
		RoomCode: session.Code,
		Message:  "The host left the game",
	})
	r.after(r.timings.HostLeftGrace, func() {
		r.store.Delete(session.Code, session)
	})
}

func (r *Registry) removeSession(session *game.Session) {
	session.Close()
	r.unbindSession(session)
	if r.store.Delete(session.Code, session) {
		log.Printf("Removed empty session %s", session.Code)
	}
}
