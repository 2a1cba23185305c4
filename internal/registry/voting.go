package registry

import (
	"context"
	"errors"
	"log"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aaronzipp/officially-sus-arena/internal/game"
	"github.com/aaronzipp/officially-sus-arena/internal/models"
	"github.com/aaronzipp/officially-sus-arena/internal/render"
	"github.com/aaronzipp/officially-sus-arena/internal/ws"
)

// Vote records the caller's vote and schedules the bot pass for this turn
func (r *Registry) Vote(ctx context.Context, conn models.Conn, p models.VotePayload) (models.Response, error) {
	b, err := r.player(conn)
	if err != nil {
		return models.Response{}, err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("room.code", b.session.Code))

	if err := b.session.CastVote(b.playerID, p.TargetID); err != nil {
		return models.Response{}, err
	}
	if debug {
		log.Printf("Vote: code=%s voter=%s target=%s", b.session.Code, b.playerID, p.TargetID)
	}

	r.broadcastState(b.session)
	key := b.session.TurnKey()
	r.after(r.timings.BotThink, func() {
		r.botsThink(b.session, key)
	})
	return models.Response{Success: true, RoomCode: b.session.Code}, nil
}

// driveBots schedules a bot pass when only bots are left to vote
func (r *Registry) driveBots(session *game.Session) {
	if !session.BotsAwaitingTurn() {
		return
	}
	key := session.TurnKey()
	r.after(r.timings.BotThink, func() {
		r.botsThink(session, key)
	})
}

// botsThink casts the outstanding bot votes for key, then schedules the
// resolution if the turn is complete.
func (r *Registry) botsThink(session *game.Session, key game.TurnKey) {
	if !r.live(session) {
		return
	}
	cast, err := session.CastBotVotes(key)
	if err != nil {
		if debug {
			log.Printf("botsThink: code=%s key=%+v skipped: %v", session.Code, key, err)
		}
		return
	}
	if cast > 0 {
		r.broadcastState(session)
	}
	r.scheduleResolve(session, key)
}

func (r *Registry) scheduleResolve(session *game.Session, key game.TurnKey) {
	if !session.Votable(key) || !session.AllVoted() {
		return
	}
	r.after(r.timings.Resolve, func() {
		r.resolve(session, key)
	})
}

// resolve runs at most once per turn. Later attempts for the same key find
// the turn already moved on and stop.
func (r *Registry) resolve(session *game.Session, key game.TurnKey) {
	if !r.live(session) {
		return
	}
	_, span := r.tracer.Start(context.Background(), "session.resolve_turn", trace.WithAttributes(
		attribute.String("room.code", session.Code),
		attribute.Int("round", key.Round),
		attribute.Int("turn", key.Turn),
	))
	defer span.End()

	outcome, err := session.ResolveWhenAllVoted(key)
	if err != nil {
		if errors.Is(err, game.ErrStaleTurn) {
			if debug {
				log.Printf("resolve: code=%s key=%+v already resolved", session.Code, key)
			}
			return
		}
		span.RecordError(err)
		log.Printf("resolve: code=%s error: %v", session.Code, err)
		return
	}
	span.SetAttributes(attribute.String("outcome", string(outcome.OutcomeKind())))
	log.Printf("Resolved turn: code=%s round=%d turn=%d outcome=%s", session.Code, key.Round, key.Turn, outcome.OutcomeKind())

	r.publishOutcome(session, outcome)
}

// publishOutcome sends the result to every connection, then refreshes the
// session state once the result has been on screen long enough.
func (r *Registry) publishOutcome(session *game.Session, outcome models.Outcome) {
	ws.BroadcastPersonalized(session.Recipients(), ws.EventRoundResult, func(rc models.Recipient) any {
		return render.OutcomeFor(outcome, rc.Spectator())
	})

	key := session.TurnKey()
	r.after(r.timings.ResultDisplay, func() {
		if !r.live(session) || session.TurnKey() != key {
			return
		}
		r.broadcastState(session)
		r.driveBots(session)
	})
}

// broadcastState sends every connection its own view of one snapshot
func (r *Registry) broadcastState(session *game.Session) {
	snap := session.Snapshot()
	ws.BroadcastPersonalized(snap.Recipients, ws.EventSessionState, func(rc models.Recipient) any {
		return render.ViewFor(snap, rc.PlayerID)
	})
}
