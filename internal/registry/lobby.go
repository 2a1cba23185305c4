package registry

import (
	"context"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aaronzipp/officially-sus-arena/internal/game"
	"github.com/aaronzipp/officially-sus-arena/internal/models"
	"github.com/aaronzipp/officially-sus-arena/internal/render"
	"github.com/aaronzipp/officially-sus-arena/internal/ws"
)

// CreateSession allocates a new room. The caller is not seated; it joins
// with the returned code like everyone else.
func (r *Registry) CreateSession(ctx context.Context, p models.CreateSessionPayload) models.Response {
	rng := r.newRand()
	session := r.store.Create(rng, func(code string) *game.Session {
		var subjects game.SubjectSource
		if r.subjects != nil {
			subjects = r.subjects.NewDeck(rng)
		}
		return game.NewSession(game.Options{
			Code:        code,
			BotsEnabled: p.EnableBots,
			Subjects:    subjects,
			Rand:        rng,
		})
	})

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("room.code", session.Code),
		attribute.Bool("room.bots", p.EnableBots),
	)
	log.Printf("Created session: code=%s bots=%v", session.Code, p.EnableBots)
	return models.Response{Success: true, RoomCode: session.Code}
}

// Join seats conn in a room. A claimed player id or a matching display name
// reconnects an existing roster entry and supersedes its old connection;
// otherwise the connection becomes a new player while waiting, or a spectator
// once the game has started. A spectator joining again after a reset is
// seated as a player.
func (r *Registry) Join(ctx context.Context, conn models.Conn, p models.JoinPayload) (models.Response, error) {
	code := strings.ToUpper(strings.TrimSpace(p.RoomCode))
	name := strings.TrimSpace(p.DisplayName)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("room.code", code))

	session, exists := r.store.Get(code)
	if !exists {
		return models.Response{}, game.ErrRoomNotFound
	}

	if b, ok := r.lookup(conn); ok {
		sameRoom := b.session == session && !session.Closed()
		switch {
		case sameRoom && (b.playerID != "" || session.Phase() != models.PhaseWaiting):
			return r.joinedResponse(session, b.playerID), nil
		case !sameRoom:
			log.Printf("Join: conn=%s leaving %s for %s", conn.ID(), b.session.Code, code)
			r.Disconnect(ctx, conn)
		}
	}

	res, err := r.admit(session, conn, name, strings.TrimSpace(p.PlayerID))
	if err != nil {
		log.Printf("Join: code=%s name=%q rejected: %v", code, name, err)
		return models.Response{}, err
	}

	if res.Replaced != nil {
		res.Replaced.Send(models.Envelope{Type: ws.EventSuperseded, Data: models.HostLeftNotice{
			RoomCode: code,
			Message:  "Signed in from another connection",
		}})
	}

	switch {
	case res.Spectator:
		log.Printf("Join: code=%s conn=%s seated as spectator", code, conn.ID())
	case res.Reconnected:
		log.Printf("Join: code=%s player=%s reconnected", code, res.PlayerID)
	default:
		log.Printf("Join: code=%s player=%s name=%q bots_added=%d", code, res.PlayerID, name, res.BotsAdded)
	}

	r.broadcastState(session)
	return r.joinedResponse(session, res.PlayerID), nil
}

// admit seats conn and records its binding in one step, so a concurrent
// rejoin for the same player always sees the binding it has to replace.
// Lock order is registry then session.
func (r *Registry) admit(session *game.Session, conn models.Conn, name, claimedID string) (game.AdmitResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := session.Admit(name, claimedID, conn, r.newID)
	if err != nil {
		return res, err
	}
	r.bindings[conn] = binding{session: session, playerID: res.PlayerID}
	if res.Replaced != nil {
		if b, ok := r.bindings[res.Replaced]; ok && b.session == session && b.playerID == res.PlayerID {
			delete(r.bindings, res.Replaced)
		}
	}
	return res, nil
}

func (r *Registry) joinedResponse(session *game.Session, playerID string) models.Response {
	view := render.ViewFor(session.Snapshot(), playerID)
	return models.Response{
		Success:     true,
		RoomCode:    session.Code,
		PlayerID:    playerID,
		SessionView: &view,
		IsSpectator: view.IsSpectator,
	}
}
