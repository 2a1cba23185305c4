// Package registry maps connections to sessions and drives every session
// operation: admission, voting, the delayed bot and resolution steps,
// disconnects and idle cleanup.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aaronzipp/officially-sus-arena/internal/game"
	"github.com/aaronzipp/officially-sus-arena/internal/models"
	"github.com/aaronzipp/officially-sus-arena/internal/store"
	"github.com/aaronzipp/officially-sus-arena/internal/subject"
	"github.com/aaronzipp/officially-sus-arena/internal/ws"
)

var debug bool

func init() {
	debug = os.Getenv("DEBUG") != ""
}

const tracerName = "github.com/aaronzipp/officially-sus-arena/internal/registry"

// Timings holds the presentation delays between session steps
type Timings struct {
	BotThink      time.Duration
	Resolve       time.Duration
	ResultDisplay time.Duration
	HostLeftGrace time.Duration
}

// DefaultTimings returns the delays used in production
func DefaultTimings() Timings {
	return Timings{
		BotThink:      500 * time.Millisecond,
		Resolve:       time.Second,
		ResultDisplay: 3 * time.Second,
		HostLeftGrace: 250 * time.Millisecond,
	}
}

// Options configures a Registry
type Options struct {
	Store       *store.SessionStore
	Subjects    *subject.Provider
	Timings     Timings
	IdleTimeout time.Duration

	// After schedules f to run once d has elapsed. Defaults to time.AfterFunc.
	After func(d time.Duration, f func())
	// NewRand seeds the per-session random source
	NewRand func() *rand.Rand
	// NewID generates player ids
	NewID func() string
}

type binding struct {
	session  *game.Session
	playerID string // empty for spectators
}

// Registry is the entry point for all client actions
type Registry struct {
	store       *store.SessionStore
	subjects    *subject.Provider
	timings     Timings
	idleTimeout time.Duration
	after       func(time.Duration, func())
	newRand     func() *rand.Rand
	newID       func() string
	tracer      trace.Tracer

	mu       sync.Mutex
	bindings map[models.Conn]binding
}

// New creates a Registry
func New(opts Options) *Registry {
	if opts.Store == nil {
		opts.Store = store.NewSessionStore()
	}
	if opts.After == nil {
		opts.After = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	if opts.NewRand == nil {
		opts.NewRand = game.NewSeededRand
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	return &Registry{
		store:       opts.Store,
		subjects:    opts.Subjects,
		timings:     opts.Timings,
		idleTimeout: opts.IdleTimeout,
		after:       opts.After,
		newRand:     opts.NewRand,
		newID:       opts.NewID,
		tracer:      otel.Tracer(tracerName),
		bindings:    make(map[models.Conn]binding),
	}
}

// Store exposes the underlying session store
func (r *Registry) Store() *store.SessionStore {
	return r.store
}

// Dispatch routes one client request to its operation and builds the reply
func (r *Registry) Dispatch(ctx context.Context, conn models.Conn, req models.Request) models.Response {
	ctx, span := r.tracer.Start(ctx, "registry."+req.Action,
		trace.WithAttributes(attribute.String("conn.id", conn.ID())))
	defer span.End()

	resp, err := r.dispatch(ctx, conn, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if debug {
			log.Printf("Dispatch: action=%s conn=%s error=%v", req.Action, conn.ID(), err)
		}
		return errorResponse(err)
	}
	if resp.RoomCode != "" {
		span.SetAttributes(attribute.String("room.code", resp.RoomCode))
	}
	return resp
}

func (r *Registry) dispatch(ctx context.Context, conn models.Conn, req models.Request) (models.Response, error) {
	switch req.Action {
	case ws.ActionCreateSession:
		var p models.CreateSessionPayload
		if err := decode(req.Payload, &p); err != nil {
			return models.Response{}, err
		}
		return r.CreateSession(ctx, p), nil
	case ws.ActionJoin:
		var p models.JoinPayload
		if err := decode(req.Payload, &p); err != nil {
			return models.Response{}, err
		}
		return r.Join(ctx, conn, p)
	case ws.ActionStart:
		var p models.StartPayload
		if err := decode(req.Payload, &p); err != nil {
			return models.Response{}, err
		}
		return r.Start(ctx, conn, p)
	case ws.ActionVote:
		var p models.VotePayload
		if err := decode(req.Payload, &p); err != nil {
			return models.Response{}, err
		}
		return r.Vote(ctx, conn, p)
	case ws.ActionContinueRound:
		return r.ContinueRound(ctx, conn)
	case ws.ActionReset:
		return r.Reset(ctx, conn)
	case ws.ActionLeave:
		r.Disconnect(ctx, conn)
		return models.Response{Success: true}, nil
	default:
		return models.Response{}, game.ErrUnknownAction
	}
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return game.NewError(game.CodeBadRequest, "Malformed payload")
	}
	return nil
}

func errorResponse(err error) models.Response {
	var gameErr *game.Error
	if errors.As(err, &gameErr) {
		return models.Response{Error: gameErr.Message, Code: string(gameErr.Code)}
	}
	return models.Response{Error: err.Error()}
}

func (r *Registry) lookup(conn models.Conn) (binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[conn]
	return b, ok
}

func (r *Registry) unbind(conn models.Conn) (binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[conn]
	if ok {
		delete(r.bindings, conn)
	}
	return b, ok
}

// unbindSession drops every binding that points at session
func (r *Registry) unbindSession(session *game.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for conn, b := range r.bindings {
		if b.session == session {
			delete(r.bindings, conn)
		}
	}
}

// member returns the live session and player bound to conn. A binding the
// session no longer honours, because another connection took the player over,
// is dropped.
func (r *Registry) member(conn models.Conn) (binding, error) {
	b, ok := r.lookup(conn)
	if !ok || b.session.Closed() {
		return binding{}, game.ErrNotInRoom
	}
	if !b.session.Holds(conn, b.playerID) {
		r.dropStale(conn, b)
		return binding{}, game.ErrNotInRoom
	}
	return b, nil
}

// dropStale removes conn's binding if it is still b
func (r *Registry) dropStale(conn models.Conn, b binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.bindings[conn]; ok && current == b {
		delete(r.bindings, conn)
	}
	if debug {
		log.Printf("member: conn=%s no longer holds %q in %s", conn.ID(), b.playerID, b.session.Code)
	}
}

// player is member restricted to roster entries
func (r *Registry) player(conn models.Conn) (binding, error) {
	b, err := r.member(conn)
	if err != nil {
		return binding{}, err
	}
	if b.playerID == "" {
		return binding{}, game.ErrSpectator
	}
	return b, nil
}

// live reports whether session is still the one stored under its code
func (r *Registry) live(session *game.Session) bool {
	if session.Closed() {
		return false
	}
	current, ok := r.store.Get(session.Code)
	return ok && current == session
}

// Bound returns the number of connections currently bound to sessions
func (r *Registry) Bound() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bindings)
}
