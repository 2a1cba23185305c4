package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/aaronzipp/officially-sus-arena/internal/models"
)

type fakeConn struct {
	id   string
	mu   sync.Mutex
	sent []models.Envelope
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(e models.Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, e)
	return true
}

type fakeSubjects struct {
	drawn  int
	resets int
}

func (f *fakeSubjects) Next(context.Context) models.RoundSubject {
	f.drawn++
	return models.RoundSubject{Name: fmt.Sprintf("Subject %d", f.drawn), ImageURL: "/img.png"}
}

func (f *fakeSubjects) Reset() { f.resets++ }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
}

type fixture struct {
	session  *Session
	subjects *fakeSubjects
	ids      []string
	conns    []*fakeConn
	newID    func() string
}

// newFixture seats n human players named P1..Pn. The first is the host.
func newFixture(t *testing.T, n int, bots bool) *fixture {
	t.Helper()
	subjects := &fakeSubjects{}
	f := &fixture{
		session: NewSession(Options{
			Code:        "ABCDEF",
			BotsEnabled: bots,
			Subjects:    subjects,
			Rand:        rand.New(rand.NewSource(7)),
		}),
		subjects: subjects,
		newID:    sequentialIDs(),
	}
	for i := 1; i <= n; i++ {
		conn := newFakeConn(fmt.Sprintf("c%d", i))
		res, err := f.session.Admit(fmt.Sprintf("P%d", i), "", conn, f.newID)
		if err != nil {
			t.Fatalf("admit P%d: %v", i, err)
		}
		f.ids = append(f.ids, res.PlayerID)
		f.conns = append(f.conns, conn)
	}
	return f
}

func (f *fixture) start(t *testing.T, rounds int) {
	t.Helper()
	out, err := f.session.Start(context.Background(), f.ids[0], rounds)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if out != nil {
		t.Fatalf("expected round to start, got early outcome %+v", out)
	}
}

// forceImpostor reassigns the impostor of the current round
func (f *fixture) forceImpostor(id string) {
	s := f.session
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		p.Impostor = p.ID == id
	}
	s.impostorID = id
}

func (f *fixture) vote(t *testing.T, voter, target string) {
	t.Helper()
	if err := f.session.CastVote(voter, target); err != nil {
		t.Fatalf("vote %s -> %s: %v", voter, target, err)
	}
}

func (f *fixture) resolve(t *testing.T) models.Outcome {
	t.Helper()
	out, err := f.session.ResolveTurn(f.session.TurnKey())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return out
}

func (f *fixture) player(id string) models.PlayerSnapshot {
	for _, p := range f.session.Snapshot().Players {
		if p.ID == id {
			return p
		}
	}
	return models.PlayerSnapshot{}
}
