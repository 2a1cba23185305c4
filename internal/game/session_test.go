package game

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/aaronzipp/officially-sus-arena/internal/models"
)

func TestAdmit_FirstPlayerIsHost(t *testing.T) {
	f := newFixture(t, 3, false)

	if !f.session.IsHost(f.ids[0]) {
		t.Fatalf("expected first player to be host")
	}
	if f.session.IsHost(f.ids[1]) {
		t.Fatalf("expected second player not to be host")
	}
	if got := f.session.Phase(); got != models.PhaseWaiting {
		t.Fatalf("expected waiting phase, got %s", got)
	}
}

func TestAdmit_RoomFull(t *testing.T) {
	f := newFixture(t, MaxPlayers, false)

	_, err := f.session.Admit("Late", "", newFakeConn("late"), f.newID)
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestAdmit_NameRequired(t *testing.T) {
	f := newFixture(t, 1, false)

	_, err := f.session.Admit("", "", newFakeConn("x"), f.newID)
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestAdmit_BotsFillToMinimumOnFirstHuman(t *testing.T) {
	f := newFixture(t, 1, true)

	snap := f.session.Snapshot()
	if len(snap.Players) != MinPlayers {
		t.Fatalf("expected %d players, got %d", MinPlayers, len(snap.Players))
	}
	for i, p := range snap.Players[1:] {
		if !p.Bot {
			t.Fatalf("expected player %d to be a bot", i+1)
		}
		if p.Name != BotNames[i] {
			t.Fatalf("expected bot name %s, got %s", BotNames[i], p.Name)
		}
	}

	if _, err := f.session.Admit("Second", "", newFakeConn("c2"), f.newID); err != nil {
		t.Fatalf("admit second human: %v", err)
	}
	if got := len(f.session.Snapshot().Players); got != MinPlayers+1 {
		t.Fatalf("expected no extra bots, roster size %d", got)
	}
}

func TestAdmit_NameRebindsWhileConnected(t *testing.T) {
	f := newFixture(t, 3, false)

	conn := newFakeConn("other")
	res, err := f.session.Admit("P2", "", conn, f.newID)
	if err != nil {
		t.Fatalf("rejoin by name: %v", err)
	}
	if !res.Reconnected || res.PlayerID != f.ids[1] || res.Replaced != f.conns[1] {
		t.Fatalf("expected %s to move to the new connection, got %+v", f.ids[1], res)
	}
	if f.session.Holds(f.conns[1], f.ids[1]) || !f.session.Holds(conn, f.ids[1]) {
		t.Fatalf("expected only the new connection to hold %s", f.ids[1])
	}
	if got := f.session.Disconnect(f.conns[1], f.ids[1]).Kind; got != DisconnectIgnored {
		t.Fatalf("expected the replaced connection's disconnect to be ignored, got %v", got)
	}
}

func TestAdmit_ReconnectByNameAfterDisconnect(t *testing.T) {
	f := newFixture(t, 3, false)

	res := f.session.Disconnect(f.conns[1], f.ids[1])
	if res.Kind != DisconnectUpdated {
		t.Fatalf("expected DisconnectUpdated, got %v", res.Kind)
	}

	conn := newFakeConn("again")
	admit, err := f.session.Admit("P2", "", conn, f.newID)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if !admit.Reconnected || admit.PlayerID != f.ids[1] {
		t.Fatalf("expected reconnect as %s, got %+v", f.ids[1], admit)
	}
	if got := len(f.session.Snapshot().Players); got != 3 {
		t.Fatalf("expected roster of 3, got %d", got)
	}
}

func TestAdmit_ClaimedIDPreservesRoundState(t *testing.T) {
	f := newFixture(t, 4, false)
	f.start(t, 3)
	f.forceImpostor(f.ids[2])
	f.vote(t, f.ids[2], f.ids[0])

	conn := newFakeConn("new-tab")
	res, err := f.session.Admit("", f.ids[2], conn, f.newID)
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if res.Replaced != f.conns[2] {
		t.Fatalf("expected old connection to be replaced")
	}

	snap := f.session.Snapshot()
	if len(snap.Players) != 4 {
		t.Fatalf("expected no duplicate roster entry, got %d players", len(snap.Players))
	}
	p := f.player(f.ids[2])
	if !p.Alive || !p.Impostor || !p.Connected {
		t.Fatalf("expected alive connected impostor, got %+v", p)
	}
	if !snap.Voted[f.ids[2]] {
		t.Fatalf("expected vote to survive reconnect")
	}

	// the superseded connection dropping later must not touch the player
	if got := f.session.Disconnect(f.conns[2], f.ids[2]); got.Kind != DisconnectIgnored {
		t.Fatalf("expected stale disconnect to be ignored, got %v", got.Kind)
	}
	if !f.player(f.ids[2]).Alive {
		t.Fatalf("stale disconnect killed the player")
	}
}

func TestAdmit_SpectatorAfterStart(t *testing.T) {
	f := newFixture(t, 3, false)
	f.start(t, 3)

	conn := newFakeConn("watcher")
	res, err := f.session.Admit("Watcher", "", conn, f.newID)
	if err != nil {
		t.Fatalf("admit spectator: %v", err)
	}
	if !res.Spectator || res.PlayerID != "" {
		t.Fatalf("expected spectator seat, got %+v", res)
	}

	var found bool
	for _, r := range f.session.Recipients() {
		if r.Conn == conn {
			found = true
			if !r.Spectator() {
				t.Fatalf("expected spectator recipient")
			}
		}
	}
	if !found {
		t.Fatalf("spectator not among recipients")
	}
	if got := len(f.session.Snapshot().Players); got != 3 {
		t.Fatalf("spectator joined the roster")
	}
}

func TestAdmit_ClosedSession(t *testing.T) {
	f := newFixture(t, 1, false)
	f.session.Close()

	_, err := f.session.Admit("Late", "", newFakeConn("x"), f.newID)
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestStart_Validation(t *testing.T) {
	ctx := context.Background()

	small := newFixture(t, 2, false)
	if _, err := small.session.Start(ctx, small.ids[0], 3); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
	}

	f := newFixture(t, 3, false)
	if _, err := f.session.Start(ctx, f.ids[1], 3); !errors.Is(err, ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
	for _, rounds := range []int{-1, MaxTotalRounds + 1} {
		if _, err := f.session.Start(ctx, f.ids[0], rounds); !errors.Is(err, ErrInvalidRounds) {
			t.Fatalf("rounds=%d: expected ErrInvalidRounds, got %v", rounds, err)
		}
	}
	f.start(t, 0)
	if got := f.session.Snapshot().TotalRounds; got != DefaultTotalRounds {
		t.Fatalf("expected default %d rounds, got %d", DefaultTotalRounds, got)
	}
	if _, err := f.session.Start(ctx, f.ids[0], 3); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase on second start, got %v", err)
	}
}

func TestStartRound_DealsOneImpostorAndOrdinals(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		f := newFixture(t, n, false)
		f.start(t, 3)

		snap := f.session.Snapshot()
		impostors := 0
		orders := make([]int, 0, n)
		for _, p := range snap.Players {
			if !p.Alive {
				t.Fatalf("n=%d: %s not alive at round start", n, p.Name)
			}
			if p.Impostor {
				impostors++
				if snap.ImpostorID != p.ID {
					t.Fatalf("n=%d: impostor id mismatch", n)
				}
			}
			orders = append(orders, p.Order)
		}
		if impostors != 1 {
			t.Fatalf("n=%d: expected one impostor, got %d", n, impostors)
		}
		sort.Ints(orders)
		for i, o := range orders {
			if o != i+1 {
				t.Fatalf("n=%d: ordinals %v are not a permutation of 1..n", n, orders)
			}
		}
		if snap.Turn != 1 || snap.Round != 1 || len(snap.Voted) != 0 {
			t.Fatalf("n=%d: unexpected round state %+v", n, snap)
		}
		if snap.Subject.IsZero() {
			t.Fatalf("n=%d: expected a round subject", n)
		}
	}
}

func TestCastVote_Validation(t *testing.T) {
	f := newFixture(t, 3, false)

	if err := f.session.CastVote(f.ids[0], f.ids[1]); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase before start, got %v", err)
	}

	f.start(t, 3)
	tests := []struct {
		name   string
		voter  string
		target string
	}{
		{"self", f.ids[0], f.ids[0]},
		{"unknown target", f.ids[0], "nobody"},
		{"unknown voter", "nobody", f.ids[1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.session.CastVote(tt.voter, tt.target); !errors.Is(err, ErrInvalidVote) {
				t.Fatalf("expected ErrInvalidVote, got %v", err)
			}
		})
	}
	if len(f.session.Snapshot().Voted) != 0 {
		t.Fatalf("rejected votes changed state")
	}

	f.vote(t, f.ids[0], SkipVote)
	f.vote(t, f.ids[0], f.ids[1])
	if len(f.session.Snapshot().Voted) != 1 {
		t.Fatalf("expected overwrite, not a second vote")
	}
}

func TestResolveTurn_ScenarioTieThenImpostorOut(t *testing.T) {
	f := newFixture(t, 3, false)
	f.start(t, 3)
	p1, p2, p3 := f.ids[0], f.ids[1], f.ids[2]
	f.forceImpostor(p2)

	f.vote(t, p1, p3)
	f.vote(t, p3, p1)
	f.vote(t, p2, SkipVote)
	if !f.session.AllVoted() {
		t.Fatalf("expected all voted")
	}

	tie, ok := f.resolve(t).(models.TieOutcome)
	if !ok {
		t.Fatalf("expected tie outcome")
	}
	if tie.NextTurn != 2 || tie.TieStreak != 1 {
		t.Fatalf("unexpected tie %+v", tie)
	}
	if len(f.session.Snapshot().Voted) != 0 {
		t.Fatalf("expected votes cleared after tie")
	}

	f.vote(t, p1, p2)
	f.vote(t, p3, p2)
	f.vote(t, p2, p1)

	over, ok := f.resolve(t).(models.RoundOverOutcome)
	if !ok {
		t.Fatalf("expected round-over outcome")
	}
	if over.Winner != models.WinnerInnocents || !over.WasImpostor || over.Eliminated == nil || over.Eliminated.ID != p2 {
		t.Fatalf("unexpected outcome %+v", over)
	}
	if !over.RoundFinished || over.TournamentFinished || over.Round != 1 {
		t.Fatalf("unexpected round flags %+v", over)
	}
	if over.Reveal.Impostor.ID != p2 || over.Reveal.Subject.Name != "Subject 1" {
		t.Fatalf("unexpected reveal %+v", over.Reveal)
	}

	points := map[string]int{}
	for _, s := range over.Scores {
		points[s.ID] = s.Score
	}
	if points[p1] != InnocentWinPoints || points[p3] != InnocentWinPoints || points[p2] != 0 {
		t.Fatalf("unexpected scores %v", points)
	}

	snap := f.session.Snapshot()
	if !snap.RoundOver || snap.Round != 2 || snap.Phase != models.PhasePlaying {
		t.Fatalf("expected to await next round, got %+v", snap)
	}
}

func TestResolveTurn_StandoffGoesToInnocents(t *testing.T) {
	f := newFixture(t, 4, false)
	f.start(t, 3)
	p1, p2, p3, p4 := f.ids[0], f.ids[1], f.ids[2], f.ids[3]
	f.forceImpostor(p4)

	f.vote(t, p1, p2)
	f.vote(t, p3, p2)
	f.vote(t, p4, p2)
	f.vote(t, p2, p1)
	elim, ok := f.resolve(t).(models.EliminationOutcome)
	if !ok {
		t.Fatalf("expected elimination outcome")
	}
	if elim.Eliminated.ID != p2 || elim.WasImpostor || elim.NextTurn != 2 {
		t.Fatalf("unexpected elimination %+v", elim)
	}

	f.vote(t, p1, p3)
	f.vote(t, p4, p3)
	f.vote(t, p3, p4)
	over, ok := f.resolve(t).(models.RoundOverOutcome)
	if !ok {
		t.Fatalf("expected round over on 1v1")
	}
	if over.Winner != models.WinnerInnocents || over.WasImpostor {
		t.Fatalf("expected innocents win without impostor out, got %+v", over)
	}

	// eliminated innocents still score
	points := map[string]int{}
	for _, s := range over.Scores {
		points[s.ID] = s.Score
	}
	for _, id := range []string{p1, p2, p3} {
		if points[id] != InnocentWinPoints {
			t.Fatalf("expected %s to score, got %v", id, points)
		}
	}
	if points[p4] != 0 {
		t.Fatalf("impostor scored on innocents win")
	}
}

func TestResolveTurn_ForcedEliminationAfterMaxTurns(t *testing.T) {
	f := newFixture(t, 5, false)
	f.start(t, 3)
	p1, p2, p3, p4, p5 := f.ids[0], f.ids[1], f.ids[2], f.ids[3], f.ids[4]
	f.forceImpostor(p5)

	for turn := 1; turn < MaxTurns; turn++ {
		f.vote(t, p1, p2)
		f.vote(t, p2, p1)
		f.vote(t, p3, SkipVote)
		f.vote(t, p4, SkipVote)
		f.vote(t, p5, SkipVote)
		if _, ok := f.resolve(t).(models.TieOutcome); !ok {
			t.Fatalf("turn %d: expected tie", turn)
		}
	}

	f.vote(t, p1, p2)
	f.vote(t, p2, p1)
	f.vote(t, p3, SkipVote)
	f.vote(t, p4, SkipVote)
	f.vote(t, p5, SkipVote)
	elim, ok := f.resolve(t).(models.EliminationOutcome)
	if !ok {
		t.Fatalf("expected forced elimination")
	}
	if !elim.Forced {
		t.Fatalf("expected forced flag")
	}
	if elim.Eliminated.ID != p1 && elim.Eliminated.ID != p2 {
		t.Fatalf("forced elimination must pick a tied leader, got %s", elim.Eliminated.ID)
	}
	if f.session.tieStreak != 0 {
		t.Fatalf("expected tie streak reset after forced elimination")
	}
}

func TestResolveTurn_AllSkipCountsAsTie(t *testing.T) {
	f := newFixture(t, 3, false)
	f.start(t, 3)
	for _, id := range f.ids {
		f.vote(t, id, SkipVote)
	}
	if _, ok := f.resolve(t).(models.TieOutcome); !ok {
		t.Fatalf("expected all-skip turn to tie")
	}
}

func TestResolveTurn_StaleKeyRejected(t *testing.T) {
	f := newFixture(t, 3, false)
	f.start(t, 3)
	key := f.session.TurnKey()
	for _, id := range f.ids {
		f.vote(t, id, SkipVote)
	}
	if _, err := f.session.ResolveTurn(key); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if _, err := f.session.ResolveTurn(key); !errors.Is(err, ErrStaleTurn) {
		t.Fatalf("expected ErrStaleTurn on second resolve, got %v", err)
	}
	if _, err := f.session.ResolveWhenAllVoted(f.session.TurnKey()); !errors.Is(err, ErrStaleTurn) {
		t.Fatalf("expected incomplete turn to be rejected, got %v", err)
	}
}

func TestTournament_FinishesAfterConfiguredRounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3, false)
	f.start(t, 2)

	for round := 1; round <= 2; round++ {
		impostor := f.session.Snapshot().ImpostorID
		for _, id := range f.ids {
			target := impostor
			if id == impostor {
				target = SkipVote
			}
			f.vote(t, id, target)
		}
		over, ok := f.resolve(t).(models.RoundOverOutcome)
		if !ok {
			t.Fatalf("round %d: expected round over", round)
		}
		if over.Round != round {
			t.Fatalf("expected completed round %d, got %d", round, over.Round)
		}
		if round == 1 {
			if over.TournamentFinished {
				t.Fatalf("tournament finished early")
			}
			if _, err := f.session.ContinueRound(ctx); err != nil {
				t.Fatalf("continue: %v", err)
			}
			continue
		}
		if !over.TournamentFinished {
			t.Fatalf("expected tournament finished")
		}
	}

	if got := f.session.Phase(); got != models.PhaseFinished {
		t.Fatalf("expected finished phase, got %s", got)
	}
	if f.subjects.drawn != 2 {
		t.Fatalf("expected one subject per round, drew %d", f.subjects.drawn)
	}
	if _, err := f.session.ContinueRound(ctx); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase after finish, got %v", err)
	}
}

func TestContinueRound_RequiresFinishedRound(t *testing.T) {
	f := newFixture(t, 3, false)
	f.start(t, 3)
	if _, err := f.session.ContinueRound(context.Background()); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase mid-round, got %v", err)
	}
}

func TestDisconnect_ImpostorEndsRound(t *testing.T) {
	f := newFixture(t, 4, false)
	f.start(t, 3)
	f.forceImpostor(f.ids[2])
	f.vote(t, f.ids[0], f.ids[1])

	res := f.session.Disconnect(f.conns[2], f.ids[2])
	if res.Outcome == nil {
		t.Fatalf("expected round outcome")
	}
	if res.Outcome.Winner != models.WinnerInnocents || !res.Outcome.ByDisconnection {
		t.Fatalf("unexpected outcome %+v", res.Outcome)
	}
	if res.Outcome.Eliminated != nil {
		t.Fatalf("expected no elimination on disconnection win")
	}
	if len(f.session.Snapshot().Voted) != 0 {
		t.Fatalf("expected votes cleared")
	}
}

func TestDisconnect_InnocentDropsVotesAgainstThem(t *testing.T) {
	f := newFixture(t, 5, false)
	f.start(t, 3)
	f.forceImpostor(f.ids[4])
	f.vote(t, f.ids[0], f.ids[3])
	f.vote(t, f.ids[3], f.ids[0])
	f.vote(t, f.ids[1], f.ids[2])

	res := f.session.Disconnect(f.conns[3], f.ids[3])
	if res.Outcome != nil {
		t.Fatalf("round should continue, got %+v", res.Outcome)
	}
	if f.player(f.ids[3]).Alive {
		t.Fatalf("expected disconnected player eliminated")
	}
	voted := f.session.Snapshot().Voted
	if voted[f.ids[0]] || voted[f.ids[3]] {
		t.Fatalf("expected votes for and by the leaver dropped, got %v", voted)
	}
	if !voted[f.ids[1]] {
		t.Fatalf("unrelated vote dropped")
	}
}

func TestDisconnect_InnocentLeavingTwoAliveEndsRound(t *testing.T) {
	f := newFixture(t, 3, false)
	f.start(t, 3)
	f.forceImpostor(f.ids[1])

	res := f.session.Disconnect(f.conns[2], f.ids[2])
	if res.Outcome == nil || res.Outcome.Winner != models.WinnerInnocents || !res.Outcome.ByDisconnection {
		t.Fatalf("expected innocents win by disconnection, got %+v", res.Outcome)
	}
}

func TestDisconnect_HostClosesSession(t *testing.T) {
	f := newFixture(t, 3, false)
	f.start(t, 3)

	res := f.session.Disconnect(f.conns[0], f.ids[0])
	if res.Kind != DisconnectHost {
		t.Fatalf("expected DisconnectHost, got %v", res.Kind)
	}
	if !f.session.Closed() {
		t.Fatalf("expected session closed")
	}
	if err := f.session.CastVote(f.ids[1], f.ids[2]); err == nil {
		t.Fatalf("expected closed session to reject votes")
	}
}

func TestStartRound_AbsentPlayersEndRoundImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4, false)
	f.start(t, 3)

	// finish round one so the session waits for continue
	impostor := f.session.Snapshot().ImpostorID
	for _, id := range f.ids {
		target := impostor
		if id == impostor {
			target = SkipVote
		}
		f.vote(t, id, target)
	}
	f.resolve(t)

	for i := 1; i < 4; i++ {
		f.session.Disconnect(f.conns[i], f.ids[i])
	}
	out, err := f.session.ContinueRound(ctx)
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if out == nil || !out.ByDisconnection || out.Winner != models.WinnerInnocents {
		t.Fatalf("expected immediate innocents win, got %+v", out)
	}
}

func TestReset_ReturnsToWaiting(t *testing.T) {
	f := newFixture(t, 3, false)
	f.start(t, 5)
	key := f.session.TurnKey()
	f.vote(t, f.ids[0], f.ids[1])

	if err := f.session.Reset(f.ids[1]); !errors.Is(err, ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
	if err := f.session.Reset(f.ids[0]); err != nil {
		t.Fatalf("reset: %v", err)
	}

	snap := f.session.Snapshot()
	if snap.Phase != models.PhaseWaiting || snap.Round != 1 || snap.Turn != 1 {
		t.Fatalf("unexpected state after reset %+v", snap)
	}
	if snap.TotalRounds != DefaultTotalRounds {
		t.Fatalf("expected total rounds reset, got %d", snap.TotalRounds)
	}
	if len(snap.Players) != 3 || len(snap.Voted) != 0 || snap.ImpostorID != "" {
		t.Fatalf("expected roster kept and round cleared, got %+v", snap)
	}
	for _, p := range snap.Players {
		if !p.Alive || p.Impostor {
			t.Fatalf("expected default flags, got %+v", p)
		}
	}
	for _, s := range snap.Scores {
		if s.Score != 0 {
			t.Fatalf("expected scores cleared, got %+v", s)
		}
	}
	if f.subjects.resets != 1 {
		t.Fatalf("expected subject deck reset")
	}
	if f.session.Votable(key) {
		t.Fatalf("expected old turn key to be stale after reset")
	}
}

func TestBotsAwaitingTurn(t *testing.T) {
	f := newFixture(t, 1, true)
	f.start(t, 3)

	if f.session.BotsAwaitingTurn() {
		t.Fatalf("bots must wait for the human vote")
	}
	f.vote(t, f.ids[0], SkipVote)
	if !f.session.BotsAwaitingTurn() {
		t.Fatalf("expected bots to be awaited once humans voted")
	}

	cast, err := f.session.CastBotVotes(f.session.TurnKey())
	if err != nil {
		t.Fatalf("bot votes: %v", err)
	}
	if cast != 2 {
		t.Fatalf("expected 2 bot votes, got %d", cast)
	}
	if !f.session.AllVoted() || f.session.BotsAwaitingTurn() {
		t.Fatalf("expected turn complete after bot votes")
	}
	if _, err := f.session.CastBotVotes(TurnKey{Epoch: 9}); !errors.Is(err, ErrStaleTurn) {
		t.Fatalf("expected stale key rejection, got %v", err)
	}
}

func TestIdleSince(t *testing.T) {
	f := newFixture(t, 2, false)
	later := f.session.lastActive.Add(time.Hour)
	if f.session.IdleSince(later, time.Minute) {
		t.Fatalf("connected session reported idle")
	}
	f.session.Disconnect(f.conns[1], f.ids[1])
	f.session.Disconnect(f.conns[0], f.ids[0])
	if !f.session.IdleSince(later, time.Minute) {
		t.Fatalf("expected idle session")
	}
}
