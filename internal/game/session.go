package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/aaronzipp/officially-sus-arena/internal/models"
)

// SubjectSource supplies round subjects for one session without repeats
type SubjectSource interface {
	Next(ctx context.Context) models.RoundSubject
	Reset()
}

// TurnKey identifies one voting turn. Delayed work carries the key it was
// scheduled for and becomes a no-op once the session has moved past it.
type TurnKey struct {
	Epoch uint64
	Round int
	Turn  int
}

// Options configures a new Session
type Options struct {
	Code        string
	BotsEnabled bool
	Subjects    SubjectSource
	Rand        *rand.Rand
	Bots        BotPolicy
	Now         func() time.Time
}

// Session owns one room: roster, round and voting state, scores.
// Every exported method takes the session lock, so operations on one room
// never interleave.
type Session struct {
	Code        string
	BotsEnabled bool

	mu            sync.Mutex
	phase         models.Phase
	players       []*models.Player
	spectators    map[models.Conn]struct{}
	round         int
	totalRounds   int
	turn          int
	votes         map[string]string
	tieStreak     int
	tiedThisRound bool
	roundOver     bool // previous round resolved, waiting for ContinueRound
	starting      bool // a round start is fetching its subject
	epoch         uint64
	version       uint64
	impostorID    string
	subject       models.RoundSubject
	scores        *ScoreBook
	closed        bool
	lastActive    time.Time

	rng      *rand.Rand
	bots     BotPolicy
	subjects SubjectSource
	now      func() time.Time
}

// NewSession creates a session in the waiting phase
func NewSession(opts Options) *Session {
	if opts.Rand == nil {
		opts.Rand = NewSeededRand()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Bots == (BotPolicy{}) {
		opts.Bots = DefaultBotPolicy()
	}
	return &Session{
		Code:        opts.Code,
		BotsEnabled: opts.BotsEnabled,
		phase:       models.PhaseWaiting,
		spectators:  make(map[models.Conn]struct{}),
		round:       1,
		totalRounds: DefaultTotalRounds,
		turn:        1,
		votes:       make(map[string]string),
		scores:      NewScoreBook(),
		lastActive:  opts.Now(),
		rng:         opts.Rand,
		bots:        opts.Bots,
		subjects:    opts.Subjects,
		now:         opts.Now,
	}
}

// AdmitResult describes how a connection entered the session
type AdmitResult struct {
	PlayerID    string
	Spectator   bool
	Reconnected bool
	Replaced    models.Conn // connection that previously held the player, if any
	BotsAdded   int
}

// Admit resolves the identity of a joining connection: claimed id first, then
// display name, then a new roster entry while waiting, else a spectator seat.
func (s *Session) Admit(name, claimedID string, conn models.Conn, newID func() string) (AdmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return AdmitResult{}, ErrRoomNotFound
	}
	s.lastActive = s.now()

	if claimedID != "" {
		if p := s.findLocked(claimedID); p != nil && !p.Bot {
			return s.rebindLocked(p, conn), nil
		}
	}

	if name == "" {
		return AdmitResult{}, ErrNameRequired
	}

	if p := s.findByNameLocked(name); p != nil && !p.Bot {
		return s.rebindLocked(p, conn), nil
	}

	if s.phase == models.PhaseWaiting && !s.starting {
		if len(s.players) >= MaxPlayers {
			return AdmitResult{}, ErrRoomFull
		}
		firstHuman := s.humanCountLocked() == 0
		p := &models.Player{ID: newID(), Name: name, Alive: true, Conn: conn}
		s.players = append(s.players, p)
		delete(s.spectators, conn)

		res := AdmitResult{PlayerID: p.ID}
		if s.BotsEnabled && firstHuman {
			res.BotsAdded = s.fillBotsLocked(newID)
		}
		s.version++
		return res, nil
	}

	s.spectators[conn] = struct{}{}
	s.version++
	return AdmitResult{Spectator: true}, nil
}

func (s *Session) rebindLocked(p *models.Player, conn models.Conn) AdmitResult {
	res := AdmitResult{PlayerID: p.ID, Reconnected: true}
	if p.Conn != nil && p.Conn != conn {
		res.Replaced = p.Conn
	}
	p.Conn = conn
	delete(s.spectators, conn)
	s.version++
	return res
}

func (s *Session) fillBotsLocked(newID func() string) int {
	added := 0
	for len(s.players) < MinPlayers && added < len(BotNames) {
		s.players = append(s.players, &models.Player{
			ID:    newID(),
			Name:  BotNames[added],
			Alive: true,
			Bot:   true,
		})
		added++
	}
	return added
}

// Start begins the tournament. Only the host may start, from the waiting
// phase, with at least MinPlayers on the roster. A non-nil outcome means
// the first round ended immediately because of absent players.
func (s *Session) Start(ctx context.Context, requesterID string, totalRounds int) (*models.RoundOverOutcome, error) {
	if totalRounds == 0 {
		totalRounds = DefaultTotalRounds
	}
	if totalRounds < 1 || totalRounds > MaxTotalRounds {
		return nil, ErrInvalidRounds
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	if !s.isHostLocked(requesterID) {
		s.mu.Unlock()
		return nil, ErrNotHost
	}
	if s.phase != models.PhaseWaiting || s.starting {
		s.mu.Unlock()
		return nil, ErrWrongPhase
	}
	if len(s.players) < MinPlayers {
		s.mu.Unlock()
		return nil, ErrNotEnoughPlayers
	}
	s.starting = true
	epoch := s.epoch
	s.mu.Unlock()

	subject := s.nextSubject(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.starting = false
	if s.closed {
		return nil, ErrRoomNotFound
	}
	if s.epoch != epoch || s.phase != models.PhaseWaiting {
		return nil, ErrWrongPhase
	}

	s.scores.Reset(s.playerIDsLocked())
	s.totalRounds = totalRounds
	s.round = 1
	s.phase = models.PhasePlaying
	s.lastActive = s.now()
	return s.startRoundLocked(subject), nil
}

// ContinueRound starts the next round once the previous one has finished
// and the tournament has not.
func (s *Session) ContinueRound(ctx context.Context) (*models.RoundOverOutcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	if s.phase != models.PhasePlaying || !s.roundOver || s.starting {
		s.mu.Unlock()
		return nil, ErrWrongPhase
	}
	s.starting = true
	epoch := s.epoch
	round := s.round
	s.mu.Unlock()

	subject := s.nextSubject(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.starting = false
	if s.closed {
		return nil, ErrRoomNotFound
	}
	if s.epoch != epoch || s.round != round || s.phase != models.PhasePlaying || !s.roundOver {
		return nil, ErrWrongPhase
	}
	s.lastActive = s.now()
	return s.startRoundLocked(subject), nil
}

func (s *Session) nextSubject(ctx context.Context) models.RoundSubject {
	if s.subjects == nil {
		return models.RoundSubject{}
	}
	return s.subjects.Next(ctx)
}

// startRoundLocked deals a new round: everyone alive, fresh ordinals, one
// impostor drawn from the full roster, cleared votes.
func (s *Session) startRoundLocked(subject models.RoundSubject) *models.RoundOverOutcome {
	s.roundOver = false
	order := OrdinalPermutation(len(s.players), s.rng)
	for i, p := range s.players {
		p.Alive = true
		p.Impostor = false
		p.Order = order[i]
	}
	impostor := s.players[s.rng.Intn(len(s.players))]
	impostor.Impostor = true
	s.impostorID = impostor.ID
	s.subject = subject

	s.votes = make(map[string]string)
	s.tieStreak = 0
	s.tiedThisRound = false
	s.turn = 1
	s.version++

	return s.applyAbsenteesLocked()
}

// applyAbsenteesLocked applies the disconnect rules to humans who have no
// live connection when a round is dealt.
func (s *Session) applyAbsenteesLocked() *models.RoundOverOutcome {
	absent := 0
	impostorAbsent := false
	for _, p := range s.players {
		if p.Bot || p.Conn != nil {
			continue
		}
		p.Alive = false
		absent++
		if p.ID == s.impostorID {
			impostorAbsent = true
		}
	}
	if absent == 0 {
		return nil
	}
	if impostorAbsent || s.aliveCountLocked() <= 2 {
		return s.finishRoundLocked(models.WinnerInnocents, nil, false, false, true)
	}
	return nil
}

// CastVote records voterID's choice for the current turn, replacing any
// earlier vote. Rejected votes leave the session untouched.
func (s *Session) CastVote(voterID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomNotFound
	}
	if !s.inProgressLocked() {
		return ErrWrongPhase
	}
	voter := s.findLocked(voterID)
	if voter == nil || !voter.Alive {
		return ErrInvalidVote
	}
	if targetID == voterID {
		return ErrInvalidVote
	}
	if targetID != SkipVote {
		target := s.findLocked(targetID)
		if target == nil || !target.Alive {
			return ErrInvalidVote
		}
	}

	s.votes[voterID] = targetID
	s.lastActive = s.now()
	s.version++
	return nil
}

// AllVoted reports whether every alive player has a vote this turn
func (s *Session) AllVoted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inProgressLocked() && s.allVotedLocked()
}

func (s *Session) allVotedLocked() bool {
	for _, p := range s.players {
		if !p.Alive {
			continue
		}
		if _, ok := s.votes[p.ID]; !ok {
			return false
		}
	}
	return true
}

// TurnKey returns the key of the current voting turn
func (s *Session) TurnKey() TurnKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnKeyLocked()
}

func (s *Session) turnKeyLocked() TurnKey {
	return TurnKey{Epoch: s.epoch, Round: s.round, Turn: s.turn}
}

// Votable reports whether key still names the live voting turn
func (s *Session) Votable(key TurnKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.inProgressLocked() && s.turnKeyLocked() == key
}

// BotsAwaitingTurn reports whether alive bots still owe a vote while every
// alive human has already voted.
func (s *Session) BotsAwaitingTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.inProgressLocked() {
		return false
	}
	pending := false
	for _, p := range s.players {
		if !p.Alive {
			continue
		}
		_, voted := s.votes[p.ID]
		if !p.Bot && !voted {
			return false
		}
		if p.Bot && !voted {
			pending = true
		}
	}
	return pending
}

// CastBotVotes lets every alive bot without a vote decide for the turn key
func (s *Session) CastBotVotes(key TurnKey) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.inProgressLocked() || s.turnKeyLocked() != key {
		return 0, ErrStaleTurn
	}

	alive := s.aliveLocked()
	cast := 0
	for _, p := range alive {
		if !p.Bot {
			continue
		}
		if _, ok := s.votes[p.ID]; ok {
			continue
		}
		s.votes[p.ID] = s.bots.Decide(p, alive, s.tiedThisRound, s.rng)
		cast++
	}
	if cast > 0 {
		s.version++
	}
	return cast, nil
}

// ResolveTurn tallies the votes of the turn named by key. A call for a turn
// that was already resolved, or while no turn is open, returns ErrStaleTurn.
func (s *Session) ResolveTurn(key TurnKey) (models.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.inProgressLocked() || s.turnKeyLocked() != key {
		return nil, ErrStaleTurn
	}
	return s.resolveTurnLocked(), nil
}

// ResolveWhenAllVoted resolves the turn named by key only if every alive
// player has voted; otherwise it returns ErrStaleTurn.
func (s *Session) ResolveWhenAllVoted(key TurnKey) (models.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.inProgressLocked() || s.turnKeyLocked() != key || !s.allVotedLocked() {
		return nil, ErrStaleTurn
	}
	return s.resolveTurnLocked(), nil
}

func (s *Session) resolveTurnLocked() models.Outcome {
	result := CountVotes(s.countableVotesLocked())

	var targetID string
	forced := false
	if result.IsTie {
		s.tieStreak++
		s.tiedThisRound = true
		if s.turn < MaxTurns {
			s.votes = make(map[string]string)
			s.turn++
			s.version++
			return models.TieOutcome{
				Kind:        models.OutcomeTie,
				Round:       s.round,
				TotalRounds: s.totalRounds,
				NextTurn:    s.turn,
				TieStreak:   s.tieStreak,
				Scores:      s.scores.Snapshot(s.players),
			}
		}

		pool := result.Leaders
		if len(pool) == 0 {
			for _, p := range s.aliveLocked() {
				pool = append(pool, p.ID)
			}
		}
		targetID = pool[s.rng.Intn(len(pool))]
		s.tieStreak = 0
		forced = true
	} else {
		targetID = result.MostVoted()
	}

	eliminated := s.findLocked(targetID)
	eliminated.Alive = false
	ref := eliminated.Ref()
	wasImpostor := eliminated.Impostor

	impostors, innocents := s.aliveCountsLocked()
	if winner := RoundWinner(impostors, innocents); winner != models.WinnerNone {
		return *s.finishRoundLocked(winner, &ref, wasImpostor, forced, false)
	}

	s.votes = make(map[string]string)
	s.turn++
	s.version++
	return models.EliminationOutcome{
		Kind:        models.OutcomeElimination,
		Round:       s.round,
		TotalRounds: s.totalRounds,
		NextTurn:    s.turn,
		Eliminated:  ref,
		WasImpostor: wasImpostor,
		Forced:      forced,
		Scores:      s.scores.Snapshot(s.players),
	}
}

// countableVotesLocked drops votes cast by or for players no longer alive
func (s *Session) countableVotesLocked() map[string]string {
	votes := make(map[string]string, len(s.votes))
	for voterID, targetID := range s.votes {
		voter := s.findLocked(voterID)
		if voter == nil || !voter.Alive {
			continue
		}
		if targetID != SkipVote {
			target := s.findLocked(targetID)
			if target == nil || !target.Alive {
				continue
			}
		}
		votes[voterID] = targetID
	}
	return votes
}

// finishRoundLocked awards points, reveals the round and advances or ends
// the tournament.
func (s *Session) finishRoundLocked(winner models.Winner, eliminated *models.PlayerRef, wasImpostor, forced, byDisconnection bool) *models.RoundOverOutcome {
	switch winner {
	case models.WinnerInnocents:
		innocents := make([]string, 0, len(s.players))
		for _, p := range s.players {
			if p.ID != s.impostorID {
				innocents = append(innocents, p.ID)
			}
		}
		s.scores.Award(InnocentWinPoints, innocents...)
	case models.WinnerImpostors:
		s.scores.Award(ImpostorWinPoints, s.impostorID)
	}

	reveal := models.Reveal{Subject: s.subject}
	if impostor := s.findLocked(s.impostorID); impostor != nil {
		reveal.Impostor = impostor.Ref()
	}

	completed := s.round
	finished := completed >= s.totalRounds
	if finished {
		s.phase = models.PhaseFinished
		s.roundOver = false
	} else {
		s.round++
		s.roundOver = true
	}
	s.votes = make(map[string]string)
	s.version++

	return &models.RoundOverOutcome{
		Kind:               models.OutcomeRoundOver,
		Round:              completed,
		TotalRounds:        s.totalRounds,
		Eliminated:         eliminated,
		WasImpostor:        wasImpostor,
		Forced:             forced,
		Winner:             winner,
		RoundFinished:      true,
		TournamentFinished: finished,
		ByDisconnection:    byDisconnection,
		Scores:             s.scores.Snapshot(s.players),
		Reveal:             reveal,
	}
}

// DisconnectKind classifies what a disconnect did to the session
type DisconnectKind int

const (
	// DisconnectIgnored means the connection no longer held the player
	DisconnectIgnored DisconnectKind = iota
	// DisconnectSpectator means a spectator left
	DisconnectSpectator
	// DisconnectHost means the host left and the session is closed
	DisconnectHost
	// DisconnectUpdated means a player was unbound and the view changed
	DisconnectUpdated
)

// DisconnectResult reports the consequences of a disconnect
type DisconnectResult struct {
	Kind    DisconnectKind
	Outcome *models.RoundOverOutcome // set when the disconnect ended the round
	Empty   bool                     // no bound connections remain
}

// Disconnect unbinds conn from playerID (empty for spectators) and applies
// the disconnect rules. The roster entry is kept.
func (s *Session) Disconnect(conn models.Conn, playerID string) DisconnectResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if playerID == "" {
		if _, ok := s.spectators[conn]; !ok {
			return DisconnectResult{Kind: DisconnectIgnored}
		}
		delete(s.spectators, conn)
		s.version++
		return DisconnectResult{Kind: DisconnectSpectator, Empty: s.boundCountLocked() == 0}
	}

	p := s.findLocked(playerID)
	if p == nil || p.Conn != conn {
		return DisconnectResult{Kind: DisconnectIgnored}
	}
	p.Conn = nil
	s.version++

	if s.isHostLocked(p.ID) {
		s.closed = true
		return DisconnectResult{Kind: DisconnectHost}
	}

	res := DisconnectResult{Kind: DisconnectUpdated}
	if s.inProgressLocked() {
		p.Alive = false
		s.dropVotesLocked(p.ID)
		if p.ID == s.impostorID {
			res.Outcome = s.finishRoundLocked(models.WinnerInnocents, nil, false, false, true)
		} else if s.aliveCountLocked() <= 2 {
			res.Outcome = s.finishRoundLocked(models.WinnerInnocents, nil, false, false, true)
		}
	}
	res.Empty = s.boundCountLocked() == 0
	return res
}

// dropVotesLocked removes the vote of playerID and every vote naming them,
// so those voters choose again.
func (s *Session) dropVotesLocked(playerID string) {
	delete(s.votes, playerID)
	for voterID, targetID := range s.votes {
		if targetID == playerID {
			delete(s.votes, voterID)
		}
	}
}

// Reset returns the session to the waiting phase, keeping the roster
func (s *Session) Reset(requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrRoomNotFound
	}
	if !s.isHostLocked(requesterID) {
		return ErrNotHost
	}

	s.phase = models.PhaseWaiting
	s.round = 1
	s.turn = 1
	s.totalRounds = DefaultTotalRounds
	s.votes = make(map[string]string)
	s.tieStreak = 0
	s.tiedThisRound = false
	s.roundOver = false
	s.starting = false
	s.impostorID = ""
	s.subject = models.RoundSubject{}
	for _, p := range s.players {
		p.Alive = true
		p.Impostor = false
		p.Order = 0
	}
	s.scores.Reset(s.playerIDsLocked())
	if s.subjects != nil {
		s.subjects.Reset()
	}
	s.epoch++
	s.version++
	s.lastActive = s.now()
	return nil
}

// Close marks the session as terminated; every later operation fails
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Closed reports whether the session has been terminated
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// IdleSince reports whether nobody is connected and nothing happened for timeout
func (s *Session) IdleSince(now time.Time, timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundCountLocked() == 0 && now.Sub(s.lastActive) >= timeout
}

// Holds reports whether conn is the connection currently seated as playerID,
// or a spectator connection when playerID is empty
func (s *Session) Holds(conn models.Conn, playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if playerID == "" {
		_, ok := s.spectators[conn]
		return ok
	}
	p := s.findLocked(playerID)
	return p != nil && p.Conn == conn
}

// IsHost reports whether playerID is the first roster entry
func (s *Session) IsHost(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isHostLocked(playerID)
}

// Phase returns the current phase
func (s *Session) Phase() models.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Recipients returns every bound connection
func (s *Session) Recipients() []models.Recipient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recipientsLocked()
}

func (s *Session) recipientsLocked() []models.Recipient {
	recipients := make([]models.Recipient, 0, len(s.players)+len(s.spectators))
	for _, p := range s.players {
		if p.Conn != nil {
			recipients = append(recipients, models.Recipient{Conn: p.Conn, PlayerID: p.ID})
		}
	}
	for conn := range s.spectators {
		recipients = append(recipients, models.Recipient{Conn: conn})
	}
	return recipients
}

// Snapshot copies the session state for rendering
func (s *Session) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make([]models.PlayerSnapshot, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, models.PlayerSnapshot{
			ID:        p.ID,
			Name:      p.Name,
			Alive:     p.Alive,
			Impostor:  p.Impostor,
			Bot:       p.Bot,
			Order:     p.Order,
			Connected: p.Conn != nil,
		})
	}
	voted := make(map[string]bool, len(s.votes))
	for id := range s.votes {
		voted[id] = true
	}

	return models.Snapshot{
		Code:        s.Code,
		Version:     s.version,
		Phase:       s.phase,
		Round:       s.round,
		TotalRounds: s.totalRounds,
		Turn:        s.turn,
		RoundOver:   s.roundOver,
		Players:     players,
		Voted:       voted,
		ImpostorID:  s.impostorID,
		Subject:     s.subject,
		Scores:      s.scores.Snapshot(s.players),
		Recipients:  s.recipientsLocked(),
	}
}

func (s *Session) inProgressLocked() bool {
	return s.phase == models.PhasePlaying && !s.roundOver && !s.starting
}

func (s *Session) isHostLocked(playerID string) bool {
	return playerID != "" && len(s.players) > 0 && s.players[0].ID == playerID
}

func (s *Session) findLocked(id string) *models.Player {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) findByNameLocked(name string) *models.Player {
	for _, p := range s.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (s *Session) humanCountLocked() int {
	n := 0
	for _, p := range s.players {
		if !p.Bot {
			n++
		}
	}
	return n
}

func (s *Session) aliveLocked() []*models.Player {
	alive := make([]*models.Player, 0, len(s.players))
	for _, p := range s.players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

func (s *Session) aliveCountLocked() int {
	impostors, innocents := s.aliveCountsLocked()
	return impostors + innocents
}

func (s *Session) aliveCountsLocked() (impostors, innocents int) {
	for _, p := range s.players {
		if !p.Alive {
			continue
		}
		if p.Impostor {
			impostors++
		} else {
			innocents++
		}
	}
	return impostors, innocents
}

func (s *Session) boundCountLocked() int {
	n := len(s.spectators)
	for _, p := range s.players {
		if p.Conn != nil {
			n++
		}
	}
	return n
}

func (s *Session) playerIDsLocked() []string {
	ids := make([]string, 0, len(s.players))
	for _, p := range s.players {
		ids = append(ids, p.ID)
	}
	return ids
}
