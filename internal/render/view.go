// Package render scopes session snapshots to what each recipient may see.
package render

import (
	"github.com/aaronzipp/officially-sus-arena/internal/models"
)

// ViewFor builds the view of snap for playerID. An empty playerID renders
// the spectator view: no identities, no impostor flags, no subject.
func ViewFor(snap models.Snapshot, playerID string) models.SessionView {
	var self *models.PlayerSnapshot
	for i := range snap.Players {
		if snap.Players[i].ID == playerID {
			self = &snap.Players[i]
			break
		}
	}
	spectator := self == nil

	alive := 0
	votesCast := 0
	allVoted := true
	players := make([]models.PlayerView, 0, len(snap.Players))
	for _, p := range snap.Players {
		voted := snap.Voted[p.ID]
		if p.Alive {
			alive++
			if voted {
				votesCast++
			} else {
				allVoted = false
			}
		}
		view := models.PlayerView{
			Name:      p.Name,
			Alive:     p.Alive,
			Bot:       p.Bot,
			Order:     p.Order,
			Connected: p.Connected,
			HasVoted:  voted,
		}
		if !spectator {
			view.ID = p.ID
		}
		players = append(players, view)
	}

	view := models.SessionView{
		RoomCode:          snap.Code,
		Version:           snap.Version,
		Phase:             snap.Phase,
		Turn:              snap.Turn,
		Round:             snap.Round,
		TotalRounds:       snap.TotalRounds,
		AwaitingContinue:  snap.RoundOver,
		Scores:            Scores(snap.Scores, spectator),
		Players:           players,
		IsSpectator:       spectator,
		AllVoted:          snap.Phase == models.PhasePlaying && alive > 0 && allVoted,
		VoteCount:         votesCast,
		TotalAlivePlayers: alive,
	}
	if spectator {
		return view
	}

	view.IsHost = len(snap.Players) > 0 && snap.Players[0].ID == playerID
	view.HasVoted = snap.Voted[playerID]
	view.IsImpostor = self.Impostor
	if snap.Phase == models.PhasePlaying && !self.Impostor && !snap.Subject.IsZero() {
		subject := snap.Subject
		view.Subject = &subject
	}
	return view
}

// Scores copies a score table, dropping ids for spectators
func Scores(scores []models.ScoreEntry, spectator bool) []models.ScoreEntry {
	out := make([]models.ScoreEntry, len(scores))
	copy(out, scores)
	if spectator {
		for i := range out {
			out[i].ID = ""
		}
	}
	return out
}

// OutcomeFor scopes a round result for a recipient. Spectators receive the
// same shape with player ids removed.
func OutcomeFor(o models.Outcome, spectator bool) models.Outcome {
	if !spectator {
		return o
	}
	switch v := o.(type) {
	case models.TieOutcome:
		v.Scores = Scores(v.Scores, true)
		return v
	case models.EliminationOutcome:
		v.Scores = Scores(v.Scores, true)
		v.Eliminated.ID = ""
		return v
	case models.RoundOverOutcome:
		return roundOverFor(v)
	case *models.RoundOverOutcome:
		return roundOverFor(*v)
	}
	return o
}

func roundOverFor(v models.RoundOverOutcome) models.RoundOverOutcome {
	v.Scores = Scores(v.Scores, true)
	if v.Eliminated != nil {
		eliminated := *v.Eliminated
		eliminated.ID = ""
		v.Eliminated = &eliminated
	}
	v.Reveal.Impostor.ID = ""
	return v
}
