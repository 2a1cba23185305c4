package game

import "sort"

// VoteResult represents the outcome of vote counting
type VoteResult struct {
	VoteCount map[string]int
	MaxVotes  int
	Leaders   []string // every target reaching MaxVotes, sorted
	IsTie     bool     // no non-skip votes, or more than one leader
}

// MostVoted returns the sole leader of a decisive tally
func (r *VoteResult) MostVoted() string {
	if r.IsTie || len(r.Leaders) != 1 {
		return ""
	}
	return r.Leaders[0]
}

// CountVotes tallies non-skip votes per target and finds the leaders
func CountVotes(votes map[string]string) *VoteResult {
	voteCount := make(map[string]int)
	for _, votedFor := range votes {
		if votedFor == SkipVote || votedFor == "" {
			continue
		}
		voteCount[votedFor]++
	}

	maxVotes := 0
	var playersWithMaxVotes []string
	for pID, count := range voteCount {
		if count > maxVotes {
			maxVotes = count
			playersWithMaxVotes = []string{pID}
		} else if count == maxVotes {
			playersWithMaxVotes = append(playersWithMaxVotes, pID)
		}
	}
	sort.Strings(playersWithMaxVotes)

	return &VoteResult{
		VoteCount: voteCount,
		MaxVotes:  maxVotes,
		Leaders:   playersWithMaxVotes,
		IsTie:     maxVotes == 0 || len(playersWithMaxVotes) > 1,
	}
}
