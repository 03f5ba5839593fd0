package businessflow

import (
	"sort"

	"github.com/openlaunch/open-launch/models"
)

// RankCandidate is a project that just launched, with its upvote count
type RankCandidate struct {
	ProjectID uint
	Name      string
	Upvotes   int64
}

// RankGroup is a set of candidates sharing the same upvote count
type RankGroup struct {
	Upvotes  int64
	Projects []RankCandidate
}

// RankAssignment is a rank to persist for one project
type RankAssignment struct {
	ProjectID uint
	Name      string
	Upvotes   int64
	Rank      int
}

// JoinUpvoteCounts attaches counts to the launched projects. Projects absent from counts have zero upvotes.
func JoinUpvoteCounts(launched []models.ProjectSummary, counts map[uint]int64) []RankCandidate {
	out := make([]RankCandidate, 0, len(launched))
	for _, p := range launched {
		out = append(out, RankCandidate{ProjectID: p.ID, Name: p.Name, Upvotes: counts[p.ID]})
	}
	return out
}

// GroupByUpvotes drops zero-vote candidates and groups the rest by equal
// count, highest count first. Order inside a group follows the input order.
func GroupByUpvotes(candidates []RankCandidate) []RankGroup {
	voted := make([]RankCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Upvotes > 0 {
			voted = append(voted, c)
		}
	}
	sort.SliceStable(voted, func(i, j int) bool {
		return voted[i].Upvotes > voted[j].Upvotes
	})

	var groups []RankGroup
	for _, c := range voted {
		if n := len(groups); n > 0 && groups[n-1].Upvotes == c.Upvotes {
			groups[n-1].Projects = append(groups[n-1].Projects, c)
			continue
		}
		groups = append(groups, RankGroup{Upvotes: c.Upvotes, Projects: []RankCandidate{c}})
	}
	return groups
}

// AssignRanks gives the i-th group rank i+1 and stops once the rank would
// exceed maxRank. Ties share a rank and never push the next group down.
func AssignRanks(groups []RankGroup, maxRank int) []RankAssignment {
	var out []RankAssignment
	for i, g := range groups {
		rank := i + 1
		if rank > maxRank {
			break
		}
		for _, p := range g.Projects {
			out = append(out, RankAssignment{ProjectID: p.ProjectID, Name: p.Name, Upvotes: p.Upvotes, Rank: rank})
		}
	}
	return out
}
