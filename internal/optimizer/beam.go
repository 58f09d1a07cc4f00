// Package optimizer implements the beam search that improves ranking
// instructions: critique the current best, mutate it, evaluate the mutations,
// and keep the best performers across iterations.
package optimizer

import (
	"sort"

	"github.com/jonathan/leadscout/internal/types"
)

// trajectoryMaxSize caps the de-duplicated history of candidates seen in a
// run; the worst-scoring entries are pruned first when it overflows.
const trajectoryMaxSize = 100

// CompareCandidates orders two evaluated candidates: Kendall's Tau
// descending, then Spearman descending, then MAE ascending. Returns a
// negative value when a ranks above b. RMSE is tracked as a diagnostic and
// deliberately takes no part in the ordering.
func CompareCandidates(a, b *types.PromptCandidate) int {
	switch {
	case a.Metrics.KendallTau > b.Metrics.KendallTau:
		return -1
	case a.Metrics.KendallTau < b.Metrics.KendallTau:
		return 1
	}
	switch {
	case a.Metrics.Spearman > b.Metrics.Spearman:
		return -1
	case a.Metrics.Spearman < b.Metrics.Spearman:
		return 1
	}
	switch {
	case a.Metrics.MAE < b.Metrics.MAE:
		return -1
	case a.Metrics.MAE > b.Metrics.MAE:
		return 1
	}
	return 0
}

// BeamState is the transient, process-local search state for one run. It is
// only ever touched by the single optimizer driver goroutine, so it needs no
// locking.
type BeamState struct {
	beam       []*types.PromptCandidate
	trajectory []*types.PromptCandidate
	seen       map[string]bool
	baseline   *types.PromptCandidate
	width      int
}

// NewBeamState seeds the beam with the evaluated baseline candidate.
func NewBeamState(baseline *types.PromptCandidate, width int) *BeamState {
	state := &BeamState{
		beam:     []*types.PromptCandidate{baseline},
		seen:     make(map[string]bool),
		baseline: baseline,
		width:    width,
	}
	state.record(baseline)
	return state
}

// Best returns the current top beam member.
func (s *BeamState) Best() *types.PromptCandidate {
	return s.beam[0]
}

// Beam returns the current beam, best first.
func (s *BeamState) Beam() []*types.PromptCandidate {
	return s.beam
}

// Baseline returns the seed candidate.
func (s *BeamState) Baseline() *types.PromptCandidate {
	return s.baseline
}

// TrajectorySize returns the number of distinct candidates seen so far.
func (s *BeamState) TrajectorySize() int {
	return len(s.trajectory)
}

// RecentTrajectory returns up to n trajectory entries sorted best-first, for
// inclusion in the variant-generation prompt.
func (s *BeamState) RecentTrajectory(n int) []*types.PromptCandidate {
	sorted := make([]*types.PromptCandidate, len(s.trajectory))
	copy(sorted, s.trajectory)
	sort.SliceStable(sorted, func(i, j int) bool {
		return CompareCandidates(sorted[i], sorted[j]) < 0
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Merge folds newly evaluated candidates into the beam, re-sorts it by the
// tie-break order, and truncates to the beam width. Completion order of the
// incoming candidates does not affect the result. Every new candidate is also
// recorded into the trajectory.
func (s *BeamState) Merge(candidates []*types.PromptCandidate) {
	for _, candidate := range candidates {
		s.record(candidate)
	}

	merged := make([]*types.PromptCandidate, 0, len(s.beam)+len(candidates))
	merged = append(merged, s.beam...)
	merged = append(merged, candidates...)
	sort.SliceStable(merged, func(i, j int) bool {
		return CompareCandidates(merged[i], merged[j]) < 0
	})
	if len(merged) > s.width {
		merged = merged[:s.width]
	}
	s.beam = merged
}

// record adds a candidate to the trajectory, de-duplicating by text and
// pruning the worst entries once the cap is exceeded.
func (s *BeamState) record(candidate *types.PromptCandidate) {
	if s.seen[candidate.Text] {
		return
	}
	s.seen[candidate.Text] = true
	s.trajectory = append(s.trajectory, candidate)

	if len(s.trajectory) > trajectoryMaxSize {
		sort.SliceStable(s.trajectory, func(i, j int) bool {
			return CompareCandidates(s.trajectory[i], s.trajectory[j]) < 0
		})
		for _, dropped := range s.trajectory[trajectoryMaxSize:] {
			delete(s.seen, dropped.Text)
		}
		s.trajectory = s.trajectory[:trajectoryMaxSize]
	}
}
