package session

import (
	"sort"

	"examhub/backend/models"
)

// Grade compares the submitted answer-id set against the question's authored
// correct-answer set. Order and duplicate entries are irrelevant: a partial
// selection on a multiple-choice question grades as incorrect because the
// sets differ. Pure, no side effects.
func Grade(q models.Question, selected []int64) bool {
	correct := make(map[int64]struct{})
	for _, a := range q.Answers {
		if a.IsCorrect {
			correct[int64(a.ID)] = struct{}{}
		}
	}

	chosen := make(map[int64]struct{})
	for _, id := range selected {
		chosen[id] = struct{}{}
	}

	if len(chosen) != len(correct) {
		return false
	}
	for id := range chosen {
		if _, ok := correct[id]; !ok {
			return false
		}
	}
	return true
}

// NormalizeSelection deduplicates and sorts a selection so the stored value
// has genuine set semantics. Returns nil for an effectively empty selection.
func NormalizeSelection(selected []int64) []int64 {
	seen := make(map[int64]struct{}, len(selected))
	var out []int64
	for _, id := range selected {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
