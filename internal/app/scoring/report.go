// Package scoring aggregates the rubric collaborator's payload into the
// final 100-point report rubric.
package scoring

import "github.com/salesmind/engine/internal/domain"

// Aggregate normalizes a rubric payload into RubricScores: every dimension
// is clamped to [0, 20], the total is recomputed as their sum, and the
// legacy SPIN-shaped fields are derived for older report consumers. It is a
// pure function of its input; aggregating the same payload twice yields the
// same scores.
func Aggregate(res domain.RubricResult) domain.RubricScores {
	exploration := clampDimension(res.Exploration)
	implication := clampDimension(res.Implication)
	valueProposition := clampDimension(res.ValueProposition)
	customerResponse := clampDimension(res.CustomerResponse)
	advancement := clampDimension(res.Advancement)

	scores := domain.RubricScores{
		Exploration:      exploration,
		Implication:      implication,
		ValueProposition: valueProposition,
		CustomerResponse: customerResponse,
		Advancement:      advancement,
		Total:            exploration + implication + valueProposition + customerResponse + advancement,

		// Legacy derivation: exploration splits into situation/problem,
		// implication carries over, need mirrors the value proposition.
		Situation:         exploration / 2,
		Problem:           exploration / 2,
		ImplicationLegacy: implication,
		Need:              valueProposition,
	}

	// The collaborator may supply its own legacy values; prefer them when
	// present so older reports stay comparable.
	if res.Situation != nil {
		scores.Situation = clampDimension(*res.Situation)
	}
	if res.Problem != nil {
		scores.Problem = clampDimension(*res.Problem)
	}
	if res.Need != nil {
		scores.Need = clampDimension(*res.Need)
	}

	return scores
}

func clampDimension(v int) int {
	if v < 0 {
		return 0
	}
	if v > 20 {
		return 20
	}
	return v
}
