// Package progress owns the deterministic conversation-progress engine: the
// success-delta damper and the phase state machine that turn noisy per-turn
// judgments into bounded session state.
package progress

import (
	"math"

	"github.com/salesmind/engine/internal/domain"
)

// DampResult is a damped, clamped success delta plus the stage-transition
// classification that produced it.
type DampResult struct {
	AdjustedDelta int
	Evaluation    domain.StageEvaluation
}

// OrderViolation reports whether the turn skipped or reversed SPIN stages.
// Only these turns feed a penalty into the temperature score.
func (r DampResult) OrderViolation() bool {
	return r.Evaluation == domain.EvalJump || r.Evaluation == domain.EvalRegression
}

// DampDelta converts a raw judgment delta into the delta actually applied to
// the success probability:
//
//   - same stage: deepening is capped to [-1, 1] so repetition cannot
//     accumulate unbounded credit;
//   - one stage forward: floor-boosted to at least +2;
//   - skipping stages: penalized, but damped to 30% of the nominal
//     magnitude so content quality dominates over strict ordering;
//   - moving backward: same 30% damping on a smaller nominal penalty;
//   - unclassifiable: positive deltas are discarded.
func DampDelta(rawDelta int, messageStage, currentStage domain.SpinStage) DampResult {
	raw := float64(clampInt(rawDelta, -5, 5))

	msgOrder, known := domain.StageOrder(messageStage)
	if !known {
		return DampResult{
			AdjustedDelta: clampInt(int(math.Min(raw, 0)), -5, 5),
			Evaluation:    domain.EvalUnknown,
		}
	}

	curOrder, _ := domain.StageOrder(currentStage)

	var (
		adjusted float64
		eval     domain.StageEvaluation
	)
	switch diff := msgOrder - curOrder; {
	case diff == 0:
		eval = domain.EvalRepeat
		adjusted = math.Max(math.Min(raw, 1), -1)
	case diff == 1:
		eval = domain.EvalAdvance
		adjusted = math.Max(raw, 2)
	case diff > 1:
		eval = domain.EvalJump
		adjusted = math.Min(raw, -3) * 0.3
	default:
		eval = domain.EvalRegression
		adjusted = math.Min(raw, -2) * 0.3
	}

	return DampResult{
		AdjustedDelta: clampInt(int(math.Round(adjusted)), -5, 5),
		Evaluation:    eval,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
