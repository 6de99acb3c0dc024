// Package closing decides when a negotiation is mature enough to propose a
// concrete next step, and when it is failing instead.
package closing

import (
	"math/rand"
	"strings"

	"github.com/salesmind/engine/internal/app/progress"
	"github.com/salesmind/engine/internal/domain"
)

const (
	// needPayoffWindow is how many recent messages are scanned for
	// Need-Payoff tagged turns.
	needPayoffWindow = 10
	// needPayoffHits is how many tagged turns mark the stage complete.
	needPayoffHits = 2
	// readyProbability marks Need-Payoff complete on probability alone.
	readyProbability = 60
)

// Picker selects one of n options. The default is uniform random; tests
// inject a fixed picker to make proposal selection deterministic.
type Picker interface {
	Pick(n int) int
}

type randomPicker struct {
	r *rand.Rand
}

func (p randomPicker) Pick(n int) int {
	return p.r.Intn(n)
}

// NewRandomPicker returns the default uniform-random picker.
func NewRandomPicker(seed int64) Picker {
	return randomPicker{r: rand.New(rand.NewSource(seed))}
}

// Proposal is one canned closing proposal.
type Proposal struct {
	ActionType domain.ClosingActionType `json:"action_type"`
	Message    string                   `json:"proposal_message"`
}

var proposals = []Proposal{
	{domain.ClosingEstimate, "簡易見積もりをご案内しましょうか？具体的な費用感をお伝えできます。"},
	{domain.ClosingDemo, "実際のデモをご覧になりますか？具体的な使い方をご説明できます。"},
	{domain.ClosingMaterials, "導入に関する詳細資料をご案内できます。ご希望の形式でお送りします。"},
	{domain.ClosingScheduling, "ご都合の良い日程を調整しましょうか？次回の打ち合わせを設定できます。"},
}

// Propose synthesizes a closing proposal using the given picker.
func Propose(p Picker) Proposal {
	return proposals[p.Pick(len(proposals))]
}

// Ready reports whether a closing proposal should be offered. It is false
// outside a SPIN phase and false until the session has reached Need-Payoff;
// an unfinished SPIN cycle never closes.
func Ready(st progress.State, history []*domain.ChatMessage) bool {
	if st.Phase.IsClosing() || st.Phase.IsLoss() {
		return false
	}
	if st.Stage != domain.StageNeedPayoff {
		return false
	}
	return needPayoffComplete(st, history)
}

// needPayoffComplete holds when enough recent turns were independently
// tagged Need-Payoff, or the success probability is high while already at
// that stage.
func needPayoffComplete(st progress.State, history []*domain.ChatMessage) bool {
	recent := history
	if len(recent) > needPayoffWindow {
		recent = recent[len(recent)-needPayoffWindow:]
	}

	hits := 0
	for _, msg := range recent {
		if msg.SpinStage == domain.StageNeedPayoff {
			hits++
		}
	}
	if hits >= needPayoffHits {
		return true
	}

	return st.SuccessProbability >= readyProbability
}

// option-phrasing vs push-phrasing keywords for closing-style detection.
var (
	optionKeywords = []string{"どちら", "どっち", "どれ", "どちらで", "どちらが", "どちらを"}
	pushKeywords   = []string{"ぜひ", "必ず", "絶対", "今すぐ", "すぐに"}
)

// DetectStyle tags the salesperson's closing style: offering a choice
// ("demo or trial?") reads option-based, a single forceful ask reads as a
// one-shot push.
func DetectStyle(message string) domain.ClosingStyle {
	lower := strings.ToLower(message)
	for _, kw := range optionKeywords {
		if strings.Contains(lower, kw) {
			return domain.ClosingStyleOptionBased
		}
	}
	for _, kw := range pushKeywords {
		if strings.Contains(lower, kw) {
			return domain.ClosingStyleOneShotPush
		}
	}
	return domain.ClosingStyleNone
}
