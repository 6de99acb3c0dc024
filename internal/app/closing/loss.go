package closing

import (
	"strings"

	"github.com/salesmind/engine/internal/app/progress"
	"github.com/salesmind/engine/internal/domain"
)

// Keyword lists for the two-stage loss detection. Mismatch phrases signal
// that the value proposition does not fit the customer's business;
// rejection phrases signal discomfort or a wish to end the negotiation.
var (
	mismatchKeywords = []string{"関連がない", "合わない", "違う", "関係ない", "不一致"}

	rejectionKeywords = []string{
		"見送り", "予算", "時期", "検討", "必要", "決められ", "上司", "競合",
		"関連がない", "合わない", "違う", "関係ない", "不一致",
		"本日はここまで", "成立が難しい", "難しいと判断",
	}
)

// CheckLossCandidate flags a failing negotiation. Conditions are evaluated
// in priority order and the first match wins; an empty reason means no
// candidate. Sessions already in a loss phase are never re-flagged.
func CheckLossCandidate(st progress.State, history []*domain.ChatMessage) domain.LossReason {
	if st.Phase.IsLoss() {
		return ""
	}

	// Repeated mismatch reactions from the customer.
	customers := lastByRole(history, domain.RoleCustomer, 5)
	mismatches := 0
	for _, msg := range customers {
		if containsAny(strings.ToLower(msg.Text), mismatchKeywords) {
			mismatches++
		}
	}
	if mismatches >= 2 {
		return domain.LossFeatureMismatch
	}

	// Long conversation still stuck at the Situation stage.
	if len(history) >= 10 && st.Stage == domain.StageSituation {
		return domain.LossNoUrgency
	}

	// Success probability falling across recent judged turns.
	judged := 0
	negative := 0
	for _, msg := range tail(history, 5) {
		if msg.SuccessDelta == nil {
			continue
		}
		judged++
		if *msg.SuccessDelta < 0 {
			negative++
		}
	}
	if judged >= 3 && negative >= 2 {
		return domain.LossNoUrgency
	}

	// Probability too low for an established conversation.
	if st.SuccessProbability <= 30 && len(customers) >= 2 {
		return domain.LossNoUrgency
	}

	// Very long conversation with a weak probability.
	if len(history) >= 25 && st.SuccessProbability <= 40 {
		return domain.LossNoUrgency
	}

	return ""
}

// CheckLossConfirmed confirms a candidate loss: true once the customer has
// pushed back twice within the last three messages. A session already in
// LOSS_CONFIRMED stays confirmed.
func CheckLossConfirmed(st progress.State, history []*domain.ChatMessage) bool {
	if st.Phase == domain.PhaseLossConfirmed {
		return true
	}
	if st.Phase != domain.PhaseLossCandidate {
		return false
	}

	rejections := 0
	for _, msg := range tail(history, 3) {
		if msg.Role != domain.RoleCustomer {
			continue
		}
		if containsAny(strings.ToLower(msg.Text), rejectionKeywords) {
			rejections++
		}
	}
	return rejections >= 2
}

// LossResponse is the canned reply the customer gives when a loss is
// confirmed.
type LossResponse struct {
	Reason  domain.LossReason `json:"loss_reason"`
	Label   string            `json:"loss_reason_label"`
	Message string            `json:"response_message"`
}

var lossMessages = []string{
	"今回は導入は見送りということで理解しました。また時期が合えばぜひご相談ください。",
	"本日はありがとうございました。またタイミングが合えばぜひご相談ください。",
	"本日のご相談は以上とさせていただきます。ご検討いただきありがとうございました。",
}

// LossReply builds the loss-confirmed response for a reason.
func LossReply(p Picker, reason domain.LossReason) LossResponse {
	return LossResponse{
		Reason:  reason,
		Label:   reason.Label(),
		Message: lossMessages[p.Pick(len(lossMessages))],
	}
}

func lastByRole(history []*domain.ChatMessage, role domain.Role, window int) []*domain.ChatMessage {
	var out []*domain.ChatMessage
	for _, msg := range tail(history, window) {
		if msg.Role == role {
			out = append(out, msg)
		}
	}
	return out
}

func tail(history []*domain.ChatMessage, n int) []*domain.ChatMessage {
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
