package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/salesmind/engine/internal/domain"
)

// Raw payload shapes as the model emits them. Every enum arrives as a free
// string and every number may be missing; normalization happens here so the
// rest of the engine only ever sees domain values.

type judgmentPayload struct {
	CurrentSpinStage    string `json:"current_spin_stage"`
	MessageSpinType     string `json:"message_spin_type"`
	StepAppropriateness string `json:"step_appropriateness"`
	SuccessDelta        int    `json:"success_delta"`
	Reason              string `json:"reason"`
	Notes               string `json:"notes"`
}

type rubricPayload struct {
	Exploration      int    `json:"exploration"`
	Implication      int    `json:"implication"`
	ValueProposition int    `json:"value_proposition"`
	CustomerResponse int    `json:"customer_response"`
	Advancement      int    `json:"advancement"`
	Feedback         string `json:"feedback"`
	NextActions      string `json:"next_actions"`
	Details          map[string]struct {
		Score      int      `json:"score"`
		Comments   string   `json:"comments"`
		Strengths  []string `json:"strengths"`
		Weaknesses []string `json:"weaknesses"`
	} `json:"scoring_details"`

	// Legacy SPIN-shaped scores some model variants still emit.
	Situation *int `json:"situation"`
	Problem   *int `json:"problem"`
	Need      *int `json:"need"`
}

type sentimentPayload struct {
	Sentiment float64 `json:"sentiment"`
}

func parseJudgment(raw string) (domain.Judgment, error) {
	var p judgmentPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &p); err != nil {
		return domain.Judgment{}, fmt.Errorf("decoding judgment payload: %w", err)
	}

	return domain.Judgment{
		CurrentSpinStage:    normalizeStage(p.CurrentSpinStage),
		MessageSpinType:     normalizeStage(p.MessageSpinType),
		StepAppropriateness: normalizeStep(p.StepAppropriateness),
		SuccessDelta:        clampDelta(p.SuccessDelta),
		Reason:              strings.TrimSpace(p.Reason),
		Notes:               strings.TrimSpace(p.Notes),
	}, nil
}

func parseRubric(raw string) (domain.RubricResult, error) {
	var p rubricPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &p); err != nil {
		return domain.RubricResult{}, fmt.Errorf("decoding rubric payload: %w", err)
	}

	res := domain.RubricResult{
		Exploration:      p.Exploration,
		Implication:      p.Implication,
		ValueProposition: p.ValueProposition,
		CustomerResponse: p.CustomerResponse,
		Advancement:      p.Advancement,
		Feedback:         strings.TrimSpace(p.Feedback),
		NextActions:      strings.TrimSpace(p.NextActions),
		Situation:        p.Situation,
		Problem:          p.Problem,
		Need:             p.Need,
	}

	if len(p.Details) > 0 {
		res.Details = make(map[string]domain.DimensionDetail, len(p.Details))
		for name, d := range p.Details {
			res.Details[name] = domain.DimensionDetail{
				Score:      d.Score,
				Comments:   strings.TrimSpace(d.Comments),
				Strengths:  d.Strengths,
				Weaknesses: d.Weaknesses,
			}
		}
	}

	return res, nil
}

func parseSentiment(raw string) (float64, error) {
	var p sentimentPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &p); err != nil {
		return 0, fmt.Errorf("decoding sentiment payload: %w", err)
	}

	if p.Sentiment < -1 {
		return -1, nil
	}
	if p.Sentiment > 1 {
		return 1, nil
	}
	return p.Sentiment, nil
}

// normalizeStage maps a free-form stage string onto the four SPIN stages.
// Anything else, including empty, is unknown.
func normalizeStage(s string) domain.SpinStage {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "S", "SITUATION":
		return domain.StageSituation
	case "P", "PROBLEM":
		return domain.StageProblem
	case "I", "IMPLICATION":
		return domain.StageImplication
	case "N", "NEED", "NEED_PAYOFF", "NEED-PAYOFF":
		return domain.StageNeedPayoff
	}
	return domain.StageUnknown
}

func normalizeStep(s string) domain.StepAppropriateness {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ideal":
		return domain.StepIdeal
	case "appropriate":
		return domain.StepAppropriate
	case "jump":
		return domain.StepJump
	case "regression":
		return domain.StepRegression
	}
	return domain.StepUnknown
}

func clampDelta(d int) int {
	if d < -5 {
		return -5
	}
	if d > 5 {
		return 5
	}
	return d
}

// stripFences removes a markdown code fence the model sometimes wraps JSON
// in, with or without a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
