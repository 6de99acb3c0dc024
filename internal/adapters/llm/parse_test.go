package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesmind/engine/internal/domain"
)

func TestParseJudgmentNormalizesEnums(t *testing.T) {
	raw := `{
		"current_spin_stage": "situation",
		"message_spin_type": "P",
		"step_appropriateness": "Ideal",
		"success_delta": 3,
		"reason": "課題を自然に引き出せています。",
		"notes": ""
	}`

	j, err := parseJudgment(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.StageSituation, j.CurrentSpinStage)
	assert.Equal(t, domain.StageProblem, j.MessageSpinType)
	assert.Equal(t, domain.StepIdeal, j.StepAppropriateness)
	assert.Equal(t, 3, j.SuccessDelta)
}

func TestParseJudgmentUnknownFallbacks(t *testing.T) {
	raw := `{"current_spin_stage": "X", "message_spin_type": "", "step_appropriateness": "great", "success_delta": 9}`

	j, err := parseJudgment(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.StageUnknown, j.CurrentSpinStage)
	assert.Equal(t, domain.StageUnknown, j.MessageSpinType)
	assert.Equal(t, domain.StepUnknown, j.StepAppropriateness)
	// Out-of-range deltas are clamped, never rejected.
	assert.Equal(t, 5, j.SuccessDelta)
}

func TestParseJudgmentStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"message_spin_type\": \"N\", \"success_delta\": -7}\n```"

	j, err := parseJudgment(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.StageNeedPayoff, j.MessageSpinType)
	assert.Equal(t, -5, j.SuccessDelta)
}

func TestParseJudgmentRejectsInvalidJSON(t *testing.T) {
	_, err := parseJudgment("すみません、JSONでは返せません。")
	assert.Error(t, err)
}

func TestParseRubric(t *testing.T) {
	raw := `{
		"exploration": 14,
		"implication": 11,
		"value_proposition": 12,
		"customer_response": 15,
		"advancement": 9,
		"feedback": "課題の深掘りは良好です。",
		"next_actions": "次回はデモ提案まで進めてください。",
		"scoring_details": {
			"exploration": {
				"score": 14,
				"comments": "状況確認が具体的でした。",
				"strengths": ["企業情報の活用"],
				"weaknesses": ["深掘りの不足"]
			}
		}
	}`

	res, err := parseRubric(raw)
	require.NoError(t, err)

	assert.Equal(t, 14, res.Exploration)
	assert.Equal(t, 9, res.Advancement)
	assert.Equal(t, "課題の深掘りは良好です。", res.Feedback)
	require.Contains(t, res.Details, "exploration")
	assert.Equal(t, []string{"企業情報の活用"}, res.Details["exploration"].Strengths)
	assert.Nil(t, res.Situation)
}

func TestParseRubricLegacyFields(t *testing.T) {
	raw := `{"exploration": 10, "situation": 6, "problem": 4, "need": 12}`

	res, err := parseRubric(raw)
	require.NoError(t, err)

	require.NotNil(t, res.Situation)
	assert.Equal(t, 6, *res.Situation)
	require.NotNil(t, res.Need)
	assert.Equal(t, 12, *res.Need)
}

func TestParseSentimentClamps(t *testing.T) {
	for raw, want := range map[string]float64{
		`{"sentiment": 0.4}`:  0.4,
		`{"sentiment": 1.8}`:  1,
		`{"sentiment": -3.0}`: -1,
	} {
		got, err := parseSentiment(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}
