package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/salesmind/engine/internal/domain"
)

// Mock implements all four collaborator ports with deterministic local
// rules, for development without GCP credentials and for handler tests.
type Mock struct{}

func NewMock() *Mock {
	return &Mock{}
}

// JudgeSalesMessage tags the message by simple keyword rules so a local
// conversation still walks the S->P->I->N ladder.
func (m *Mock) JudgeSalesMessage(ctx context.Context, in domain.JudgmentContext) (domain.Judgment, error) {
	stage := domain.StageSituation
	delta := 1
	switch {
	case strings.Contains(in.LatestMessage, "課題") || strings.Contains(in.LatestMessage, "お困り"):
		stage = domain.StageProblem
		delta = 2
	case strings.Contains(in.LatestMessage, "影響") || strings.Contains(in.LatestMessage, "リスク"):
		stage = domain.StageImplication
		delta = 3
	case strings.Contains(in.LatestMessage, "解決") || strings.Contains(in.LatestMessage, "メリット"):
		stage = domain.StageNeedPayoff
		delta = 3
	}

	return domain.Judgment{
		CurrentSpinStage:    stage,
		MessageSpinType:     stage,
		StepAppropriateness: domain.StepAppropriate,
		SuccessDelta:        delta,
		Reason:              fmt.Sprintf("%sに関する質問として評価しました。", stage.Label()),
	}, nil
}

func (m *Mock) GenerateCustomerReply(ctx context.Context, in domain.CustomerContext) (string, error) {
	persona := in.Session.CustomerPersona
	if persona == "" {
		persona = "当社"
	}
	return fmt.Sprintf("なるほど、承知しました。%sとしては、まず現状を整理してからお答えしたいと思います。もう少し詳しく教えていただけますか。", persona), nil
}

func (m *Mock) ScoreConversation(ctx context.Context, session *domain.Session, history []*domain.ChatMessage) (domain.RubricResult, error) {
	return domain.RubricResult{
		Exploration:      12,
		Implication:      10,
		ValueProposition: 11,
		CustomerResponse: 13,
		Advancement:      9,
		Feedback:         "課題の深掘りは一定の水準にありますが、影響の引き出しと商談前進度に改善の余地があります。",
		NextActions:      "次回は課題放置のリスクを具体的な数字で示し、デモの提案まで進めてください。",
	}, nil
}

func (m *Mock) AnalyzeSentiment(ctx context.Context, message string) (float64, error) {
	switch {
	case strings.Contains(message, "ありがとう") || strings.Contains(message, "ぜひ"):
		return 0.6, nil
	case strings.Contains(message, "難しい") || strings.Contains(message, "見送り"):
		return -0.5, nil
	}
	return 0.1, nil
}
