package dialogue_test

import (
	"context"
	"errors"
	"testing"

	"github.com/salesmind/engine/internal/adapters/llm"
	"github.com/salesmind/engine/internal/adapters/storage/memory"
	"github.com/salesmind/engine/internal/app/dialogue"
	"github.com/salesmind/engine/internal/domain"
)

func newTestService() *dialogue.Service {
	mock := llm.NewMock()
	return dialogue.NewService(dialogue.Deps{
		Sessions:  memory.NewSessionStore(),
		Messages:  memory.NewMessageStore(),
		Reports:   memory.NewReportStore(),
		Judge:     mock,
		Customer:  mock,
		Rubric:    mock,
		Sentiment: mock,
	})
}

func startDetailed(t *testing.T, svc *dialogue.Service) *domain.Session {
	t.Helper()

	out, err := svc.StartSession(context.Background(), dialogue.StartSessionInput{
		UserID:           "trainee-1",
		Mode:             domain.ModeDetailed,
		Industry:         "製造業",
		ValueProposition: "在庫管理SaaS",
		CustomerPersona:  "中堅メーカーの情報システム部長",
	})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	return out.Session
}

func TestStartSessionDefaults(t *testing.T) {
	svc := newTestService()
	session := startDetailed(t, svc)

	if session.ID == "" {
		t.Fatal("expected session id, got empty")
	}
	if session.Status != domain.StatusActive {
		t.Fatalf("expected active status, got %s", session.Status)
	}
	if session.SuccessProbability != 50 {
		t.Fatalf("expected initial probability 50, got %d", session.SuccessProbability)
	}
	if session.CurrentSpinStage != domain.StageSituation {
		t.Fatalf("expected stage S, got %s", session.CurrentSpinStage)
	}
	if session.ConversationPhase != domain.PhaseSpinS {
		t.Fatalf("expected phase SPIN_S, got %s", session.ConversationPhase)
	}
}

func TestSendMessageDetailedTurn(t *testing.T) {
	svc := newTestService()
	session := startDetailed(t, svc)

	out, err := svc.SendMessage(context.Background(), dialogue.SendMessageInput{
		SessionID: session.ID,
		Text:      "現在どのようなお困りごと、課題がありますか？",
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if out.SalespersonMessage.Sequence != 1 || out.CustomerMessage.Sequence != 2 {
		t.Fatalf("unexpected sequences: %d, %d",
			out.SalespersonMessage.Sequence, out.CustomerMessage.Sequence)
	}
	if out.CustomerMessage.Text == "" {
		t.Fatal("expected non-empty customer reply")
	}
	if out.CustomerMessage.Temperature == nil {
		t.Fatal("expected temperature breakdown on customer message")
	}

	// Mock judgment tags the message Problem, which is a clean advance from
	// Situation: probability moves and the stage follows.
	if out.Session.SuccessProbability != 52 {
		t.Fatalf("expected probability 52, got %d", out.Session.SuccessProbability)
	}
	if out.Session.CurrentSpinStage != domain.StageProblem {
		t.Fatalf("expected stage P, got %s", out.Session.CurrentSpinStage)
	}
	if out.Session.ConversationPhase != domain.PhaseSpinP {
		t.Fatalf("expected phase SPIN_P, got %s", out.Session.ConversationPhase)
	}
	if out.SalespersonMessage.SuccessDelta == nil || *out.SalespersonMessage.SuccessDelta != 2 {
		t.Fatalf("expected stored delta 2, got %v", out.SalespersonMessage.SuccessDelta)
	}
}

func TestSendMessageSimpleModeSkipsJudgment(t *testing.T) {
	svc := newTestService()

	out, err := svc.StartSession(context.Background(), dialogue.StartSessionInput{
		UserID: "trainee-1",
		Mode:   domain.ModeSimple,
	})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	reply, err := svc.SendMessage(context.Background(), dialogue.SendMessageInput{
		SessionID: out.Session.ID,
		Text:      "御社の課題について教えてください",
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if reply.Judged {
		t.Fatal("simple mode must not run judgment")
	}
	if reply.SalespersonMessage.SuccessDelta != nil {
		t.Fatal("simple mode must not store a success delta")
	}
	if reply.CustomerMessage.Temperature == nil {
		t.Fatal("temperature must still be scored in simple mode")
	}
}

func TestSendMessageRejectsDuplicate(t *testing.T) {
	svc := newTestService()
	session := startDetailed(t, svc)

	in := dialogue.SendMessageInput{SessionID: session.ID, Text: "御社の状況を教えてください"}
	if _, err := svc.SendMessage(context.Background(), in); err != nil {
		t.Fatalf("first SendMessage failed: %v", err)
	}

	_, err := svc.SendMessage(context.Background(), in)
	if !errors.Is(err, domain.ErrDuplicateMessage) {
		t.Fatalf("expected ErrDuplicateMessage, got %v", err)
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	svc := newTestService()

	_, err := svc.SendMessage(context.Background(), dialogue.SendMessageInput{
		SessionID: "nope",
		Text:      "こんにちは",
	})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

type failingJudge struct{}

func (failingJudge) JudgeSalesMessage(ctx context.Context, in domain.JudgmentContext) (domain.Judgment, error) {
	return domain.Judgment{}, errors.New("model unavailable")
}

func TestSendMessageSurvivesJudgmentFailure(t *testing.T) {
	mock := llm.NewMock()
	svc := dialogue.NewService(dialogue.Deps{
		Sessions:  memory.NewSessionStore(),
		Messages:  memory.NewMessageStore(),
		Reports:   memory.NewReportStore(),
		Judge:     failingJudge{},
		Customer:  mock,
		Rubric:    mock,
		Sentiment: mock,
	})

	session := startDetailed(t, svc)

	out, err := svc.SendMessage(context.Background(), dialogue.SendMessageInput{
		SessionID: session.ID,
		Text:      "御社の状況を教えてください",
	})
	if err != nil {
		t.Fatalf("SendMessage must not fail on a judgment error: %v", err)
	}

	if out.Session.SuccessProbability != 50 {
		t.Fatalf("probability must stay at 50, got %d", out.Session.SuccessProbability)
	}
	if out.Session.CurrentSpinStage != domain.StageSituation {
		t.Fatalf("stage must stay at S, got %s", out.Session.CurrentSpinStage)
	}
}

func TestJudgmentFailureLeavesPhaseUnchanged(t *testing.T) {
	mock := llm.NewMock()
	svc := dialogue.NewService(dialogue.Deps{
		Sessions:  memory.NewSessionStore(),
		Messages:  memory.NewMessageStore(),
		Reports:   memory.NewReportStore(),
		Judge:     failingJudge{},
		Customer:  mock,
		Rubric:    mock,
		Sentiment: mock,
	})

	session := startDetailed(t, svc)

	// Enough turns that a long conversation stuck at the Situation stage
	// would trip the loss-candidate detector if it ran. Unjudged turns must
	// not move the phase.
	texts := []string{
		"御社の状況を教えてください",
		"現在の体制について伺えますか",
		"どのようなツールをお使いですか",
		"運用の流れを教えてください",
		"担当者は何名いらっしゃいますか",
		"導入時期はいつ頃をお考えですか",
	}
	var last *dialogue.SendMessageOutput
	for _, text := range texts {
		out, err := svc.SendMessage(context.Background(), dialogue.SendMessageInput{
			SessionID: session.ID,
			Text:      text,
		})
		if err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
		last = out
	}

	if last.Session.ConversationPhase != domain.PhaseSpinS {
		t.Fatalf("phase must stay SPIN_S on unjudged turns, got %s", last.Session.ConversationPhase)
	}
	if last.Session.CurrentSpinStage != domain.StageSituation {
		t.Fatalf("stage must stay at S, got %s", last.Session.CurrentSpinStage)
	}
}

type failingCustomer struct{}

func (failingCustomer) GenerateCustomerReply(ctx context.Context, in domain.CustomerContext) (string, error) {
	return "", errors.New("model unavailable")
}

func TestSendMessageFailsOnCustomerError(t *testing.T) {
	mock := llm.NewMock()
	svc := dialogue.NewService(dialogue.Deps{
		Sessions:  memory.NewSessionStore(),
		Messages:  memory.NewMessageStore(),
		Reports:   memory.NewReportStore(),
		Judge:     mock,
		Customer:  failingCustomer{},
		Rubric:    mock,
		Sentiment: mock,
	})

	session := startDetailed(t, svc)

	_, err := svc.SendMessage(context.Background(), dialogue.SendMessageInput{
		SessionID: session.ID,
		Text:      "御社の状況を教えてください",
	})

	var collab *domain.CollaboratorError
	if !errors.As(err, &collab) {
		t.Fatalf("expected CollaboratorError, got %v", err)
	}
	if collab.Collaborator != "customer" {
		t.Fatalf("expected customer collaborator, got %s", collab.Collaborator)
	}
}

func TestFinishSession(t *testing.T) {
	svc := newTestService()
	session := startDetailed(t, svc)

	if _, err := svc.SendMessage(context.Background(), dialogue.SendMessageInput{
		SessionID: session.ID,
		Text:      "御社の状況を教えてください",
	}); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	out, err := svc.FinishSession(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("FinishSession failed: %v", err)
	}

	// Mock rubric dimensions sum to 55.
	if out.Report.Scores.Total != 55 {
		t.Fatalf("expected total 55, got %d", out.Report.Scores.Total)
	}
	if out.Session.Status != domain.StatusFinished {
		t.Fatalf("expected finished status, got %s", out.Session.Status)
	}
	if out.Session.FinishedAt == nil {
		t.Fatal("expected FinishedAt to be set")
	}

	// Finishing twice is an error.
	if _, err := svc.FinishSession(context.Background(), session.ID); !errors.Is(err, domain.ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished, got %v", err)
	}

	// So is chatting with a finished session.
	if _, err := svc.SendMessage(context.Background(), dialogue.SendMessageInput{
		SessionID: session.ID,
		Text:      "もう一度",
	}); !errors.Is(err, domain.ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished, got %v", err)
	}

	report, err := svc.GetReport(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if report.SessionID != session.ID {
		t.Fatalf("report bound to wrong session: %s", report.SessionID)
	}
}

func TestFinishSessionWithoutHistory(t *testing.T) {
	svc := newTestService()
	session := startDetailed(t, svc)

	_, err := svc.FinishSession(context.Background(), session.ID)
	if !errors.Is(err, domain.ErrNoConversationHistory) {
		t.Fatalf("expected ErrNoConversationHistory, got %v", err)
	}
}

func TestListSessions(t *testing.T) {
	svc := newTestService()
	startDetailed(t, svc)
	startDetailed(t, svc)

	sessions, err := svc.ListSessions(context.Background(), "trainee-1", 0)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
}
