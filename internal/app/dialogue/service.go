// Package dialogue drives one training negotiation turn by turn: it
// sequences the judgment, damping, phase transition, customer reply and
// temperature scoring against each incoming salesperson message, and owns
// all session mutation while it does so.
package dialogue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salesmind/engine/internal/app/closing"
	"github.com/salesmind/engine/internal/app/progress"
	"github.com/salesmind/engine/internal/app/scoring"
	"github.com/salesmind/engine/internal/app/temperature"
	"github.com/salesmind/engine/internal/domain"
	"github.com/salesmind/engine/internal/observability"
)

// judgmentWindow caps how much history the judgment collaborator sees.
const judgmentWindow = 10

// Deps are the collaborators and stores the service is wired with.
type Deps struct {
	Sessions  domain.SessionStore
	Messages  domain.MessageStore
	Reports   domain.ReportStore
	Judge     domain.JudgmentClient
	Customer  domain.CustomerClient
	Rubric    domain.RubricClient
	Sentiment domain.SentimentClient

	// Optional: default keyword tables and a time-seeded random picker are
	// used when nil.
	Scorer *temperature.Scorer
	Picker closing.Picker
}

type Service struct {
	sessions  domain.SessionStore
	messages  domain.MessageStore
	reports   domain.ReportStore
	judge     domain.JudgmentClient
	customer  domain.CustomerClient
	rubric    domain.RubricClient
	sentiment domain.SentimentClient

	scorer  *temperature.Scorer
	picker  closing.Picker
	machine progress.Machine
	now     func() time.Time

	// Per-session turn serialization: a chat turn and a finish on the same
	// session never interleave.
	mu    sync.Mutex
	locks map[domain.SessionID]*sync.Mutex
}

func NewService(d Deps) *Service {
	scorer := d.Scorer
	if scorer == nil {
		scorer = temperature.NewScorer(temperature.DefaultTables())
	}
	picker := d.Picker
	if picker == nil {
		picker = closing.NewRandomPicker(time.Now().UnixNano())
	}

	return &Service{
		sessions:  d.Sessions,
		messages:  d.Messages,
		reports:   d.Reports,
		judge:     d.Judge,
		customer:  d.Customer,
		rubric:    d.Rubric,
		sentiment: d.Sentiment,
		scorer:    scorer,
		picker:    picker,
		machine: progress.Machine{
			CheckLoss:    closing.CheckLossCandidate,
			ClosingReady: closing.Ready,
		},
		now:   time.Now,
		locks: make(map[domain.SessionID]*sync.Mutex),
	}
}

func (s *Service) lockFor(id domain.SessionID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

type StartSessionInput struct {
	UserID           domain.UserID
	Mode             domain.Mode
	Industry         string
	ValueProposition string
	CustomerPersona  string
	CustomerPain     string
	CompanyInfo      string
}

type StartSessionOutput struct {
	Session *domain.Session
}

// StartSession creates an active session at 50% success probability,
// Situation stage and the SPIN_S phase.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	now := s.now()

	log := observability.LoggerFromContext(ctx).With(
		"user_id", in.UserID,
		"mode", in.Mode,
	)

	mode := in.Mode
	if mode != domain.ModeDetailed {
		mode = domain.ModeSimple
	}

	session := &domain.Session{
		ID:                 domain.SessionID(newID()),
		UserID:             in.UserID,
		Mode:               mode,
		Industry:           in.Industry,
		ValueProposition:   in.ValueProposition,
		CustomerPersona:    in.CustomerPersona,
		CustomerPain:       in.CustomerPain,
		CompanyInfo:        in.CompanyInfo,
		SuccessProbability: 50,
		CurrentSpinStage:   domain.StageSituation,
		ConversationPhase:  domain.PhaseSpinS,
		Status:             domain.StatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.sessions.CreateSession(session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	log.Info("session started", "session_id", session.ID)

	return &StartSessionOutput{Session: session}, nil
}

type SendMessageInput struct {
	SessionID domain.SessionID
	Text      string
}

type SendMessageOutput struct {
	Session            *domain.Session
	SalespersonMessage *domain.ChatMessage
	CustomerMessage    *domain.ChatMessage
	Temperature        domain.TemperatureBreakdown

	// Detailed mode only.
	Judged          bool
	SuccessDelta    int
	StageEvaluation domain.StageEvaluation
	Judgment        domain.Judgment

	ClosingProposal  *closing.Proposal
	LossResponse     *closing.LossResponse
	ShouldEndSession bool
}

// SendMessage runs one full turn: append the salesperson message, judge it,
// damp the delta, transition the phase, generate the customer reply and
// score its temperature. A failed judgment call degrades to a no-op event
// and never blocks the turn; a failed customer call fails the turn.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	lock := s.lockFor(in.SessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.GetSession(in.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.StatusActive {
		if session.Status == domain.StatusFinished {
			return nil, domain.ErrSessionFinished
		}
		return nil, domain.ErrSessionNotActive
	}

	ctx = observability.WithSessionID(ctx, string(session.ID))
	log := observability.LoggerFromContext(ctx).With("mode", session.Mode)

	history, err := s.messages.GetMessagesBySession(session.ID, 0)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, err
	}

	// Sending the same message twice in a row would loop the roleplay.
	if last := lastSalespersonMessage(history); last != nil &&
		strings.TrimSpace(last.Text) == strings.TrimSpace(in.Text) {
		return nil, domain.ErrDuplicateMessage
	}

	salesMsg := &domain.ChatMessage{
		ID:        domain.MessageID(newID()),
		SessionID: session.ID,
		Role:      domain.RoleSalesperson,
		Text:      in.Text,
		Sequence:  len(history) + 1,
		CreatedAt: s.now(),
	}

	style := closing.DetectStyle(in.Text)

	var (
		judged   bool
		degraded bool
		judgment domain.Judgment
		damp     progress.DampResult
	)
	if session.Mode == domain.ModeDetailed {
		judged = true
		judgment, degraded = s.judgeMessage(ctx, session, history, in.Text)
		damp = progress.DampDelta(judgment.SuccessDelta, judgment.MessageSpinType, session.CurrentSpinStage)

		delta := damp.AdjustedDelta
		salesMsg.SuccessDelta = &delta
		if _, known := domain.StageOrder(judgment.MessageSpinType); known {
			salesMsg.SpinStage = judgment.MessageSpinType
		}
		salesMsg.StageEvaluation = damp.Evaluation
		salesMsg.SystemNotes = damp.Evaluation.Note()
		salesMsg.AnalysisSummary = analysisSummary(judgment, damp)
	}

	if err := s.messages.AppendMessage(salesMsg); err != nil {
		log.Error("failed to append salesperson message", "error", err)
		return nil, err
	}
	history = append(history, salesMsg)

	// Phase transition. Simple mode and turns whose judgment call degraded
	// carry no event and no detectors, which leaves only the long-session
	// escape hatch active: the phase never moves on a turn that was not
	// actually judged.
	st := progress.StateOf(session)
	if judged && !degraded {
		st = s.machine.Transition(st, progress.TurnEvent{
			MessageStage:  judgment.MessageSpinType,
			Evaluation:    damp.Evaluation,
			AdjustedDelta: damp.AdjustedDelta,
		}, history)
		session.LastAnalysisReason = salesMsg.AnalysisSummary
	} else {
		st = progress.Machine{}.Transition(st, progress.TurnEvent{
			MessageStage: domain.StageUnknown,
			Evaluation:   domain.EvalUnknown,
		}, history)
	}
	st.ApplyTo(session)

	customerText, err := s.customer.GenerateCustomerReply(ctx, domain.CustomerContext{
		Session: session,
		History: history,
	})
	if err != nil {
		log.Error("customer reply generation failed", "error", err)
		return nil, &domain.CollaboratorError{Collaborator: "customer", SessionID: session.ID, Err: err}
	}

	sentiment := 0.0
	if s.sentiment != nil {
		if v, err := s.sentiment.AnalyzeSentiment(ctx, customerText); err != nil {
			log.Warn("sentiment analysis failed, defaulting to neutral", "error", err)
		} else {
			sentiment = v
		}
	}

	var orderPenalty float64
	if damp.OrderViolation() {
		orderPenalty = float64(damp.AdjustedDelta)
	}
	breakdown := s.scorer.Score(customerText, sentiment, orderPenalty, style)

	custMsg := &domain.ChatMessage{
		ID:          domain.MessageID(newID()),
		SessionID:   session.ID,
		Role:        domain.RoleCustomer,
		Text:        customerText,
		Sequence:    salesMsg.Sequence + 1,
		Temperature: &breakdown,
		CreatedAt:   s.now(),
	}
	if err := s.messages.AppendMessage(custMsg); err != nil {
		log.Error("failed to append customer message", "error", err)
		return nil, err
	}
	history = append(history, custMsg)

	// Loss confirmation looks at the customer's latest reactions, so it
	// runs after the reply is in.
	var (
		lossResp  *closing.LossResponse
		proposal  *closing.Proposal
		shouldEnd bool
	)
	if closing.CheckLossConfirmed(progress.StateOf(session), history) &&
		session.ConversationPhase == domain.PhaseLossCandidate {
		session.ConversationPhase = domain.PhaseLossConfirmed
		reason := session.LossReason
		if reason == "" {
			reason = domain.LossNoUrgency
		}
		lr := closing.LossReply(s.picker, reason)
		lossResp = &lr
		shouldEnd = true
		log.Info("loss confirmed", "reason", reason)
	}
	if session.ConversationPhase == domain.PhaseClosingReady && lossResp == nil {
		p := closing.Propose(s.picker)
		proposal = &p
		log.Info("closing proposal generated", "action_type", p.ActionType)
	}

	session.UpdatedAt = s.now()
	if err := s.sessions.UpdateSession(session); err != nil {
		log.Error("failed to update session", "error", err)
		return nil, err
	}

	log.Info("turn completed",
		"sequence", custMsg.Sequence,
		"phase", session.ConversationPhase,
		"success_probability", session.SuccessProbability,
		"temperature", breakdown.Temperature,
	)

	return &SendMessageOutput{
		Session:            session,
		SalespersonMessage: salesMsg,
		CustomerMessage:    custMsg,
		Temperature:        breakdown,
		Judged:             judged,
		SuccessDelta:       damp.AdjustedDelta,
		StageEvaluation:    damp.Evaluation,
		Judgment:           judgment,
		ClosingProposal:    proposal,
		LossResponse:       lossResp,
		ShouldEndSession:   shouldEnd,
	}, nil
}

// judgeMessage calls the judgment collaborator. On failure it degrades to a
// neutral no-op judgment and reports degraded=true so the caller skips the
// detectors for this turn, leaving probability and phase untouched.
func (s *Service) judgeMessage(ctx context.Context, session *domain.Session, history []*domain.ChatMessage, text string) (judgment domain.Judgment, degraded bool) {
	judgment, err := s.judge.JudgeSalesMessage(ctx, domain.JudgmentContext{
		Industry:           session.Industry,
		ValueProposition:   session.ValueProposition,
		CustomerPersona:    session.CustomerPersona,
		CompanyInfo:        session.CompanyInfo,
		SuccessProbability: session.SuccessProbability,
		History:            tail(history, judgmentWindow),
		LatestMessage:      text,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("judgment call failed, keeping state unchanged", "error", err)
		return domain.Judgment{
			CurrentSpinStage:    domain.StageUnknown,
			MessageSpinType:     domain.StageUnknown,
			StepAppropriateness: domain.StepUnknown,
			SuccessDelta:        0,
			Reason:              "分析を実行できなかったため成功率は変化しませんでした。",
		}, true
	}
	return judgment, false
}

type FinishSessionOutput struct {
	Session *domain.Session
	Report  *domain.Report
}

// FinishSession scores the whole conversation and closes the session.
// Finishing an empty or already-finished session is an error and leaves no
// partial state behind.
func (s *Service) FinishSession(ctx context.Context, sessionID domain.SessionID) (*FinishSessionOutput, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == domain.StatusFinished {
		return nil, domain.ErrSessionFinished
	}

	ctx = observability.WithSessionID(ctx, string(session.ID))
	log := observability.LoggerFromContext(ctx)

	history, err := s.messages.GetMessagesBySession(sessionID, 0)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, domain.ErrNoConversationHistory
	}

	result, err := s.rubric.ScoreConversation(ctx, session, history)
	if err != nil {
		log.Error("rubric scoring failed", "error", err)
		return nil, &domain.CollaboratorError{Collaborator: "rubric", SessionID: session.ID, Err: err}
	}

	now := s.now()
	report := &domain.Report{
		ID:          domain.ReportID(newID()),
		SessionID:   session.ID,
		Scores:      scoring.Aggregate(result),
		Feedback:    result.Feedback,
		NextActions: result.NextActions,
		Details:     result.Details,
		CreatedAt:   now,
	}

	if err := s.reports.CreateReport(report); err != nil {
		return nil, err
	}

	session.Status = domain.StatusFinished
	finishedAt := now
	session.FinishedAt = &finishedAt
	session.UpdatedAt = now
	if err := s.sessions.UpdateSession(session); err != nil {
		return nil, fmt.Errorf("finishing session %s: %w", session.ID, err)
	}

	log.Info("session finished", "total_score", report.Scores.Total)

	return &FinishSessionOutput{Session: session, Report: report}, nil
}

// GetSessionTimeline returns a session with its ordered messages.
func (s *Service) GetSessionTimeline(ctx context.Context, sessionID domain.SessionID, limit int) (*domain.Session, []*domain.ChatMessage, error) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		return nil, nil, err
	}

	msgs, err := s.messages.GetMessagesBySession(sessionID, limit)
	if err != nil {
		return nil, nil, err
	}

	return session, msgs, nil
}

// ListSessions returns the user's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Session, error) {
	return s.sessions.ListSessionsByUser(userID, limit)
}

// GetReport returns the report of a finished session.
func (s *Service) GetReport(ctx context.Context, sessionID domain.SessionID) (*domain.Report, error) {
	return s.reports.GetReportBySession(sessionID)
}

func analysisSummary(j domain.Judgment, d progress.DampResult) string {
	var lines []string

	stageName := j.MessageSpinType.Label()
	note := d.Evaluation.Note()
	if j.Reason != "" {
		lines = append(lines, fmt.Sprintf("%s / システム判定: %s・%s", j.Reason, stageName, note))
	} else {
		lines = append(lines, fmt.Sprintf("システム判定: %s・%s", stageName, note))
	}
	if j.StepAppropriateness != "" {
		lines = append(lines, fmt.Sprintf("ステップ適切性: %s", j.StepAppropriateness))
	}
	if _, known := domain.StageOrder(j.MessageSpinType); known {
		lines = append(lines, fmt.Sprintf("今回の発言: %s", j.MessageSpinType))
	}
	lines = append(lines, fmt.Sprintf("段階評価: %s", d.Evaluation))

	return strings.Join(lines, "\n")
}

func lastSalespersonMessage(history []*domain.ChatMessage) *domain.ChatMessage {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleSalesperson {
			return history[i]
		}
	}
	return nil
}

func tail(history []*domain.ChatMessage, n int) []*domain.ChatMessage {
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}

func newID() string {
	return uuid.NewString()
}
