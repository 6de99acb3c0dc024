// Package firestore persists sessions, messages and reports in Cloud
// Firestore. Messages live in a subcollection under their session document
// and reports are keyed by session ID.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/salesmind/engine/internal/domain"
)

type Store struct {
	client *firestore.Client
}

func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) messagesCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(sessionID).Collection("messages")
}

func (s *Store) reportDoc(sessionID domain.SessionID) *firestore.DocumentRef {
	return s.client.Collection("reports").Doc(string(sessionID))
}

type sessionDoc struct {
	UserID           string `firestore:"user_id"`
	Mode             string `firestore:"mode"`
	Industry         string `firestore:"industry"`
	ValueProposition string `firestore:"value_proposition"`
	CustomerPersona  string `firestore:"customer_persona"`
	CustomerPain     string `firestore:"customer_pain"`
	CompanyInfo      string `firestore:"company_info"`

	SuccessProbability int    `firestore:"success_probability"`
	LastAnalysisReason string `firestore:"last_analysis_reason"`
	CurrentSpinStage   string `firestore:"current_spin_stage"`
	ConversationPhase  string `firestore:"conversation_phase"`
	LossReason         string `firestore:"loss_reason"`

	Status     string     `firestore:"status"`
	CreatedAt  time.Time  `firestore:"created_at"`
	UpdatedAt  time.Time  `firestore:"updated_at"`
	FinishedAt *time.Time `firestore:"finished_at"`
}

type temperatureDoc struct {
	Sentiment        float64 `firestore:"sentiment"`
	SentimentScore   float64 `firestore:"sentiment_score"`
	BuyingSignal     float64 `firestore:"buying_signal"`
	CognitiveLoad    float64 `firestore:"cognitive_load"`
	Engagement       float64 `firestore:"engagement"`
	QuestionScore    float64 `firestore:"question_score"`
	PositiveResponse float64 `firestore:"positive_response"`
	SpinPenalty      float64 `firestore:"spin_penalty"`
	ClosingBonus     float64 `firestore:"closing_bonus"`
	Temperature      float64 `firestore:"temperature"`
}

type messageDoc struct {
	SessionID string `firestore:"session_id"`
	Role      string `firestore:"role"`
	Text      string `firestore:"text"`
	Sequence  int    `firestore:"sequence"`

	SuccessDelta    *int   `firestore:"success_delta"`
	SpinStage       string `firestore:"spin_stage"`
	StageEvaluation string `firestore:"stage_evaluation"`
	AnalysisSummary string `firestore:"analysis_summary"`
	SystemNotes     string `firestore:"system_notes"`

	Temperature *temperatureDoc `firestore:"temperature"`

	CreatedAt time.Time `firestore:"created_at"`
}

type dimensionDetailDoc struct {
	Score      int      `firestore:"score"`
	Comments   string   `firestore:"comments"`
	Strengths  []string `firestore:"strengths"`
	Weaknesses []string `firestore:"weaknesses"`
}

type reportDoc struct {
	SessionID string `firestore:"session_id"`

	Exploration      int `firestore:"exploration"`
	Implication      int `firestore:"implication"`
	ValueProposition int `firestore:"value_proposition"`
	CustomerResponse int `firestore:"customer_response"`
	Advancement      int `firestore:"advancement"`
	Total            int `firestore:"total"`

	Situation         int `firestore:"situation"`
	Problem           int `firestore:"problem"`
	ImplicationLegacy int `firestore:"implication_legacy"`
	Need              int `firestore:"need"`

	Feedback    string                        `firestore:"feedback"`
	NextActions string                        `firestore:"next_actions"`
	Details     map[string]dimensionDetailDoc `firestore:"details"`

	CreatedAt time.Time `firestore:"created_at"`
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(session *domain.Session) error {
	ctx := context.Background()

	_, err := s.sessionDoc(session.ID).Create(ctx, toSessionDoc(session))
	if err != nil {
		return fmt.Errorf("firestore CreateSession: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(session *domain.Session) error {
	ctx := context.Background()

	_, err := s.sessionDoc(session.ID).Set(ctx, toSessionDoc(session))
	if err != nil {
		return fmt.Errorf("firestore UpdateSession: %w", err)
	}
	return nil
}

func (s *Store) GetSession(id domain.SessionID) (*domain.Session, error) {
	ctx := context.Background()

	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}

	return fromSessionDoc(id, doc), nil
}

func (s *Store) ListSessionsByUser(userID domain.UserID, limit int) ([]*domain.Session, error) {
	ctx := context.Background()

	q := s.sessionsCol().Where("user_id", "==", string(userID)).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Session
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListSessionsByUser: %w", err)
		}

		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode sessionDoc: %w", err)
		}

		out = append(out, fromSessionDoc(domain.SessionID(snap.Ref.ID), doc))
	}
	return out, nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(msg *domain.ChatMessage) error {
	ctx := context.Background()

	doc := messageDoc{
		SessionID:       string(msg.SessionID),
		Role:            string(msg.Role),
		Text:            msg.Text,
		Sequence:        msg.Sequence,
		SuccessDelta:    msg.SuccessDelta,
		SpinStage:       string(msg.SpinStage),
		StageEvaluation: string(msg.StageEvaluation),
		AnalysisSummary: msg.AnalysisSummary,
		SystemNotes:     msg.SystemNotes,
		CreatedAt:       msg.CreatedAt,
	}
	if msg.Temperature != nil {
		t := temperatureDoc(*msg.Temperature)
		doc.Temperature = &t
	}

	_, err := s.messagesCol(msg.SessionID).Doc(string(msg.ID)).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) GetMessagesBySession(sessionID domain.SessionID, limit int) ([]*domain.ChatMessage, error) {
	ctx := context.Background()

	q := s.messagesCol(sessionID).OrderBy("sequence", firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.ChatMessage
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore GetMessagesBySession: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}

		msg := &domain.ChatMessage{
			ID:              domain.MessageID(snap.Ref.ID),
			SessionID:       sessionID,
			Role:            domain.Role(doc.Role),
			Text:            doc.Text,
			Sequence:        doc.Sequence,
			SuccessDelta:    doc.SuccessDelta,
			SpinStage:       domain.SpinStage(doc.SpinStage),
			StageEvaluation: domain.StageEvaluation(doc.StageEvaluation),
			AnalysisSummary: doc.AnalysisSummary,
			SystemNotes:     doc.SystemNotes,
			CreatedAt:       doc.CreatedAt,
		}
		if doc.Temperature != nil {
			t := domain.TemperatureBreakdown(*doc.Temperature)
			msg.Temperature = &t
		}
		out = append(out, msg)
	}
	return out, nil
}

// ─────────────────────────────────────────
// ReportStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateReport(report *domain.Report) error {
	ctx := context.Background()

	doc := reportDoc{
		SessionID:         string(report.SessionID),
		Exploration:       report.Scores.Exploration,
		Implication:       report.Scores.Implication,
		ValueProposition:  report.Scores.ValueProposition,
		CustomerResponse:  report.Scores.CustomerResponse,
		Advancement:       report.Scores.Advancement,
		Total:             report.Scores.Total,
		Situation:         report.Scores.Situation,
		Problem:           report.Scores.Problem,
		ImplicationLegacy: report.Scores.ImplicationLegacy,
		Need:              report.Scores.Need,
		Feedback:          report.Feedback,
		NextActions:       report.NextActions,
		CreatedAt:         report.CreatedAt,
	}
	if len(report.Details) > 0 {
		doc.Details = make(map[string]dimensionDetailDoc, len(report.Details))
		for name, d := range report.Details {
			doc.Details[name] = dimensionDetailDoc(d)
		}
	}

	_, err := s.reportDoc(report.SessionID).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return domain.ErrReportExists
		}
		return fmt.Errorf("firestore CreateReport: %w", err)
	}
	return nil
}

func (s *Store) GetReportBySession(sessionID domain.SessionID) (*domain.Report, error) {
	ctx := context.Background()

	snap, err := s.reportDoc(sessionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("firestore GetReportBySession: %w", err)
	}

	var doc reportDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetReportBySession decode: %w", err)
	}

	report := &domain.Report{
		ID:        domain.ReportID(snap.Ref.ID),
		SessionID: sessionID,
		Scores: domain.RubricScores{
			Exploration:       doc.Exploration,
			Implication:       doc.Implication,
			ValueProposition:  doc.ValueProposition,
			CustomerResponse:  doc.CustomerResponse,
			Advancement:       doc.Advancement,
			Total:             doc.Total,
			Situation:         doc.Situation,
			Problem:           doc.Problem,
			ImplicationLegacy: doc.ImplicationLegacy,
			Need:              doc.Need,
		},
		Feedback:    doc.Feedback,
		NextActions: doc.NextActions,
		CreatedAt:   doc.CreatedAt,
	}
	if len(doc.Details) > 0 {
		report.Details = make(map[string]domain.DimensionDetail, len(doc.Details))
		for name, d := range doc.Details {
			report.Details[name] = domain.DimensionDetail(d)
		}
	}
	return report, nil
}

func toSessionDoc(session *domain.Session) sessionDoc {
	return sessionDoc{
		UserID:             string(session.UserID),
		Mode:               string(session.Mode),
		Industry:           session.Industry,
		ValueProposition:   session.ValueProposition,
		CustomerPersona:    session.CustomerPersona,
		CustomerPain:       session.CustomerPain,
		CompanyInfo:        session.CompanyInfo,
		SuccessProbability: session.SuccessProbability,
		LastAnalysisReason: session.LastAnalysisReason,
		CurrentSpinStage:   string(session.CurrentSpinStage),
		ConversationPhase:  string(session.ConversationPhase),
		LossReason:         string(session.LossReason),
		Status:             string(session.Status),
		CreatedAt:          session.CreatedAt,
		UpdatedAt:          session.UpdatedAt,
		FinishedAt:         session.FinishedAt,
	}
}

func fromSessionDoc(id domain.SessionID, doc sessionDoc) *domain.Session {
	return &domain.Session{
		ID:                 id,
		UserID:             domain.UserID(doc.UserID),
		Mode:               domain.Mode(doc.Mode),
		Industry:           doc.Industry,
		ValueProposition:   doc.ValueProposition,
		CustomerPersona:    doc.CustomerPersona,
		CustomerPain:       doc.CustomerPain,
		CompanyInfo:        doc.CompanyInfo,
		SuccessProbability: doc.SuccessProbability,
		LastAnalysisReason: doc.LastAnalysisReason,
		CurrentSpinStage:   domain.SpinStage(doc.CurrentSpinStage),
		ConversationPhase:  domain.ConversationPhase(doc.ConversationPhase),
		LossReason:         domain.LossReason(doc.LossReason),
		Status:             domain.Status(doc.Status),
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
		FinishedAt:         doc.FinishedAt,
	}
}
