package domain

import "context"

// SessionStore defines session persistence.
type SessionStore interface {
	CreateSession(session *Session) error
	UpdateSession(session *Session) error
	GetSession(id SessionID) (*Session, error)
	ListSessionsByUser(userID UserID, limit int) ([]*Session, error)
}

// MessageStore defines message persistence. Messages are append-only and
// ordered by Sequence within a session.
type MessageStore interface {
	AppendMessage(msg *ChatMessage) error
	GetMessagesBySession(sessionID SessionID, limit int) ([]*ChatMessage, error)
}

// ReportStore defines report persistence. Exactly one report exists per
// finished session.
type ReportStore interface {
	CreateReport(report *Report) error
	GetReportBySession(sessionID SessionID) (*Report, error)
}

// Judgment is the normalized result of classifying one salesperson
// utterance. Enum fields are never raw collaborator strings; anything the
// parser does not recognize becomes the unknown variant.
type Judgment struct {
	CurrentSpinStage    SpinStage
	MessageSpinType     SpinStage
	StepAppropriateness StepAppropriateness
	SuccessDelta        int // clamped to [-5, 5]
	Reason              string
	Notes               string
}

// JudgmentContext is the input for judging one salesperson utterance.
type JudgmentContext struct {
	Industry           string
	ValueProposition   string
	CustomerPersona    string
	CompanyInfo        string
	SuccessProbability int
	History            []*ChatMessage // most recent turns, capped by the caller
	LatestMessage      string
}

// JudgmentClient classifies a salesperson utterance into a SPIN stage and
// proposes a raw success delta.
type JudgmentClient interface {
	JudgeSalesMessage(ctx context.Context, in JudgmentContext) (Judgment, error)
}

// CustomerContext is the input for producing the next customer utterance.
type CustomerContext struct {
	Session *Session
	History []*ChatMessage
}

// CustomerClient plays the customer: it produces the next customer message
// given the full history and persona context. The engine treats the result
// as opaque text.
type CustomerClient interface {
	GenerateCustomerReply(ctx context.Context, in CustomerContext) (string, error)
}

// RubricResult is the parsed output of the rubric collaborator. Missing
// numeric fields arrive as zero; legacy fields are nil when the collaborator
// did not supply them.
type RubricResult struct {
	Exploration      int
	Implication      int
	ValueProposition int
	CustomerResponse int
	Advancement      int
	Feedback         string
	NextActions      string
	Details          map[string]DimensionDetail

	Situation *int
	Problem   *int
	Need      *int
}

// RubricClient scores a finished session's conversation on the 5-dimension
// rubric.
type RubricClient interface {
	ScoreConversation(ctx context.Context, session *Session, history []*ChatMessage) (RubricResult, error)
}

// SentimentClient estimates the sentiment of a single customer utterance in
// [-1, 1]. Callers degrade to 0.0 when the call fails.
type SentimentClient interface {
	AnalyzeSentiment(ctx context.Context, message string) (float64, error)
}
