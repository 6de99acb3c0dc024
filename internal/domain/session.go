package domain

// Session represents one training negotiation between a trainee (the
// salesperson) and the AI-played customer.
type Session struct {
	ID     SessionID
	UserID UserID

	Mode             Mode
	Industry         string
	ValueProposition string
	CustomerPersona  string
	CustomerPain     string
	CompanyInfo      string // optional free-text company profile (detailed mode)

	// Engine-owned progress state. Judgments move these only in detailed
	// mode; simple sessions keep the initial values until the long-session
	// branch forces a phase.
	SuccessProbability int
	LastAnalysisReason string
	CurrentSpinStage   SpinStage
	ConversationPhase  ConversationPhase
	LossReason         LossReason // empty until a loss candidate is flagged

	Status     Status
	CreatedAt  Timestamp
	UpdatedAt  Timestamp
	FinishedAt *Timestamp
}

// TemperatureBreakdown is the component decomposition of one customer
// temperature score.
type TemperatureBreakdown struct {
	Sentiment        float64 `json:"sentiment"`
	SentimentScore   float64 `json:"sentiment_score"`
	BuyingSignal     float64 `json:"buying_signal"`
	CognitiveLoad    float64 `json:"cognitive_load"`
	Engagement       float64 `json:"engagement"`
	QuestionScore    float64 `json:"question_score"`
	PositiveResponse float64 `json:"positive_response"`
	SpinPenalty      float64 `json:"spin_penalty"`
	ClosingBonus     float64 `json:"closing_bonus"`
	Temperature      float64 `json:"temperature"`
}

// ChatMessage is one turn half. Two are created per round-trip, salesperson
// first, and a message is never mutated once appended.
type ChatMessage struct {
	ID        MessageID
	SessionID SessionID
	Role      Role
	Text      string
	Sequence  int

	// Salesperson messages only.
	SuccessDelta    *int
	SpinStage       SpinStage // empty when untagged
	StageEvaluation StageEvaluation
	AnalysisSummary string
	SystemNotes     string

	// Customer messages only.
	Temperature *TemperatureBreakdown

	CreatedAt Timestamp
}
