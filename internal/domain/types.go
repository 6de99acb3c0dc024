package domain

import "time"

type SessionID string
type MessageID string
type ReportID string
type UserID string

type Role string

const (
	RoleSalesperson Role = "salesperson"
	RoleCustomer    Role = "customer"
)

// Mode selects how much of the progress engine runs for a session.
type Mode string

const (
	ModeSimple   Mode = "simple"   // chat + temperature only
	ModeDetailed Mode = "detailed" // full success-probability engine
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// SpinStage is one of the four SPIN questioning stages. StageUnknown marks
// an utterance the judgment collaborator could not classify.
type SpinStage string

const (
	StageSituation   SpinStage = "S"
	StageProblem     SpinStage = "P"
	StageImplication SpinStage = "I"
	StageNeedPayoff  SpinStage = "N"
	StageUnknown     SpinStage = "unknown"
)

// StageOrder returns the position of a stage in the fixed S < P < I < N
// order. The second return is false for StageUnknown.
func StageOrder(s SpinStage) (int, bool) {
	switch s {
	case StageSituation:
		return 0, true
	case StageProblem:
		return 1, true
	case StageImplication:
		return 2, true
	case StageNeedPayoff:
		return 3, true
	}
	return 0, false
}

// Label returns the Japanese display name of a stage.
func (s SpinStage) Label() string {
	switch s {
	case StageSituation:
		return "状況確認"
	case StageProblem:
		return "課題顕在化"
	case StageImplication:
		return "示唆"
	case StageNeedPayoff:
		return "解決メリット"
	}
	return "判定不能"
}

type ConversationPhase string

const (
	PhaseSpinS         ConversationPhase = "SPIN_S"
	PhaseSpinP         ConversationPhase = "SPIN_P"
	PhaseSpinI         ConversationPhase = "SPIN_I"
	PhaseSpinN         ConversationPhase = "SPIN_N"
	PhaseClosingReady  ConversationPhase = "CLOSING_READY"
	PhaseClosingAction ConversationPhase = "CLOSING_ACTION"
	PhaseLossCandidate ConversationPhase = "LOSS_CANDIDATE"
	PhaseLossConfirmed ConversationPhase = "LOSS_CONFIRMED"
)

// PhaseForStage maps a SPIN stage to its conversation phase.
func PhaseForStage(s SpinStage) (ConversationPhase, bool) {
	switch s {
	case StageSituation:
		return PhaseSpinS, true
	case StageProblem:
		return PhaseSpinP, true
	case StageImplication:
		return PhaseSpinI, true
	case StageNeedPayoff:
		return PhaseSpinN, true
	}
	return "", false
}

func (p ConversationPhase) IsSpin() bool {
	switch p {
	case PhaseSpinS, PhaseSpinP, PhaseSpinI, PhaseSpinN:
		return true
	}
	return false
}

func (p ConversationPhase) IsClosing() bool {
	return p == PhaseClosingReady || p == PhaseClosingAction
}

func (p ConversationPhase) IsLoss() bool {
	return p == PhaseLossCandidate || p == PhaseLossConfirmed
}

// LossReason is the fixed set of reasons a negotiation can be lost.
type LossReason string

const (
	LossBudgetIssue        LossReason = "BUDGET_ISSUE"
	LossNoUrgency          LossReason = "NO_URGENCY"
	LossNoAuthority        LossReason = "NO_DECISION_AUTHORITY"
	LossTimingIssue        LossReason = "TIMING_ISSUE"
	LossUsingCompetitor    LossReason = "ALREADY_USING_COMPETITOR"
	LossInternalConstraint LossReason = "INTERNAL_CONSTRAINT"
	LossFeatureMismatch    LossReason = "FEATURE_MISMATCH"
	LossInfoGatheringOnly  LossReason = "INFO_GATHERING_ONLY"
)

func (r LossReason) Label() string {
	switch r {
	case LossBudgetIssue:
		return "予算不足"
	case LossNoUrgency:
		return "導入の必要性が弱い"
	case LossNoAuthority:
		return "決裁者不在"
	case LossTimingIssue:
		return "導入時期が先"
	case LossUsingCompetitor:
		return "競合使用中"
	case LossInternalConstraint:
		return "社内体制が整っていない"
	case LossFeatureMismatch:
		return "必要な機能と合わない"
	case LossInfoGatheringOnly:
		return "情報収集目的のみ"
	}
	return "不明"
}

// StageEvaluation classifies one salesperson utterance against the
// session's current SPIN stage.
type StageEvaluation string

const (
	EvalAdvance    StageEvaluation = "advance"
	EvalRepeat     StageEvaluation = "repeat"
	EvalJump       StageEvaluation = "jump"
	EvalRegression StageEvaluation = "regression"
	EvalUnknown    StageEvaluation = "unknown"
)

// Note returns the Japanese system note for an evaluation.
func (e StageEvaluation) Note() string {
	switch e {
	case EvalAdvance:
		return "段階が前進しました"
	case EvalRepeat:
		return "同じ段階での深掘りです"
	case EvalJump:
		return "段階を飛び越えています"
	case EvalRegression:
		return "段階が逆戻りしています"
	}
	return "段階を判定できません"
}

// StepAppropriateness is the judgment collaborator's own view of how well
// the utterance fits the SPIN flow.
type StepAppropriateness string

const (
	StepIdeal       StepAppropriateness = "ideal"
	StepAppropriate StepAppropriateness = "appropriate"
	StepJump        StepAppropriateness = "jump"
	StepRegression  StepAppropriateness = "regression"
	StepUnknown     StepAppropriateness = "unknown"
)

// ClosingStyle tags how the salesperson tried to close in an utterance.
type ClosingStyle string

const (
	ClosingStyleNone        ClosingStyle = ""
	ClosingStyleOptionBased ClosingStyle = "option_based"
	ClosingStyleOneShotPush ClosingStyle = "one_shot_push"
)

// ClosingActionType is one of the four canned closing proposals.
type ClosingActionType string

const (
	ClosingEstimate   ClosingActionType = "見積"
	ClosingDemo       ClosingActionType = "デモ"
	ClosingMaterials  ClosingActionType = "資料"
	ClosingScheduling ClosingActionType = "日程調整"
)

type Timestamp = time.Time
