package progress

import "github.com/salesmind/engine/internal/domain"

// forceBranchAt is the total message count at which a session that has not
// reached a closing or loss phase is forced into one, so no session runs
// unbounded.
const forceBranchAt = 25

// lowProbability is the success-probability cutoff for the forced branch.
const lowProbability = 40

// State is the engine-owned slice of a session. Transition never mutates a
// Session directly; the orchestrator copies State in and out around it.
type State struct {
	Stage              domain.SpinStage
	Phase              domain.ConversationPhase
	SuccessProbability int
	LossReason         domain.LossReason
}

// StateOf extracts the engine state from a session.
func StateOf(s *domain.Session) State {
	return State{
		Stage:              s.CurrentSpinStage,
		Phase:              s.ConversationPhase,
		SuccessProbability: s.SuccessProbability,
		LossReason:         s.LossReason,
	}
}

// ApplyTo writes the engine state back onto a session.
func (st State) ApplyTo(s *domain.Session) {
	s.CurrentSpinStage = st.Stage
	s.ConversationPhase = st.Phase
	s.SuccessProbability = st.SuccessProbability
	s.LossReason = st.LossReason
}

// TurnEvent is one judged salesperson turn, after damping.
type TurnEvent struct {
	MessageStage  domain.SpinStage
	Evaluation    domain.StageEvaluation
	AdjustedDelta int
}

// Machine decides phase transitions. The loss and closing predicates are
// injected so the decision function stays pure and directly testable.
type Machine struct {
	CheckLoss    func(st State, history []*domain.ChatMessage) domain.LossReason
	ClosingReady func(st State, history []*domain.ChatMessage) bool
}

// Transition applies one judged turn to the engine state. history is the
// full ordered message list including the salesperson message that produced
// the event. CLOSING_ACTION and LOSS_CONFIRMED are absorbing: no stage
// advancement or re-flagging happens past them.
func (m Machine) Transition(st State, ev TurnEvent, history []*domain.ChatMessage) State {
	st.SuccessProbability = clampInt(st.SuccessProbability+ev.AdjustedDelta, 0, 100)

	if st.Phase == domain.PhaseClosingAction || st.Phase == domain.PhaseLossConfirmed {
		return st
	}

	// Stage advances only on clean progress, and only while still inside
	// the SPIN phases: conversationPhase and currentSpinStage stay
	// consistent by construction.
	if ev.Evaluation == domain.EvalAdvance || ev.Evaluation == domain.EvalRepeat {
		if phase, ok := domain.PhaseForStage(ev.MessageStage); ok {
			st.Stage = ev.MessageStage
			if st.Phase.IsSpin() {
				st.Phase = phase
			}
		}
	}

	if !st.Phase.IsLoss() {
		if m.CheckLoss != nil {
			if reason := m.CheckLoss(st, history); reason != "" {
				st.Phase = domain.PhaseLossCandidate
				st.LossReason = reason
				return st
			}
		}
		if m.ClosingReady != nil && m.ClosingReady(st, history) {
			st.Phase = domain.PhaseClosingReady
		}
	}

	// Escape hatch: long sessions are forced onto a terminal branch.
	if len(history) >= forceBranchAt && !st.Phase.IsClosing() && !st.Phase.IsLoss() {
		if st.SuccessProbability <= lowProbability {
			st.Phase = domain.PhaseLossCandidate
			st.LossReason = domain.LossNoUrgency
		} else {
			st.Phase = domain.PhaseClosingReady
		}
	}

	return st
}
