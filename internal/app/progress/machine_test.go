package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salesmind/engine/internal/app/progress"
	"github.com/salesmind/engine/internal/domain"
)

func messages(n int) []*domain.ChatMessage {
	out := make([]*domain.ChatMessage, n)
	for i := range out {
		role := domain.RoleSalesperson
		if i%2 == 1 {
			role = domain.RoleCustomer
		}
		out[i] = &domain.ChatMessage{Role: role, Sequence: i + 1, Text: "..."}
	}
	return out
}

func TestTransitionClampsProbability(t *testing.T) {
	m := progress.Machine{}

	st := m.Transition(progress.State{
		Stage: domain.StageSituation, Phase: domain.PhaseSpinS, SuccessProbability: 98,
	}, progress.TurnEvent{Evaluation: domain.EvalRepeat, AdjustedDelta: 5}, messages(4))
	assert.Equal(t, 100, st.SuccessProbability)

	st = m.Transition(progress.State{
		Stage: domain.StageSituation, Phase: domain.PhaseSpinS, SuccessProbability: 2,
	}, progress.TurnEvent{Evaluation: domain.EvalRepeat, AdjustedDelta: -5}, messages(4))
	assert.Equal(t, 0, st.SuccessProbability)
}

func TestTransitionAdvancesStageAndPhase(t *testing.T) {
	m := progress.Machine{}

	st := m.Transition(progress.State{
		Stage: domain.StageSituation, Phase: domain.PhaseSpinS, SuccessProbability: 50,
	}, progress.TurnEvent{
		MessageStage: domain.StageProblem, Evaluation: domain.EvalAdvance, AdjustedDelta: 2,
	}, messages(4))

	assert.Equal(t, domain.StageProblem, st.Stage)
	assert.Equal(t, domain.PhaseSpinP, st.Phase)
	assert.Equal(t, 52, st.SuccessProbability)
}

func TestTransitionKeepsStageOnOrderViolation(t *testing.T) {
	m := progress.Machine{}

	st := m.Transition(progress.State{
		Stage: domain.StageSituation, Phase: domain.PhaseSpinS, SuccessProbability: 50,
	}, progress.TurnEvent{
		MessageStage: domain.StageNeedPayoff, Evaluation: domain.EvalJump, AdjustedDelta: -1,
	}, messages(4))

	assert.Equal(t, domain.StageSituation, st.Stage)
	assert.Equal(t, domain.PhaseSpinS, st.Phase)
	assert.Equal(t, 49, st.SuccessProbability)
}

func TestTransitionAbsorbingPhases(t *testing.T) {
	m := progress.Machine{
		CheckLoss: func(progress.State, []*domain.ChatMessage) domain.LossReason {
			return domain.LossNoUrgency
		},
	}

	for _, phase := range []domain.ConversationPhase{domain.PhaseClosingAction, domain.PhaseLossConfirmed} {
		st := m.Transition(progress.State{
			Stage: domain.StageNeedPayoff, Phase: phase, SuccessProbability: 50,
		}, progress.TurnEvent{
			MessageStage: domain.StageNeedPayoff, Evaluation: domain.EvalRepeat, AdjustedDelta: 1,
		}, messages(30))

		assert.Equal(t, phase, st.Phase, "phase %s must absorb", phase)
		assert.Equal(t, 51, st.SuccessProbability)
	}
}

func TestTransitionLossBeatsClosing(t *testing.T) {
	m := progress.Machine{
		CheckLoss: func(progress.State, []*domain.ChatMessage) domain.LossReason {
			return domain.LossFeatureMismatch
		},
		ClosingReady: func(progress.State, []*domain.ChatMessage) bool {
			return true
		},
	}

	st := m.Transition(progress.State{
		Stage: domain.StageNeedPayoff, Phase: domain.PhaseSpinN, SuccessProbability: 70,
	}, progress.TurnEvent{
		MessageStage: domain.StageNeedPayoff, Evaluation: domain.EvalRepeat,
	}, messages(8))

	assert.Equal(t, domain.PhaseLossCandidate, st.Phase)
	assert.Equal(t, domain.LossFeatureMismatch, st.LossReason)
}

func TestTransitionClosingReady(t *testing.T) {
	m := progress.Machine{
		ClosingReady: func(progress.State, []*domain.ChatMessage) bool {
			return true
		},
	}

	st := m.Transition(progress.State{
		Stage: domain.StageNeedPayoff, Phase: domain.PhaseSpinN, SuccessProbability: 70,
	}, progress.TurnEvent{
		MessageStage: domain.StageNeedPayoff, Evaluation: domain.EvalRepeat,
	}, messages(8))

	assert.Equal(t, domain.PhaseClosingReady, st.Phase)
}

func TestTransitionEscapeHatch(t *testing.T) {
	m := progress.Machine{}

	// A long weak session is forced onto the loss branch.
	st := m.Transition(progress.State{
		Stage: domain.StageProblem, Phase: domain.PhaseSpinP, SuccessProbability: 40,
	}, progress.TurnEvent{Evaluation: domain.EvalUnknown}, messages(25))
	assert.Equal(t, domain.PhaseLossCandidate, st.Phase)
	assert.Equal(t, domain.LossNoUrgency, st.LossReason)

	// A long healthy session is forced toward closing.
	st = m.Transition(progress.State{
		Stage: domain.StageProblem, Phase: domain.PhaseSpinP, SuccessProbability: 41,
	}, progress.TurnEvent{Evaluation: domain.EvalUnknown}, messages(25))
	assert.Equal(t, domain.PhaseClosingReady, st.Phase)

	// Short sessions are untouched.
	st = m.Transition(progress.State{
		Stage: domain.StageProblem, Phase: domain.PhaseSpinP, SuccessProbability: 40,
	}, progress.TurnEvent{Evaluation: domain.EvalUnknown}, messages(24))
	assert.Equal(t, domain.PhaseSpinP, st.Phase)
}

func TestStateRoundTrip(t *testing.T) {
	session := &domain.Session{
		CurrentSpinStage:   domain.StageImplication,
		ConversationPhase:  domain.PhaseSpinI,
		SuccessProbability: 63,
	}

	st := progress.StateOf(session)
	st.Phase = domain.PhaseClosingReady
	st.SuccessProbability = 70
	st.ApplyTo(session)

	assert.Equal(t, domain.PhaseClosingReady, session.ConversationPhase)
	assert.Equal(t, 70, session.SuccessProbability)
	assert.Equal(t, domain.StageImplication, session.CurrentSpinStage)
}
