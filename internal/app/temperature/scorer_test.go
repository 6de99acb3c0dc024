package temperature_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salesmind/engine/internal/app/temperature"
	"github.com/salesmind/engine/internal/domain"
)

func newScorer() *temperature.Scorer {
	return temperature.NewScorer(temperature.DefaultTables())
}

func TestScoreDemoRequest(t *testing.T) {
	bd := newScorer().Score("デモを見たい", 0, 0, domain.ClosingStyleNone)

	// Three overlapping demo keywords hit, so the component caps at 30.
	assert.Equal(t, 30.0, bd.PositiveResponse)
	assert.Equal(t, 25.0, bd.SentimentScore)
	// Very short message reads as low engagement.
	assert.Equal(t, -5.0, bd.Engagement)
	// Raw 50 falls in the 1.25x correction band.
	assert.Equal(t, 62.5, bd.Temperature)
}

func TestScoreHostileShortMessage(t *testing.T) {
	bd := newScorer().Score("無理", -1, 0, domain.ClosingStyleNone)

	assert.Equal(t, 0.0, bd.SentimentScore)
	assert.Equal(t, -20.0, bd.BuyingSignal)
	// A non-positive raw total lands exactly on the neutral floor.
	assert.Equal(t, 40.0, bd.Temperature)
}

func TestScoreInternalApprovalSuppressesNegatives(t *testing.T) {
	s := newScorer()

	withApproval := s.Score("高いですが予算の確保を検討します", 0, 0, domain.ClosingStyleNone)
	withoutApproval := s.Score("高いですね", 0, 0, domain.ClosingStyleNone)

	// "高い" alone reads as rejection; naming a budget process neutralizes it.
	assert.Equal(t, 15.0, withApproval.BuyingSignal)
	assert.Equal(t, -15.0, withoutApproval.BuyingSignal)
}

func TestScoreClosingBonus(t *testing.T) {
	s := newScorer()

	option := s.Score("ありがとうございます", 0, 0, domain.ClosingStyleOptionBased)
	push := s.Score("ありがとうございます", 0, 0, domain.ClosingStyleOneShotPush)
	none := s.Score("ありがとうございます", 0, 0, domain.ClosingStyleNone)

	assert.Equal(t, 10.0, option.ClosingBonus)
	assert.Equal(t, -5.0, push.ClosingBonus)
	assert.Equal(t, 0.0, none.ClosingBonus)
}

func TestScoreSpinPenaltyHalvedByPositiveResponse(t *testing.T) {
	s := newScorer()

	// -3 * 0.3 = -0.9 on a neutral message.
	neutral := s.Score("了解です", 0, -3, domain.ClosingStyleNone)
	assert.Equal(t, -0.9, neutral.SpinPenalty)

	// Halved again when the customer still reacts positively.
	positive := s.Score("デモを見たい", 0, -3, domain.ClosingStyleNone)
	assert.Equal(t, -0.5, positive.SpinPenalty)
}

func TestScoreCapsAtEighty(t *testing.T) {
	msg := "導入を検討したいので、費用はいくらですか？実際のデモを見たいです。理解できました、なるほど納得です。" +
		strings.Repeat("ありがとうございます。", 5)

	bd := newScorer().Score(msg, 1, 0, domain.ClosingStyleNone)

	assert.Equal(t, 20.0, bd.BuyingSignal)
	assert.Equal(t, 10.0, bd.CognitiveLoad)
	assert.Equal(t, 30.0, bd.PositiveResponse)
	assert.Equal(t, 80.0, bd.Temperature)
}

func TestScoreStaysInVisibleBand(t *testing.T) {
	s := newScorer()

	for _, msg := range []string{
		"なるほど、検討します。",
		"それは当社には合わないと思います。",
		"もう少し詳しく教えていただけますか？",
		"今は忙しいので難しいです。",
	} {
		bd := s.Score(msg, 0.3, 0, domain.ClosingStyleNone)
		assert.GreaterOrEqual(t, bd.Temperature, 40.0, "message %q", msg)
		assert.LessOrEqual(t, bd.Temperature, 80.0, "message %q", msg)
	}
}
