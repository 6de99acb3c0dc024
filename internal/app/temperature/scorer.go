// Package temperature computes the 0-100 customer temperature score: a
// synthetic engagement reading combined from sentiment, buying signals,
// cognitive load, message length, question frequency and closing style.
package temperature

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/salesmind/engine/internal/domain"
)

// Scorer combines the per-message heuristics into a temperature score.
// Every method is total over any input string; nothing here can fail.
type Scorer struct {
	tables Tables
}

func NewScorer(tables Tables) *Scorer {
	return &Scorer{tables: tables}
}

// Score rates one customer utterance. sentiment is the external sentiment
// estimate in [-1, 1] (pass 0 when unavailable); spinPenaltyRaw is the
// damped order-violation delta from the progress engine (0 when the turn
// was not a jump or regression); style is the closing style detected on the
// preceding salesperson message.
func (s *Scorer) Score(message string, sentiment float64, spinPenaltyRaw float64, style domain.ClosingStyle) domain.TemperatureBreakdown {
	lower := strings.ToLower(message)

	sentimentScore := clamp((sentiment+1)*25, 0, 50)
	buyingSignal := s.buyingSignal(lower)
	cognitiveLoad := s.cognitiveLoad(lower)
	engagement := engagementScore(message)
	questionScore := questionScore(message)
	positiveResponse := s.positiveResponse(lower)

	// Order-violation penalty is limited to 30% of its nominal magnitude,
	// and a positive customer signal halves it again.
	spinPenalty := spinPenaltyRaw * 0.3
	if positiveResponse > 0 {
		spinPenalty *= 0.5
	}

	var closingBonus float64
	switch style {
	case domain.ClosingStyleOptionBased:
		closingBonus = 10
	case domain.ClosingStyleOneShotPush:
		closingBonus = -5
	}

	total := sentimentScore + buyingSignal + cognitiveLoad + engagement +
		questionScore + positiveResponse + spinPenalty + closingBonus
	total = math.Max(0, total)

	// Keep the visible scale from ever reading as ice cold: boost the raw
	// total, then re-map anything still below 40 into [40, 44] and cap the
	// corrected value at 80.
	if total > 0 {
		switch {
		case total < 20:
			total *= 1.10
		case total < 40:
			total *= 1.15
		default:
			total *= 1.25
		}
		if total < 40 {
			total = 40 + total*0.1
		} else if total > 80 {
			total = 80
		}
	} else {
		total = 40
	}

	return domain.TemperatureBreakdown{
		Sentiment:        sentiment,
		SentimentScore:   round1(sentimentScore),
		BuyingSignal:     round1(buyingSignal),
		CognitiveLoad:    round1(cognitiveLoad),
		Engagement:       round1(engagement),
		QuestionScore:    round1(questionScore),
		PositiveResponse: round1(positiveResponse),
		SpinPenalty:      round1(spinPenalty),
		ClosingBonus:     round1(closingBonus),
		Temperature:      round1(clamp(total, 0, 100)),
	}
}

// buyingSignal sums positive and negative buying-signal keyword hits in
// [-20, 20]. Negative hits contribute nothing when the message also names
// an internal approval or budget process: externally-caused delay is not a
// rejection of the pitch.
func (s *Scorer) buyingSignal(lower string) float64 {
	var score float64
	for keyword, points := range s.tables.BuyingPositive {
		if strings.Contains(lower, keyword) {
			score += points
		}
	}

	internalReason := false
	for _, phrase := range s.tables.InternalApproval {
		if strings.Contains(lower, phrase) {
			internalReason = true
			break
		}
	}
	if !internalReason {
		for keyword, points := range s.tables.BuyingNegative {
			if strings.Contains(lower, keyword) {
				score += points
			}
		}
	}

	return clamp(score, -20, 20)
}

// positiveResponse sums forward-looking reaction keyword hits, capped at 30.
func (s *Scorer) positiveResponse(lower string) float64 {
	var score float64
	for keyword, points := range s.tables.PositiveResponses {
		if strings.Contains(lower, keyword) {
			score += points
		}
	}
	return math.Min(30, score)
}

// cognitiveLoad rates confusion vs. understanding in [-15, 10].
func (s *Scorer) cognitiveLoad(lower string) float64 {
	var score float64
	for keyword, points := range s.tables.CognitiveNegative {
		if strings.Contains(lower, keyword) {
			score += points
		}
	}
	for keyword, points := range s.tables.CognitivePositive {
		if strings.Contains(lower, keyword) {
			score += points
		}
	}
	return clamp(score, -15, 10)
}

// engagementScore is a step function of message length in characters.
func engagementScore(message string) float64 {
	switch length := utf8.RuneCountInString(message); {
	case length < 10:
		return -5
	case length < 30:
		return 0
	case length < 80:
		return 5
	default:
		return 10
	}
}

// questionScore gives 5 points per question mark, capped at 15.
func questionScore(message string) float64 {
	count := strings.Count(message, "？") + strings.Count(message, "?")
	return math.Min(float64(count*5), 15)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
