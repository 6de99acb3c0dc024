package temperature

// Tables holds the keyword weight dictionaries the scorer matches against.
// They are injected at construction so tests and deployments can substitute
// their own sets; yaml tags let an override file replace any table wholesale.
type Tables struct {
	// Buying-signal keywords add (positive) or subtract (negative) from the
	// buying signal component.
	BuyingPositive map[string]float64 `yaml:"buying_positive"`
	BuyingNegative map[string]float64 `yaml:"buying_negative"`

	// Forward-looking customer reactions: interest, demo/trial requests,
	// adoption intent, value recognition, consideration.
	PositiveResponses map[string]float64 `yaml:"positive_responses"`

	// Phrases that mark a delay as an internal approval / budget process
	// rather than a rejection of the pitch. Their presence suppresses the
	// negative buying-signal keywords entirely.
	InternalApproval []string `yaml:"internal_approval"`

	// Cognitive load: confusion and complexity subtract, understanding and
	// relief add.
	CognitiveNegative map[string]float64 `yaml:"cognitive_negative"`
	CognitivePositive map[string]float64 `yaml:"cognitive_positive"`
}

// DefaultTables returns the built-in Japanese keyword sets.
func DefaultTables() Tables {
	return Tables{
		BuyingPositive: map[string]float64{
			// concrete questions
			"具体的には": 10,
			"費用は":   10,
			"料金は":   10,
			"価格は":   10,
			"いくら":   10,
			"詳細":    10,
			"詳しく":   10,
			// direct adoption intent
			"導入": 20,
			"契約": 20,
			"日程": 20,
			"いつ": 20,
			"開始": 20,
			"検討": 15,
			"決め": 15,
			"進め": 15,
		},
		BuyingNegative: map[string]float64{
			"高い":   -15,
			"無理":   -20,
			"難しい":  -15,
			"できない": -15,
			"不要":   -20,
			"いらない": -20,
			"興味ない": -20,
			"違う":   -10,
			"合わない": -15,
		},
		PositiveResponses: map[string]float64{
			// interest
			"興味があります": 10,
			"興味がある":   10,
			"関心":       10,
			"詳しく聞きたい": 10,
			"詳しく教えて":  10,
			// demo / trial requests
			"デモを見たい":  15,
			"デモを見":    15,
			"デモを":     15,
			"無料体験したい": 15,
			"無料体験":    15,
			"体験":       15,
			"トライアル":   15,
			// adoption intent
			"導入に前向き": 15,
			"導入を検討":  15,
			"導入したい":  15,
			"導入を考え":  15,
			// value recognition
			"価値を感じる": 10,
			"価値がある":  10,
			"メリット":   10,
			"効果":      10,
			// consideration
			"検討したい":  10,
			"検討します":  10,
			"検討させて":  10,
			// concrete questions
			"どのように": 5,
			"どういう":  5,
			"どんな":   5,
		},
		InternalApproval: []string{
			"社内で検討",
			"社内の承認",
			"社内で相談",
			"上司に確認",
			"役員に相談",
			"予算の確保",
			"予算を確保",
			"予算を検討",
			"予算を確認",
			"予算が",
			"決裁",
			"承認",
		},
		CognitiveNegative: map[string]float64{
			"わかりません":  -15,
			"難しい":     -15,
			"理解できない": -15,
			"複雑":      -10,
			"混乱":      -10,
		},
		CognitivePositive: map[string]float64{
			"理解できました": 10,
			"助かります":   10,
			"わかりました":  8,
			"納得":       8,
			"なるほど":    5,
		},
	}
}
