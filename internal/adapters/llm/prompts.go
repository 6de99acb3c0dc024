package llm

import (
	"fmt"
	"strings"

	"github.com/salesmind/engine/internal/domain"
)

const customerSystemPrompt = `あなたは「AI顧客」です。B2B商談のロールプレイで、営業担当者からの提案を受ける企業の担当者として振る舞います。

基本的な振る舞い:
- 回答は必ず一人称（「私は」「当社では」など）で行い、営業担当者の質問に自然に答えてください。
- SPIN法やSituation/Problem/Implication/Needといったフレームワークを認識しておらず、そのような用語を決して口にしません。
- 営業担当者から提案を受ける立場であり、自社サービスや製品を売り込む立場ではありません。
- 質問されていない事項については、不自然に話題を切り出さず、会話の流れに沿って答えてください。
- 質問に対しては事実を答えますが、すべてを一度に明かす必要はありません。抵抗を示したり、慎重になる場合もあります。
- 回答はすべて自然な日本語で、2〜4文程度のまとまりで返答してください。

クロージング対応:
- 課題が明確になり解決の必要性を感じた場合、導入意欲を示してもよい。
- 適切な提案には次のステップ（見積、デモ、資料、日程調整）に前向きな反応を示してもよい。
- 同じ内容の質問や会話が繰り返される場合は、会話を収束させる方向で応答してください。

失注対応:
- 導入を見送る、予算がない、他社に決めた、必要性が低いなどの判断を行ってもよい。
- 断る場合は理由なく突然拒否せず、必ず具体的な理由（コスト・体制・承認プロセス・他社ツール・タイミング）を述べてください。
- 自社と明らかに関係ない提案や不自然な提案には早い段階で違和感を示し、「この提案は当社の状況に合いません」など明確に断る形で応答してください。`

const judgmentSystemPrompt = "あなたはB2B営業のメンターです。必ずJSON形式で返答してください。"

const rubricSystemPrompt = "あなたは営業スキル評価の専門家です。必ずJSON形式で回答してください。"

const sentimentSystemPrompt = "あなたは感情分析の専門家です。必ずJSON形式で返答してください。"

func buildCustomerSystemPrompt(session *domain.Session) string {
	var b strings.Builder
	b.WriteString(customerSystemPrompt)

	b.WriteString("\n\n--- 顧客設定 ---\n")
	fmt.Fprintf(&b, "業界: %s\n", orDefault(session.Industry, "未設定"))
	fmt.Fprintf(&b, "顧客像: %s\n", orDefault(session.CustomerPersona, "一般的な企業の担当者"))
	if session.CustomerPain != "" {
		fmt.Fprintf(&b, "抱えている悩み（営業から聞き出されるまで自分からは明かさない）: %s\n", session.CustomerPain)
	}
	if session.CompanyInfo != "" {
		b.WriteString("\n--- 企業情報 ---\n")
		b.WriteString(session.CompanyInfo)
		b.WriteString("\n上記の企業情報を参考にして、具体的で現実味のある応答をしてください。\n")
	}
	fmt.Fprintf(&b, "\n営業担当者の提案テーマ: %s\n", orDefault(session.ValueProposition, "未設定"))

	if phase := phaseInstruction(session.ConversationPhase); phase != "" {
		b.WriteString("\n")
		b.WriteString(phase)
	}

	return b.String()
}

// phaseInstruction steers the customer's demeanor by conversation phase.
func phaseInstruction(p domain.ConversationPhase) string {
	switch p {
	case domain.PhaseClosingReady, domain.PhaseClosingAction:
		return "現在の商談は終盤です。課題と解決策への理解が深まっているため、具体的な次のステップの提案には前向きに応じてください。"
	case domain.PhaseLossCandidate:
		return "現在の商談には懸念を感じています。導入への消極的な姿勢を具体的な理由とともに示してください。"
	case domain.PhaseLossConfirmed:
		return "この商談は見送りと判断しています。丁寧に、しかし明確に商談を終了させる方向で応答してください。"
	}
	return ""
}

func buildJudgmentPrompt(in domain.JudgmentContext) string {
	companyInfo := orDefault(in.CompanyInfo, "（企業情報なし）")

	return fmt.Sprintf(`あなたはB2B営業のメンターです。以下の情報をもとに、直近の営業担当者の発言が商談成功に与える影響を分析してください。

--- セッション情報 ---
業界: %s
価値提案: %s
顧客像: %s
現在の商談成功率: %d%%

--- 企業情報 ---
%s

--- 会話履歴（最近） ---
%s

--- 今回の営業担当者の発言 ---
%s
---

【評価方針 - SPIN法に基づく評価】

1. 現在の会話段階の判定
   - S（Situation）: 顧客の現状・背景を確認する段階
   - P（Problem）: 顧客の課題を顕在化させる段階
   - I（Implication）: 課題が放置された場合の影響を示唆する段階
   - N（Need-Payoff）: 解決後の価値やメリットを想像させる段階
   - 判定が難しい場合は "unknown" と記載

2. 今回の発言がどのステップに該当するか判定（S/P/I/N いずれか。判定不能は "unknown"）

3. ステップ適切性の評価
   - ideal: S→P→I→N と理想的に進行し、現在の段階に適合している
   - appropriate: 現段階に適切だが理想的な進行とは言えない
   - jump: 必要な前段階を飛ばしている
   - regression: 後段階から前段階に逆戻りしている
   - 判断不能の場合は "unknown"

4. 成功率変動の算出ルール
   - 理想的な進行で質の高い質問: +4〜+5
   - 適切なステップで良い質問: +2〜+3
   - 通常レベルの質問: 0〜+1
   - 段階の飛び越し・逆戻り: -2〜-1
   - 不適切・話題逸脱: -5〜-3
   - 常に0を返すのではなく、上記基準に従いプラス／マイナスを積極的に判断してください。

出力フォーマットは必ず次のJSON形式（各キーは必須）で出力してください：
{
  "current_spin_stage": "S" または "P" または "I" または "N" または "unknown",
  "message_spin_type": "S" または "P" または "I" または "N" または "unknown",
  "step_appropriateness": "ideal" または "appropriate" または "jump" または "regression" または "unknown",
  "success_delta": 整数 (-5〜5),
  "reason": "今回の変動理由（SPINの観点を含む1〜2文）",
  "notes": "補足があれば（任意、無い場合は空文字）"
}`,
		orDefault(in.Industry, "未設定"),
		orDefault(in.ValueProposition, "未設定"),
		orDefault(in.CustomerPersona, "未設定"),
		in.SuccessProbability,
		companyInfo,
		formatHistory(in.History),
		in.LatestMessage,
	)
}

func buildRubricPrompt(session *domain.Session, history []*domain.ChatMessage) string {
	return fmt.Sprintf(`【役割定義】
あなたは「スコアリングAI」です。
・営業の論理性・深掘り・価値提案の一貫性のみ評価する。
・顧客の事情による失注は減点対象としない。
・「失注＝低評価」にはしない。

あなたは営業スキル評価の専門家です。以下の会話履歴を分析し、5つの要素で総合スコアを構成してスコアリングを行ってください。

セッション情報:
- 業界: %s
- 価値提案: %s
- 顧客像: %s
注意: 顧客の課題は事前に設定されていません。営業担当者が会話を通じて顧客の課題を聞き出すことが重要です。

会話履歴:
%s

【重要】評価の対象は「営業担当者の発言・行動・質問の質」です。
顧客の事情（予算不足、タイミング、社内承認など）による失注は、営業の評価に影響させないでください。

5つの要素（各0〜20点、合計100点）:
●① exploration: 探索力（Situation/Problem 深掘り）
●② implication: 影響の引き出し（Implication）
●③ value_proposition: 価値提案の的確さ（Need-payoff）
●④ customer_response: 顧客の反応と整合性
●⑤ advancement: 商談前進度（デモ・体験・資料など）

【スコアリングの重要原則】
1. SPIN順守は評価項目ではなく加点要素。順番がズレても内容が良ければ高得点維持。
2. 商談が不成立でも、課題深掘り・適切な共感・論理の一貫性があれば 60〜75点。
3. 強引・質問をしない・価値提案が不一致の場合は 20〜40点。
4. 成功（資料請求・体験申込）時は 80〜95点。
5. 営業の責任と顧客事情を完全に分離して採点する。
6. 論理矛盾なし・問いと答えが噛み合っている・課題が自然に深掘りされている、この3点が揃えば最低 60点以上とする。

評価結果を必ず次のJSON形式で返してください。
{
  "exploration": <0-20の整数>,
  "implication": <0-20の整数>,
  "value_proposition": <0-20の整数>,
  "customer_response": <0-20の整数>,
  "advancement": <0-20の整数>,
  "feedback": "<フィードバック文（200-300文字）>",
  "next_actions": "<次回アクション（100-200文字）>",
  "scoring_details": {
    "exploration": {"score": <0-20>, "comments": "<コメント>", "strengths": ["強み"], "weaknesses": ["弱み"]},
    "implication": {"score": <0-20>, "comments": "<コメント>", "strengths": ["強み"], "weaknesses": ["弱み"]},
    "value_proposition": {"score": <0-20>, "comments": "<コメント>", "strengths": ["強み"], "weaknesses": ["弱み"]},
    "customer_response": {"score": <0-20>, "comments": "<コメント>", "strengths": ["強み"], "weaknesses": ["弱み"]},
    "advancement": {"score": <0-20>, "comments": "<コメント>", "strengths": ["強み"], "weaknesses": ["弱み"]}
  }
}`,
		orDefault(session.Industry, "未設定"),
		orDefault(session.ValueProposition, "未設定"),
		orDefault(session.CustomerPersona, "未設定"),
		formatHistory(history),
	)
}

func buildSentimentPrompt(message string) string {
	return fmt.Sprintf(`以下の顧客の発言の感情を分析し、-1.0（非常にネガティブ）から 1.0（非常にポジティブ）のスコアで評価してください。

顧客の発言:
%s

必ず次のJSON形式で返答してください：
{"sentiment": <-1.0〜1.0の数値>}`, message)
}

func formatHistory(history []*domain.ChatMessage) string {
	if len(history) == 0 {
		return "（会話履歴なし）"
	}

	parts := make([]string, 0, len(history))
	for _, msg := range history {
		label := "営業"
		if msg.Role == domain.RoleCustomer {
			label = "顧客"
		}
		parts = append(parts, label+": "+msg.Text)
	}
	return strings.Join(parts, "\n")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
