// Package llm adapts the Gemini API (via Vertex AI) to the four model
// collaborator ports: judgment, customer roleplay, rubric scoring and
// sentiment analysis.
package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/salesmind/engine/internal/domain"
)

// Config identifies the Vertex AI project and model to call.
type Config struct {
	ProjectID string
	Location  string
	ModelName string
}

// Client implements domain.JudgmentClient, domain.CustomerClient,
// domain.RubricClient and domain.SentimentClient on a single genai client.
type Client struct {
	client    *genai.Client
	modelName string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ProjectID == "" || cfg.Location == "" {
		return nil, fmt.Errorf("project ID and location are required for the Vertex AI client")
	}

	modelName := cfg.ModelName
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &Client{client: client, modelName: modelName}, nil
}

// JudgeSalesMessage implements domain.JudgmentClient.
func (c *Client) JudgeSalesMessage(ctx context.Context, in domain.JudgmentContext) (domain.Judgment, error) {
	raw, err := c.generateJSON(ctx, judgmentSystemPrompt, buildJudgmentPrompt(in))
	if err != nil {
		return domain.Judgment{}, fmt.Errorf("judgment call: %w", err)
	}
	return parseJudgment(raw)
}

// GenerateCustomerReply implements domain.CustomerClient. The conversation
// history is replayed as alternating user/model turns; the salesperson is
// the user from the customer model's point of view.
func (c *Client) GenerateCustomerReply(ctx context.Context, in domain.CustomerContext) (string, error) {
	var contents []*genai.Content
	for _, m := range in.History {
		var role genai.Role = genai.RoleUser
		if m.Role == domain.RoleCustomer {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}

	temp := float32(0.8)
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildCustomerSystemPrompt(in.Session), genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   int32(1024),
	}

	res, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("customer reply generation: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("customer reply generation: model returned empty text")
	}
	return text, nil
}

// ScoreConversation implements domain.RubricClient.
func (c *Client) ScoreConversation(ctx context.Context, session *domain.Session, history []*domain.ChatMessage) (domain.RubricResult, error) {
	raw, err := c.generateJSON(ctx, rubricSystemPrompt, buildRubricPrompt(session, history))
	if err != nil {
		return domain.RubricResult{}, fmt.Errorf("rubric call: %w", err)
	}
	return parseRubric(raw)
}

// AnalyzeSentiment implements domain.SentimentClient.
func (c *Client) AnalyzeSentiment(ctx context.Context, message string) (float64, error) {
	raw, err := c.generateJSON(ctx, sentimentSystemPrompt, buildSentimentPrompt(message))
	if err != nil {
		return 0, fmt.Errorf("sentiment call: %w", err)
	}
	return parseSentiment(raw)
}

// generateJSON runs a single-turn prompt with a JSON response constraint and
// a low temperature, for the analytical collaborators.
func (c *Client) generateJSON(ctx context.Context, system, prompt string) (string, error) {
	temp := float32(0.2)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   int32(4096),
		ResponseMIMEType:  "application/json",
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	res, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("model returned empty text")
	}
	return text, nil
}
