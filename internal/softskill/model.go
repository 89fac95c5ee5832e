package softskill

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jusmatch/matchengine/internal/domain"
	"github.com/jusmatch/matchengine/internal/numeric"
	"github.com/jusmatch/matchengine/internal/ports"
)

var _ ports.SoftSkillAnalyzer = (*ModelAnalyzer)(nil)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.GPT4oMini

// maxReviewsPerPrompt bounds prompt size; the most recent reviews carry
// the signal anyway.
const maxReviewsPerPrompt = 20

// ChatCompleter is the slice of the OpenAI client the analyzer needs,
// kept narrow so tests can stub it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// modelResponse is the JSON document the model is instructed to return.
type modelResponse struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// ModelAnalyzer scores reviews with a chat model. It is the heavier
// strategy behind the same SoftSkillAnalyzer contract; callers should
// wrap it in a FallbackAnalyzer so an unreachable backend degrades to
// the lexicon instead of failing the feature.
type ModelAnalyzer struct {
	client ChatCompleter
	model  string
}

// NewModelAnalyzer creates a model-backed analyzer. An empty model name
// selects DefaultModel.
func NewModelAnalyzer(client ChatCompleter, model string) (*ModelAnalyzer, error) {
	if client == nil {
		return nil, fmt.Errorf("chat client cannot be nil")
	}
	if model == "" {
		model = DefaultModel
	}
	return &ModelAnalyzer{client: client, model: model}, nil
}

// Score implements ports.SoftSkillAnalyzer by asking the model for a
// single soft-skill score over the review batch.
func (m *ModelAnalyzer) Score(ctx context.Context, reviews []domain.Review) (float64, error) {
	texts := make([]string, 0, len(reviews))
	for _, rev := range reviews {
		if strings.TrimSpace(rev.Text) == "" {
			continue
		}
		texts = append(texts, "- "+strings.TrimSpace(rev.Text))
		if len(texts) == maxReviewsPerPrompt {
			break
		}
	}
	if len(texts) == 0 {
		return NeutralScore, nil
	}

	prompt := "Avalie as habilidades interpessoais do advogado com base nas avaliações " +
		"de clientes abaixo (comunicação, cordialidade, clareza). Responda somente com JSON " +
		`no formato {"score": <0.0-1.0>, "rationale": "<breve justificativa>"}.` +
		"\n\nAvaliações:\n" + strings.Join(texts, "\n")

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Temperature: 0,
		MaxTokens:   200,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("soft-skill model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("soft-skill model returned no choices")
	}

	var parsed modelResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return 0, fmt.Errorf("soft-skill model returned invalid JSON: %w", err)
	}
	return numeric.Clamp01(parsed.Score), nil
}
