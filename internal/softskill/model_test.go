package softskill

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusmatch/matchengine/internal/domain"
)

// stubChat returns a canned completion or error.
type stubChat struct {
	content string
	err     error
}

func (s stubChat) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func TestNewModelAnalyzer(t *testing.T) {
	_, err := NewModelAnalyzer(nil, "")
	require.Error(t, err)

	a, err := NewModelAnalyzer(stubChat{}, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, a.model)
}

func TestModelAnalyzer_Score(t *testing.T) {
	reviews := []domain.Review{{Text: "Excelente atendimento do começo ao fim"}}

	t.Run("parses score from JSON response", func(t *testing.T) {
		a, err := NewModelAnalyzer(stubChat{content: `{"score": 0.85, "rationale": "comunicação clara"}`}, "")
		require.NoError(t, err)

		score, err := a.Score(context.Background(), reviews)
		require.NoError(t, err)
		assert.InDelta(t, 0.85, score, 1e-9)
	})

	t.Run("clamps out-of-range model scores", func(t *testing.T) {
		a, err := NewModelAnalyzer(stubChat{content: `{"score": 7.5}`}, "")
		require.NoError(t, err)

		score, err := a.Score(context.Background(), reviews)
		require.NoError(t, err)
		assert.Equal(t, 1.0, score)
	})

	t.Run("propagates backend errors for the fallback wrapper", func(t *testing.T) {
		a, err := NewModelAnalyzer(stubChat{err: errors.New("quota exceeded")}, "")
		require.NoError(t, err)

		_, err = a.Score(context.Background(), reviews)
		require.Error(t, err)
	})

	t.Run("invalid JSON is an error", func(t *testing.T) {
		a, err := NewModelAnalyzer(stubChat{content: "com certeza um 8 de 10"}, "")
		require.NoError(t, err)

		_, err = a.Score(context.Background(), reviews)
		require.Error(t, err)
	})

	t.Run("empty reviews are neutral without a call", func(t *testing.T) {
		a, err := NewModelAnalyzer(stubChat{err: errors.New("should not be called")}, "")
		require.NoError(t, err)

		score, err := a.Score(context.Background(), []domain.Review{{Text: "   "}})
		require.NoError(t, err)
		assert.Equal(t, NeutralScore, score)
	})
}

func TestFallbackAnalyzer_UsesModelWhenHealthy(t *testing.T) {
	model, err := NewModelAnalyzer(stubChat{content: `{"score": 0.9}`}, "")
	require.NoError(t, err)

	fb := NewFallbackAnalyzer(model, NewLexiconAnalyzer(), nil, nil)
	score, err := fb.Score(context.Background(), []domain.Review{{Text: "Excelente atendimento do começo ao fim"}})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, score, 1e-9)
}
