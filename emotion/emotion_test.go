package emotion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqua777/ayurveda-companion/llm"
)

func TestParseEmotion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Emotion
	}{
		{"happy", "happy", EmotionHappy},
		{"sad", "sad", EmotionSad},
		{"angry", "angry", EmotionAngry},
		{"neutral", "neutral", EmotionNeutral},
		{"uppercase", "HAPPY", EmotionHappy},
		{"surrounding whitespace", "  sad \n", EmotionSad},
		{"unrecognized word defaults to neutral", "melancholic", EmotionNeutral},
		{"empty defaults to neutral", "", EmotionNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEmotion(tt.raw))
		})
	}
}

func TestLLMClassifier(t *testing.T) {
	ctx := context.Background()

	t.Run("classifies from the model reply", func(t *testing.T) {
		mock := llm.NewMockLLM("angry")
		classifier := NewLLMClassifier(mock)

		result, err := classifier.Classify(ctx, "Why does nothing work?!")
		require.NoError(t, err)
		assert.Equal(t, EmotionAngry, result)
	})

	t.Run("prompt contains the question", func(t *testing.T) {
		mock := llm.NewMockLLM("neutral")
		classifier := NewLLMClassifier(mock)

		_, err := classifier.Classify(ctx, "What is panchakarma?")
		require.NoError(t, err)
		require.Len(t, mock.Prompts, 1)
		assert.Contains(t, mock.Prompts[0], "What is panchakarma?")
		assert.Contains(t, mock.Prompts[0], "happy, sad, angry, or neutral")
	})

	t.Run("model failure surfaces the error", func(t *testing.T) {
		mock := llm.NewMockLLMWithError(errors.New("model unavailable"))
		classifier := NewLLMClassifier(mock)

		result, err := classifier.Classify(ctx, "anything")
		assert.ErrorContains(t, err, "model unavailable")
		assert.Equal(t, EmotionNeutral, result)
	})

	t.Run("chatty reply falls back to neutral", func(t *testing.T) {
		mock := llm.NewMockLLM("The user sounds quite happy today.")
		classifier := NewLLMClassifier(mock)

		result, err := classifier.Classify(ctx, "anything")
		require.NoError(t, err)
		assert.Equal(t, EmotionNeutral, result)
	})
}
