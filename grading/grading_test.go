package grading

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqua777/ayurveda-companion/llm"
	"github.com/aqua777/ayurveda-companion/schema"
)

// mapScorer returns a canned reply per document text.
type mapScorer struct {
	replies map[string]string
	err     error
}

func (s *mapScorer) Score(_ context.Context, _, document string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.replies[document], nil
}

func docs(texts ...string) []schema.Document {
	out := make([]schema.Document, len(texts))
	for i, text := range texts {
		out[i] = schema.NewDocument(text)
	}
	return out
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"plain number", "4", 4},
		{"surrounding whitespace", " 5 \n", 5},
		{"minimum", "1", 1},
		{"fractional", "4.5", 4.5},
		{"fractional with trailing zero", "4.0", 4},
		{"non-numeric counts as one", "highly relevant", 1},
		{"empty counts as one", "", 1},
		{"out of range high clamps to five", "9", 5},
		{"out of range low clamps to one", "0", 1},
		{"negative clamps to one", "-2", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseScore(tt.raw), 1e-9)
		})
	}
}

func TestLLMScorer(t *testing.T) {
	ctx := context.Background()

	t.Run("prompt carries question and document", func(t *testing.T) {
		mock := llm.NewMockLLM("4")
		scorer := NewLLMScorer(mock)

		reply, err := scorer.Score(ctx, "What balances vata?", "Warm oils calm vata.")
		require.NoError(t, err)
		assert.Equal(t, "4", reply)
		require.Len(t, mock.Prompts, 1)
		assert.Contains(t, mock.Prompts[0], "What balances vata?")
		assert.Contains(t, mock.Prompts[0], "Warm oils calm vata.")
		assert.Contains(t, mock.Prompts[0], "scale of 1 to 5")
	})

	t.Run("model failure propagates", func(t *testing.T) {
		scorer := NewLLMScorer(llm.NewMockLLMWithError(errors.New("timeout")))
		_, err := scorer.Score(ctx, "q", "d")
		assert.ErrorContains(t, err, "timeout")
	})
}

func TestGrader(t *testing.T) {
	ctx := context.Background()

	t.Run("high scores keep everything and skip search", func(t *testing.T) {
		scorer := &mapScorer{replies: map[string]string{"a": "4", "b": "5"}}
		grader := NewGrader(scorer)

		result, err := grader.Grade(ctx, "q", docs("a", "b"))
		require.NoError(t, err)
		assert.Len(t, result.Kept, 2)
		assert.InDelta(t, 4.5, result.Average, 1e-9)
		assert.False(t, result.NeedsWebSearch)
	})

	t.Run("score at the keep threshold is kept", func(t *testing.T) {
		scorer := &mapScorer{replies: map[string]string{"a": "3"}}
		grader := NewGrader(scorer)

		result, err := grader.Grade(ctx, "q", docs("a"))
		require.NoError(t, err)
		require.Len(t, result.Kept, 1)
		assert.Equal(t, "a", result.Kept[0].Text)
		assert.True(t, result.NeedsWebSearch)
	})

	t.Run("average covers dropped documents too", func(t *testing.T) {
		scorer := &mapScorer{replies: map[string]string{"a": "5", "b": "1"}}
		grader := NewGrader(scorer)

		result, err := grader.Grade(ctx, "q", docs("a", "b"))
		require.NoError(t, err)
		require.Len(t, result.Kept, 1)
		assert.InDelta(t, 3.0, result.Average, 1e-9)
		assert.True(t, result.NeedsWebSearch)
	})

	t.Run("kept documents preserve retrieval order", func(t *testing.T) {
		scorer := &mapScorer{replies: map[string]string{"a": "5", "b": "2", "c": "4"}}
		grader := NewGrader(scorer)

		result, err := grader.Grade(ctx, "q", docs("a", "b", "c"))
		require.NoError(t, err)
		require.Len(t, result.Kept, 2)
		assert.Equal(t, "a", result.Kept[0].Text)
		assert.Equal(t, "c", result.Kept[1].Text)
	})

	t.Run("unparseable reply counts as one", func(t *testing.T) {
		scorer := &mapScorer{replies: map[string]string{"a": "somewhat relevant", "b": "5"}}
		grader := NewGrader(scorer)

		result, err := grader.Grade(ctx, "q", docs("a", "b"))
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 5}, result.Scores)
		assert.InDelta(t, 3.0, result.Average, 1e-9)
	})

	t.Run("fractional scores keep documents and can skip search", func(t *testing.T) {
		scorer := &mapScorer{replies: map[string]string{"a": "4.5", "b": "4.5"}}
		grader := NewGrader(scorer)

		result, err := grader.Grade(ctx, "q", docs("a", "b"))
		require.NoError(t, err)
		assert.Len(t, result.Kept, 2)
		assert.InDelta(t, 4.5, result.Average, 1e-9)
		assert.False(t, result.NeedsWebSearch)
	})

	t.Run("fractional score below the keep threshold is dropped", func(t *testing.T) {
		scorer := &mapScorer{replies: map[string]string{"a": "2.9", "b": "3.0"}}
		grader := NewGrader(scorer)

		result, err := grader.Grade(ctx, "q", docs("a", "b"))
		require.NoError(t, err)
		require.Len(t, result.Kept, 1)
		assert.Equal(t, "b", result.Kept[0].Text)
	})

	t.Run("no documents always requests search", func(t *testing.T) {
		grader := NewGrader(&mapScorer{})

		result, err := grader.Grade(ctx, "q", nil)
		require.NoError(t, err)
		assert.Empty(t, result.Kept)
		assert.Zero(t, result.Average)
		assert.True(t, result.NeedsWebSearch)
	})

	t.Run("scorer failure aborts the grade", func(t *testing.T) {
		grader := NewGrader(&mapScorer{err: errors.New("scorer down")})

		_, err := grader.Grade(ctx, "q", docs("a"))
		assert.ErrorContains(t, err, "scorer down")
	})

	t.Run("custom thresholds apply", func(t *testing.T) {
		scorer := &mapScorer{replies: map[string]string{"a": "2"}}
		grader := NewGrader(scorer, WithKeepThreshold(2), WithSearchThreshold(2.0))

		result, err := grader.Grade(ctx, "q", docs("a"))
		require.NoError(t, err)
		assert.Len(t, result.Kept, 1)
		assert.False(t, result.NeedsWebSearch)
	})
}
