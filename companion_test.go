package companion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqua777/ayurveda-companion/emotion"
	"github.com/aqua777/ayurveda-companion/engine"
	"github.com/aqua777/ayurveda-companion/grading"
	"github.com/aqua777/ayurveda-companion/llm"
	"github.com/aqua777/ayurveda-companion/retrieval"
	"github.com/aqua777/ayurveda-companion/schema"
	"github.com/aqua777/ayurveda-companion/sessionstore"
	"github.com/aqua777/ayurveda-companion/websearch"
)

type stubRetriever struct {
	docs []schema.Document
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string) ([]schema.Document, error) {
	return s.docs, nil
}

type stubSearcher struct{}

func (s *stubSearcher) Search(_ context.Context, _ string) ([]websearch.Result, error) {
	return nil, nil
}

// newStubCompanion wires a real engine over canned LLM replies: one for
// emotion classification, one per retrieved document for grading, one for
// generation.
func newStubCompanion(replies []string, docs []schema.Document, sessions sessionstore.SessionStore) *Companion {
	model := llm.NewMockLLMWithResponses(replies)
	eng := engine.New(
		emotion.NewLLMClassifier(model),
		&stubRetriever{docs: docs},
		grading.NewGrader(grading.NewLLMScorer(model)),
		&stubSearcher{},
		engine.NewLLMGenerator(model),
	)
	return NewWithEngine(eng, sessions, nil)
}

func TestCompanionAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("runs a full turn and extends the history", func(t *testing.T) {
		doc := schema.NewDocument("Ayurveda balances the three doshas.")
		c := newStubCompanion([]string{"neutral", "5", "Ayurveda is a healing system."}, []schema.Document{doc}, nil)

		answer, history, err := c.Ask(ctx, "What is Ayurveda?", nil)
		require.NoError(t, err)
		assert.Equal(t, "Ayurveda is a healing system.", answer)
		require.Len(t, history, 1)
		assert.Equal(t, "What is Ayurveda?", history[0].User)
	})
}

func TestCompanionAskSession(t *testing.T) {
	ctx := context.Background()

	t.Run("persists history across turns", func(t *testing.T) {
		doc := schema.NewDocument("Ayurveda balances the three doshas.")
		sessions := sessionstore.NewSimpleSessionStore()
		c := newStubCompanion(
			[]string{"neutral", "5", "first answer", "neutral", "5", "second answer"},
			[]schema.Document{doc},
			sessions,
		)

		_, history, err := c.AskSession(ctx, "s1", "first question")
		require.NoError(t, err)
		assert.Len(t, history, 1)

		_, history, err = c.AskSession(ctx, "s1", "second question")
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "first question", history[0].User)
		assert.Equal(t, "second question", history[1].User)

		stored, err := sessions.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, history, stored)
	})
}

func TestNewRequiresIndex(t *testing.T) {
	_, err := New(Config{IndexPath: t.TempDir() + "/missing"})
	assert.ErrorIs(t, err, retrieval.ErrIndexNotFound)
}
