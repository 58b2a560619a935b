package retrieval

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqua777/ayurveda-companion/schema"
	"github.com/aqua777/ayurveda-companion/textsplitter"
)

// funcEmbedding lets tests return a different embedding per input.
type funcEmbedding struct {
	fn func(text string) ([]float64, error)
}

func (m *funcEmbedding) GetTextEmbedding(_ context.Context, text string) ([]float64, error) {
	return m.fn(text)
}

func (m *funcEmbedding) GetQueryEmbedding(_ context.Context, query string) ([]float64, error) {
	return m.fn(query)
}

// axisEmbedding maps known texts onto orthogonal unit vectors so that
// similarity ordering is deterministic.
func axisEmbedding(axes map[string][]float64) *funcEmbedding {
	return &funcEmbedding{fn: func(text string) ([]float64, error) {
		if emb, ok := axes[text]; ok {
			return emb, nil
		}
		return []float64{0, 0, 1}, nil
	}}
}

func TestChromemStore(t *testing.T) {
	ctx := context.Background()

	t.Run("add and query returns most similar first", func(t *testing.T) {
		store, err := NewChromemStore("", "test")
		require.NoError(t, err)

		err = store.Add(ctx, []Chunk{
			{ID: "a", Text: "doshas and balance", Embedding: []float64{1, 0, 0}},
			{ID: "b", Text: "herbal remedies", Embedding: []float64{0, 1, 0}},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, store.Count())

		docs, err := store.Query(ctx, []float64{0.9, 0.1, 0}, 1)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "a", docs[0].ID)
		assert.Equal(t, "doshas and balance", docs[0].Text)
	})

	t.Run("top-k larger than collection is clamped", func(t *testing.T) {
		store, err := NewChromemStore("", "test")
		require.NoError(t, err)

		err = store.Add(ctx, []Chunk{
			{ID: "a", Text: "one", Embedding: []float64{1, 0}},
		})
		require.NoError(t, err)

		docs, err := store.Query(ctx, []float64{1, 0}, 10)
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("query on empty store returns no documents", func(t *testing.T) {
		store, err := NewChromemStore("", "test")
		require.NoError(t, err)

		docs, err := store.Query(ctx, []float64{1, 0}, 4)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("chunk without embedding is rejected", func(t *testing.T) {
		store, err := NewChromemStore("", "test")
		require.NoError(t, err)

		err = store.Add(ctx, []Chunk{{ID: "a", Text: "one"}})
		assert.Error(t, err)
	})

	t.Run("metadata survives the round trip", func(t *testing.T) {
		store, err := NewChromemStore("", "test")
		require.NoError(t, err)

		err = store.Add(ctx, []Chunk{{
			ID:        "a",
			Text:      "one",
			Metadata:  map[string]interface{}{schema.MetaSource: "charaka.pdf"},
			Embedding: []float64{1, 0},
		}})
		require.NoError(t, err)

		docs, err := store.Query(ctx, []float64{1, 0}, 1)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "charaka.pdf", docs[0].Metadata[schema.MetaSource])
	})
}

func TestVectorRetriever(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds the question and queries the store", func(t *testing.T) {
		store, err := NewChromemStore("", "test")
		require.NoError(t, err)

		err = store.Add(ctx, []Chunk{
			{ID: "a", Text: "vata governs movement", Embedding: []float64{1, 0, 0}},
			{ID: "b", Text: "pitta governs digestion", Embedding: []float64{0, 1, 0}},
		})
		require.NoError(t, err)

		embedModel := axisEmbedding(map[string][]float64{
			"what is pitta?": {0, 1, 0},
		})

		retriever := NewVectorRetriever(store, embedModel, WithTopK(1))
		docs, err := retriever.Retrieve(ctx, "what is pitta?")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "pitta governs digestion", docs[0].Text)
	})

	t.Run("embedding failure propagates", func(t *testing.T) {
		store, err := NewChromemStore("", "test")
		require.NoError(t, err)

		embedModel := &funcEmbedding{fn: func(string) ([]float64, error) {
			return nil, errors.New("embedding service down")
		}}

		retriever := NewVectorRetriever(store, embedModel)
		_, err = retriever.Retrieve(ctx, "anything")
		assert.ErrorContains(t, err, "embedding service down")
	})
}

func TestIngestor(t *testing.T) {
	ctx := context.Background()

	t.Run("splits embeds and stores documents", func(t *testing.T) {
		store, err := NewChromemStore("", "test")
		require.NoError(t, err)

		embedModel := &funcEmbedding{fn: func(string) ([]float64, error) {
			return []float64{1, 0}, nil
		}}

		splitter, err := textsplitter.NewSentenceSplitter(
			textsplitter.DefaultChunkSize,
			textsplitter.DefaultChunkOverlap,
			&textsplitter.SimpleTokenizer{},
		)
		require.NoError(t, err)

		ingestor := NewIngestor(store, embedModel, splitter)
		doc := schema.NewDocumentWithSource("Ayurveda is a system of traditional medicine.", "intro.pdf")
		err = ingestor.Ingest(ctx, []schema.Document{doc})
		require.NoError(t, err)
		assert.Equal(t, 1, store.Count())

		docs, err := store.Query(ctx, []float64{1, 0}, 1)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, doc.ID+"-chunk-0", docs[0].ID)
		assert.Equal(t, "intro.pdf", docs[0].Metadata[schema.MetaSource])
	})

	t.Run("embedding failure aborts ingestion", func(t *testing.T) {
		store, err := NewChromemStore("", "test")
		require.NoError(t, err)

		embedModel := &funcEmbedding{fn: func(string) ([]float64, error) {
			return nil, errors.New("rate limited")
		}}

		splitter, err := textsplitter.NewSentenceSplitter(
			textsplitter.DefaultChunkSize,
			textsplitter.DefaultChunkOverlap,
			&textsplitter.SimpleTokenizer{},
		)
		require.NoError(t, err)

		ingestor := NewIngestor(store, embedModel, splitter)
		err = ingestor.Ingest(ctx, []schema.Document{schema.NewDocument("some text")})
		assert.ErrorContains(t, err, "rate limited")
	})
}

func TestOpenIndex(t *testing.T) {
	t.Run("missing path reports index not found", func(t *testing.T) {
		_, err := OpenIndex(filepath.Join(t.TempDir(), "does-not-exist"), "ayurveda")
		assert.ErrorIs(t, err, ErrIndexNotFound)
	})

	t.Run("existing but empty index reports index not found", func(t *testing.T) {
		dir := t.TempDir()
		_, err := NewChromemStore(dir, "ayurveda")
		require.NoError(t, err)

		_, err = OpenIndex(dir, "ayurveda")
		assert.ErrorIs(t, err, ErrIndexNotFound)
	})
}
