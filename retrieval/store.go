// Package retrieval provides the vector index over the Ayurveda corpus:
// PDF ingestion, chromem-go storage, and similarity retrieval.
package retrieval

import (
	"context"
	"fmt"
	"runtime"

	chromem "github.com/philippgille/chromem-go"

	"github.com/aqua777/ayurveda-companion/schema"
)

// Chunk is an embedded slice of a source document, ready for indexing.
type Chunk struct {
	ID        string
	Text      string
	Metadata  map[string]interface{}
	Embedding []float64
}

// VectorStore is the interface for storing and querying embedded chunks.
type VectorStore interface {
	// Add adds chunks to the store.
	Add(ctx context.Context, chunks []Chunk) error
	// Query finds the top-k most similar chunks to the query embedding,
	// returned as documents ordered by descending similarity.
	Query(ctx context.Context, embedding []float64, topK int) ([]schema.Document, error)
	// Count returns the number of stored chunks.
	Count() int
}

// ChromemStore is a VectorStore implementation backed by chromem-go.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemStore creates a ChromemStore. If persistPath is empty the store
// is in-memory only.
func NewChromemStore(persistPath, collectionName string) (*ChromemStore, error) {
	var db *chromem.DB
	if persistPath != "" {
		var err error
		db, err = chromem.NewPersistentDB(persistPath, false)
		if err != nil {
			return nil, fmt.Errorf("failed to create persistent chromem db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	// Embeddings are generated externally and passed in explicitly, so no
	// embedding function is registered on the collection.
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection: %w", err)
	}

	return &ChromemStore{db: db, collection: collection}, nil
}

// Add adds chunks to the store.
func (s *ChromemStore) Add(ctx context.Context, chunks []Chunk) error {
	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("chunk %s has no embedding", c.ID)
		}

		// chromem metadata is map[string]string.
		meta := make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			meta[k] = fmt.Sprintf("%v", v)
		}

		embedding32 := make([]float32, len(c.Embedding))
		for j, v := range c.Embedding {
			embedding32[j] = float32(v)
		}

		docs[i] = chromem.Document{
			ID:        c.ID,
			Content:   c.Text,
			Metadata:  meta,
			Embedding: embedding32,
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents to chromem collection: %w", err)
	}
	return nil
}

// Query finds the top-k most similar chunks to the query embedding.
func (s *ChromemStore) Query(ctx context.Context, embedding []float64, topK int) ([]schema.Document, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	embedding32 := make([]float32, len(embedding))
	for i, v := range embedding {
		embedding32[i] = float32(v)
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding32, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromem collection: %w", err)
	}

	docs := make([]schema.Document, len(results))
	for i, res := range results {
		meta := make(map[string]interface{}, len(res.Metadata))
		for k, v := range res.Metadata {
			meta[k] = v
		}
		docs[i] = schema.Document{
			ID:       res.ID,
			Text:     res.Content,
			Metadata: meta,
		}
	}
	return docs, nil
}

// Count returns the number of stored chunks.
func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

// Ensure ChromemStore implements the interface.
var _ VectorStore = (*ChromemStore)(nil)
