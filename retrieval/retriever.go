package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aqua777/ayurveda-companion/embedding"
	"github.com/aqua777/ayurveda-companion/schema"
)

// ErrIndexNotFound is returned when the persisted vector index does not
// exist at the configured path. Callers are expected to build the index
// first; this is a configuration error, not a per-question one.
var ErrIndexNotFound = errors.New("retrieval: vector index not found")

// DefaultTopK is the default number of chunks returned per query.
const DefaultTopK = 4

// Retriever fetches documents relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]schema.Document, error)
}

// VectorRetriever retrieves documents by embedding the question and
// querying a vector store for the nearest chunks.
type VectorRetriever struct {
	store      VectorStore
	embedModel embedding.EmbeddingModel
	topK       int
	logger     *slog.Logger
}

// VectorRetrieverOption configures a VectorRetriever.
type VectorRetrieverOption func(*VectorRetriever)

// WithTopK sets the number of chunks returned per query.
func WithTopK(k int) VectorRetrieverOption {
	return func(r *VectorRetriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithRetrieverLogger sets the logger.
func WithRetrieverLogger(logger *slog.Logger) VectorRetrieverOption {
	return func(r *VectorRetriever) {
		r.logger = logger
	}
}

// NewVectorRetriever creates a VectorRetriever over the given store and
// embedding model.
func NewVectorRetriever(store VectorStore, embedModel embedding.EmbeddingModel, opts ...VectorRetrieverOption) *VectorRetriever {
	r := &VectorRetriever{
		store:      store,
		embedModel: embedModel,
		topK:       DefaultTopK,
		logger:     slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve embeds the question and returns the top-k most similar chunks.
func (r *VectorRetriever) Retrieve(ctx context.Context, question string) ([]schema.Document, error) {
	queryEmbedding, err := r.embedModel.GetQueryEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	docs, err := r.store.Query(ctx, queryEmbedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}

	r.logger.Debug("retrieved documents", "count", len(docs), "top_k", r.topK)
	return docs, nil
}

// Ensure VectorRetriever implements the interface.
var _ Retriever = (*VectorRetriever)(nil)
