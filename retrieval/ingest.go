package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aqua777/ayurveda-companion/embedding"
	"github.com/aqua777/ayurveda-companion/schema"
	"github.com/aqua777/ayurveda-companion/textsplitter"
)

// Ingestor splits documents into chunks, embeds them, and writes them to a
// vector store.
type Ingestor struct {
	store      VectorStore
	embedModel embedding.EmbeddingModel
	splitter   textsplitter.TextSplitter
	logger     *slog.Logger
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithIngestorLogger sets the logger.
func WithIngestorLogger(logger *slog.Logger) IngestorOption {
	return func(i *Ingestor) {
		i.logger = logger
	}
}

// NewIngestor creates an Ingestor.
func NewIngestor(store VectorStore, embedModel embedding.EmbeddingModel, splitter textsplitter.TextSplitter, opts ...IngestorOption) *Ingestor {
	ing := &Ingestor{
		store:      store,
		embedModel: embedModel,
		splitter:   splitter,
		logger:     slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Ingest splits, embeds, and stores the given documents. Chunk metadata is
// inherited from the source document.
func (i *Ingestor) Ingest(ctx context.Context, docs []schema.Document) error {
	var chunks []Chunk
	for _, doc := range docs {
		for idx, text := range i.splitter.SplitText(doc.Text) {
			emb, err := i.embedModel.GetTextEmbedding(ctx, text)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %d of document %s: %w", idx, doc.ID, err)
			}

			meta := make(map[string]interface{}, len(doc.Metadata))
			for k, v := range doc.Metadata {
				meta[k] = v
			}

			chunks = append(chunks, Chunk{
				ID:        fmt.Sprintf("%s-chunk-%d", doc.ID, idx),
				Text:      text,
				Metadata:  meta,
				Embedding: emb,
			})
		}
	}

	if len(chunks) == 0 {
		i.logger.Warn("no chunks produced from documents", "documents", len(docs))
		return nil
	}

	if err := i.store.Add(ctx, chunks); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}

	i.logger.Info("ingested documents", "documents", len(docs), "chunks", len(chunks))
	return nil
}

// IngestPDFDir loads every PDF in dir and ingests the page-level documents.
func (i *Ingestor) IngestPDFDir(ctx context.Context, dir string) error {
	docs, err := NewPDFReader().LoadDir(dir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no pdf content found in %s", dir)
	}
	return i.Ingest(ctx, docs)
}

// OpenIndex opens an existing persisted index. It returns ErrIndexNotFound
// when nothing has been built at the given path.
func OpenIndex(persistPath, collectionName string) (*ChromemStore, error) {
	if _, err := os.Stat(persistPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w at %s", ErrIndexNotFound, persistPath)
	}

	store, err := NewChromemStore(persistPath, collectionName)
	if err != nil {
		return nil, err
	}
	if store.Count() == 0 {
		return nil, fmt.Errorf("%w: collection %s at %s is empty", ErrIndexNotFound, collectionName, persistPath)
	}
	return store, nil
}
