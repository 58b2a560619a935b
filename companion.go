// Package companion assembles the Ayurveda question-answering system:
// a vector index over an Ayurvedic text corpus, an LLM-driven workflow
// that grades retrieved context and falls back to web search, and
// per-session conversation history.
package companion

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aqua777/ayurveda-companion/embedding"
	"github.com/aqua777/ayurveda-companion/emotion"
	"github.com/aqua777/ayurveda-companion/engine"
	"github.com/aqua777/ayurveda-companion/grading"
	"github.com/aqua777/ayurveda-companion/llm"
	"github.com/aqua777/ayurveda-companion/retrieval"
	"github.com/aqua777/ayurveda-companion/schema"
	"github.com/aqua777/ayurveda-companion/sessionstore"
	"github.com/aqua777/ayurveda-companion/textsplitter"
	"github.com/aqua777/ayurveda-companion/websearch"
)

// DefaultCollectionName is the chromem collection holding the corpus.
const DefaultCollectionName = "ayurveda"

// Config holds the knobs for assembling a Companion. Zero values take the
// defaults below; API keys default to their environment variables.
type Config struct {
	// GroqAPIKey authenticates against the Groq API (GROQ_API_KEY).
	GroqAPIKey string
	// GroqModel is the chat model for classification, grading, and
	// generation.
	GroqModel string
	// HuggingFaceAPIKey authenticates against the HuggingFace Inference
	// API (HUGGINGFACE_API_KEY).
	HuggingFaceAPIKey string
	// EmbeddingModel is the sentence-transformers model for embeddings.
	EmbeddingModel string
	// TavilyAPIKey authenticates against the Tavily search API
	// (TAVILY_API_KEY).
	TavilyAPIKey string

	// IndexPath is where the vector index is persisted.
	IndexPath string
	// CollectionName is the chromem collection name.
	CollectionName string
	// TopK is how many chunks retrieval returns per question.
	TopK int
	// ChunkSize and ChunkOverlap control corpus chunking, in tokens.
	ChunkSize    int
	ChunkOverlap int
	// MaxSearchResults caps web search results per query.
	MaxSearchResults int

	// Sessions stores conversation history; defaults to in-memory.
	Sessions sessionstore.SessionStore

	// Logger defaults to a JSON handler on stderr.
	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.GroqModel == "" {
		c.GroqModel = llm.DefaultGroqModel
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = embedding.HFParaphraseMultilingualMpnet
	}
	if c.CollectionName == "" {
		c.CollectionName = DefaultCollectionName
	}
	if c.TopK == 0 {
		c.TopK = retrieval.DefaultTopK
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = textsplitter.DefaultChunkSize
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = textsplitter.DefaultChunkOverlap
	}
	if c.MaxSearchResults == 0 {
		c.MaxSearchResults = websearch.DefaultMaxResults
	}
	if c.Sessions == nil {
		c.Sessions = sessionstore.NewSimpleSessionStore()
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
}

// Companion ties the workflow engine to session storage.
type Companion struct {
	engine   *engine.Engine
	sessions sessionstore.SessionStore
	logger   *slog.Logger
}

// New assembles a Companion over an existing vector index. It fails when
// the index has not been built yet; run BuildIndex first.
func New(cfg Config) (*Companion, error) {
	cfg.applyDefaults()

	store, err := retrieval.OpenIndex(cfg.IndexPath, cfg.CollectionName)
	if err != nil {
		return nil, err
	}

	modelOpts := []llm.GroqOption{llm.WithGroqModel(cfg.GroqModel)}
	if cfg.GroqAPIKey != "" {
		modelOpts = append(modelOpts, llm.WithGroqAPIKey(cfg.GroqAPIKey))
	}
	model := llm.NewGroqLLM(modelOpts...)

	embedOpts := []embedding.HuggingFaceEmbeddingOption{
		embedding.WithHuggingFaceModel(cfg.EmbeddingModel),
	}
	if cfg.HuggingFaceAPIKey != "" {
		embedOpts = append(embedOpts, embedding.WithHuggingFaceAPIKey(cfg.HuggingFaceAPIKey))
	}
	embedModel := embedding.NewHuggingFaceEmbedding(embedOpts...)

	searchOpts := []websearch.TavilyOption{
		websearch.WithTavilyMaxResults(cfg.MaxSearchResults),
	}
	if cfg.TavilyAPIKey != "" {
		searchOpts = append(searchOpts, websearch.WithTavilyAPIKey(cfg.TavilyAPIKey))
	}
	searcher, err := websearch.NewTavilyClient(searchOpts...)
	if err != nil {
		return nil, err
	}

	retriever := retrieval.NewVectorRetriever(store, embedModel,
		retrieval.WithTopK(cfg.TopK),
		retrieval.WithRetrieverLogger(cfg.Logger),
	)

	eng := engine.New(
		emotion.NewLLMClassifier(model, emotion.WithClassifierLogger(cfg.Logger)),
		retriever,
		grading.NewGrader(grading.NewLLMScorer(model, grading.WithScorerLogger(cfg.Logger)), grading.WithGraderLogger(cfg.Logger)),
		searcher,
		engine.NewLLMGenerator(model, engine.WithGeneratorLogger(cfg.Logger)),
		engine.WithLogger(cfg.Logger),
	)

	return &Companion{
		engine:   eng,
		sessions: cfg.Sessions,
		logger:   cfg.Logger,
	}, nil
}

// NewWithEngine assembles a Companion around an already-built engine.
// Useful for tests and custom wirings.
func NewWithEngine(eng *engine.Engine, sessions sessionstore.SessionStore, logger *slog.Logger) *Companion {
	if sessions == nil {
		sessions = sessionstore.NewSimpleSessionStore()
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return &Companion{engine: eng, sessions: sessions, logger: logger}
}

// Ask answers a question against the given history and returns the answer
// plus the updated history. The session store is not involved; the caller
// owns the history.
func (c *Companion) Ask(ctx context.Context, question string, history schema.History) (string, schema.History, error) {
	state, err := c.engine.Ask(ctx, question, history)
	if err != nil {
		return "", nil, err
	}
	return state.Generation, state.History, nil
}

// AskSession answers a question within a stored session: history is read
// from the store before the turn and written back after a successful one.
// A failed turn leaves the stored history untouched.
func (c *Companion) AskSession(ctx context.Context, sessionID, question string) (string, schema.History, error) {
	history, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load session: %w", err)
	}

	answer, updated, err := c.Ask(ctx, question, history)
	if err != nil {
		return "", nil, err
	}

	if err := c.sessions.Set(ctx, sessionID, updated); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}
	return answer, updated, nil
}

// BuildIndex builds the vector index from a directory of PDF files using
// the configured chunking and embedding settings.
func BuildIndex(ctx context.Context, cfg Config, pdfDir string) error {
	cfg.applyDefaults()

	store, err := retrieval.NewChromemStore(cfg.IndexPath, cfg.CollectionName)
	if err != nil {
		return err
	}

	embedOpts := []embedding.HuggingFaceEmbeddingOption{
		embedding.WithHuggingFaceModel(cfg.EmbeddingModel),
	}
	if cfg.HuggingFaceAPIKey != "" {
		embedOpts = append(embedOpts, embedding.WithHuggingFaceAPIKey(cfg.HuggingFaceAPIKey))
	}
	embedModel := embedding.NewHuggingFaceEmbedding(embedOpts...)

	tokenizer, err := textsplitter.NewTikTokenTokenizer("")
	if err != nil {
		return fmt.Errorf("failed to create tokenizer: %w", err)
	}

	splitter, err := textsplitter.NewSentenceSplitter(cfg.ChunkSize, cfg.ChunkOverlap, tokenizer)
	if err != nil {
		return fmt.Errorf("failed to create text splitter: %w", err)
	}

	ingestor := retrieval.NewIngestor(store, embedModel, splitter,
		retrieval.WithIngestorLogger(cfg.Logger),
	)
	return ingestor.IngestPDFDir(ctx, pdfDir)
}
