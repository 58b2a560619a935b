package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
)

// HuggingFaceInferenceAPIURL is the default HuggingFace Inference API endpoint.
const HuggingFaceInferenceAPIURL = "https://api-inference.huggingface.co"

// HFParaphraseMultilingualMpnet is the multilingual sentence-transformers
// model used for the Ayurveda corpus.
const HFParaphraseMultilingualMpnet = "sentence-transformers/paraphrase-multilingual-mpnet-base-v2"

// HuggingFaceEmbedding implements EmbeddingModel using the HuggingFace
// Inference API feature-extraction pipeline.
type HuggingFaceEmbedding struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// HuggingFaceEmbeddingOption configures a HuggingFaceEmbedding.
type HuggingFaceEmbeddingOption func(*HuggingFaceEmbedding)

// WithHuggingFaceAPIKey sets the API key.
func WithHuggingFaceAPIKey(apiKey string) HuggingFaceEmbeddingOption {
	return func(h *HuggingFaceEmbedding) {
		h.apiKey = apiKey
	}
}

// WithHuggingFaceBaseURL sets the base URL.
func WithHuggingFaceBaseURL(baseURL string) HuggingFaceEmbeddingOption {
	return func(h *HuggingFaceEmbedding) {
		h.baseURL = baseURL
	}
}

// WithHuggingFaceModel sets the model.
func WithHuggingFaceModel(model string) HuggingFaceEmbeddingOption {
	return func(h *HuggingFaceEmbedding) {
		h.model = model
	}
}

// WithHuggingFaceHTTPClient sets a custom HTTP client.
func WithHuggingFaceHTTPClient(client *http.Client) HuggingFaceEmbeddingOption {
	return func(h *HuggingFaceEmbedding) {
		h.httpClient = client
	}
}

// NewHuggingFaceEmbedding creates a new HuggingFace embedding client. The
// API key defaults to the HUGGINGFACE_API_KEY environment variable.
func NewHuggingFaceEmbedding(opts ...HuggingFaceEmbeddingOption) *HuggingFaceEmbedding {
	h := &HuggingFaceEmbedding{
		apiKey:     os.Getenv("HUGGINGFACE_API_KEY"),
		baseURL:    HuggingFaceInferenceAPIURL,
		model:      HFParaphraseMultilingualMpnet,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// GetTextEmbedding generates an embedding for a given text.
func (h *HuggingFaceEmbedding) GetTextEmbedding(ctx context.Context, text string) ([]float64, error) {
	return h.getEmbedding(ctx, text)
}

// GetQueryEmbedding generates an embedding for a given query.
func (h *HuggingFaceEmbedding) GetQueryEmbedding(ctx context.Context, query string) ([]float64, error) {
	return h.getEmbedding(ctx, query)
}

type hfInferenceRequest struct {
	Inputs  string `json:"inputs"`
	Options struct {
		WaitForModel bool `json:"wait_for_model"`
	} `json:"options,omitempty"`
}

func (h *HuggingFaceEmbedding) getEmbedding(ctx context.Context, text string) ([]float64, error) {
	reqBody := hfInferenceRequest{Inputs: text}
	reqBody.Options.WaitForModel = true

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", h.baseURL, h.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.logger.Error("embedding request failed", "model", h.model, "error", err)
		return nil, fmt.Errorf("huggingface request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface API error (%d): %s", resp.StatusCode, string(respBody))
	}

	// Sentence-transformers models return a flat vector; some pipelines
	// nest it one level deeper.
	var embedding []float64
	if err := json.Unmarshal(respBody, &embedding); err == nil {
		return embedding, nil
	}

	var nested [][]float64
	if err := json.Unmarshal(respBody, &nested); err == nil && len(nested) > 0 {
		return nested[0], nil
	}

	return nil, fmt.Errorf("unexpected embedding response shape: %s", string(respBody))
}

// Ensure HuggingFaceEmbedding implements the interface.
var _ EmbeddingModel = (*HuggingFaceEmbedding)(nil)
