// Package grading scores retrieved documents for relevance to a question
// and decides whether the local corpus is sufficient to answer it.
package grading

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aqua777/ayurveda-companion/llm"
	"github.com/aqua777/ayurveda-companion/schema"
)

const (
	// MinScore is the floor of the grading scale, also used when a
	// grader reply cannot be parsed as a number at all.
	MinScore = 1.0
	// MaxScore is the ceiling of the grading scale.
	MaxScore = 5.0

	// DefaultKeepThreshold is the minimum score a document needs to be
	// kept as context, inclusive.
	DefaultKeepThreshold = 3.0
	// DefaultSearchThreshold is the average score below which the
	// corpus is considered insufficient.
	DefaultSearchThreshold = 4.0
)

// Scorer rates how relevant a document is to a question on a 1-5 scale.
// The reply is the raw model text; parsing is the caller's concern.
type Scorer interface {
	Score(ctx context.Context, question, document string) (string, error)
}

// ParseScore extracts a grading score from a raw model reply. Models often
// answer with fractional grades ("4.5"), so any numeric reply is accepted
// and clamped into the scale; only a non-numeric reply counts as MinScore.
func ParseScore(raw string) float64 {
	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return MinScore
	}
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

const scorePromptTmpl = `Rate the relevance of the following document to the question on a scale of 1 to 5,
where 1 means completely irrelevant and 5 means highly relevant.
Respond with only the number.

Question: %s

Document: %s

Score:`

// LLMScorer rates documents with a numeric completion from an LLM.
type LLMScorer struct {
	llm    llm.LLM
	logger *slog.Logger
}

// LLMScorerOption configures an LLMScorer.
type LLMScorerOption func(*LLMScorer)

// WithScorerLogger sets the logger.
func WithScorerLogger(logger *slog.Logger) LLMScorerOption {
	return func(s *LLMScorer) {
		s.logger = logger
	}
}

// NewLLMScorer creates an LLMScorer.
func NewLLMScorer(model llm.LLM, opts ...LLMScorerOption) *LLMScorer {
	s := &LLMScorer{
		llm:    model,
		logger: slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score asks the LLM to rate the document's relevance to the question.
func (s *LLMScorer) Score(ctx context.Context, question, document string) (string, error) {
	reply, err := s.llm.Complete(ctx, fmt.Sprintf(scorePromptTmpl, question, document))
	if err != nil {
		return "", fmt.Errorf("failed to score document: %w", err)
	}
	return reply, nil
}

// Ensure LLMScorer implements the interface.
var _ Scorer = (*LLMScorer)(nil)

// Result is the outcome of grading a set of retrieved documents.
type Result struct {
	// Kept holds the documents at or above the keep threshold, in their
	// original retrieval order.
	Kept []schema.Document
	// Scores holds the parsed score of every graded document, index
	// aligned with the input.
	Scores []float64
	// Average is the mean score over all graded documents, 0 when none
	// were graded.
	Average float64
	// NeedsWebSearch reports whether the corpus is insufficient and the
	// answer should be supplemented from the web.
	NeedsWebSearch bool
}

// Grader grades retrieved documents against a question.
type Grader struct {
	scorer          Scorer
	keepThreshold   float64
	searchThreshold float64
	logger          *slog.Logger
}

// GraderOption configures a Grader.
type GraderOption func(*Grader)

// WithKeepThreshold sets the minimum score for keeping a document.
func WithKeepThreshold(threshold float64) GraderOption {
	return func(g *Grader) {
		g.keepThreshold = threshold
	}
}

// WithSearchThreshold sets the average score below which web search is
// requested.
func WithSearchThreshold(threshold float64) GraderOption {
	return func(g *Grader) {
		g.searchThreshold = threshold
	}
}

// WithGraderLogger sets the logger.
func WithGraderLogger(logger *slog.Logger) GraderOption {
	return func(g *Grader) {
		g.logger = logger
	}
}

// NewGrader creates a Grader with the default thresholds.
func NewGrader(scorer Scorer, opts ...GraderOption) *Grader {
	g := &Grader{
		scorer:          scorer,
		keepThreshold:   DefaultKeepThreshold,
		searchThreshold: DefaultSearchThreshold,
		logger:          slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Grade scores every document against the question and applies the keep
// and search thresholds. The average covers all graded documents, kept or
// not. Grading no documents at all always requests a web search. A scorer
// failure aborts the whole grade.
func (g *Grader) Grade(ctx context.Context, question string, docs []schema.Document) (Result, error) {
	if len(docs) == 0 {
		return Result{NeedsWebSearch: true}, nil
	}

	result := Result{Scores: make([]float64, len(docs))}
	total := 0.0
	for i, doc := range docs {
		reply, err := g.scorer.Score(ctx, question, doc.Text)
		if err != nil {
			return Result{}, fmt.Errorf("failed to grade document %s: %w", doc.ID, err)
		}

		score := ParseScore(reply)
		result.Scores[i] = score
		total += score
		if score >= g.keepThreshold {
			result.Kept = append(result.Kept, doc)
		}
	}

	result.Average = total / float64(len(docs))
	result.NeedsWebSearch = result.Average < g.searchThreshold

	g.logger.Debug("graded documents",
		"total", len(docs),
		"kept", len(result.Kept),
		"average", result.Average,
		"web_search_needed", result.NeedsWebSearch,
	)
	return result, nil
}
