package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aqua777/ayurveda-companion/emotion"
	"github.com/aqua777/ayurveda-companion/grading"
	"github.com/aqua777/ayurveda-companion/retrieval"
	"github.com/aqua777/ayurveda-companion/schema"
	"github.com/aqua777/ayurveda-companion/websearch"
)

// Node names in the turn graph.
const (
	NodeDetectEmotion  = "detect_emotion"
	NodeRetrieve       = "retrieve"
	NodeGradeDocuments = "grade_documents"
	NodeWebSearch      = "web_search"
	NodeGenerate       = "generate"

	nodeEnd = "end"
)

// WebSourceName marks the synthetic document built from web results.
const WebSourceName = "web_search"

// Route maps a grading decision to the next node. It is the single
// conditional edge in the graph: only an explicit needs-web-search
// decision detours through the web, anything else generates directly.
func Route(d Decision) string {
	if d == DecisionNeedsWebSearch {
		return NodeWebSearch
	}
	return NodeGenerate
}

// fallback is a stage's declared safe default, applied to the state when
// the stage fails. Stages without a fallback are fatal for the turn.
type fallback func(*TurnState)

// fallbacks is the per-stage failure policy. Grading and generation are
// deliberately absent: their failures propagate and the turn produces no
// answer.
var fallbacks = map[string]fallback{
	NodeDetectEmotion: func(s *TurnState) { s.Emotion = emotion.EmotionNeutral },
	NodeRetrieve:      func(s *TurnState) { s.Documents = nil },
	NodeWebSearch:     func(s *TurnState) {},
}

type node struct {
	run  func(ctx context.Context, state *TurnState) error
	next func(state *TurnState) string
}

// Engine runs the question-answering graph over injected collaborators.
type Engine struct {
	classifier emotion.Classifier
	retriever  retrieval.Retriever
	grader     *grading.Grader
	searcher   websearch.Searcher
	generator  Generator
	logger     *slog.Logger

	nodes map[string]node
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine over the given collaborators.
func New(classifier emotion.Classifier, retriever retrieval.Retriever, grader *grading.Grader, searcher websearch.Searcher, generator Generator, opts ...Option) *Engine {
	e := &Engine{
		classifier: classifier,
		retriever:  retriever,
		grader:     grader,
		searcher:   searcher,
		generator:  generator,
		logger:     slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.nodes = map[string]node{
		NodeDetectEmotion: {
			run:  e.detectEmotion,
			next: func(*TurnState) string { return NodeRetrieve },
		},
		NodeRetrieve: {
			run:  e.retrieve,
			next: func(*TurnState) string { return NodeGradeDocuments },
		},
		NodeGradeDocuments: {
			run:  e.gradeDocuments,
			next: func(s *TurnState) string { return Route(s.Decision) },
		},
		NodeWebSearch: {
			run:  e.webSearch,
			next: func(*TurnState) string { return NodeGenerate },
		},
		NodeGenerate: {
			run:  e.generate,
			next: func(*TurnState) string { return nodeEnd },
		},
	}
	return e
}

// Ask runs one full turn for a question against the given history and
// returns the final state. The input history is not mutated; on success
// the returned state's history carries the new exchange appended at the
// end. On failure the turn produces no answer and the history is
// unchanged.
func (e *Engine) Ask(ctx context.Context, question string, history schema.History) (*TurnState, error) {
	state := &TurnState{
		Question: question,
		Emotion:  emotion.EmotionNeutral,
		History:  history.Clone(),
	}

	current := NodeDetectEmotion
	for current != nodeEnd {
		n, ok := e.nodes[current]
		if !ok {
			return nil, fmt.Errorf("unknown graph node %q", current)
		}

		if err := n.run(ctx, state); err != nil {
			fb, degradable := fallbacks[current]
			if !degradable {
				return nil, fmt.Errorf("%s: %w", current, err)
			}
			e.logger.Warn("stage failed, continuing with default", "node", current, "error", err)
			fb(state)
		}

		current = n.next(state)
	}

	return state, nil
}

func (e *Engine) detectEmotion(ctx context.Context, state *TurnState) error {
	detected, err := e.classifier.Classify(ctx, state.Question)
	if err != nil {
		return err
	}
	state.Emotion = detected
	return nil
}

func (e *Engine) retrieve(ctx context.Context, state *TurnState) error {
	docs, err := e.retriever.Retrieve(ctx, state.Question)
	if err != nil {
		return err
	}
	state.Documents = docs
	return nil
}

func (e *Engine) gradeDocuments(ctx context.Context, state *TurnState) error {
	result, err := e.grader.Grade(ctx, state.Question, state.Documents)
	if err != nil {
		return err
	}

	state.Documents = result.Kept
	if result.NeedsWebSearch {
		state.Decision = DecisionNeedsWebSearch
	} else {
		state.Decision = DecisionSufficient
	}
	return nil
}

func (e *Engine) webSearch(ctx context.Context, state *TurnState) error {
	results, err := e.searcher.Search(ctx, state.Question)
	if err != nil {
		return err
	}

	merged := websearch.MergeSnippets(results)
	if merged == "" {
		return nil
	}
	state.Documents = append(state.Documents, schema.NewDocumentWithSource(merged, WebSourceName))
	return nil
}

func (e *Engine) generate(ctx context.Context, state *TurnState) error {
	answer, err := e.generator.Generate(ctx, state.Question, state.Documents, state.History, state.Emotion)
	if err != nil {
		return err
	}

	state.Generation = answer
	state.History = state.History.Append(schema.Exchange{User: state.Question, Bot: answer})
	return nil
}
