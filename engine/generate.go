package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aqua777/ayurveda-companion/emotion"
	"github.com/aqua777/ayurveda-companion/llm"
	"github.com/aqua777/ayurveda-companion/schema"
)

// Generator produces the final answer from the accumulated turn context.
type Generator interface {
	Generate(ctx context.Context, question string, docs []schema.Document, history schema.History, tone emotion.Emotion) (string, error)
}

// emotionGuidelines maps each detected tone to the register the answer
// should take.
var emotionGuidelines = map[emotion.Emotion]string{
	emotion.EmotionHappy:   "Be enthusiastic, use emojis occasionally",
	emotion.EmotionSad:     "Show empathy, offer gentle suggestions",
	emotion.EmotionAngry:   "Stay calm, be solution-focused",
	emotion.EmotionNeutral: "Be concise and factual",
}

// BuildAnswerPrompt composes the generation prompt: role instructions, the
// tone guideline for the detected emotion, the conversation transcript,
// the context documents joined by blank lines, and the question.
func BuildAnswerPrompt(question string, docs []schema.Document, history schema.History, tone emotion.Emotion) string {
	guideline, ok := emotionGuidelines[tone]
	if !ok {
		guideline = emotionGuidelines[emotion.EmotionNeutral]
	}

	var b strings.Builder
	b.WriteString("[Role] You are an Ayurveda expert assistant. You are only capable of giving\n")
	b.WriteString("a. general friendly responses and\n")
	b.WriteString("b. anything related to Ayurvedic medicines and surgery.\n")
	fmt.Fprintf(&b, "Consider the user's emotion: %s\n\n", tone)
	fmt.Fprintf(&b, "[Emotion Guidelines]\n%s\n\n", guideline)
	fmt.Fprintf(&b, "[Chat History]\n%s\n\n", schema.FormatHistory(history))
	fmt.Fprintf(&b, "[Relevant Context]\n%s\n\n", schema.JoinDocuments(docs))
	fmt.Fprintf(&b, "[Current Question]\n%s\n\n", question)
	b.WriteString("[Response]\n")
	return b.String()
}

// LLMGenerator generates answers with an LLM completion over the composed
// prompt.
type LLMGenerator struct {
	llm    llm.LLM
	logger *slog.Logger
}

// LLMGeneratorOption configures an LLMGenerator.
type LLMGeneratorOption func(*LLMGenerator)

// WithGeneratorLogger sets the logger.
func WithGeneratorLogger(logger *slog.Logger) LLMGeneratorOption {
	return func(g *LLMGenerator) {
		g.logger = logger
	}
}

// NewLLMGenerator creates an LLMGenerator.
func NewLLMGenerator(model llm.LLM, opts ...LLMGeneratorOption) *LLMGenerator {
	g := &LLMGenerator{
		llm:    model,
		logger: slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces the answer text. A model failure propagates.
func (g *LLMGenerator) Generate(ctx context.Context, question string, docs []schema.Document, history schema.History, tone emotion.Emotion) (string, error) {
	prompt := BuildAnswerPrompt(question, docs, history, tone)
	answer, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	g.logger.Debug("generated answer", "emotion", string(tone), "documents", len(docs))
	return strings.TrimSpace(answer), nil
}

// Ensure LLMGenerator implements the interface.
var _ Generator = (*LLMGenerator)(nil)
