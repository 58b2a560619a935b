// Package emotion classifies the emotional tone of a user question so the
// answer can adapt its register.
package emotion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aqua777/ayurveda-companion/llm"
)

// Emotion is the detected emotional tone of a question.
type Emotion string

const (
	EmotionHappy   Emotion = "happy"
	EmotionSad     Emotion = "sad"
	EmotionAngry   Emotion = "angry"
	EmotionNeutral Emotion = "neutral"
)

// ParseEmotion normalizes a raw classifier reply to one of the four known
// emotions. Anything unrecognized maps to neutral.
func ParseEmotion(raw string) Emotion {
	switch Emotion(strings.ToLower(strings.TrimSpace(raw))) {
	case EmotionHappy:
		return EmotionHappy
	case EmotionSad:
		return EmotionSad
	case EmotionAngry:
		return EmotionAngry
	default:
		return EmotionNeutral
	}
}

// Classifier detects the emotion of a question.
type Classifier interface {
	Classify(ctx context.Context, question string) (Emotion, error)
}

const classifyPromptTmpl = `Analyze the emotion of the following user input.
Respond ONLY with one word: happy, sad, angry, or neutral.

User input: %s

Emotion:`

// LLMClassifier detects emotion with a one-word completion from an LLM.
type LLMClassifier struct {
	llm    llm.LLM
	logger *slog.Logger
}

// LLMClassifierOption configures an LLMClassifier.
type LLMClassifierOption func(*LLMClassifier)

// WithClassifierLogger sets the logger.
func WithClassifierLogger(logger *slog.Logger) LLMClassifierOption {
	return func(c *LLMClassifier) {
		c.logger = logger
	}
}

// NewLLMClassifier creates an LLMClassifier.
func NewLLMClassifier(model llm.LLM, opts ...LLMClassifierOption) *LLMClassifier {
	c := &LLMClassifier{
		llm:    model,
		logger: slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify asks the LLM for the question's emotion. An unrecognized reply
// maps to neutral; an LLM failure is returned to the caller.
func (c *LLMClassifier) Classify(ctx context.Context, question string) (Emotion, error) {
	reply, err := c.llm.Complete(ctx, fmt.Sprintf(classifyPromptTmpl, question))
	if err != nil {
		return EmotionNeutral, fmt.Errorf("failed to classify emotion: %w", err)
	}

	result := ParseEmotion(reply)
	c.logger.Debug("classified emotion", "emotion", string(result))
	return result, nil
}

// Ensure LLMClassifier implements the interface.
var _ Classifier = (*LLMClassifier)(nil)
