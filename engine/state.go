// Package engine implements the question-answering workflow: emotion
// detection, retrieval, document grading, an optional web search, and
// emotion-aware answer generation, run as a directed graph over a single
// per-turn state.
package engine

import (
	"github.com/aqua777/ayurveda-companion/emotion"
	"github.com/aqua777/ayurveda-companion/schema"
)

// Decision is the outcome of grading: whether the retrieved context is
// sufficient on its own or must be supplemented from the web.
type Decision int

const (
	// DecisionUnset means grading has not run yet.
	DecisionUnset Decision = iota
	// DecisionSufficient means the corpus answers the question.
	DecisionSufficient
	// DecisionNeedsWebSearch means the corpus is insufficient.
	DecisionNeedsWebSearch
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case DecisionSufficient:
		return "sufficient"
	case DecisionNeedsWebSearch:
		return "needs_web_search"
	default:
		return "unset"
	}
}

// TurnState carries everything a single question-answering turn
// accumulates. It is created per call and never shared between turns.
type TurnState struct {
	// Question is the user's current question.
	Question string
	// Emotion is the detected tone of the question.
	Emotion emotion.Emotion
	// Documents are the context documents, in insertion order. Grading
	// filters them; a web search appends one synthetic document last.
	Documents []schema.Document
	// Decision is written by grading and read once by the router.
	Decision Decision
	// Generation is the final answer text.
	Generation string
	// History is the conversation so far. The engine appends the new
	// exchange exactly once, when generation succeeds.
	History schema.History
}
