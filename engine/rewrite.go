package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/aqua777/ayurveda-companion/llm"
)

const rewritePromptTmpl = `Act as a question re-writer and perform the following task:
- Convert the following input question to a better version that is optimized for web search.
- When re-writing, look at the input question and try to reason about the underlying semantic intent / meaning.

Here is the initial question:
%s

Formulate an improved question.`

// RewriteQuery rephrases a question for better web search recall. It is a
// standalone helper, not a node in the turn graph: the graph searches with
// the original question.
func RewriteQuery(ctx context.Context, model llm.LLM, question string) (string, error) {
	rewritten, err := model.Complete(ctx, fmt.Sprintf(rewritePromptTmpl, question))
	if err != nil {
		return "", fmt.Errorf("failed to rewrite query: %w", err)
	}
	return strings.TrimSpace(rewritten), nil
}
