package llm

import "context"

// MockLLM is a mock implementation of the LLM interface.
// It can be configured to return specific responses or errors.
type MockLLM struct {
	// Response is the text response to return.
	Response string
	// Responses, if set, are returned in order across calls, repeating
	// the last entry once exhausted.
	Responses []string
	// Err is the error to return (if any).
	Err error
	// Prompts records every prompt passed to Complete.
	Prompts []string

	calls int
}

// NewMockLLM creates a new MockLLM with a simple response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithResponses creates a new MockLLM that returns the given
// responses in order.
func NewMockLLMWithResponses(responses []string) *MockLLM {
	return &MockLLM{Responses: responses}
}

// NewMockLLMWithError creates a new MockLLM that returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Err: err}
}

func (m *MockLLM) next() string {
	m.calls++
	if len(m.Responses) == 0 {
		return m.Response
	}
	idx := m.calls - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx]
}

// CallCount returns the number of calls made so far.
func (m *MockLLM) CallCount() int {
	return m.calls
}

func (m *MockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	return m.next(), m.Err
}

func (m *MockLLM) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	return m.next(), m.Err
}

func (m *MockLLM) Stream(ctx context.Context, prompt string) (<-chan string, error) {
	ch := make(chan string, 1)
	if m.Err != nil {
		close(ch)
		return ch, m.Err
	}
	ch <- m.next()
	close(ch)
	return ch, nil
}

// Ensure MockLLM implements the interface.
var _ LLM = (*MockLLM)(nil)
