package mock

import (
	"context"
	"sync"

	"github.com/poiesic/advisor/ai"
)

// CompleteCall records the arguments of one Complete call.
type CompleteCall struct {
	SystemPrompt string
	UserPrompt   string
	Options      ai.CompletionOptions
}

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, echoes a fixed answer.
	CompleteFunc func(ctx context.Context, systemPrompt, userPrompt string) (*ai.Completion, error)

	mu    sync.Mutex
	calls []CompleteCall
}

// DefaultAnswer is returned by Complete when no CompleteFunc is set.
const DefaultAnswer = "mock answer"

// NewMockCompleter creates a mock completer with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockCompleter().
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// WithResponse makes every call answer text.
func (m *MockCompleter) WithResponse(text string) *MockCompleter {
	m.CompleteFunc = func(context.Context, string, string) (*ai.Completion, error) {
		return &ai.Completion{Text: text}, nil
	}
	return m
}

// WithError makes every call fail with err.
func (m *MockCompleter) WithError(err error) *MockCompleter {
	m.CompleteFunc = func(context.Context, string, string) (*ai.Completion, error) {
		return nil, err
	}
	return m
}

// Complete records the call and answers.
func (m *MockCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, opts ...ai.CompletionOption) (*ai.Completion, error) {
	m.mu.Lock()
	m.calls = append(m.calls, CompleteCall{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Options:      ai.ApplyCompletionOptions(opts...),
	})
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userPrompt)
	}
	return &ai.Completion{Text: DefaultAnswer}, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns the recorded calls in order.
func (m *MockCompleter) Calls() []CompleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompleteCall(nil), m.calls...)
}

// LastCall returns the most recent call, or the zero value if none.
func (m *MockCompleter) LastCall() CompleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return CompleteCall{}
	}
	return m.calls[len(m.calls)-1]
}

// Reset clears recorded calls and custom functions.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.CompleteFunc = nil
}
