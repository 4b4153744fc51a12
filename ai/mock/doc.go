// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Completer,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	completer := mock.NewMockCompleter().WithResponse("Take CSE 2231 next.")
//	answer, err := completer.Complete(ctx, system, prompt)
//	last := completer.LastCall()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockCompleter: Answers DefaultAnswer and records every call
//   - MockProvider: Aggregates mock embedder and completer
package mock
