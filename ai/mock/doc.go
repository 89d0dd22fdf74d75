// Package mock provides test double implementations of AI service interfaces.
//
// This package contains a mock implementation of ai.Embedder for use in unit
// tests. The mock allows tests to run without an embedding service and
// enables controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	embedder := mock.NewMockEmbedder()
//	vector, err := embedder.EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("embedding service down")
//	}
//
//	// Check call counts (e.g. to assert a synced article is not re-embedded)
//	count := embedder.CallCount()
//
// # Default Behavior
//
// By default the mock returns deterministic unit vectors derived from a hash
// of the input text, so equal texts always embed to equal vectors.
package mock
