package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStrategy is a scripted strategy for chain tests.
type fakeStrategy struct {
	name   string
	output string
	err    error
	calls  int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Extract(ctx context.Context, pageURL string) (string, error) {
	f.calls++
	return f.output, f.err
}

func longText() string {
	return strings.Repeat("body text ", 30)
}

func TestChain_FirstSuccessShortCircuits(t *testing.T) {
	first := &fakeStrategy{name: "a", output: longText()}
	second := &fakeStrategy{name: "b", output: longText()}
	chain := NewChain([]Strategy{first, second}, nil, 100)

	content, strategy, err := chain.Extract(context.Background(), "https://example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "a", strategy)
	assert.NotEmpty(t, content)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "later strategies must not run after a success")
}

func TestChain_FallsThroughFailures(t *testing.T) {
	failing := &fakeStrategy{name: "a", err: errors.New("fetch failed")}
	short := &fakeStrategy{name: "b", output: "too short"}
	good := &fakeStrategy{name: "c", output: longText()}
	chain := NewChain([]Strategy{failing, short, good}, nil, 100)

	content, strategy, err := chain.Extract(context.Background(), "https://example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "c", strategy)
	assert.NotEmpty(t, content)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, short.calls)
}

func TestChain_AllFail(t *testing.T) {
	a := &fakeStrategy{name: "a", err: errors.New("boom")}
	b := &fakeStrategy{name: "b", output: "tiny"}
	chain := NewChain([]Strategy{a, b}, nil, 100)

	_, _, err := chain.Extract(context.Background(), "https://example.com/x")
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestChain_PinnedDomainDoesNotCascade(t *testing.T) {
	first := &fakeStrategy{name: "a", output: longText()}
	pinnedButFailing := &fakeStrategy{name: "b", err: errors.New("render failed")}
	chain := NewChain(
		[]Strategy{first, pinnedButFailing},
		map[string]string{"pinned.example": "b"},
		100,
	)

	// The pinned domain only tries its pinned strategy, even though the
	// first strategy would have succeeded.
	_, _, err := chain.Extract(context.Background(), "https://pinned.example/story")
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Equal(t, 0, first.calls)
	assert.Equal(t, 1, pinnedButFailing.calls)

	// Other domains use the full chain.
	_, strategy, err := chain.Extract(context.Background(), "https://other.example/story")
	require.NoError(t, err)
	assert.Equal(t, "a", strategy)
}

func TestChain_UnknownPinnedStrategyIgnored(t *testing.T) {
	first := &fakeStrategy{name: "a", output: longText()}
	chain := NewChain([]Strategy{first}, map[string]string{"x.example": "nope"}, 100)

	_, strategy, err := chain.Extract(context.Background(), "https://x.example/story")
	require.NoError(t, err)
	assert.Equal(t, "a", strategy)
}

func TestChain_ContextCancellation(t *testing.T) {
	strategy := &fakeStrategy{name: "a", output: longText()}
	chain := NewChain([]Strategy{strategy}, nil, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := chain.Extract(ctx, "https://example.com/x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, strategy.calls)
}
