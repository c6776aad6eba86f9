package casepipe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightExtractor_ModeHelpers(t *testing.T) {
	var gotMode Mode
	engine := InsightEngineFunc(func(ctx context.Context, text string, mode Mode) (Insight, error) {
		gotMode = mode
		return Insight{Metadata: map[string]any{"ok": true}}, nil
	})
	x := NewInsightExtractor(engine, discardLogger())

	_, err := x.ExtractMetadata(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, ModeDefault, gotMode)

	_, err = x.ExtractWithSuggestion(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, ModeAll, gotMode)
}

func TestInsightExtractor_WrapsEngineError(t *testing.T) {
	engine := InsightEngineFunc(func(ctx context.Context, text string, mode Mode) (Insight, error) {
		return Insight{}, errors.New("bad model response")
	})
	x := NewInsightExtractor(engine, discardLogger())

	_, err := x.Analyze(context.Background(), "text", ModeAll)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insight analysis")
	assert.Contains(t, err.Error(), "bad model response")
}

func TestSplitUseCases(t *testing.T) {
	accepted := []UseCase{{Goal: NewGoal("a")}}
	suggested := []UseCase{{Goal: NewGoal("s")}}
	plain := []UseCase{{Goal: NewGoal("p")}}

	t.Run("all mode with explicit split", func(t *testing.T) {
		acc, sug := splitUseCases(Insight{Accepted: accepted, Suggested: suggested}, ModeAll)
		assert.Equal(t, accepted, acc)
		assert.Equal(t, suggested, sug)
	})

	t.Run("plain use_cases treated as accepted", func(t *testing.T) {
		acc, sug := splitUseCases(Insight{UseCases: plain}, ModeAll)
		assert.Equal(t, plain, acc)
		assert.Empty(t, sug)
	})

	t.Run("default mode drops suggestions", func(t *testing.T) {
		acc, sug := splitUseCases(Insight{UseCases: plain, Suggested: suggested}, ModeDefault)
		assert.Equal(t, plain, acc)
		assert.Nil(t, sug)
	})
}
