package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeWithConfig_Pipeline(t *testing.T) {
	tokens := AnalyzeWithConfig("The Quick Brown Fox Jumps Over The Lazy Dog", DefaultConfig())
	assert.NotContains(t, tokens, "the")
	assert.Contains(t, tokens, "quick")
	assert.Contains(t, tokens, "jump")
}

func TestAnalyzeQuery_StopwordSymmetry(t *testing.T) {
	withStop := AnalyzeQuery("the ACM")
	withoutStop := AnalyzeQuery("ACM")
	assert.Equal(t, withoutStop, withStop, "stop-word symmetry: 'the ACM' and 'ACM' must analyze identically")
}

func TestAnalyzeQuery_DropsStopwordsButKeepsDigitsAndShortTokens(t *testing.T) {
	tokens := AnalyzeQuery("a 2024 go")
	assert.NotContains(t, tokens, "a", "stop-words are still filtered")
	assert.Contains(t, tokens, "2024", "query analysis has no digit filter, unlike indexing")
	assert.Contains(t, tokens, "go", "query analysis has no minimum-length filter, unlike indexing")
}

func TestExtractContent_PrefersMainOverBody(t *testing.T) {
	raw := `<html><body><nav>menu</nav><main>machine learning research</main><footer>copyright</footer></body></html>`
	extracted, ok := ExtractContent(raw)
	require.True(t, ok)
	assert.Contains(t, extracted.MainText, "machine learning research")
	assert.NotContains(t, extracted.MainText, "menu")
	assert.NotContains(t, extracted.MainText, "copyright")
}

func TestExtractContent_FallsBackToBody(t *testing.T) {
	raw := `<html><head><title>Home</title></head><body>just body text</body></html>`
	extracted, ok := ExtractContent(raw)
	require.True(t, ok)
	assert.Equal(t, "home", extracted.Title)
	assert.Contains(t, extracted.MainText, "just body text")
}

func TestExtractContent_CapturesHeadings(t *testing.T) {
	raw := `<html><body><h1>Welcome</h1><main>content here</main></body></html>`
	extracted, ok := ExtractContent(raw)
	require.True(t, ok)
	assert.Contains(t, extracted.Headings, "welcome")
}

func TestAnalyze_ScenarioCorpus(t *testing.T) {
	tokens, _, ok := Analyze("<html><body>machine learning research</body></html>")
	require.True(t, ok)
	assert.Equal(t, []string{"machin", "learn", "research"}, tokens)
}
