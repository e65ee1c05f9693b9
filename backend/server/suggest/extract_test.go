package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEnvelopeFencedBlock(t *testing.T) {
	text := "```json\n{\"content\": \"Plan\", \"suggestion\": {\"title\": \"Learn Go\"}}\n```\n"

	out, err := extractEnvelope(text)
	require.NoError(t, err)
	assert.Equal(t, "Plan", out["content"])
	assert.Equal(t, map[string]any{"title": "Learn Go"}, out["suggestion"])
}

func TestExtractEnvelopeSurroundedByProse(t *testing.T) {
	text := `Sure! Here's what I came up with: {"content": "a {brace} in text", "suggestion": {"title": "x"}} Hope it helps.`

	out, err := extractEnvelope(text)
	require.NoError(t, err)
	assert.Equal(t, "a {brace} in text", out["content"])
}

func TestExtractEnvelopeJavaScriptLiteral(t *testing.T) {
	text := "```javascript\n{\n  type: 'bot',\n  content: \"It's a plan\",\n  suggestion: {\n    \"title\": 'Run',\n    \"milestones\": [\n      {\"id\": 1, \"title\": \"Start\", \"completed\": false,},\n    ],\n  },\n}\n```"

	out, err := extractEnvelope(text)
	require.NoError(t, err)
	assert.Equal(t, "bot", out["type"])
	assert.Equal(t, "It's a plan", out["content"])
	sug, ok := out["suggestion"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Run", sug["title"])
}

func TestExtractEnvelopeFailures(t *testing.T) {
	_, err := extractEnvelope("   ")
	assert.ErrorIs(t, err, errEmptyResponse)

	_, err = extractEnvelope("I cannot help with that.")
	assert.Error(t, err)

	_, err = extractEnvelope(`{"content": "unterminated`)
	assert.Error(t, err)
}

func TestRelax(t *testing.T) {
	assert.Equal(t, `{"a": "b", "c": [1, 2]}`, relax(`{a: 'b', c: [1, 2,],}`))
	assert.Equal(t, `{"q": "say \"hi\""}`, relax(`{q: 'say "hi"'}`))
	assert.Equal(t, `{"ok": true, "n": null}`, relax(`{ok: true, n: null}`))
}
