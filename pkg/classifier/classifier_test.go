package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCandidatesPlainJSON(t *testing.T) {
	candidates, err := parseCandidates(`[{"name": "cancel", "confidence": 0.9, "parameters": {}}]`)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "cancel", candidates[0].Name)
	assert.Equal(t, 0.9, candidates[0].Confidence)
}

func TestParseCandidatesMarkdownFence(t *testing.T) {
	response := "```json\n[{\"name\": \"start_task\", \"confidence\": 0.8}]\n```"
	candidates, err := parseCandidates(response)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "start_task", candidates[0].Name)
}

func TestParseCandidatesSurroundingProse(t *testing.T) {
	response := `Here are the candidates: [{"name": "help", "confidence": 0.7}] hope that helps`
	candidates, err := parseCandidates(response)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "help", candidates[0].Name)
}

func TestParseCandidatesMultiple(t *testing.T) {
	response := `[
		{"name": "add_comment", "confidence": 0.52, "parameters": {"text": "done"}},
		{"name": "create_incident", "confidence": 0.48}
	]`
	candidates, err := parseCandidates(response)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "done", candidates[0].Parameters["text"])
}

func TestParseCandidatesNoArray(t *testing.T) {
	_, err := parseCandidates("I think the user wants to cancel")
	assert.Error(t, err)
}

func TestParseCandidatesEmptyArray(t *testing.T) {
	_, err := parseCandidates("[]")
	assert.Error(t, err)
}

func TestParseCandidatesMalformedJSON(t *testing.T) {
	_, err := parseCandidates(`[{"name": cancel}]`)
	assert.Error(t, err)
}
