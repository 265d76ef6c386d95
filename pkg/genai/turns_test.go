package genai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTurns_RoleMapping(t *testing.T) {
	history := []HistoryMessage{
		{Role: "user", Content: "Define osmosis"},
		{Role: "assistant", Content: "Osmosis is the movement of water across a membrane."},
		{Role: "user", Content: "Give an example"},
	}

	turns := BuildTurns(history)
	require.Len(t, turns, 3)

	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, RoleModel, turns[1].Role)
	assert.Equal(t, RoleUser, turns[2].Role)

	for i, turn := range turns {
		require.Len(t, turn.Parts, 1)
		assert.Equal(t, history[i].Content, turn.Parts[0].Text, "content must pass through untouched")
	}
}

func TestBuildTurns_Empty(t *testing.T) {
	assert.Empty(t, BuildTurns(nil))
}
