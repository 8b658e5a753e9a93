package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weilunc/clipread/internal/gemini"
)

func TestHistoryWindowTruncatesOldTurns(t *testing.T) {
	turns := make([]chatTurn, 0, 30)
	for i := 0; i < 30; i++ {
		turns = append(turns, chatTurn{role: "user", parts: []gemini.Part{{Text: fmt.Sprintf("turn %d", i)}}})
	}
	window := historyWindow(turns)
	require.Len(t, window, 2*MaxRounds)
	require.Equal(t, "turn 6", window[0].Parts[0].Text)
	require.Equal(t, "turn 29", window[len(window)-1].Parts[0].Text)
}

func TestHistoryWindowKeepsShortHistory(t *testing.T) {
	turns := []chatTurn{
		{role: "user", parts: []gemini.Part{{Text: "hi"}}},
		{role: "model", parts: []gemini.Part{{Text: "hello"}}},
	}
	window := historyWindow(turns)
	require.Len(t, window, 2)
	require.Equal(t, "user", window[0].Role)
	require.Equal(t, "model", window[1].Role)
}
