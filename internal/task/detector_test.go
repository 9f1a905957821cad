package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/dialognorm/internal/transcript"
)

func header(text string) transcript.UtteranceBlock {
	return transcript.UtteranceBlock{Text: text, Header: true}
}

func utterance(text string) transcript.UtteranceBlock {
	return transcript.UtteranceBlock{Text: text, Speaker: transcript.SpeakerLearner}
}

func TestMatchMarker(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		match  bool
		number int
	}{
		{"plain", "Task 1:", true, 1},
		{"typo", "TAKS 2:", true, 2},
		{"plural", "Tasks 3:", true, 3},
		{"portuguese", "Tarefa 2:", true, 2},
		{"exercise", "Exercise 1.", true, 1},
		{"activity_fullwidth", "Activity 3：", true, 3},
		{"bare_marker", "Task:", true, 0},
		{"leading_space", "  Task 2:", true, 2},
		{"not_a_marker", "I finished the task yesterday", false, 0},
		{"digit_no_separator", "Task 2", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := MatchMarker(tt.line)
			assert.Equal(t, tt.match, ok)
			if tt.match {
				assert.Equal(t, tt.number, b.TaskNumber)
			}
		})
	}
}

func TestMatchMarkerSpecificity(t *testing.T) {
	numbered, ok := MatchMarker("Task 2:")
	require.True(t, ok)
	bare, ok := MatchMarker("Task:")
	require.True(t, ok)
	assert.Greater(t, numbered.Specificity, bare.Specificity)
}

func TestDetectExactMatch(t *testing.T) {
	blocks := []transcript.UtteranceBlock{
		header("Task 1:"),
		utterance("Hello there my friend"),
		utterance("Hi, how are you today"),
		header("Task 2:"),
		utterance("Let us continue practicing"),
	}
	split := NewDetector().Detect(blocks, 2)

	assert.Nil(t, split.Mismatch)
	require.Len(t, split.Groups, 2)
	assert.Len(t, split.Groups[0], 2)
	assert.Len(t, split.Groups[1], 1)
}

func TestDetectPreambleMergesIntoFirstTask(t *testing.T) {
	blocks := []transcript.UtteranceBlock{
		utterance("Warmup chat before any marker"),
		header("Task 1:"),
		utterance("First task dialogue here"),
		utterance("More first task dialogue"),
		header("Task 2:"),
		utterance("Second task dialogue here"),
	}
	split := NewDetector().Detect(blocks, 2)

	require.Len(t, split.Groups, 2)
	assert.Len(t, split.Groups[0], 3, "content before the first marker belongs to task 1")
	assert.Len(t, split.Groups[1], 1)
}

func TestDetectCollapsesAdjacentMarkers(t *testing.T) {
	blocks := []transcript.UtteranceBlock{
		header("Task:"),
		header("Task 1:"),
		utterance("First task dialogue here"),
		utterance("More first task dialogue"),
		header("Task 2:"),
		utterance("Second task dialogue here"),
	}
	split := NewDetector().Detect(blocks, 2)

	assert.Nil(t, split.Mismatch)
	require.Len(t, split.Boundaries, 2)
	assert.Equal(t, 1, split.Boundaries[0].TaskNumber,
		"the digit-bearing marker wins over the adjacent bare one")
	require.Len(t, split.Groups, 2)
}

func TestDetectExcessMarkersPreferDigits(t *testing.T) {
	blocks := []transcript.UtteranceBlock{
		header("Task 1:"),
		utterance("First task dialogue here"),
		utterance("More first task dialogue"),
		header("Activity:"),
		utterance("Stray marker dialogue one"),
		utterance("Stray marker dialogue two"),
		header("Task 2:"),
		utterance("Second task dialogue here"),
	}
	split := NewDetector().Detect(blocks, 2)

	require.NotNil(t, split.Mismatch)
	assert.Equal(t, 2, split.Mismatch.Expected)
	assert.Equal(t, 3, split.Mismatch.Detected)

	require.Len(t, split.Groups, 2)
	assert.Len(t, split.Groups[0], 4, "dialogue after the dropped marker stays in the surrounding task")
	assert.Len(t, split.Groups[1], 1)
}

func TestDetectFewerMarkersBestEffort(t *testing.T) {
	blocks := []transcript.UtteranceBlock{
		header("Task 1:"),
		utterance("Only task dialogue here"),
		utterance("More of the only task"),
	}
	split := NewDetector().Detect(blocks, 3)

	require.NotNil(t, split.Mismatch)
	assert.Equal(t, 3, split.Mismatch.Expected)
	assert.Equal(t, 1, split.Mismatch.Detected)
	require.Len(t, split.Groups, 1, "boundaries are never fabricated")
}

func TestDetectNoMarkersSingleGroup(t *testing.T) {
	blocks := []transcript.UtteranceBlock{
		utterance("Hello there my friend"),
		utterance("Hi, how are you today"),
	}
	split := NewDetector().Detect(blocks, 3)

	require.NotNil(t, split.Mismatch)
	assert.Equal(t, 1, split.Mismatch.Detected)
	require.Len(t, split.Groups, 1)
	assert.Len(t, split.Groups[0], 2)
}

func TestDetectIgnoresDialogueBlocks(t *testing.T) {
	blocks := []transcript.UtteranceBlock{
		header("Task 1:"),
		utterance("Task 2: is what the partner wrote inside the chat"),
		utterance("More dialogue for the first task"),
	}
	split := NewDetector().Detect(blocks, 1)

	assert.Nil(t, split.Mismatch)
	require.Len(t, split.Groups, 1)
	assert.Len(t, split.Groups[0], 2, "marker-like text inside dialogue is not a boundary")
}
