package dialogue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/dialognorm/internal/transcript"
)

func validTurns() []transcript.Turn {
	return []transcript.Turn{
		{Number: 1, Speaker: transcript.SpeakerLearner, Text: "Hello there"},
		{Number: 2, Speaker: transcript.SpeakerBot, Text: "Hi, how are you"},
	}
}

func TestID(t *testing.T) {
	assert.Equal(t, "S18_W1_T2", ID(18, 1, 2))
}

func TestAssemble(t *testing.T) {
	d, err := Assemble(18, 1, 2, validTurns(), "#18. Week1.docx")
	require.NoError(t, err)
	assert.Equal(t, "S18_W1_T2", d.DialogueID)
	assert.Equal(t, 18, d.StudentID)
	assert.Equal(t, "#18. Week1.docx", d.SourceFile)
	assert.Len(t, d.Turns, 2)
}

func TestAssembleRejectsBadTurns(t *testing.T) {
	tests := []struct {
		name  string
		turns []transcript.Turn
	}{
		{"no_turns", nil},
		{"numbering_gap", []transcript.Turn{
			{Number: 1, Speaker: transcript.SpeakerLearner, Text: "Hello"},
			{Number: 3, Speaker: transcript.SpeakerBot, Text: "Hi"},
		}},
		{"numbering_not_from_one", []transcript.Turn{
			{Number: 2, Speaker: transcript.SpeakerLearner, Text: "Hello"},
		}},
		{"invalid_speaker", []transcript.Turn{
			{Number: 1, Speaker: "narrator", Text: "Hello"},
		}},
		{"empty_text", []transcript.Turn{
			{Number: 1, Speaker: transcript.SpeakerLearner, Text: ""},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(1, 1, 1, tt.turns, "doc.docx")
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	d, err := Assemble(18, 1, 2, validTurns(), "")
	require.NoError(t, err)

	assert.NoError(t, d.Validate(Expectation{StudentID: 18, Week: 1, Task: 2}))

	err = d.Validate(Expectation{StudentID: 18, Week: 2, Task: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMetadataMismatch))
}

func TestParseArtifactName(t *testing.T) {
	exp, err := ParseArtifactName("S18_W1_T2")
	require.NoError(t, err)
	assert.Equal(t, Expectation{StudentID: 18, Week: 1, Task: 2}, exp)

	for _, name := range []string{"S18_W1", "dialogue", "S18_W1_T2.json", ""} {
		_, err := ParseArtifactName(name)
		assert.Error(t, err, "name: %q", name)
	}
}
