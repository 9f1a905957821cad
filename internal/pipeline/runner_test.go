package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/dialognorm/config"
	"github.com/grovetools/dialognorm/internal/dialogue"
	"github.com/grovetools/dialognorm/internal/source"
)

const week1Transcript = `Task 1:
You said: Hello there my friend
English Conversational Partner said: Hi, how are you doing?
You said: I am doing fine thanks
Task 2:
You said: Let us continue the practice
English Conversational Partner said: Sure thing, my friend
`

type pipelineFixture struct {
	cfg *config.Config
	raw string
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	cfg := config.Default()
	cfg.RawDir = t.TempDir()
	cfg.ExtractedDir = t.TempDir()
	cfg.ProcessedDir = t.TempDir()
	cfg.Defaults.TasksPerWeek = 2
	cfg.Workers = 2
	return &pipelineFixture{cfg: cfg, raw: cfg.RawDir}
}

func (f *pipelineFixture) addDocument(t *testing.T, student, week int, extracted string) source.DocumentInfo {
	t.Helper()
	name := filepath.Join(f.raw, fmt.Sprintf("#%d. Week%d.docx", student, week))
	require.NoError(t, os.WriteFile(name, []byte("binary"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(f.cfg.ExtractedDir, fmt.Sprintf("S%d_W%d.txt", student, week)),
		[]byte(extracted), 0o644))
	return source.DocumentInfo{
		StudentID:     student,
		Week:          week,
		Path:          name,
		Suffix:        ".docx",
		Locale:        "en",
		ExpectedTasks: f.cfg.Defaults.TasksPerWeek,
		ModTime:       time.Now().Add(-time.Minute),
	}
}

func (f *pipelineFixture) runner() *Runner {
	return NewRunner(f.cfg, &source.FileExtractor{ExtractedDir: f.cfg.ExtractedDir})
}

func TestRunWritesArtifactsPerTask(t *testing.T) {
	f := newPipelineFixture(t)
	doc := f.addDocument(t, 1, 1, week1Transcript)

	report := f.runner().Run(context.Background(), []source.DocumentInfo{doc}, Options{})

	assert.False(t, report.HasErrors())
	assert.Empty(t, report.Warnings)
	require.Len(t, report.Processed, 2)

	assert.Equal(t, 1, report.Processed[0].Task)
	assert.Equal(t, 3, report.Processed[0].Turns)
	assert.Equal(t, 2, report.Processed[1].Task)
	assert.Equal(t, 2, report.Processed[1].Turns)

	d, err := dialogue.Read(filepath.Join(f.cfg.ProcessedDir, "S1_W1_T1.json"))
	require.NoError(t, err)
	assert.Equal(t, "S1_W1_T1", d.DialogueID)
	require.Len(t, d.Turns, 3)
	assert.Equal(t, "Hello there my friend", d.Turns[0].Text)
}

func TestRunContinuesPastFailedDocument(t *testing.T) {
	f := newPipelineFixture(t)
	good := f.addDocument(t, 1, 1, week1Transcript)
	locked := f.addDocument(t, 2, 1, week1Transcript)
	require.NoError(t, os.WriteFile(
		filepath.Join(f.raw, "~$"+filepath.Base(locked.Path)), []byte("lock"), 0o644))

	report := f.runner().Run(context.Background(), []source.DocumentInfo{good, locked}, Options{})

	require.Len(t, report.Processed, 2, "the healthy document still produces its artifacts")
	require.Len(t, report.Errors, 1)
	assert.Equal(t, KindResourceLocked, report.Errors[0].Kind)
	assert.Equal(t, locked.Path, report.Errors[0].Source)
}

func TestRunRecordsUnclassifiedDocument(t *testing.T) {
	f := newPipelineFixture(t)
	doc := f.addDocument(t, 3, 1, "Hi")

	report := f.runner().Run(context.Background(), []source.DocumentInfo{doc}, Options{})

	require.Len(t, report.Errors, 1)
	assert.Equal(t, KindUnclassified, report.Errors[0].Kind)
	assert.Empty(t, report.Processed)
}

func TestRunTaskCountMismatchWarning(t *testing.T) {
	f := newPipelineFixture(t)
	oneTask := `Task 1:
You said: Hello there my friend
English Conversational Partner said: Hi, how are you doing?
`
	doc := f.addDocument(t, 1, 1, oneTask)

	report := f.runner().Run(context.Background(), []source.DocumentInfo{doc}, Options{})

	assert.False(t, report.HasErrors())
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, KindTaskCountMismatch, report.Warnings[0].Kind)
	require.Len(t, report.Processed, 1, "best-effort split still writes what was found")
}

func TestRunSkipsUpToDateArtifacts(t *testing.T) {
	f := newPipelineFixture(t)
	doc := f.addDocument(t, 1, 1, week1Transcript)

	first := f.runner().Run(context.Background(), []source.DocumentInfo{doc}, Options{})
	require.Len(t, first.Processed, 2)

	second := f.runner().Run(context.Background(), []source.DocumentInfo{doc}, Options{})
	assert.Empty(t, second.Processed)
	require.Len(t, second.Skipped, 1)
	assert.Equal(t, "up-to-date", second.Skipped[0].Reason)

	third := f.runner().Run(context.Background(), []source.DocumentInfo{doc}, Options{Force: true})
	assert.Len(t, third.Processed, 2, "force reprocesses regardless of artifact freshness")
}

func TestRunReprocessingIsIdempotent(t *testing.T) {
	f := newPipelineFixture(t)
	doc := f.addDocument(t, 1, 1, week1Transcript)

	f.runner().Run(context.Background(), []source.DocumentInfo{doc}, Options{Force: true})
	before, err := os.ReadFile(filepath.Join(f.cfg.ProcessedDir, "S1_W1_T1.json"))
	require.NoError(t, err)

	f.runner().Run(context.Background(), []source.DocumentInfo{doc}, Options{Force: true})
	after, err := os.ReadFile(filepath.Join(f.cfg.ProcessedDir, "S1_W1_T1.json"))
	require.NoError(t, err)

	assert.Equal(t, string(before), string(after), "reprocessing regenerates identical artifacts")
}

func TestRunDryRunWritesNothing(t *testing.T) {
	f := newPipelineFixture(t)
	doc := f.addDocument(t, 1, 1, week1Transcript)

	report := f.runner().Run(context.Background(), []source.DocumentInfo{doc}, Options{DryRun: true})

	require.Len(t, report.Processed, 2)
	entries, err := os.ReadDir(f.cfg.ProcessedDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunCancelledContext(t *testing.T) {
	f := newPipelineFixture(t)
	doc := f.addDocument(t, 1, 1, week1Transcript)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := f.runner().Run(ctx, []source.DocumentInfo{doc}, Options{})
	assert.Empty(t, report.Processed)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "cancelled", report.Skipped[0].Reason)
}

func TestRunConfiguredLabelSet(t *testing.T) {
	f := newPipelineFixture(t)
	f.cfg.LabelSets = map[string]config.LabelSet{
		"es": {Learner: "Tú dijiste", Bot: "Compañero dijo"},
	}
	transcript := `Task 1:
Tú dijiste: Hola, ¿cómo estás hoy?
Compañero dijo: Muy bien, gracias por preguntar
Task 2:
Tú dijiste: Sigamos practicando juntos
Compañero dijo: Claro que sí, amigo
`
	doc := f.addDocument(t, 5, 1, transcript)
	doc.Locale = "es"

	report := f.runner().Run(context.Background(), []source.DocumentInfo{doc}, Options{})

	assert.False(t, report.HasErrors())
	require.Len(t, report.Processed, 2)
	assert.Equal(t, "labels", report.Processed[0].Strategy)
}
