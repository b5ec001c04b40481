package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	SetVerbose(false)
	_ = SetLevel("info")
	SetFile("")
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	assert.Contains(t, buf.String(), "[DEBUG]")
	assert.Contains(t, buf.String(), "test message arg")
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")

	assert.Zero(t, buf.Len(), "expected no debug output at info level")
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Test Section")

	assert.Equal(t, "\n=== Test Section ===\n", buf.String())
}

func TestSection_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Section("Hidden")

	assert.Zero(t, buf.Len())
}

func TestInfo(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Info("info message %d", 42)

	assert.Contains(t, buf.String(), "[INFO]")
	assert.Contains(t, buf.String(), "info message 42")
}

func TestWarnAndError(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("warning message")
	Error("error %s", "message")

	assert.Contains(t, buf.String(), "[WARN] warning message")
	assert.Contains(t, buf.String(), "[ERROR] error message")
}

func TestSetLevel(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, SetLevel("WARN"))

	Info("suppressed")
	Warn("shown")

	assert.NotContains(t, buf.String(), "suppressed")
	assert.Contains(t, buf.String(), "shown")

	assert.Error(t, SetLevel("loud"))
}

func TestSetLevel_VerboseOverrides(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	require.NoError(t, SetLevel("error"))
	SetVerbose(true)

	Debug("visible")

	assert.Contains(t, buf.String(), "visible")
}

func TestEvent(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Event("ingest.pdf.done", "filename", "remedies.pdf", "chunks", 12)
	WarnEvent("ingest.pdf.no_text", "filename", "blank.pdf")

	out := buf.String()
	assert.Contains(t, out, "ingest.pdf.done")
	assert.Contains(t, out, "remedies.pdf")
	assert.Contains(t, out, `"chunks": 12`)
	assert.Contains(t, out, "[WARN] ingest.pdf.no_text")
}

func TestSetFile(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	path := filepath.Join(t.TempDir(), "zenji.log")
	SetFile(path)

	Event("dialog.turn", "stage", "confirm")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"dialog.turn"`)
	assert.Contains(t, string(data), `"stage":"confirm"`)
	assert.Contains(t, buf.String(), "dialog.turn")
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	var buf syncBuffer
	SetOutput(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
		}()
	}
	wg.Wait()
	// Test passes if no race conditions
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}
