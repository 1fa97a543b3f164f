package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FileAndUILines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tabata.log")
	sink, err := New(Options{File: path, MaxSizeMB: 1, RunID: "3f2a9c1e", UILines: true})
	require.NoError(t, err)

	sink.Logger.Printf("Engine: paused at %d", 10)
	sink.Logger.Print("two\nlines")

	got := []string{<-sink.Lines, <-sink.Lines, <-sink.Lines}
	assert.Contains(t, got[0], "[3f2a9c1e] Engine: paused at 10\n")
	assert.Contains(t, got[1], "two\n")
	assert.Equal(t, "lines\n", got[2])

	require.NoError(t, sink.Close())
	_, ok := <-sink.Lines
	assert.False(t, ok, "Close closes the UI channel")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Engine: paused at 10")

	// logging after Close must not panic
	sink.Logger.Print("late")
}

func TestNew_NoSinks(t *testing.T) {
	sink, err := New(Options{RunID: "abc"})
	require.NoError(t, err)
	assert.Nil(t, sink.Lines)

	// nothing configured, so output is discarded
	sink.Logger.Print("hello")
	assert.NoError(t, sink.Close())
}

func TestChanWriter_DropsWhenFull(t *testing.T) {
	w := newChanWriter(2)
	for i := 0; i < 5; i++ {
		_, err := w.Write([]byte("x\n"))
		require.NoError(t, err)
	}
	assert.Len(t, w.lines, 2)
}
