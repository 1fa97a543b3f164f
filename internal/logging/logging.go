// Package logging builds the process logger: a rotating file via
// lumberjack, optionally teed into a channel that feeds the on-screen log
// pane.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const uiLogBuffer = 256

type Options struct {
	File       string // empty disables the file sink
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	RunID      string // prefixed to every line when set
	// UILines, when true, makes New return a channel of formatted lines
	// for display.
	UILines bool
}

// Sink owns the writers behind a logger.
type Sink struct {
	Logger *log.Logger
	// Lines carries each log line when Options.UILines was set, nil otherwise.
	Lines <-chan string

	file *lumberjack.Logger
	ui   *chanWriter
}

// New builds the logger described by opts.
func New(opts Options) (*Sink, error) {
	var writers []io.Writer
	sink := &Sink{}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		sink.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		writers = append(writers, sink.file)
	}
	if opts.UILines {
		sink.ui = newChanWriter(uiLogBuffer)
		sink.Lines = sink.ui.lines
		writers = append(writers, sink.ui)
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = io.MultiWriter(writers...)
	}

	prefix := ""
	if opts.RunID != "" {
		prefix = "[" + opts.RunID + "] "
	}
	sink.Logger = log.New(out, prefix, log.Ltime|log.Lmsgprefix)
	return sink, nil
}

// Close flushes the file and closes the UI channel. Lines logged after
// Close are dropped from the UI channel.
func (s *Sink) Close() error {
	if s.ui != nil {
		s.ui.close()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// chanWriter turns log output into individual lines on a channel. A full
// channel drops the line rather than stalling the logger.
type chanWriter struct {
	mu     sync.Mutex
	lines  chan string
	closed bool
}

func newChanWriter(size int) *chanWriter {
	return &chanWriter{lines: make(chan string, size)}
}

func (w *chanWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return len(p), nil
	}
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		select {
		case w.lines <- line + "\n":
		default:
		}
	}
	return len(p), nil
}

func (w *chanWriter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.lines)
	}
}
