package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process-wide log output.
type Options struct {
	Level string
	// Format is "json" or "console".
	Format string
	// File, when set, receives the logs instead of stdout and is rotated.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	setupMu  sync.RWMutex
	setupOut io.Writer
	setupLvl string
)

// Setup routes the loggers created afterwards by New. The returned closer
// releases the log file, if any.
func Setup(o Options) io.Closer {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if o.File != "" {
		lj := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAge:     o.MaxAgeDays,
		}
		out, closer = lj, lj
	}
	if o.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: o.File != ""}
	}
	setupMu.Lock()
	setupOut, setupLvl = out, o.Level
	setupMu.Unlock()
	return closer
}

func configured() (io.Writer, string, bool) {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return setupOut, setupLvl, setupOut != nil
}

func reset() {
	setupMu.Lock()
	setupOut, setupLvl = nil, ""
	setupMu.Unlock()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
