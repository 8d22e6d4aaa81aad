package service

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/stadium-tickets/internal/config"
	"github.com/iliyamo/stadium-tickets/internal/logger"
)

func newTestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return logger.Discard()
}

// syncBuffer collects JSON log lines from concurrent goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newCapturingLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

var testLedger = config.LedgerConfig{CompensationAttempts: 3, CompensationBackoff: time.Millisecond}
