package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditWriter appends one human-readable line per ticket event to
// <Dir>/tickets.log.
type AuditWriter struct {
	Dir string
	mu  sync.Mutex
}

// Path is the audit log file.
func (w *AuditWriter) Path() string { return filepath.Join(w.Dir, "tickets.log") }

// Handle writes one audit line.
func (w *AuditWriter) Handle(_ context.Context, body []byte) error {
	var ev TicketEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return Permanent(fmt.Errorf("unmarshal: %w", err))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(w.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatAudit(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatAudit(ev TicketEvent) string {
	action := "Ticket event"
	switch ev.Type {
	case KeyTicketReserved:
		action = "Ticket reserved"
	case KeyTicketCancelled:
		action = "Ticket cancelled"
	}
	at := ev.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	return fmt.Sprintf("[%s] %s | ticket_id=%d | user_id=%d | event_id=%d | seat_section_id=%d | quantity=%d | available=%d\n",
		at.UTC().Format(time.RFC3339), action, ev.TicketID, ev.UserID, ev.EventID, ev.SeatSectionID, ev.Quantity, ev.Available)
}
