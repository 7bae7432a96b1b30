// Package eventlog keeps a fixed-size rolling log of recent events for
// inclusion in diagnostic dumps.
package eventlog

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05.000"

// Entry is a single logged event.
type Entry struct {
	At      time.Time
	Message string
}

// Log records the most recent events up to a fixed capacity. Older entries
// are overwritten once the capacity is reached. Safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	title   string
	entries []Entry
	next    int
	full    bool
	now     func() time.Time
}

// New creates a rolling log with the given title and capacity.
func New(title string, capacity int) *Log {
	if capacity <= 0 {
		capacity = 1
	}
	return &Log{
		title:   title,
		entries: make([]Entry, capacity),
		now:     time.Now,
	}
}

// Addf records a formatted event with the current timestamp.
func (l *Log) Addf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.next] = Entry{At: l.now(), Message: fmt.Sprintf(format, args...)}
	l.next++
	if l.next == len(l.entries) {
		l.next = 0
		l.full = true
	}
}

// Entries returns the recorded events, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.full {
		out := make([]Entry, l.next)
		copy(out, l.entries[:l.next])
		return out
	}
	out := make([]Entry, 0, len(l.entries))
	out = append(out, l.entries[l.next:]...)
	out = append(out, l.entries[:l.next]...)
	return out
}

// Render formats the log as an indented text block headed by its title.
func (l *Log) Render() string {
	entries := l.Entries()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n", l.title)
	for _, entry := range entries {
		fmt.Fprintf(&sb, "  %s %s\n", entry.At.Format(timestampLayout), entry.Message)
	}
	return sb.String()
}
