// This file is part of unreal-ng.
//
// unreal-ng is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// unreal-ng is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with unreal-ng.  If not, see <https://www.gnu.org/licenses/>.

// Package logger provides the engine's capacity-bounded, tag-permissioned
// log. Components log through an instance of Logger rather than fmt.Printf
// or the stdlib log package so the host can Tail() recent activity (e.g. for
// a debugger console) without the engine depending on where the host wants
// messages to end up.
package logger

import (
	"container/ring"
	"fmt"
	"io"
	"sync"
)

// Permission gates whether a log call is recorded. Components pass a value
// implementing this interface (or the predefined Allow) so that verbose
// subsystems can be muted without changing call sites.
type Permission interface {
	AllowLogging() bool
}

// allowAll is the default Permission that never suppresses a log entry.
type allowAll struct{}

// AllowLogging implements Permission.
func (allowAll) AllowLogging() bool { return true }

// Allow is the predefined Permission value meaning "always log".
var Allow Permission = allowAll{}

// entry is a single recorded log line, already formatted.
type entry struct {
	tag    string
	detail string
}

// Logger is an in-memory ring of recent log entries. The zero value is not
// usable; construct with New.
type Logger struct {
	mu  sync.Mutex
	buf *ring.Ring
	n   int
	cap int
}

// New constructs a Logger that retains at most capacity entries, discarding
// the oldest once full.
func New(capacity int) *Logger {
	if capacity <= 0 {
		capacity = 1
	}
	return &Logger{
		buf: ring.New(capacity),
		cap: capacity,
	}
}

// NewLogger is an alias for New kept for callers migrating from the
// teacher's constructor name.
func NewLogger(capacity int) *Logger {
	return New(capacity)
}

// detailString renders an arbitrary detail value the way Log/Logf do: errors
// via Error(), fmt.Stringer via String(), everything else via %v.
func detailString(detail interface{}) string {
	switch d := detail.(type) {
	case error:
		return d.Error()
	case fmt.Stringer:
		return d.String()
	default:
		return fmt.Sprintf("%v", d)
	}
}

// Log records tag: detail if perm allows logging.
func (l *Logger) Log(perm Permission, tag string, detail interface{}) {
	if perm == nil || !perm.AllowLogging() {
		return
	}
	l.push(tag, detailString(detail))
}

// Logf records tag: fmt.Sprintf(format, args...) if perm allows logging.
func (l *Logger) Logf(perm Permission, tag string, format string, args ...interface{}) {
	if perm == nil || !perm.AllowLogging() {
		return
	}
	l.push(tag, fmt.Sprintf(format, args...))
}

func (l *Logger) push(tag, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Value = entry{tag: tag, detail: detail}
	l.buf = l.buf.Next()
	if l.n < l.cap {
		l.n++
	}
}

// collect returns the last n recorded entries (n clamped to however many
// exist), oldest first.
func (l *Logger) collect(n int) []entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > l.n {
		n = l.n
	}
	if n <= 0 {
		return nil
	}

	all := make([]entry, 0, l.n)
	l.buf.Do(func(v interface{}) {
		if v == nil {
			return
		}
		all = append(all, v.(entry))
	})

	return all[len(all)-n:]
}

// Write dumps every retained entry to w, oldest first, one "tag: detail" line
// per entry.
func (l *Logger) Write(w io.Writer) {
	for _, e := range l.collect(l.cap) {
		fmt.Fprintf(w, "%s: %s\n", e.tag, e.detail)
	}
}

// Tail writes the most recent n entries to w, oldest of that subset first.
// Asking for more entries than exist is not an error.
func (l *Logger) Tail(w io.Writer, n int) {
	for _, e := range l.collect(n) {
		fmt.Fprintf(w, "%s: %s\n", e.tag, e.detail)
	}
}

// Clear discards all retained entries.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf = ring.New(l.cap)
	l.n = 0
}

// def is the package-level logger most components log through when they
// are not handed an explicit instance (e.g. during early Init before the
// Context has assembled its own Logger).
var def = New(4096)

// Default returns the shared package-level Logger instance.
func Default() *Logger { return def }

// Log records to the default Logger.
func Log(perm Permission, tag string, detail interface{}) { def.Log(perm, tag, detail) }

// Logf records to the default Logger.
func Logf(perm Permission, tag string, format string, args ...interface{}) {
	def.Logf(perm, tag, format, args...)
}

// Write dumps the default Logger.
func Write(w io.Writer) { def.Write(w) }

// Tail writes the most recent n entries of the default Logger.
func Tail(w io.Writer, n int) { def.Tail(w, n) }

// Clear empties the default Logger.
func Clear() { def.Clear() }
