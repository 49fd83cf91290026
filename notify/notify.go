// ABOUTME: Notification sinks the entity services report failures through
// ABOUTME: Provides logging, terminal, recording, callback, and fan-out notifiers
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Notifier receives user-visible error messages.
type Notifier interface {
	Error(msg string)
}

// Func adapts a plain function to Notifier.
type Func func(msg string)

func (f Func) Error(msg string) { f(msg) }

// Nop drops every message.
var Nop Notifier = Func(func(string) {})

// Log writes notifications to a zap logger at warn level.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

func (l *Log) Error(msg string) {
	l.logger.Warn("notification", zap.String("message", msg))
}

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("9")).
	Bold(true)

// Terminal prints styled notifications to a writer, typically stderr.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Error(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, errorStyle.Render("✗ "+msg))
}

// Recorder keeps notifications in memory until drained.
type Recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

// Drain returns recorded messages and clears the recorder.
func (r *Recorder) Drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.msgs
	r.msgs = nil
	return msgs
}

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

func (m Multi) Error(msg string) {
	for _, n := range m {
		if n != nil {
			n.Error(msg)
		}
	}
}
