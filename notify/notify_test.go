package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorderDrain(t *testing.T) {
	var r Recorder
	r.Error("one")
	r.Error("two")

	assert.Equal(t, []string{"one", "two"}, r.Messages())
	assert.Equal(t, []string{"one", "two"}, r.Drain())
	assert.Empty(t, r.Messages())
}

func TestMultiFansOut(t *testing.T) {
	var a, b Recorder
	var seen []string
	m := Multi{&a, nil, &b, Func(func(msg string) { seen = append(seen, msg) })}

	m.Error("boom")

	assert.Equal(t, []string{"boom"}, a.Messages())
	assert.Equal(t, []string{"boom"}, b.Messages())
	assert.Equal(t, []string{"boom"}, seen)
}

func TestTerminalWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	NewTerminal(&buf).Error("Contact not found")
	assert.Contains(t, buf.String(), "Contact not found")
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	NewLog(zap.New(core)).Error("Failed to load deals")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "Failed to load deals", entries[0].ContextMap()["message"])
	}
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop.Error("ignored") })
}
