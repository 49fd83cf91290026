// ABOUTME: Error values returned by the entity services
// ABOUTME: Sentinels for lookups and validation plus WriteError for failed batches
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/dealdesk/record"
)

var (
	// ErrNotFound wraps a client-reported failure on a single-record read.
	ErrNotFound = errors.New("not found")
	// ErrInvalidStage is returned by UpdateStage before any client call.
	ErrInvalidStage = errors.New("invalid deal stage")
	// ErrWriteFailed is the target every *WriteError unwraps to.
	ErrWriteFailed = errors.New("write failed")
	// ErrNoResult means the client accepted a write but returned no record.
	ErrNoResult = errors.New("no record returned")
)

// WriteError reports a rejected create or update. Message holds the
// client-level message; Failed holds per-record failures.
type WriteError struct {
	Op      Op
	Noun    string
	Message string
	Failed  []record.Result
}

func (e *WriteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to %s %s", e.Op.verb(), strings.ToLower(e.Noun))

	var details []string
	if e.Message != "" {
		details = append(details, e.Message)
	}
	for _, r := range e.Failed {
		if r.Message != "" {
			details = append(details, r.Message)
		}
	}
	if len(details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(details, "; "))
	}
	return b.String()
}

func (e *WriteError) Unwrap() error {
	return ErrWriteFailed
}
