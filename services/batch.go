// ABOUTME: Partitioning of batch results into successes and failures
// ABOUTME: Attributes failed results to submitted ids for bulk error reporting
package services

import (
	"github.com/harperreed/dealdesk/record"
)

// BulkError is one failed record in a bulk operation.
type BulkError struct {
	ID    int    `json:"id"`
	Error string `json:"error"`
}

func partition(results []record.Result) (succeeded, failed []record.Result) {
	for _, r := range results {
		if r.Success {
			succeeded = append(succeeded, r)
		} else {
			failed = append(failed, r)
		}
	}
	return succeeded, failed
}

// attributed is a batch result paired with the id it belongs to. Results
// that omit Id take the id submitted at the same position.
type attributed struct {
	id     int
	result record.Result
}

func attribute(results []record.Result, submitted []int) (succeeded, failed []attributed) {
	for i, r := range results {
		id := r.ID
		if id == 0 && i < len(submitted) {
			id = submitted[i]
		}
		a := attributed{id: id, result: r}
		if r.Success {
			succeeded = append(succeeded, a)
		} else {
			failed = append(failed, a)
		}
	}
	return succeeded, failed
}

func bulkErrors(failed []attributed) []BulkError {
	out := make([]BulkError, 0, len(failed))
	for _, f := range failed {
		out = append(out, BulkError{ID: f.id, Error: f.result.Message})
	}
	return out
}

func failedResults(failed []attributed) []record.Result {
	out := make([]record.Result, 0, len(failed))
	for _, f := range failed {
		out = append(out, f.result)
	}
	return out
}
