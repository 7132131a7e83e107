package extract

import "fmt"

// ExtractionError marks one document's extraction as failed. It is scoped to
// that document: the rest of the run still validates, and the engine surfaces
// the gap as a Missing File Type finding.
type ExtractionError struct {
	DocumentKind string
	Reason       string
	Cause        error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed for %s: %s: %v", e.DocumentKind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("extraction failed for %s: %s", e.DocumentKind, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

func newExtractionError(kind, reason string, cause error) *ExtractionError {
	return &ExtractionError{DocumentKind: kind, Reason: reason, Cause: cause}
}
