package pacs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured indicates no helper command was configured
	ErrNotConfigured = errors.New("pacs helper not configured")
	// ErrTimeout indicates the helper did not finish before its deadline and was killed
	ErrTimeout = errors.New("pacs helper timed out")
	// ErrProcessFailed indicates the helper could not start or exited non-zero
	ErrProcessFailed = errors.New("pacs helper failed")
	// ErrMalformedResponse indicates the helper output was not the expected JSON
	ErrMalformedResponse = errors.New("malformed pacs helper response")
	// ErrRemote indicates the helper ran but reported success=false
	ErrRemote = errors.New("pacs reported failure")
	// ErrInvalidStudyUID indicates a study UID that is not a DICOM UID
	ErrInvalidStudyUID = errors.New("invalid study instance UID")
)

// ProcessError describes a failed helper invocation.
type ProcessError struct {
	Op       string // "query" or "move"
	Kind     error  // one of the sentinel errors above
	Reason   string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("pacs %s: %v: %s", e.Op, e.Kind, e.Reason)
}

func (e *ProcessError) Unwrap() error {
	return e.Kind
}

// Reason returns a short description of err suitable for audit metadata.
func Reason(err error) string {
	var pe *ProcessError
	if errors.As(err, &pe) {
		return fmt.Sprintf("%v: %s", pe.Kind, pe.Reason)
	}
	return err.Error()
}
