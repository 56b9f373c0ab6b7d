package extract

import (
	"errors"
	"fmt"
)

// Per-record failures. Any other missing field degrades to its default.
var (
	// ErrMissingPMID indicates a citation without a usable PMID element.
	ErrMissingPMID = errors.New("missing PMID")

	// ErrInvalidPMID indicates a PMID that is not a positive integer.
	ErrInvalidPMID = errors.New("invalid PMID")

	// ErrInvalidDate indicates a history date with non-numeric or out-of-range components.
	ErrInvalidDate = errors.New("invalid history date")
)

// RecordError reports a citation that could not be converted.
type RecordError struct {
	Index int // Position of the PubmedArticle element in the document (0-based)
	PMID  int // 0 when the PMID itself could not be read
	Err   error
}

func (e *RecordError) Error() string {
	if e.PMID != 0 {
		return fmt.Sprintf("article %d (pmid %d): %v", e.Index+1, e.PMID, e.Err)
	}
	return fmt.Sprintf("article %d: %v", e.Index+1, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// IsRecordError returns true if err came from a single citation rather than
// the document as a whole.
func IsRecordError(err error) bool {
	var recErr *RecordError
	return errors.As(err, &recErr)
}
