package dataset

import (
	"errors"
	"fmt"
)

// LoadError reports a dataset file that could not be turned into a table:
// missing or unreadable file, missing required column, or a cell that does
// not parse. Any LoadError is fatal at startup; the dashboard never serves
// a partial snapshot.
type LoadError struct {
	Dataset string // logical name: series, summary, tech
	Path    string
	Row     int // 1-based file row, 0 when not row-specific
	Err     error
}

func (e *LoadError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("load %s from %s: row %d: %v", e.Dataset, e.Path, e.Row, e.Err)
	}
	return fmt.Sprintf("load %s from %s: %v", e.Dataset, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether any error in the chain is a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
