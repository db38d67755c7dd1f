package feed

import "fmt"

// FetchError covers every failure reaching the source: HTTP status, transport
// errors and blob reads. Always fatal to a run.
type FetchError struct {
	Source     string
	StatusCode int
	StatusText string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %d %s", e.Source, e.StatusCode, e.StatusText)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means the content could not be interpreted as the detected
// format at all (e.g. invalid JSON syntax). Malformed fragments inside an
// otherwise-parseable document are not errors; they just yield fewer records.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
