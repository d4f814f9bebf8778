package batchloader

import "fmt"

// FetchError reports a failed fetch for a single batch key within a run.
// A recovered fetch panic is carried in Err as well.
type FetchError struct {
	Source SourceName
	Batch  BatchKey
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("batchloader: source %q batch %v: %v", string(e.Source), e.Batch, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
