package tasks

import (
	"fmt"

	"github.com/lysyi3m/medium-wxr/app/medium"
	"github.com/lysyi3m/medium-wxr/app/wxr"
)

// Run is the state the pipeline tasks hand to each other.
type Run struct {
	PostURLs   []string
	Permalinks *medium.Permalinks
	Records    []*wxr.PostRecord
	Failures   []*PostError
	OutFile    string
}

func NewRun() *Run {
	return &Run{}
}

// PostError is a failure confined to one post.
type PostError struct {
	URL string
	Err error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post %s: %v", e.URL, e.Err)
}

func (e *PostError) Unwrap() error {
	return e.Err
}
