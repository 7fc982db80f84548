package registry

import (
	"fmt"

	"vsxbrowse/internal/domain"
)

// searchResponse is the union of the two shapes the search endpoint
// returns: a result set, or an error-tagged body
type searchResponse struct {
	Offset     int                `json:"offset"`
	TotalSize  int                `json:"totalSize"`
	Extensions []domain.Extension `json:"extensions"`
	Error      string             `json:"error,omitempty"`
}

// ErrorResult is an error reported by the registry itself
type ErrorResult struct {
	Message    string
	StatusCode int
}

func (e *ErrorResult) Error() string {
	return "registry: " + e.Message
}

// TransportError is a failure to reach the registry or read its answer
type TransportError struct {
	Op         string
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
