package marketplace

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidSourceURL reports an input that does not match the accepted
	// GitHub URL grammar.
	ErrInvalidSourceURL = errors.New("not a recognized GitHub repository URL")
	// ErrDuplicateSource reports an attempt to add an already persisted URL.
	ErrDuplicateSource = errors.New("source already added")
)

// RateLimitError reports GitHub API rate limiting. It carries remediation
// guidance so front ends can offer the specific remedy instead of a generic
// HTTP failure.
type RateLimitError struct {
	URL string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded fetching %s: set github_token to raise the limit", e.URL)
}

// HTTPError reports a non-success HTTP status from the remote host.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d from %s", e.StatusCode, e.URL)
}
