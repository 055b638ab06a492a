package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/jingkaihe/skillhub/pkg/logger"
)

const (
	userAgent      = "skillhub"
	requestTimeout = 30 * time.Second
)

// newHTTPClient builds the client used against GitHub. A non-empty token is
// attached through an oauth2 static token source, raising the caller's rate
// allowance.
func newHTTPClient(token string) *http.Client {
	if token == "" {
		return &http.Client{Timeout: requestTimeout}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := oauth2.NewClient(context.Background(), ts)
	client.Timeout = requestTimeout
	return client
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

type treeResponse struct {
	Tree      []treeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// fetchTree retrieves the recursive tree listing of a source's repository at
// its branch: a flat list of {path, type} entries.
func (c *Client) fetchTree(ctx context.Context, src Source) ([]treeEntry, error) {
	treeURL := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.apiBaseURL, src.Owner, src.Repo, url.PathEscape(src.Branch))

	data, err := c.get(ctx, treeURL, true)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list tree for %s", src.ID)
	}

	var resp treeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to decode tree listing")
	}
	if resp.Truncated {
		logger.G(ctx).WithField("source", src.ID).Warn("tree listing truncated by GitHub")
	}
	return resp.Tree, nil
}

// get performs an authenticated GET with retries on transient failures.
// Redirects are followed transparently by the HTTP client. A 403 whose
// rate-limit-remaining header reads "0" becomes a RateLimitError; other
// non-success statuses become HTTPErrors.
func (c *Client) get(ctx context.Context, rawURL string, api bool) ([]byte, error) {
	var body []byte

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return retry.Unrecoverable(errors.Wrap(err, "failed to build request"))
			}
			req.Header.Set("User-Agent", userAgent)
			if api {
				req.Header.Set("Accept", "application/vnd.github+json")
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return errors.Wrapf(err, "request to %s failed", rawURL)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
				return retry.Unrecoverable(&RateLimitError{URL: rawURL})
			}
			if resp.StatusCode >= 500 {
				return &HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
			}
			if resp.StatusCode >= 400 {
				return retry.Unrecoverable(&HTTPError{StatusCode: resp.StatusCode, URL: rawURL})
			}

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return errors.Wrap(err, "failed to read response body")
			}
			body = data
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}
