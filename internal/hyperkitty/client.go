package hyperkitty

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/maxking/archive-reader/internal/log"
)

// DefaultPageSize is the page size Hyperkitty uses when none is
// requested.
const DefaultPageSize = 25

// maxConcurrentFetches bounds the parallelism of FetchMany so a large
// thread does not open one connection per email at once.
const maxConcurrentFetches = 8

// Client is a stateless HTTP client for the Hyperkitty archive REST
// API. It holds no per-server state; every call names the URL it
// targets, so one Client can serve any number of archive servers.
type Client struct {
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClient creates a Client with a sane request timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.Component("hyperkitty"),
	}
}

// Lists fetches one page of the mailing lists exposed by the server at
// baseURL.
func (c *Client) Lists(ctx context.Context, baseURL string) (*MailingListPage, error) {
	url := fmt.Sprintf("%s/api/lists?format=json", strings.TrimRight(baseURL, "/"))

	var page MailingListPage
	if err := c.getJSON(ctx, url, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Threads fetches one page of a list's threads collection. Callers
// wanting more than one page issue further calls with a higher offset;
// no pagination loop is run here.
func (c *Client) Threads(ctx context.Context, threadsURL string, limit, offset int) (*ThreadsPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	url := fmt.Sprintf("%s&limit=%d&offset=%d", threadsURL, limit, offset)

	var page ThreadsPage
	if err := c.getJSON(ctx, url, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Emails fetches one page of an emails collection (a thread's, a
// list's, or a sender's).
func (c *Client) Emails(ctx context.Context, emailsURL string, page, count int) (*EmailsPage, error) {
	if count <= 0 {
		count = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	url := fmt.Sprintf("%s&page=%d&count=%d", emailsURL, page, count)

	var result EmailsPage
	if err := c.getJSON(ctx, url, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FailedFetch records a URL inside a batch that answered with a
// non-200 status.
type FailedFetch struct {
	URL        string
	StatusCode int
}

// FetchMany retrieves every URL concurrently and partitions the
// outcomes: bodies of 200 responses in succeeded, non-200 responses in
// failed. Result order is not related to input order; callers must
// correlate by content. A network-level failure on any URL aborts the
// whole batch with a ConnectError, since the URLs of a batch all point
// at the same server.
func (c *Client) FetchMany(ctx context.Context, urls []string) ([]json.RawMessage, []FailedFetch, error) {
	if len(urls) == 0 {
		return nil, nil, nil
	}

	type outcome struct {
		body   json.RawMessage
		status int
	}

	outcomes := make([]outcome, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			body, status, err := c.get(ctx, url)
			if err != nil {
				return &ConnectError{URL: url, Err: err}
			}
			outcomes[i] = outcome{body: body, status: status}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var succeeded []json.RawMessage
	var failed []FailedFetch
	for i, out := range outcomes {
		if out.status == http.StatusOK {
			succeeded = append(succeeded, out.body)
		} else {
			failed = append(failed, FailedFetch{URL: urls[i], StatusCode: out.status})
		}
	}

	c.log.WithFields(logrus.Fields{
		"requested": len(urls),
		"succeeded": len(succeeded),
		"failed":    len(failed),
	}).Debug("batch fetch complete")

	return succeeded, failed, nil
}

// getJSON fetches url and decodes the body into result. A non-200
// status is a RequestError; a body that does not match the expected
// shape fails the request rather than passing partial records on.
func (c *Client) getJSON(ctx context.Context, url string, result interface{}) error {
	body, status, err := c.get(ctx, url)
	if err != nil {
		return &ConnectError{URL: url, Err: err}
	}
	if status != http.StatusOK {
		return &RequestError{URL: url, StatusCode: status}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

// get issues a single GET and returns the raw body and status code.
// The returned error is network-level only; HTTP errors are expressed
// through the status code.
func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	requestID := uuid.New().String()[:8]
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"url":        url,
		}).WithError(err).Debug("request failed")
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response from %s: %w", url, err)
	}

	c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"url":        url,
		"status":     resp.StatusCode,
		"elapsed":    time.Since(start).Round(time.Millisecond).String(),
	}).Debug("GET")

	return body, resp.StatusCode, nil
}
