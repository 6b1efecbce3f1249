package docstore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/glorpus-work/addonctl/pkg/errors"
)

// Fetcher retrieves a remote document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Node, error)
}

// FetcherOptions configure an HTTPFetcher.
type FetcherOptions struct {
	Timeout      time.Duration
	UserAgent    string
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// HTTPFetcher fetches documents over HTTP. Requests are retried on
// connection errors and 5xx responses and are bounded by a timeout.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher creates a fetcher from opts. Zero values pick defaults.
func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryWaitMin <= 0 {
		opts.RetryWaitMin = 500 * time.Millisecond
	}
	if opts.RetryWaitMax <= 0 {
		opts.RetryWaitMax = 5 * time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.Logger = nil

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/xml, text/xml")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	return &HTTPFetcher{client: client}
}

// Fetch downloads url and parses the body as a document.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Node, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", url)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrFetchStatus, url, resp.StatusCode())
	}
	doc, err := Parse(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, errors.Wrapf(err, "document at %s", url)
	}
	return doc, nil
}
