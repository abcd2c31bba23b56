package quotes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"FinLevels/pkg/config"
	xhttp "FinLevels/pkg/http"
)

// ErrNotInitialized is returned when the provider has no base URL.
var ErrNotInitialized = errors.New("quotes http client not initialized")

// httpBase centralizes client construction and JSON GET handling for the quote provider.
type httpBase struct {
	baseURL  string
	attempts int
	client   *xhttp.Client
}

func newHTTPBase(cfg *config.Config, opts ...xhttp.ClientOption) *httpBase {
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(cfg.Quotes.Timeout)}, opts...)
	if cfg.Quotes.APIKey != "" {
		opts = append(opts, xhttp.WithHeader("X-Api-Key", cfg.Quotes.APIKey))
	}
	return &httpBase{
		baseURL:  cfg.Quotes.BaseURL,
		attempts: cfg.Quotes.Attempts,
		client:   xhttp.NewClient(opts...),
	}
}

// getJSON issues GET path?query under baseURL and decodes JSON into dest.
func (b *httpBase) getJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return ErrNotInitialized
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + path,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: query,
	}, dest)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	return nil
}

// getJSONWithRetry retries transient failures (transport errors, 429, 5xx) with linear backoff.
func (b *httpBase) getJSONWithRetry(ctx context.Context, path string, query url.Values, dest interface{}) error {
	attempts := max(b.attempts, 1)
	var err error
	for i := 1; i <= attempts; i++ {
		err = b.getJSON(ctx, path, query, dest)
		if err == nil || !retryable(err) || i == attempts {
			return err
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, ErrNotInitialized) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

func isNotFound(err error) bool { return xhttp.IsStatus(err, http.StatusNotFound) }
