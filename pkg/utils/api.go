package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/kerbaras/gutenshelf/pkg/errors"
)

type API struct {
	client    *http.Client
	baseURL   string
	limiter   *rate.Limiter
	userAgent string
}

// NewAPI creates a JSON client for baseURL. rps <= 0 disables rate limiting.
func NewAPI(baseURL string, rps float64) *API {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &API{
		client:    http.DefaultClient,
		baseURL:   strings.TrimRight(baseURL, "/"),
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: "gutenshelf",
	}
}

func (a *API) SetHTTPClient(client *http.Client) {
	a.client = client
}

// SetRateLimit changes the request rate. rps <= 0 disables limiting.
func (a *API) SetRateLimit(rps float64) {
	if rps <= 0 {
		a.limiter.SetLimit(rate.Inf)
		return
	}
	a.limiter.SetLimit(rate.Limit(rps))
}

func (a *API) BaseURL() string {
	return a.baseURL
}

// URL resolves path against the base URL. Absolute URLs (server supplied
// cursors) are returned untouched.
func (a *API) URL(path string, params url.Values) string {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = a.baseURL + path
	}
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + params.Encode()
	}
	return target
}

// Get fetches path and decodes the JSON body into v. A canceled context
// yields an error matching errors.ErrCanceled; every other failure is an
// *errors.TransportError.
func (a *API) Get(ctx context.Context, path string, params url.Values, v any) error {
	target := a.URL(path, params)

	resp, err := a.do(ctx, target, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return a.failure(ctx, target, 0, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// Fetch downloads the raw body at path, e.g. a cover image. Bodies larger
// than limit bytes are rejected; limit <= 0 means no limit.
func (a *API) Fetch(ctx context.Context, path string, limit int64) ([]byte, error) {
	target := a.URL(path, nil)

	resp, err := a.do(ctx, target, "*/*")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if limit > 0 {
		body = io.LimitReader(resp.Body, limit+1)
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return nil, a.failure(ctx, target, 0, fmt.Errorf("failed to read response: %w", err))
	}
	if limit > 0 && int64(len(content)) > limit {
		return nil, errors.NewTransportError(target, 0, fmt.Errorf("response exceeds %d bytes", limit))
	}
	return content, nil
}

func (a *API) do(ctx context.Context, target, accept string) (*http.Response, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, a.failure(ctx, target, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.NewTransportError(target, 0, err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, a.failure(ctx, target, 0, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, errors.NewTransportError(target, resp.StatusCode, nil)
	}
	return resp, nil
}

func (a *API) failure(ctx context.Context, target string, status int, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %w", errors.ErrCanceled, ctx.Err())
	}
	return errors.NewTransportError(target, status, err)
}
