package soundcloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultAPIURL is the SoundCloud api-v2 base URL.
	DefaultAPIURL = "https://api-v2.soundcloud.com"
	// DefaultWebURL is the SoundCloud web app, scraped for client ids and alternate search.
	DefaultWebURL = "https://soundcloud.com"
	// shortenedHost serves on.soundcloud.com share links that redirect to canonical URLs.
	shortenedHost = "on.soundcloud.com"

	// defaultHTTPTimeout is the default timeout for HTTP requests.
	defaultHTTPTimeout = 10 * time.Second
	// maxHTTPRedirects is the maximum number of HTTP redirects to follow.
	maxHTTPRedirects = 5
	// maxReadSize caps HTML pages and script bundles read while scraping.
	maxReadSize = 8 << 20
	// commonUserAgent is sent on every request; the web app refuses bare Go clients.
	commonUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	// ErrNotFound is returned when SoundCloud answers 404.
	ErrNotFound = errors.New("soundcloud: not found")
	// ErrUnexpectedKind is returned when a URL resolves to a different resource kind than requested.
	ErrUnexpectedKind = errors.New("soundcloud: unexpected resource kind")
	// ErrNoTranscoding is returned when a track offers no usable stream.
	ErrNoTranscoding = errors.New("soundcloud: no usable transcoding")
	// ErrClientID is returned when no client id is configured and none could be scraped.
	ErrClientID = errors.New("soundcloud: client id unavailable")
	// ErrTooManyRedirects is returned when too many redirects are encountered.
	ErrTooManyRedirects = errors.New("too many redirects")

	scriptSrcRegex = regexp.MustCompile(`<script[^>]+src="([^"]+\.js)"`)
	clientIDRegex  = regexp.MustCompile(`client_id\s*[:=]\s*"?([a-zA-Z0-9]{32})`)
)

// APIError is a non-2xx response other than 404.
type APIError struct {
	Status int
	URL    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("soundcloud: %s returned status %d", e.URL, e.Status)
}

// Options configures a Client. Zero values fall back to the public SoundCloud endpoints.
type Options struct {
	ClientID   string
	OAuthToken string
	Proxy      string
	APIURL     string
	WebURL     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to SoundCloud. It is safe for concurrent use.
type Client struct {
	apiURL     string
	webURL     string
	oauthToken string
	http       *http.Client
	streamHTTP *http.Client
	logger     *zap.Logger

	mu       sync.Mutex
	clientID string
	scraped  bool
	scrape   singleflight.Group
}

// New creates a client. It only fails on a malformed proxy URL.
func New(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		var err error
		httpClient, err = newHTTPClient(opts.Proxy)
		if err != nil {
			return nil, err
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Audio bodies outlive the request timeout; cancellation comes from the context.
	streamHTTP := *httpClient
	streamHTTP.Timeout = 0

	c := &Client{
		apiURL:     strings.TrimSuffix(firstNonEmpty(opts.APIURL, DefaultAPIURL), "/"),
		webURL:     strings.TrimSuffix(firstNonEmpty(opts.WebURL, DefaultWebURL), "/"),
		oauthToken: opts.OAuthToken,
		http:       httpClient,
		streamHTTP: &streamHTTP,
		logger:     logger.Named("soundcloud_client"),
		clientID:   opts.ClientID,
	}
	return c, nil
}

// newHTTPClient creates an HTTP client with redirect validation and an optional proxy.
func newHTTPClient(proxy string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{
		Timeout:   defaultHTTPTimeout,
		Transport: transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxHTTPRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}, nil
}

// ClientID returns the configured client id, scraping one from the web app on first use
// when none was configured. Concurrent callers share a single scrape and each stops
// waiting when its own context is done.
func (c *Client) ClientID(ctx context.Context) (string, error) {
	c.mu.Lock()
	id := c.clientID
	c.mu.Unlock()
	if id != "" {
		return id, nil
	}

	// The scrape outlives any single caller; the HTTP client timeout bounds it.
	scrapeCtx := context.WithoutCancel(ctx)
	results := c.scrape.DoChan("client_id", func() (any, error) {
		id, err := c.scrapeClientID(scrapeCtx)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.clientID = id
		c.scraped = true
		c.mu.Unlock()
		c.logger.Debug("Scraped client id from web app")
		return id, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// forgetClientID drops a scraped client id after SoundCloud rejected it. Configured ids are kept.
func (c *Client) forgetClientID() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scraped {
		c.clientID = ""
		c.scraped = false
	}
}

// scrapeClientID looks for a client id in the script bundles of the web app, newest first.
func (c *Client) scrapeClientID(ctx context.Context) (string, error) {
	page, err := c.fetchText(ctx, c.webURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrClientID, err)
	}

	matches := scriptSrcRegex.FindAllStringSubmatch(page, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		script, err := c.fetchText(ctx, matches[i][1])
		if err != nil {
			c.logger.Debug("Skipping script bundle", zap.String("src", matches[i][1]), zap.Error(err))
			continue
		}
		if m := clientIDRegex.FindStringSubmatch(script); len(m) == 2 {
			return m[1], nil
		}
	}
	return "", ErrClientID
}

// getJSON performs an authenticated api-v2 GET. endpoint may be a path below the API URL or
// an absolute URL (transcoding URLs are absolute).
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, dest any) error {
	clientID, err := c.ClientID(ctx)
	if err != nil {
		return err
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = c.apiURL + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("client_id", clientID)
	u.RawQuery = q.Encode()

	resp, err := c.do(ctx, u.String())
	if err != nil {
		if apiErr := (*APIError)(nil); errors.As(err, &apiErr) &&
			(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			c.forgetClientID()
		}
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", u.Path, err)
	}
	return nil
}

// do issues a GET and turns non-2xx answers into errors. The caller closes the body.
func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	return c.send(ctx, c.http, rawURL)
}

// openStream is do without the client timeout, for audio bodies.
func (c *Client) openStream(ctx context.Context, rawURL string) (*http.Response, error) {
	return c.send(ctx, c.streamHTTP, rawURL)
}

func (c *Client) send(ctx context.Context, client *http.Client, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", commonUserAgent)
	if c.oauthToken != "" {
		req.Header.Set("Authorization", "OAuth "+c.oauthToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)
		}
		return nil, &APIError{Status: resp.StatusCode, URL: req.URL.Path}
	}
	return resp, nil
}

// fetchText reads a page body with a size limit.
func (c *Client) fetchText(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.do(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// expandShortened follows an on.soundcloud.com share link to its canonical URL.
func (c *Client) expandShortened(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.EqualFold(u.Hostname(), shortenedHost) {
		return rawURL, nil
	}

	resp, err := c.do(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", rawURL, err)
	}
	_ = resp.Body.Close()

	final := *resp.Request.URL
	final.RawQuery = ""
	return final.String(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
