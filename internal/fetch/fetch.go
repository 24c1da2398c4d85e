// Package fetch retrieves raw article bytes for the pipeline. Failures are
// typed and per-URL: the caller logs them and moves on, they never abort a
// topic or a run.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parentbud/carecards/internal/cache"
	"github.com/parentbud/carecards/internal/robots"
)

// Kind classifies a fetch failure.
type Kind int

const (
	// KindOther covers connection resets, bad URLs, and anything unclassified.
	KindOther Kind = iota
	// KindBlocked means robots.txt disallowed the URL; no request was made.
	KindBlocked
	// KindTimeout covers per-request deadline and network timeouts.
	KindTimeout
	// KindHTTPStatus means the server answered with a non-2xx status.
	KindHTTPStatus
)

// Error is the typed failure returned by Client.Get.
type Error struct {
	Kind   Kind
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindBlocked:
		return fmt.Sprintf("fetch %s: blocked by robots.txt", e.URL)
	case KindTimeout:
		return fmt.Sprintf("fetch %s: timeout", e.URL)
	case KindHTTPStatus:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsBlocked reports whether err is a robots.txt denial.
func IsBlocked(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == KindBlocked
}

// RawContent is the result of a successful fetch.
type RawContent struct {
	URL         string
	Body        []byte
	ContentType string
}

// Client issues polite GETs: robots check, randomized delay, bounded body
// size, optional conditional revalidation against a disk cache. It performs
// no retries; the only retry policy in the pipeline belongs to the summarizer.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// PerRequestTimeout bounds each request. Zero means no extra bound.
	PerRequestTimeout time.Duration
	// Robots, when set, is consulted before any network call.
	Robots *robots.Manager
	// Throttle, when set, inserts the politeness delay before each request.
	Throttle *Throttle
	// Cache, when set, enables ETag/Last-Modified revalidation and replay.
	Cache *cache.BodyCache
	// MaxBodyBytes caps the response size. Zero means 4 MiB.
	MaxBodyBytes int64
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
}

// Get fetches the URL, honoring robots.txt and the politeness throttle.
func (c *Client) Get(ctx context.Context, rawURL string) (RawContent, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return RawContent{}, &Error{Kind: KindOther, URL: rawURL, Err: fmt.Errorf("invalid url: %q", rawURL)}
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return RawContent{}, &Error{Kind: KindOther, URL: rawURL, Err: fmt.Errorf("unsupported scheme: %q", u.Scheme)}
	}

	if c.Robots != nil && !c.Robots.Allowed(ctx, rawURL) {
		return RawContent{}, &Error{Kind: KindBlocked, URL: rawURL}
	}

	if c.Throttle != nil {
		if err := c.Throttle.Wait(ctx); err != nil {
			return RawContent{}, &Error{Kind: KindOther, URL: rawURL, Err: err}
		}
	}

	var etag, lastMod string
	if c.Cache != nil {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return RawContent{}, &Error{Kind: KindOther, URL: rawURL, Err: err}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), c.PerRequestTimeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return RawContent{}, &Error{Kind: classifyTransport(err), URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && c.Cache != nil {
		body, err := c.Cache.LoadBody(ctx, rawURL)
		if err != nil {
			return RawContent{}, &Error{Kind: KindOther, URL: rawURL, Err: fmt.Errorf("cache replay: %w", err)}
		}
		ct := resp.Header.Get("Content-Type")
		if ct == "" {
			if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
				ct = meta.ContentType
			}
		}
		return RawContent{URL: rawURL, Body: body, ContentType: ct}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return RawContent{}, &Error{Kind: KindHTTPStatus, URL: rawURL, Status: resp.StatusCode}
	}

	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = 4 << 20
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return RawContent{}, &Error{Kind: classifyTransport(err), URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	ct := resp.Header.Get("Content-Type")
	if c.Cache != nil {
		_ = c.Cache.Save(ctx, rawURL, ct, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), body)
	}
	return RawContent{URL: rawURL, Body: body, ContentType: ct}, nil
}

func (c *Client) httpClient() *http.Client {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	checkRedirect := func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || (req.URL.Scheme != "http" && req.URL.Scheme != "https") {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = checkRedirect
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: checkRedirect}
}

func classifyTransport(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindOther
}
