package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// Client downloads installers with explicit redirect handling.
// Safe for concurrent use by multiple goroutines.
type Client struct {
	httpClient   *http.Client
	logger       wingetrel.Logger
	progress     io.Writer
	maxRedirects int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests. Its redirect policy
// is overridden; everything else (transport, timeout) is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithProgress renders a progress bar per download to w.
// Intended for interactive, single-download runs.
func WithProgress(w io.Writer) Option {
	return func(c *Client) {
		c.progress = w
	}
}

// WithMaxRedirects sets the longest redirect chain that is followed.
func WithMaxRedirects(n int) Option {
	return func(c *Client) {
		c.maxRedirects = n
	}
}

// NewClient creates a download client.
// Panics if logger is nil.
func NewClient(logger wingetrel.Logger, opts ...Option) *Client {
	if logger == nil {
		panic("logger cannot be nil")
	}

	c := &Client{
		httpClient:   http.DefaultClient,
		logger:       logger,
		maxRedirects: wingetrel.MaxRedirects,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Copy so the caller's client keeps its own redirect policy.
	hc := *c.httpClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	c.httpClient = &hc

	return c
}

// Download fetches rawURL into dir and returns the path of the complete file.
func (c *Client) Download(ctx context.Context, rawURL string, dir string) (string, error) {
	resp, finalURL, err := c.resolve(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	name := ArtifactName(rawURL, finalURL)
	target := filepath.Join(dir, name)
	partial := target + ".part"

	c.logger.Verbose("Downloading %s -> %s", finalURL, name)

	out, err := os.Create(partial)
	if err != nil {
		return "", &Error{URL: finalURL, Err: fmt.Errorf("create %s: %w", partial, err)}
	}

	var sink io.Writer = out
	if c.progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(c.progress),
			progressbar.OptionSetDescription(lastSegment(finalURL)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
		sink = io.MultiWriter(out, bar)
	}

	written, copyErr := io.Copy(sink, resp.Body)
	closeErr := out.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(partial)
		return "", &Error{URL: finalURL, Err: err}
	}

	if resp.ContentLength >= 0 && written != resp.ContentLength {
		os.Remove(partial)
		return "", &Error{URL: finalURL, Err: fmt.Errorf("short body: got %d of %d bytes", written, resp.ContentLength)}
	}

	if err := os.Rename(partial, target); err != nil {
		os.Remove(partial)
		return "", &Error{URL: finalURL, Err: err}
	}

	c.logger.Verbose("Downloaded %s (%d bytes)", name, written)
	return target, nil
}

// resolve follows redirects until a terminal response and returns it together
// with the URL that produced it. The caller closes the body.
func (c *Client) resolve(ctx context.Context, rawURL string) (*http.Response, string, error) {
	current := rawURL

	for hop := 0; ; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			return nil, "", &Error{URL: current, Err: err}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, "", &Error{URL: current, Err: err}
		}

		if isRedirect(resp.StatusCode) {
			location := resp.Header.Get("Location")
			resp.Body.Close()

			if location == "" {
				return nil, "", &Error{URL: current, StatusCode: resp.StatusCode, Err: errors.New("redirect without Location header")}
			}
			if hop >= c.maxRedirects {
				return nil, "", &Error{URL: rawURL, Err: fmt.Errorf("stopped after %d redirects", c.maxRedirects)}
			}

			next, err := req.URL.Parse(location)
			if err != nil {
				return nil, "", &Error{URL: current, Err: fmt.Errorf("invalid redirect location %q: %w", location, err)}
			}

			c.logger.Verbose("Redirect %d: %s -> %s", resp.StatusCode, current, next)
			current = next.String()
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, "", &Error{URL: current, StatusCode: resp.StatusCode}
		}

		return resp, current, nil
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

var _ wingetrel.Downloader = (*Client)(nil)
