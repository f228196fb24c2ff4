// Package themesrc turns a theme argument into theme text. Plain text passes
// through; an http(s) URL is fetched and replaced by its article title.
package themesrc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/hyperifyio/postgen/internal/errs"
)

const (
	// FetchTimeout bounds the page download.
	FetchTimeout = 30 * time.Second
	maxHTMLBytes = 5 << 20 // 5 MiB
)

// Resolver fetches pages with its HTTP client.
type Resolver struct {
	Client *http.Client
}

// New returns a Resolver with a FetchTimeout-bounded client.
func New() *Resolver {
	return &Resolver{Client: &http.Client{Timeout: FetchTimeout}}
}

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Resolve returns input unchanged unless it is a URL, in which case the page's
// title (or excerpt, when untitled) is returned.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, error) {
	if !IsURL(input) {
		return input, nil
	}
	u, _ := url.Parse(strings.TrimSpace(input))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp, err := r.Client.Do(req)
	if err != nil {
		return "", errs.Upstream("theme source", "GET "+u.Host, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2000))
		return "", errs.UpstreamStatus("theme source", "GET "+u.Host, resp.StatusCode, body)
	}

	art, err := readability.FromReader(io.LimitReader(resp.Body, maxHTMLBytes), u)
	if err != nil {
		return "", fmt.Errorf("readability extract: %w", err)
	}
	if t := collapse(art.Title); t != "" {
		return t, nil
	}
	if t := collapse(art.Excerpt); t != "" {
		return t, nil
	}
	return "", errors.New("page has no title or excerpt to use as a theme")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
