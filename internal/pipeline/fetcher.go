package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/avolkov/deepscout/internal/cache"
	"github.com/avolkov/deepscout/internal/model"
	"github.com/avolkov/deepscout/internal/util"
	"github.com/avolkov/deepscout/internal/worker"
)

// Fetcher retrieves page content for candidate sources and reduces it to
// plain text suitable for extraction prompts. Fetches are best-effort,
// single-attempt: a failure marks only the source it belongs to.
type Fetcher struct {
	httpClient   *http.Client
	userAgent    string
	maxBytes     int64
	maxTextChars int
	cache        cache.Cache         // nil disables caching
	robots       *util.RobotsChecker // nil disables robots.txt checks
	limiter      *worker.Limiter     // nil disables per-domain rate limiting
}

// NewFetcher creates a new Fetcher from the HTTP configuration
func NewFetcher(cfg model.HTTPConfig, pageCache cache.Cache, limiter *worker.Limiter) *Fetcher {
	proxyFunc := util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)

	var robots *util.RobotsChecker
	if cfg.RespectRobots {
		robots = util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout)
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: proxyFunc,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:    cfg.UserAgent,
		maxBytes:     cfg.MaxBodyBytes,
		maxTextChars: cfg.MaxTextChars,
		cache:        pageCache,
		robots:       robots,
		limiter:      limiter,
	}
}

// FetchText retrieves the URL and returns its cleaned plain-text content,
// capped at the configured character limit.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	if f.cache != nil {
		if val, found := f.cache.Get(cache.Key(rawURL)); found {
			return string(val), nil
		}
	}

	if f.robots != nil {
		allowed, _, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return "", fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return "", fmt.Errorf("disallowed by robots.txt: %s", rawURL)
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	// Read body with size limit
	limitedReader := io.LimitReader(resp.Body, f.maxBytes)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	text, err := extractPageText(string(body))
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	// Cap content length so prompts remain manageable
	text = util.TruncateText(text, f.maxTextChars)

	if f.cache != nil {
		_ = f.cache.Set(cache.Key(rawURL), []byte(text), 0)
	}

	return text, nil
}

// extractPageText flattens HTML to visible text, skipping noisy page
// elements so extraction prompts stay clean.
func extractPageText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "header", "footer":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return strings.TrimSpace(buf.String()), nil
}
