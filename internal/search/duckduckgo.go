package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/avolkov/deepscout/internal/model"
)

// defaultEndpoint is the DuckDuckGo lite HTML interface, which is the most
// stable surface for scraping.
const defaultEndpoint = "https://lite.duckduckgo.com/lite/"

// DuckDuckGo implements Searcher against DuckDuckGo's HTML lite interface.
// A single shared rate limiter keeps all angles' queries to a polite pace
// against the provider.
type DuckDuckGo struct {
	client    *http.Client
	endpoint  string
	userAgent string
	limiter   *rate.Limiter
}

// NewDuckDuckGo creates a DuckDuckGo searcher
func NewDuckDuckGo(timeout time.Duration, userAgent string, requestsPerSec float64, burst int) *DuckDuckGo {
	if requestsPerSec <= 0 {
		requestsPerSec = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &DuckDuckGo{
		client:    &http.Client{Timeout: timeout},
		endpoint:  defaultEndpoint,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSec), burst),
	}
}

// Search queries the lite HTML page and parses up to maxResults sources.
// Results are deduplicated by URL.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]model.Source, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	formData := url.Values{}
	formData.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return parseLiteResults(string(body), maxResults)
}

// parseLiteResults extracts search results from the DuckDuckGo lite HTML.
// The lite page lays results out as anchors with class "result-link"
// followed by table cells with class "result-snippet".
func parseLiteResults(page string, maxResults int) ([]model.Source, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	var links []model.Source
	var snippets []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result-link"):
				href := attrValue(n, "href")
				title := strings.TrimSpace(nodeText(n))
				if href != "" && title != "" {
					links = append(links, model.Source{Title: title, URL: href})
				}
			case n.Data == "td" && hasClass(n, "result-snippet"):
				snippets = append(snippets, strings.TrimSpace(nodeText(n)))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	// Pair snippets with links positionally and dedupe by URL
	var results []model.Source
	seen := make(map[string]bool)
	for i, link := range links {
		if seen[link.URL] {
			continue
		}
		seen[link.URL] = true

		if i < len(snippets) {
			link.Snippet = snippets[i]
		}
		results = append(results, link)

		if len(results) >= maxResults {
			break
		}
	}

	return results, nil
}

// hasClass checks an element's class attribute for a class name
func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

// attrValue returns the value of the named attribute, or ""
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

// nodeText flattens the text content of a node
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
