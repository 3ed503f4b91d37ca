// Package fetch downloads Periodic Transaction Report PDFs from the House
// Clerk's financial disclosure search.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://disclosures-clerk.house.gov"
	searchPath     = "/FinancialDisclosure/ViewMemberSearchResult"
	landingPath    = "/FinancialDisclosure"

	tokenCacheKey = "verification-token"
	userAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36"
)

// The search form is CSRF-protected; the landing page embeds the token as a
// hidden input.
var tokenRe = regexp.MustCompile(`name="__RequestVerificationToken"[^>]*value="([^"]+)"`)

// SearchParams are the member search form fields. Empty fields are sent
// blank, which the search treats as wildcards.
type SearchParams struct {
	LastName   string
	FilingYear string
	State      string
	District   string
}

// Client talks to the Clerk's disclosure site. Requests are paced through a
// rate limiter so a full-year crawl stays polite.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	tokens  *cache.Cache
}

type Option func(*Client)

// WithBaseURL points the client at a different host. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRequestInterval sets the minimum spacing between requests.
func WithRequestInterval(d time.Duration) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func NewClient(opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second, Jar: jar},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		tokens:  cache.New(15*time.Minute, 30*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search posts the member search form and returns absolute URLs of the
// "PTR Original" filings in the result table. Amendments and annual
// disclosures are skipped.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]string, error) {
	token, err := c.verificationToken(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"LastName":   {params.LastName},
		"FilingYear": {params.FilingYear},
		"State":      {params.State},
		"District":   {params.District},
	}
	if token != "" {
		form.Set("__RequestVerificationToken", token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", c.baseURL+landingPath)

	body, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching disclosures: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	var links []string
	for _, href := range reportLinks(doc) {
		links = append(links, c.absolutize(href))
	}
	return links, nil
}

// Download fetches one report PDF into dir, named after the last path
// segment of the URL. Returns the path of the written file.
func (c *Client) Download(ctx context.Context, reportURL, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reportURL, nil)
	if err != nil {
		return "", fmt.Errorf("building download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	body, err := c.do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", reportURL, err)
	}

	name := path.Base(reportURL)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("downloading %s: cannot derive file name", reportURL)
	}
	dest := filepath.Join(dir, name)
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	return dest, nil
}

// DownloadAll searches and downloads every matching report into dir,
// returning the written paths. One failed download does not stop the rest;
// the first error is returned alongside whatever succeeded.
func (c *Client) DownloadAll(ctx context.Context, params SearchParams, dir string) ([]string, error) {
	links, err := c.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating download dir: %w", err)
	}

	var paths []string
	var firstErr error
	for _, link := range links {
		p, err := c.Download(ctx, link, dir)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		paths = append(paths, p)
	}
	return paths, firstErr
}

// verificationToken returns a cached CSRF token, fetching the landing page
// when none is held. The fetch also primes the cookie jar, which the search
// POST needs alongside the token.
func (c *Client) verificationToken(ctx context.Context) (string, error) {
	if tok, ok := c.tokens.Get(tokenCacheKey); ok {
		return tok.(string), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+landingPath, nil)
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	body, err := c.do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("fetching verification token: %w", err)
	}

	m := tokenRe.FindSubmatch(body)
	if m == nil {
		// The site has been observed serving the form without the hidden
		// input; the search still works, so proceed with a blank token.
		return "", nil
	}
	token := string(m[1])
	c.tokens.Set(tokenCacheKey, token, cache.DefaultExpiration)
	return token, nil
}

func (c *Client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) absolutize(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return c.baseURL + "/" + strings.TrimLeft(href, "/")
}

// reportLinks walks the result table and keeps the Name-column link of every
// row whose Filing column reads exactly "PTR Original".
func reportLinks(doc *html.Node) []string {
	var links []string

	var walkRow func(n *html.Node, link *string, filing *string)
	walkRow = func(n *html.Node, link *string, filing *string) {
		if n.Type == html.ElementNode && n.Data == "td" {
			switch attr(n, "data-label") {
			case "Name":
				if a := firstAnchor(n); a != nil {
					*link = attr(a, "href")
				}
			case "Filing":
				*filing = strings.TrimSpace(text(n))
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walkRow(child, link, filing)
		}
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var link, filing string
			walkRow(n, &link, &filing)
			if link != "" && filing == "PTR Original" {
				links = append(links, link)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return links
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func firstAnchor(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "a" {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if a := firstAnchor(child); a != nil {
			return a
		}
	}
	return nil
}

func text(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(text(child))
	}
	return b.String()
}
