package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"energydocs-backend/internal/llm"
)

const (
	defaultSearchURL = "https://html.duckduckgo.com/html/"

	resultsPerQuery = 3
	pageContentCap  = 1000
	pageBodyCap     = 256 << 10
)

// skipExtensions are document formats not worth scraping for company context.
var skipExtensions = []string{
	".pdf", ".doc", ".docx", ".ppt", ".pptx",
	".xls", ".xlsx", ".csv", ".zip", ".rar",
}

// skipDomains host documents behind auth walls or viewers.
var skipDomains = []string{
	"docs.google.com",
	"drive.google.com",
	"dropbox.com",
	"box.com",
}

// Fetcher gathers public web context about a counterparty and condenses it
// into a short brief via the prompt client. It is best-effort by design; every
// failure degrades to "no information" rather than failing an analysis.
type Fetcher struct {
	prompt     llm.PromptClient
	httpClient *http.Client
	searchURL  string
}

// NewFetcher builds a Fetcher. The timeout bounds each outbound request
// individually, not the whole lookup.
func NewFetcher(prompt llm.PromptClient, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		prompt:     prompt,
		httpClient: &http.Client{Timeout: timeout},
		searchURL:  defaultSearchURL,
	}
}

type searchResult struct {
	url     string
	content string
}

// EntitySummary searches for an entity, scrapes the top results, and returns
// a 3-4 sentence brief. An empty summary with a nil error means no usable
// information was found.
func (f *Fetcher) EntitySummary(ctx context.Context, entityName string) (string, error) {
	entityName = strings.TrimSpace(entityName)
	if entityName == "" {
		return "", nil
	}

	queries := []string{
		fmt.Sprintf("%q company profile renewable energy", entityName),
		fmt.Sprintf("%q recent news financial performance", entityName),
		fmt.Sprintf("%q reputation issues OR lawsuits", entityName),
	}

	var results []searchResult
	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		urls, err := f.search(ctx, query)
		if err != nil {
			continue
		}
		for _, u := range urls {
			if shouldSkipURL(u) {
				continue
			}
			content, err := f.fetchPage(ctx, u)
			if err != nil || content == "" {
				continue
			}
			results = append(results, searchResult{url: u, content: content})
		}
	}
	if len(results) == 0 {
		return "", nil
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Source: ")
		b.WriteString(r.url)
		b.WriteString("\nContent: ")
		b.WriteString(r.content)
	}

	system, user := llm.ResearchPrompt(entityName, b.String())
	summary, err := f.prompt.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("summarize %s: %w", entityName, err)
	}
	return strings.TrimSpace(summary), nil
}

// search runs one query against the HTML search endpoint and returns up to
// resultsPerQuery result links.
func (f *Fetcher) search(ctx context.Context, query string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.searchURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "energydocs-backend/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search status %d", resp.StatusCode)
	}

	return parseResultLinks(io.LimitReader(resp.Body, pageBodyCap), resultsPerQuery), nil
}

// parseResultLinks pulls result anchors (class result__a) out of the search
// page, resolving the uddg redirect parameter when present.
func parseResultLinks(r io.Reader, limit int) []string {
	var links []string
	tokenizer := html.NewTokenizer(r)
	for len(links) < limit {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return links
		case html.StartTagToken:
			tok := tokenizer.Token()
			if tok.Data != "a" {
				continue
			}
			var href, class string
			for _, attr := range tok.Attr {
				switch attr.Key {
				case "href":
					href = attr.Val
				case "class":
					class = attr.Val
				}
			}
			if !strings.Contains(class, "result__a") || href == "" {
				continue
			}
			if resolved := resolveRedirect(href); resolved != "" {
				links = append(links, resolved)
			}
		}
	}
	return links
}

func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return u.String()
	}
	return ""
}

func shouldSkipURL(raw string) bool {
	u, err := url.Parse(strings.ToLower(raw))
	if err != nil {
		return true
	}
	for _, ext := range skipExtensions {
		if strings.HasSuffix(u.Path, ext) {
			return true
		}
	}
	for _, domain := range skipDomains {
		if strings.Contains(u.Host, domain) {
			return true
		}
	}
	return false
}

// fetchPage downloads one result page and returns its visible text, capped at
// pageContentCap characters. Non-HTML responses are skipped.
func (f *Fetcher) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "energydocs-backend/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "text/html") {
		return "", nil
	}

	text := visibleText(io.LimitReader(resp.Body, pageBodyCap))
	if len(text) > pageContentCap {
		text = text[:pageContentCap]
	}
	return text, nil
}

// visibleText strips markup, script, and style content and collapses
// whitespace into single spaces.
func visibleText(r io.Reader) string {
	tokenizer := html.NewTokenizer(r)
	var b strings.Builder
	skipDepth := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			tok := tokenizer.Token()
			if tok.Data == "script" || tok.Data == "style" {
				skipDepth++
			}
		case html.EndTagToken:
			tok := tokenizer.Token()
			if (tok.Data == "script" || tok.Data == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.WriteString(tokenizer.Token().Data)
				b.WriteString(" ")
			}
		}
	}
}
