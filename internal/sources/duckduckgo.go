package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/mentionwatch/mention-monitor/internal/models"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DuckDuckGoSource searches the DuckDuckGo HTML interface, which is more
// reliable than the instant-answer API for general result listings.
type DuckDuckGoSource struct {
	client     *resty.Client
	searchURL  string
	maxResults int
	pacer      *pacing
}

// Ensure DuckDuckGoSource implements Source
var _ Source = (*DuckDuckGoSource)(nil)

// NewDuckDuckGoSource creates a new DuckDuckGo source
func NewDuckDuckGoSource(maxResults int, interval, jitter time.Duration) *DuckDuckGoSource {
	return &DuckDuckGoSource{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", userAgent),
		searchURL:  "https://html.duckduckgo.com/html/",
		maxResults: maxResults,
		pacer:      newPacing(interval, jitter),
	}
}

func (d *DuckDuckGoSource) GetName() string {
	return "duckduckgo"
}

func (d *DuckDuckGoSource) IsEnabled() bool {
	return true // no credentials needed
}

func (d *DuckDuckGoSource) Search(ctx context.Context, query string) ([]models.RawResult, error) {
	defer d.pacer.wait(ctx)

	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":  query,
			"b":  "",
			"kl": "us-en",
			"df": "w", // last week
		}).
		Get(d.searchURL)

	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode())
	}

	results, err := d.parseResults(string(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse duckduckgo results: %w", err)
	}

	logrus.Debugf("DuckDuckGo returned %d results for %q", len(results), query)
	return results, nil
}

func (d *DuckDuckGoSource) parseResults(body string) ([]models.RawResult, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	var results []models.RawResult
	for _, div := range findAll(doc, func(n *html.Node) bool {
		return isElement(n, "div") && hasClass(n, "result")
	}) {
		if len(results) >= d.maxResults {
			break
		}

		titleLink := findFirst(div, func(n *html.Node) bool {
			return isElement(n, "a") && hasClass(n, "result__a")
		})
		if titleLink == nil {
			continue
		}

		title := nodeText(titleLink)
		link := attrVal(titleLink, "href")
		if title == "" || link == "" {
			continue
		}

		snippet := ""
		if snippetNode := findFirst(div, func(n *html.Node) bool {
			return isElement(n, "a") && hasClass(n, "result__snippet")
		}); snippetNode != nil {
			snippet = nodeText(snippetNode)
		}

		results = append(results, models.RawResult{
			Title:   title,
			URL:     link,
			Snippet: snippet,
		})
	}

	return results, nil
}
