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

// BingSource scrapes Bing web search results as an alternative listing.
type BingSource struct {
	client     *resty.Client
	searchURL  string
	maxResults int
	pacer      *pacing
}

// Ensure BingSource implements Source
var _ Source = (*BingSource)(nil)

// NewBingSource creates a new Bing source
func NewBingSource(maxResults int, interval, jitter time.Duration) *BingSource {
	return &BingSource{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", userAgent),
		searchURL:  "https://www.bing.com/search",
		maxResults: maxResults,
		pacer:      newPacing(interval, jitter),
	}
}

func (b *BingSource) GetName() string {
	return "bing"
}

func (b *BingSource) IsEnabled() bool {
	return true // no credentials needed
}

func (b *BingSource) Search(ctx context.Context, query string) ([]models.RawResult, error) {
	defer b.pacer.wait(ctx)

	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":   query,
			"qft": `interval="7"`, // last week
		}).
		Get(b.searchURL)

	if err != nil {
		return nil, fmt.Errorf("bing request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("bing returned status %d", resp.StatusCode())
	}

	results, err := b.parseResults(string(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bing results: %w", err)
	}

	logrus.Debugf("Bing returned %d results for %q", len(results), query)
	return results, nil
}

func (b *BingSource) parseResults(body string) ([]models.RawResult, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	var results []models.RawResult
	for _, item := range findAll(doc, func(n *html.Node) bool {
		return isElement(n, "li") && hasClass(n, "b_algo")
	}) {
		if len(results) >= b.maxResults {
			break
		}

		heading := findFirst(item, func(n *html.Node) bool {
			return isElement(n, "h2")
		})
		if heading == nil {
			continue
		}
		link := findFirst(heading, func(n *html.Node) bool {
			return isElement(n, "a")
		})
		if link == nil {
			continue
		}

		title := nodeText(heading)
		href := attrVal(link, "href")
		if title == "" || href == "" {
			continue
		}

		snippet := ""
		if p := findFirst(item, func(n *html.Node) bool {
			return isElement(n, "p")
		}); p != nil {
			snippet = nodeText(p)
		}

		results = append(results, models.RawResult{
			Title:   title,
			URL:     href,
			Snippet: snippet,
		})
	}

	return results, nil
}
