package aggregator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mentionwatch/mention-monitor/internal/models"
	"github.com/mentionwatch/mention-monitor/internal/sources"
)

// Store is the subset of the mention store the aggregator needs.
type Store interface {
	Merge(batch []models.Mention) (int, error)
}

// Aggregator fans a search term out to every registered source concurrently,
// dedupes the combined results by URL, and hands the batch to the store.
type Aggregator struct {
	sources        []sources.Source
	store          Store
	adapterTimeout time.Duration
	now            func() time.Time
}

// New creates an aggregator over the given sources and store. Each adapter
// call is bounded by adapterTimeout; a timed-out or failing adapter
// contributes nothing and does not delay or cancel its siblings.
func New(srcs []sources.Source, store Store, adapterTimeout time.Duration) *Aggregator {
	return &Aggregator{
		sources:        srcs,
		store:          store,
		adapterTimeout: adapterTimeout,
		now:            time.Now,
	}
}

// SearchMentions queries all enabled sources for term, dedupes by URL and
// merges the batch into the store. Source failures are isolated and logged;
// a storage failure fails the call. The returned slice is never nil, so an
// unproductive search stays distinguishable from a failed one.
func (a *Aggregator) SearchMentions(ctx context.Context, term string) ([]models.Mention, error) {
	enabled := a.enabledSources()
	logrus.Infof("Searching %d sources for %q", len(enabled), term)

	// Results are kept per registration slot so the dedup below is
	// deterministic regardless of goroutine completion order.
	results := make([][]models.RawResult, len(enabled))
	var wg sync.WaitGroup

	for i, src := range enabled {
		wg.Add(1)
		go func(slot int, src sources.Source) {
			defer wg.Done()

			srcCtx, cancel := context.WithTimeout(ctx, a.adapterTimeout)
			defer cancel()

			found, err := src.Search(srcCtx, term)
			if err != nil {
				logrus.Errorf("Source %s failed for %q: %v", src.GetName(), term, err)
				return
			}

			logrus.Infof("Found %d results from %s", len(found), src.GetName())
			results[slot] = found
		}(i, src)
	}

	wg.Wait()

	mentions := a.dedupe(enabled, results, term)
	if len(mentions) == 0 {
		logrus.Infof("No results for %q, skipping merge", term)
		return []models.Mention{}, nil
	}

	added, err := a.store.Merge(mentions)
	if err != nil {
		return nil, err
	}

	logrus.Infof("Search for %q produced %d unique mentions (%d newly stored)", term, len(mentions), added)
	return mentions, nil
}

// dedupe merges per-source results in registration order, keeping the first
// occurrence of each URL. URLs are whitespace-trimmed; results without a URL
// are dropped.
func (a *Aggregator) dedupe(srcs []sources.Source, results [][]models.RawResult, term string) []models.Mention {
	foundAt := a.now()
	seen := make(map[string]bool)
	var mentions []models.Mention

	for i, found := range results {
		for _, r := range found {
			url := strings.TrimSpace(r.URL)
			if url == "" || seen[url] {
				continue
			}
			seen[url] = true
			mentions = append(mentions, models.NewMention(
				srcs[i].GetName(), r.Title, url, r.Snippet, term, foundAt))
		}
	}

	return mentions
}

func (a *Aggregator) enabledSources() []sources.Source {
	var enabled []sources.Source
	for _, src := range a.sources {
		if src.IsEnabled() {
			enabled = append(enabled, src)
		}
	}
	return enabled
}
