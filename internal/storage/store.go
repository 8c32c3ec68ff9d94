package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mentionwatch/mention-monitor/internal/models"
	"github.com/sirupsen/logrus"
)

// mentionsObject is the single collection holding every persisted mention.
const mentionsObject = "mentions.json"

// MentionStore persists mentions as one JSON collection on a Backend, keyed
// by URL. Callers must serialize Merge and UpdateAnalysis calls: the store
// is single-writer per process, documented here as a precondition rather
// than enforced with internal locking.
type MentionStore struct {
	backend Backend
}

// NewMentionStore creates a mention store over the given backend.
func NewMentionStore(backend Backend) *MentionStore {
	return &MentionStore{backend: backend}
}

// Merge appends the mentions from batch whose URL is not already present in
// the collection, across all search terms, and writes the full collection
// back. Already-seen URLs are discarded, never overwritten, so merging the
// same batch twice yields the same persisted state as merging it once.
// Returns the number of mentions actually added.
func (s *MentionStore) Merge(batch []models.Mention) (int, error) {
	existing, err := s.LoadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to load existing mentions: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, m := range existing {
		seen[m.URL] = true
	}

	added := 0
	for _, m := range batch {
		m.URL = strings.TrimSpace(m.URL)
		if m.URL == "" || seen[m.URL] {
			continue
		}
		seen[m.URL] = true
		existing = append(existing, m)
		added++
	}

	if added == 0 {
		return 0, nil
	}

	if err := s.writeAll(existing); err != nil {
		return 0, err
	}

	logrus.Infof("Merged %d new mentions into storage (%d total)", added, len(existing))
	return added, nil
}

// UpdateAnalysis folds enrichment results back into the persisted
// collection: for every stored mention whose URL matches a batch item, the
// sentiment and relevance_score fields are replaced. All other fields are
// left untouched. Unknown URLs in the batch are ignored.
func (s *MentionStore) UpdateAnalysis(batch []models.Mention) error {
	if len(batch) == 0 {
		return nil
	}

	existing, err := s.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load existing mentions: %w", err)
	}

	updates := make(map[string]models.Mention, len(batch))
	for _, m := range batch {
		updates[strings.TrimSpace(m.URL)] = m
	}

	changed := false
	for i := range existing {
		u, ok := updates[existing[i].URL]
		if !ok {
			continue
		}
		if existing[i].Sentiment != u.Sentiment || existing[i].RelevanceScore != u.RelevanceScore {
			existing[i].Sentiment = u.Sentiment
			existing[i].RelevanceScore = u.RelevanceScore
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return s.writeAll(existing)
}

// LoadForTerm returns the stored mentions whose search term matches term,
// case-insensitively. Always returns a non-nil slice on success.
func (s *MentionStore) LoadForTerm(term string) ([]models.Mention, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}

	matched := []models.Mention{}
	for _, m := range all {
		if strings.EqualFold(m.SearchTerm, term) {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

// LoadAll reads the full collection. An absent or empty collection yields
// zero records. Individual records that fail to parse or carry no URL are
// skipped with a warning rather than failing the whole load.
func (s *MentionStore) LoadAll() ([]models.Mention, error) {
	names, err := s.backend.List(mentionsObject)
	if err != nil {
		return nil, fmt.Errorf("failed to check for mention collection: %w", err)
	}
	found := false
	for _, name := range names {
		if name == mentionsObject {
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}

	data, err := s.backend.Retrieve(mentionsObject)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve mention collection: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("mention collection is not a valid JSON array: %w", err)
	}

	mentions := make([]models.Mention, 0, len(raw))
	for i, record := range raw {
		var m models.Mention
		if err := json.Unmarshal(record, &m); err != nil {
			logrus.Warnf("Skipping malformed mention record %d: %v", i, err)
			continue
		}
		if strings.TrimSpace(m.URL) == "" {
			logrus.Warnf("Skipping mention record %d: empty url", i)
			continue
		}
		mentions = append(mentions, m)
	}

	return mentions, nil
}

func (s *MentionStore) writeAll(mentions []models.Mention) error {
	data, err := json.MarshalIndent(mentions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mentions: %w", err)
	}
	if err := s.backend.Store(mentionsObject, data); err != nil {
		return fmt.Errorf("failed to persist mentions: %w", err)
	}
	return nil
}
