package sources

import (
	"context"

	"github.com/mentionwatch/mention-monitor/internal/models"
)

// Source interface defines the contract for all search adapters. Search
// returns whatever candidate results the source produced; transport and
// parse failures surface as an error that the aggregator isolates, never as
// partial silent corruption.
type Source interface {
	GetName() string
	IsEnabled() bool
	Search(ctx context.Context, query string) ([]models.RawResult, error)
}
