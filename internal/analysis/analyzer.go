package analysis

import "context"

// Analyzer is the external text-analysis capability. Each method issues one
// independent call and returns the provider's raw text output; callers must
// treat it as untrusted and apply their own fallback parsing. Implementations
// return an error only when the call itself failed.
type Analyzer interface {
	Sentiment(ctx context.Context, text string) (string, error)
	Relevance(ctx context.Context, text, term string) (string, error)
	Topics(ctx context.Context, text string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
}
