package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duckduckgoFixture = `
<html><body>
  <div class="results">
    <div class="result results_links">
      <h2 class="result__title">
        <a class="result__a" href="https://example.com/first">First Result</a>
      </h2>
      <a class="result__snippet" href="https://example.com/first">Snippet for the <b>first</b> result</a>
    </div>
    <div class="result">
      <a class="result__a" href="https://example.com/second">Second Result</a>
    </div>
    <div class="result">
      <a class="result__a" href="">No URL here</a>
    </div>
  </div>
</body></html>`

const bingFixture = `
<html><body>
  <ol id="b_results">
    <li class="b_algo">
      <h2><a href="https://example.com/one">Bing One</a></h2>
      <div class="b_caption"><p>Caption for one</p></div>
    </li>
    <li class="b_algo">
      <h2><a href="https://example.com/two">Bing Two</a></h2>
    </li>
    <li class="b_ad">
      <h2><a href="https://ads.example.com">An advert</a></h2>
    </li>
  </ol>
</body></html>`

func TestDuckDuckGoSource_GetName(t *testing.T) {
	source := NewDuckDuckGoSource(20, 0, 0)
	assert.Equal(t, "duckduckgo", source.GetName())
	assert.True(t, source.IsEnabled())
}

func TestDuckDuckGoSource_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acme corp", r.URL.Query().Get("q"))
		w.Write([]byte(duckduckgoFixture))
	}))
	defer server.Close()

	source := NewDuckDuckGoSource(20, 0, 0)
	source.searchURL = server.URL

	results, err := source.Search(context.Background(), "acme corp")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "First Result", results[0].Title)
	assert.Equal(t, "https://example.com/first", results[0].URL)
	assert.Equal(t, "Snippet for the first result", results[0].Snippet)
	assert.Equal(t, "Second Result", results[1].Title)
	assert.Equal(t, "", results[1].Snippet)
}

func TestDuckDuckGoSource_MaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(duckduckgoFixture))
	}))
	defer server.Close()

	source := NewDuckDuckGoSource(1, 0, 0)
	source.searchURL = server.URL

	results, err := source.Search(context.Background(), "acme")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestDuckDuckGoSource_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source := NewDuckDuckGoSource(20, 0, 0)
	source.searchURL = server.URL

	_, err := source.Search(context.Background(), "acme")
	assert.Error(t, err)
}

func TestBingSource_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bingFixture))
	}))
	defer server.Close()

	source := NewBingSource(20, 0, 0)
	source.searchURL = server.URL

	results, err := source.Search(context.Background(), "acme")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Bing One", results[0].Title)
	assert.Equal(t, "https://example.com/one", results[0].URL)
	assert.Equal(t, "Caption for one", results[0].Snippet)
	assert.Equal(t, "Bing Two", results[1].Title)
}

func TestBingSource_GetName(t *testing.T) {
	source := NewBingSource(20, 0, 0)
	assert.Equal(t, "bing", source.GetName())
	assert.True(t, source.IsEnabled())
}

func TestTavilySource_IsEnabled(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		expected bool
	}{
		{name: "API key provided", apiKey: "tvly-key", expected: true},
		{name: "No API key", apiKey: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := NewTavilySource(tt.apiKey, 20, 0, 0)
			assert.Equal(t, tt.expected, source.IsEnabled())
		})
	}
}

func TestTavilySource_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{"title": "Tavily Result", "url": "https://example.com/t", "content": "body text"},
				{"title": "", "url": "https://example.com/missing-title"}
			]
		}`))
	}))
	defer server.Close()

	source := NewTavilySource("tvly-key", 20, 0, 0)
	source.searchURL = server.URL

	results, err := source.Search(context.Background(), "acme")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Tavily Result", results[0].Title)
	assert.Equal(t, "https://example.com/t", results[0].URL)
	assert.Equal(t, "body text", results[0].Snippet)
}

func TestTavilySource_DisabledReturnsNothing(t *testing.T) {
	source := NewTavilySource("", 20, 0, 0)

	results, err := source.Search(context.Background(), "acme")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTavilySource_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	source := NewTavilySource("tvly-key", 20, 0, 0)
	source.searchURL = server.URL

	_, err := source.Search(context.Background(), "acme")
	assert.Error(t, err)
}

func TestPacing_WaitBounds(t *testing.T) {
	p := newPacing(20*time.Millisecond, 10*time.Millisecond)

	start := time.Now()
	p.wait(context.Background())
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
	assert.Less(t, elapsed, 200*time.Millisecond)
}

func TestPacing_ZeroIsImmediate(t *testing.T) {
	p := newPacing(0, 0)

	start := time.Now()
	p.wait(context.Background())
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestPacing_CancelledContext(t *testing.T) {
	p := newPacing(time.Minute, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	p.wait(ctx)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
