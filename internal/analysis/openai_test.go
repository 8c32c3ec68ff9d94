package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIAnalyzer(t *testing.T) {
	analyzer := NewOpenAIAnalyzer("sk-test")

	require.NotNil(t, analyzer)
	require.NotNil(t, analyzer.client)
	assert.Equal(t, "gpt-4o-mini", analyzer.model)
}
