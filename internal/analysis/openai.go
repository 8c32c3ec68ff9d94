package analysis

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIAnalyzer implements Analyzer with OpenAI chat completions.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

// Ensure OpenAIAnalyzer implements Analyzer
var _ Analyzer = (*OpenAIAnalyzer)(nil)

// NewOpenAIAnalyzer creates an analyzer backed by the OpenAI API.
func NewOpenAIAnalyzer(apiKey string) *OpenAIAnalyzer {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIAnalyzer{
		client: &client,
		model:  "gpt-4o-mini",
	}
}

func (a *OpenAIAnalyzer) Sentiment(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`Analyze the sentiment of the following text. Respond with only a JSON object containing 'sentiment' (positive/negative/neutral) and 'confidence' (0.0-1.0). Consider the tone, context, and any explicit sentiment indicators; do not assign a sentiment at random.

Text: %s

JSON Response:`, text)

	return a.generate(ctx, prompt, 100)
}

func (a *OpenAIAnalyzer) Relevance(ctx context.Context, text, term string) (string, error) {
	prompt := fmt.Sprintf(`Rate how relevant this text is to the search term "%s" on a scale of 0.0 to 1.0, where 1.0 is highly relevant and 0.0 is not relevant at all.

Consider:
- Direct mentions of the search term
- Context and topic relevance
- Quality of the mention

Text: %s

Respond with only a number between 0.0 and 1.0:`, term, text)

	return a.generate(ctx, prompt, 10)
}

func (a *OpenAIAnalyzer) Topics(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`Extract the top 3-5 key topics or themes from this text. Return only a comma-separated list of topics.

Text: %s

Topics:`, text)

	return a.generate(ctx, prompt, 50)
}

func (a *OpenAIAnalyzer) Summarize(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`Summarize this text in 1-2 sentences, focusing on the main point:

Text: %s

Summary:`, text)

	return a.generate(ctx, prompt, 100)
}

func (a *OpenAIAnalyzer) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	response, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(int64(maxTokens)),
	})

	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return response.Choices[0].Message.Content, nil
}
