package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/readmegen/backend/config"

	openai "github.com/sashabaranov/go-openai"
)

// TextGenerator is the generative text capability. Implementations may fail
// for any reason (timeout, quota, malformed response, transport), callers
// treat every failure the same way.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

const generatorSystemPrompt = `You are a technical writer. Given structured information about a GitHub repository, create a complete, professional README.md with:
- Clear project title
- Concise description with badges for language and license
- Detailed features with bullet points when features are provided
- Installation steps in code blocks with command examples
- Usage examples with code snippets
- Contributing guidelines
- License information
- Support/contact details when contact information is provided

Use modern markdown formatting with proper heading hierarchy and code syntax highlighting.
The README should be ready for immediate use without requiring edits.
Return ONLY the markdown document. No commentary, no code fences around the whole document.`

type openaiGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator builds a TextGenerator backed by any OpenAI compatible
// chat completion endpoint
func NewOpenAIGenerator(cfg config.GeneratorConfig) TextGenerator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)

	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &openaiGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

func (g *openaiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: generatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})

	if err != nil {
		return "", fmt.Errorf("text generation request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned by the generator")
	}

	return stripCodeFences(resp.Choices[0].Message.Content), nil
}

// stripCodeFences removes a markdown code fence some models wrap around the
// whole document despite the instructions
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		// remove opening fence (```markdown or ```)
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}

		// remove closing fence
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}

		s = strings.TrimSpace(s)
	}

	return s
}
