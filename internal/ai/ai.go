// Package ai wraps an OpenAI-compatible chat model with the developer helpers
// exposed under /api/ai.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/devsocial/devsocial/internal/metrics"
)

const (
	DefaultModel = "gemini-2.5-flash"
	systemPrompt = "You are a helpful AI assistant for developers."
)

var (
	ErrNotConfigured = errors.New("AI service not configured")
	ErrUnavailable   = errors.New("AI service unavailable")
)

// Completer sends one system+user exchange and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAICompleter talks to any OpenAI-compatible chat completions endpoint.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

func NewOpenAICompleter(apiKey, baseURL, model string) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAICompleter{client: openai.NewClientWithConfig(cfg), model: model}
}

func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

type ContentCheck struct {
	IsAppropriate     bool     `json:"is_appropriate"`
	Reason            string   `json:"reason"`
	SuggestedHashtags []string `json:"suggested_hashtags"`
}

type Caption struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

type Service struct {
	completer Completer
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewService returns a facade over c. A nil c leaves the facade unconfigured.
func NewService(c Completer, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{completer: c, metrics: m, logger: logger}
}

func (s *Service) Configured() bool {
	return s.completer != nil
}

func (s *Service) ask(ctx context.Context, prompt string) (string, error) {
	if s.completer == nil {
		return "", ErrNotConfigured
	}
	reply, err := s.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		s.logger.Error("ai completion failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return reply, nil
}

// CheckContent never fails; unusable replies come back as an approval.
func (s *Service) CheckContent(ctx context.Context, content, code string) ContentCheck {
	prompt := fmt.Sprintf(`Decide whether this post belongs on a social network for developers.
It should be about programming, software, technology or a tech career.

Post content: %s`, content)
	if code != "" {
		prompt += "\n\nCode snippet:\n" + code
	}
	prompt += `

Respond in JSON format:
{
  "is_appropriate": true/false,
  "reason": "brief explanation",
  "suggested_hashtags": ["tag1", "tag2", "tag3"]
}`

	reply, err := s.ask(ctx, prompt)
	if err != nil {
		s.metrics.AIFallback("check_content")
		return ContentCheck{IsAppropriate: true, Reason: "AI service unavailable", SuggestedHashtags: []string{}}
	}
	var out ContentCheck
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &out); err != nil {
		s.metrics.AIFallback("check_content")
		return ContentCheck{IsAppropriate: true, Reason: "Content analysis completed", SuggestedHashtags: []string{}}
	}
	if out.SuggestedHashtags == nil {
		out.SuggestedHashtags = []string{}
	}
	return out
}

// GenerateCaption never fails; the post content is echoed back on error.
func (s *Service) GenerateCaption(ctx context.Context, content, code string) Caption {
	fallback := Caption{Caption: content, Hashtags: []string{"coding", "developer", "tech"}}
	prompt := "Write a short caption (two or three sentences) and five to seven hashtags for this developer post.\n\nContent: " + content
	if code != "" {
		prompt += "\n\nCode snippet:\n" + code
	}
	prompt += `

Respond in JSON format:
{
  "caption": "engaging caption here",
  "hashtags": ["tag1", "tag2", "tag3", "tag4", "tag5"]
}`

	reply, err := s.ask(ctx, prompt)
	if err != nil {
		s.metrics.AIFallback("generate_caption")
		return fallback
	}
	var out Caption
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &out); err != nil {
		s.metrics.AIFallback("generate_caption")
		return fallback
	}
	if out.Hashtags == nil {
		out.Hashtags = []string{}
	}
	return out
}

func (s *Service) ExplainCode(ctx context.Context, code, language string) (string, error) {
	if language == "" {
		language = "python"
	}
	return s.ask(ctx, fmt.Sprintf(`Explain this %s code in simple terms. Break down what it does, key concepts used, and potential improvements.

Code:
%s`, language, code))
}

func (s *Service) DetectBugs(ctx context.Context, code, language string) (string, error) {
	if language == "" {
		language = "python"
	}
	return s.ask(ctx, fmt.Sprintf(`Analyze this %s code for bugs, security issues, and performance problems. Provide specific suggestions for fixes.

Code:
%s`, language, code))
}

func (s *Service) CareerGuidance(ctx context.Context, skills []string, interests, experienceLevel string) (string, error) {
	if experienceLevel == "" {
		experienceLevel = "beginner"
	}
	return s.ask(ctx, fmt.Sprintf(`Provide career guidance for a developer with:
- Skills: %s
- Interests: %s
- Experience Level: %s

Suggest:
1. Learning path and next skills to learn
2. Project ideas to build portfolio
3. Career opportunities
4. Resources for learning`, strings.Join(skills, ", "), interests, experienceLevel))
}

// ExtractJSON returns the body of the first ```json fence, else the first
// ``` fence, else the whole reply, trimmed.
func ExtractJSON(reply string) string {
	for _, open := range []string{"```json", "```"} {
		start := strings.Index(reply, open)
		if start < 0 {
			continue
		}
		rest := reply[start+len(open):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(reply)
}
