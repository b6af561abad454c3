package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"github.com/otpstudio/studio-server-go/internal/config"
	apperrors "github.com/otpstudio/studio-server-go/internal/errors"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	defaultAnthropicModel = "claude-3-5-sonnet-latest"
	defaultOpenAIModel    = "gpt-4o"
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"

	maxGenerationTokens = 4096
)

// archetypes are the server-held system prompts selectable from the panel.
// Unknown selectors fall back to "default".
var archetypes = map[string]string{
	"default": "You are a senior content writer for a B2B software marketing site. " +
		"Write clear, direct prose without filler.",
	"thought-leader": "You are an industry analyst writing opinionated, forward-looking " +
		"commentary for a technical executive audience.",
	"case-study": "You are a technical writer producing a customer case study: " +
		"concrete problem, solution, measurable results.",
	"landing": "You are a conversion copywriter producing landing-page copy with " +
		"short punchy sections and a clear call to action.",
}

const outputInstructions = `Respond with a single JSON object and nothing else, using exactly these keys:
{"content": "<full article body in markdown>", "excerpt": "<1-2 sentence summary>", "seo_title": "<under 60 chars>", "seo_desc": "<under 160 chars>"}`

// GeneratedContent is the normalized shape returned to the admin panel
// regardless of which provider produced it.
type GeneratedContent struct {
	Content  string `json:"content"`
	Excerpt  string `json:"excerpt"`
	SEOTitle string `json:"seo_title"`
	SEODesc  string `json:"seo_desc"`
}

type GenerateParams struct {
	Provider  string
	Prompt    string
	Title     string
	Archetype string
	Model     string
}

// AIService proxies content generation to the external AI providers using
// server-held API keys the browser never sees.
type AIService struct {
	anthropicKey  string
	openaiKey     string
	openaiBaseURL string
	client        *http.Client
}

func NewAIService(anthropicKey, openaiKey string) *AIService {
	return &AIService{
		anthropicKey:  anthropicKey,
		openaiKey:     openaiKey,
		openaiBaseURL: defaultOpenAIBaseURL,
		client: &http.Client{
			Timeout: config.AIRequestTimeout,
		},
	}
}

func (s *AIService) Generate(ctx context.Context, params GenerateParams) (*GeneratedContent, error) {
	if params.Prompt == "" {
		return nil, apperrors.MissingRequired("prompt")
	}

	system := archetypes["default"]
	if p, ok := archetypes[params.Archetype]; ok {
		system = p
	}

	userPrompt := buildUserPrompt(params)

	start := time.Now()
	var raw string
	var err error

	switch params.Provider {
	case ProviderAnthropic:
		raw, err = s.generateAnthropic(ctx, system, userPrompt, params.Model)
	case ProviderOpenAI:
		raw, err = s.generateOpenAI(ctx, system, userPrompt, params.Model)
	default:
		return nil, apperrors.InvalidInput("provider", "must be one of: anthropic, openai")
	}

	if err != nil {
		log.Error().
			Err(err).
			Str("provider", params.Provider).
			Dur("elapsed", time.Since(start)).
			Msg("content generation failed")
		return nil, err
	}

	content, err := parseGenerated(params.Provider, raw)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("provider", params.Provider).
		Str("archetype", params.Archetype).
		Dur("elapsed", time.Since(start)).
		Int("contentLen", len(content.Content)).
		Msg("content generated")

	return content, nil
}

func buildUserPrompt(params GenerateParams) string {
	var b strings.Builder
	if params.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n\n", params.Title)
	}
	b.WriteString(params.Prompt)
	b.WriteString("\n\n")
	b.WriteString(outputInstructions)
	return b.String()
}

func (s *AIService) generateAnthropic(ctx context.Context, system, prompt, model string) (string, error) {
	if s.anthropicKey == "" {
		return "", apperrors.Configuration("Anthropic API key is not configured")
	}

	if model == "" {
		model = defaultAnthropicModel
	}

	client := anthropic.NewClient(option.WithAPIKey(s.anthropicKey))

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxGenerationTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", apperrors.Upstream("Anthropic", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", apperrors.UpstreamMessage("Anthropic", "empty completion")
	}

	return b.String(), nil
}

// openAI request/response wire types. No OpenAI client library is used;
// the call is a plain chat-completions POST.
type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (s *AIService) generateOpenAI(ctx context.Context, system, prompt, model string) (string, error) {
	if s.openaiKey == "" {
		return "", apperrors.Configuration("OpenAI API key is not configured")
	}

	if model == "" {
		model = defaultOpenAIModel
	}

	body, err := json.Marshal(openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:      maxGenerationTokens,
		ResponseFormat: &openAIFormat{Type: "json_object"},
	})
	if err != nil {
		return "", apperrors.Internal("failed to build OpenAI request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.openaiBaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Internal("failed to build OpenAI request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.openaiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperrors.Upstream("OpenAI", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Upstream("OpenAI", err)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apperrors.Parse("OpenAI", err)
	}

	if parsed.Error != nil {
		return "", apperrors.UpstreamMessage("OpenAI", parsed.Error.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.UpstreamMessage("OpenAI", fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	if len(parsed.Choices) == 0 {
		return "", apperrors.UpstreamMessage("OpenAI", "empty completion")
	}

	return parsed.Choices[0].Message.Content, nil
}

// parseGenerated normalizes the model's output into GeneratedContent.
// Models occasionally wrap the JSON in a fenced code block despite the
// instructions; the fence is stripped before parsing.
func parseGenerated(provider, raw string) (*GeneratedContent, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var content GeneratedContent
	if err := json.Unmarshal([]byte(trimmed), &content); err != nil {
		return nil, apperrors.Parse(provider, err)
	}

	if content.Content == "" {
		return nil, apperrors.Parse(provider, fmt.Errorf("response is missing content"))
	}

	return &content, nil
}
