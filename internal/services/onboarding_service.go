package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const maxSuggestions = 8

// TextGenerator produces a completion for prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.4),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

type OnboardingRequest struct {
	OrganisationType string   `json:"organisation_type"`
	Services         []string `json:"services"`
	TeamSize         int      `json:"team_size"`
}

type OnboardingSuggestions struct {
	Suggestions []string `json:"suggestions"`
	Source      string   `json:"source"` // "ai" or "default"
}

var defaultSuggestions = []string{
	"Import your existing patient list and check NHS numbers",
	"Add your care professionals and their hourly rates",
	"Record DBS, NMC PIN and training credentials with expiry dates",
	"Assign each patient to their lead care professional",
	"Set up your first week of appointments",
	"Choose your payroll provider for exports",
	"Invite an admin colleague to share the setup",
}

// OnboardingService suggests first steps for a new tenant. Without a
// generator, or when generation fails, it returns a fixed list.
type OnboardingService struct {
	generator TextGenerator
	log       *zap.Logger
}

func NewOnboardingService(generator TextGenerator, log *zap.Logger) *OnboardingService {
	return &OnboardingService{generator: generator, log: log}
}

func (s *OnboardingService) Suggest(ctx context.Context, req OnboardingRequest) (*OnboardingSuggestions, error) {
	if strings.TrimSpace(req.OrganisationType) == "" {
		return nil, invalidf("organisation_type is required")
	}
	if req.TeamSize < 0 {
		return nil, invalidf("team_size cannot be negative")
	}

	fallback := &OnboardingSuggestions{Suggestions: defaultSuggestions, Source: "default"}
	if s.generator == nil {
		return fallback, nil
	}

	text, err := s.generator.Generate(ctx, onboardingPrompt(req))
	if err != nil {
		s.log.Warn("onboarding suggestion generation failed", zap.Error(err))
		return fallback, nil
	}
	suggestions := parseSuggestions(text)
	if len(suggestions) == 0 {
		s.log.Warn("onboarding suggestions were empty or malformed", zap.Int("length", len(text)))
		return fallback, nil
	}
	return &OnboardingSuggestions{Suggestions: suggestions, Source: "ai"}, nil
}

func onboardingPrompt(req OnboardingRequest) string {
	var b strings.Builder
	b.WriteString("You help UK complex care providers set up a care management system.\n")
	fmt.Fprintf(&b, "Organisation type: %s\n", req.OrganisationType)
	if len(req.Services) > 0 {
		fmt.Fprintf(&b, "Services offered: %s\n", strings.Join(req.Services, ", "))
	}
	if req.TeamSize > 0 {
		fmt.Fprintf(&b, "Team size: %d\n", req.TeamSize)
	}
	fmt.Fprintf(&b, "Reply with a JSON array of at most %d short onboarding steps, as strings.", maxSuggestions)
	return b.String()
}

// parseSuggestions accepts a JSON array of strings, or an object with a
// "suggestions" array, optionally wrapped in a markdown code fence.
func parseSuggestions(text string) []string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if !gjson.Valid(text) {
		return nil
	}

	doc := gjson.Parse(text)
	if doc.IsObject() {
		doc = doc.Get("suggestions")
	}
	if !doc.IsArray() {
		return nil
	}

	var out []string
	for _, item := range doc.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
