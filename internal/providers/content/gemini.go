package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"itinerary-api/internal/domain"
)

const (
	geminiDefaultTimeout = 60 * time.Second
	geminiDefaultModel   = "gemini-1.5-flash"
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiOptions configures a Gemini provider.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini generates itineraries through the generateContent API. Unlike a
// prompt-enhancement flow there is no static fallback here: a failure must
// reach the caller so the job transitions to failed instead of silently
// serving placeholder content as a completed result.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGemini(opts GeminiOptions) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = geminiDefaultModel
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &Gemini{apiKey: opts.APIKey, model: model, baseURL: baseURL, client: client}, nil
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type itineraryPayload struct {
	Itinerary []domain.ItineraryDay `json:"itinerary"`
}

func (g *Gemini) Itinerary(ctx context.Context, destination string, durationDays int) ([]domain.ItineraryDay, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{{
				Text: buildItineraryPrompt(destination, durationDays),
			}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0.7,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrProviderFailure, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: gemini returned %d: %s", domain.ErrProviderFailure, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrProviderFailure, err)
	}
	text := extractText(out)
	if text == "" {
		return nil, fmt.Errorf("%w: response carried no candidate text", domain.ErrProviderFailure)
	}

	days, err := parseItineraryText(text)
	if err != nil {
		return nil, err
	}
	if err := validateItinerary(days); err != nil {
		return nil, err
	}
	return days, nil
}

func (g *Gemini) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

func buildItineraryPrompt(destination string, durationDays int) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "You are a travel planner. Create a %d-day itinerary for %s. ", durationDays, destination)
	sb.WriteString("Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"itinerary":[{"day":number,"theme":string,"activities":[{"time":string,"description":string,"location":string}]}]}`)
	fmt.Fprintf(sb, ". Produce exactly %d day entries numbered from 1, each with morning, afternoon and evening activities. No prose outside the JSON.", durationDays)
	return sb.String()
}

// parseItineraryText decodes the model's message content, which is itself
// expected to be JSON. Both the schema's wrapper object and a bare day array
// are accepted.
func parseItineraryText(raw string) ([]domain.ItineraryDay, error) {
	fragment := extractJSONFragment(raw)
	if fragment == "" {
		return nil, fmt.Errorf("%w: response text is not JSON", domain.ErrProviderFailure)
	}
	if strings.HasPrefix(fragment, "[") {
		var days []domain.ItineraryDay
		if err := json.Unmarshal([]byte(fragment), &days); err != nil {
			return nil, fmt.Errorf("%w: parse itinerary: %v", domain.ErrProviderFailure, err)
		}
		return days, nil
	}
	var parsed itineraryPayload
	if err := json.Unmarshal([]byte(fragment), &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse itinerary: %v", domain.ErrProviderFailure, err)
	}
	return parsed.Itinerary, nil
}

func extractText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

var _ Provider = (*Gemini)(nil)
