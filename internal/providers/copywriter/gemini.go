package copywriter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Writer
}

// GeminiWriter calls the Gemini generateContent endpoint and asks for a
// strict-JSON copy pack. Any fault along the way falls back to the static
// writer so generation never hard-fails on provider trouble.
type GeminiWriter struct {
	apiKey   string
	model    string
	baseURL  string
	client   *http.Client
	fallback Writer
}

const (
	geminiDefaultTimeout = 15 * time.Second
	geminiProviderName   = "gemini"
	staticProviderName   = "static"
)

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

type geminiPackPayload struct {
	Hooks    []string          `json:"hooks"`
	Captions []string          `json:"captions"`
	Titles   []string          `json:"titles"`
	CTAs     []string          `json:"ctas"`
	Metadata map[string]string `json:"metadata"`
}

func NewGeminiWriter(opts GeminiOptions) (*GeminiWriter, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiWriter{
		apiKey:   opts.APIKey,
		model:    model,
		baseURL:  baseURL,
		client:   client,
		fallback: opts.Fallback,
	}, nil
}

func (g *GeminiWriter) Generate(ctx context.Context, req GenerateRequest) (*Pack, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{{
				Text: g.buildPrompt(req),
			}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0.6,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return g.useFallback(ctx, req)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), &buf)
	if err != nil {
		return g.useFallback(ctx, req)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return g.useFallback(ctx, req)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return g.useFallback(ctx, req)
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return g.useFallback(ctx, req)
	}
	text := extractText(out)
	if text == "" {
		return g.useFallback(ctx, req)
	}
	parsed, err := parseGeminiPayload(text)
	if err != nil {
		return g.useFallback(ctx, req)
	}
	pack := &Pack{
		Hooks:    cleanLines(parsed.Hooks),
		Captions: cleanLines(parsed.Captions),
		Titles:   cleanLines(parsed.Titles),
		CTAs:     cleanLines(parsed.CTAs),
		Metadata: ensureMetadata(parsed.Metadata, req),
		Provider: geminiProviderName,
	}
	if len(pack.Hooks) == 0 && len(pack.Captions) == 0 && len(pack.Titles) == 0 && len(pack.CTAs) == 0 {
		return g.useFallback(ctx, req)
	}
	return pack, nil
}

func (g *GeminiWriter) endpoint() string {
	base := strings.TrimRight(g.baseURL, "/")
	model := url.PathEscape(g.model)
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, model, url.QueryEscape(g.apiKey))
}

func (g *GeminiWriter) useFallback(ctx context.Context, req GenerateRequest) (*Pack, error) {
	fallback := g.fallback
	if fallback == nil {
		fallback = NewStaticWriter()
	}
	pack, err := fallback.Generate(ctx, req)
	if pack != nil {
		pack.Provider = staticProviderName
	}
	return pack, err
}

func (g *GeminiWriter) buildPrompt(req GenerateRequest) string {
	b := req.Brief
	locale := req.Locale
	if locale == "" {
		locale = b.Extras.Locale
	}
	sb := &strings.Builder{}
	sb.WriteString("You are a social media copywriter. Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"hooks":string[],"captions":string[],"titles":string[],"ctas":string[],"metadata":{"locale":string}}`)
	fmt.Fprintf(sb, ". Produce two entries per list. Use locale '%s'. Target platform %q with a %q tone.", locale, b.Platform, b.Tone)
	fmt.Fprintf(sb, " Idea: %q.", b.Idea)
	if b.Instructions != "" {
		fmt.Fprintf(sb, " Extra instructions: %q.", b.Instructions)
	}
	if b.Extras.Audience != "" {
		fmt.Fprintf(sb, " Audience: %q.", b.Extras.Audience)
	}
	if len(b.Hashtags) > 0 {
		fmt.Fprintf(sb, " Weave in these hashtags where natural: %s.", strings.Join(b.Hashtags, " "))
	}
	return sb.String()
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

func ensureMetadata(meta map[string]string, req GenerateRequest) map[string]string {
	if meta == nil {
		meta = map[string]string{}
	}
	if req.Locale != "" {
		meta["locale"] = req.Locale
	} else if _, ok := meta["locale"]; !ok {
		meta["locale"] = req.Brief.Extras.Locale
	}
	if req.Brief.Platform != "" {
		meta["platform"] = req.Brief.Platform
	}
	return meta
}

func cleanLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func parseGeminiPayload(raw string) (geminiPackPayload, error) {
	var zero geminiPackPayload
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded geminiPackPayload
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
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

var _ Writer = (*GeminiWriter)(nil)
