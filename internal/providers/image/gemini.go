package image

import (
	"bytes"
	"context"
	"encoding/base64"
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
}

// GeminiGenerator produces images through the Imagen predict endpoint.
type GeminiGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

const geminiImageTimeout = 60 * time.Second

type geminiImageRequest struct {
	Instances  []geminiImageInstance  `json:"instances"`
	Parameters *geminiImageParameters `json:"parameters,omitempty"`
}

type geminiImageInstance struct {
	Prompt string `json:"prompt"`
}

type geminiImageParameters struct {
	SampleCount int    `json:"sampleCount,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiImageResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

func NewGeminiGenerator(opts GeminiOptions) (*GeminiGenerator, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "imagen-3.0-generate-002"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiImageTimeout}
	}
	return &GeminiGenerator{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) ([]Asset, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	payload := geminiImageRequest{
		Instances: []geminiImageInstance{{Prompt: BuildPrompt(req.Prompt, req.Style)}},
		Parameters: &geminiImageParameters{
			SampleCount: quantity,
			AspectRatio: req.AspectRatio,
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:predict?key=%s", g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call imagen: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("imagen status %d", resp.StatusCode)
	}
	var out geminiImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Predictions) == 0 {
		return nil, errors.New("imagen returned no predictions")
	}
	width, height := Dimensions(req.AspectRatio)
	var assets []Asset
	for _, pred := range out.Predictions {
		data, err := base64.StdEncoding.DecodeString(pred.BytesBase64Encoded)
		if err != nil {
			continue
		}
		format := pred.MimeType
		if format == "" {
			format = "image/png"
		}
		assets = append(assets, Asset{
			Format: format,
			Width:  width,
			Height: height,
			Data:   data,
		})
	}
	if len(assets) == 0 {
		return nil, errors.New("imagen returned no decodable images")
	}
	return assets, nil
}

var _ Generator = (*GeminiGenerator)(nil)
