package image

import (
	"context"
	"fmt"
	"strings"
)

// GenerateRequest describes a normalized request passed to any image provider.
type GenerateRequest struct {
	Prompt      string
	Style       string
	Quantity    int
	AspectRatio string
	Provider    string
	RequestID   string
	Locale      string
}

// Asset represents a generated image. Data is nil when the provider returns
// a remote URL instead of bytes.
type Asset struct {
	URL    string
	Format string
	Width  int
	Height int
	Data   []byte
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]Asset, error)
}

// Dimensions maps an aspect ratio onto concrete pixel sizes. Unknown ratios
// fall back to a square canvas.
func Dimensions(aspectRatio string) (int, int) {
	switch strings.TrimSpace(aspectRatio) {
	case "4:3":
		return 1024, 768
	case "3:4":
		return 768, 1024
	case "16:9":
		return 1280, 720
	case "9:16":
		return 720, 1280
	default:
		return 1024, 1024
	}
}

// BuildPrompt folds the style hint into the raw prompt text.
func BuildPrompt(prompt, style string) string {
	prompt = strings.TrimSpace(prompt)
	style = strings.TrimSpace(style)
	if style == "" {
		return prompt
	}
	return fmt.Sprintf("%s, %s style", prompt, style)
}
