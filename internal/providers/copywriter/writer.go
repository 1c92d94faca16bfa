package copywriter

import (
	"context"
	"fmt"
	"strings"

	"server/internal/domain/jsoncfg"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GenerateRequest carries a normalized brief into any copy provider.
type GenerateRequest struct {
	Brief  jsoncfg.ContentBrief
	Locale string
}

// Pack is one full copy set produced from a brief. Every slice is ordered
// best-candidate first.
type Pack struct {
	Hooks    []string          `json:"hooks"`
	Captions []string          `json:"captions"`
	Titles   []string          `json:"titles"`
	CTAs     []string          `json:"ctas"`
	Metadata map[string]string `json:"metadata"`
	Provider string            `json:"-"`
}

// Writer is the contract implemented by all copy providers.
type Writer interface {
	Generate(ctx context.Context, req GenerateRequest) (*Pack, error)
}

// StaticWriter produces deterministic copy without any remote call. It is
// the development default and the fallback when a remote provider fails.
type StaticWriter struct{}

func NewStaticWriter() *StaticWriter {
	return &StaticWriter{}
}

func (s *StaticWriter) Generate(ctx context.Context, req GenerateRequest) (*Pack, error) {
	c := cases.Title(language.Und)
	idea := strings.TrimSpace(req.Brief.Idea)
	if idea == "" {
		idea = "your next post"
	}
	topic := c.String(idea)
	platform := req.Brief.Platform
	if platform == "" {
		platform = jsoncfg.DefaultBriefPlatform
	}
	pack := &Pack{
		Hooks: []string{
			fmt.Sprintf("Stop scrolling: %s changes everything", idea),
			fmt.Sprintf("Nobody talks about %s. Here's why they should", idea),
		},
		Captions: []string{
			fmt.Sprintf("%s, broken down step by step. Save this for later.", topic),
			fmt.Sprintf("We tried %s so you don't have to. Full story below.", idea),
		},
		Titles: []string{
			fmt.Sprintf("%s: The Complete Guide", topic),
			fmt.Sprintf("What %s Taught Us", topic),
		},
		CTAs: []string{
			"Follow for more like this",
			fmt.Sprintf("Share this with someone who needs %s", idea),
		},
		Metadata: map[string]string{
			"locale":   req.Locale,
			"platform": platform,
		},
		Provider: staticProviderName,
	}
	return pack, nil
}

var _ Writer = (*StaticWriter)(nil)
