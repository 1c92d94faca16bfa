package jsoncfg

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ImageConfig carries the optional image-generation portion of a brief.
type ImageConfig struct {
	Enabled     bool   `json:"enabled"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspect_ratio"`
	Quantity    int    `json:"quantity"`
}

// ExtrasConfig holds preferences that tune generation without changing the
// brief's meaning.
type ExtrasConfig struct {
	Locale   string `json:"locale"`
	Audience string `json:"audience"`
}

// ContentBrief is the validated request payload behind every generation
// pass. Requests arrive as loose JSON; this struct is the explicit shape
// checked at the boundary so nothing downstream sees an ad-hoc map.
type ContentBrief struct {
	Version      string       `json:"version"`
	Idea         string       `json:"idea"`
	Platform     string       `json:"platform"`
	Tone         string       `json:"tone"`
	Instructions string       `json:"instructions"`
	Hashtags     []string     `json:"hashtags"`
	Image        ImageConfig  `json:"image"`
	Extras       ExtrasConfig `json:"extras"`
}

var allowedPlatforms = map[string]struct{}{
	"instagram": {},
	"tiktok":    {},
	"youtube":   {},
	"x":         {},
	"linkedin":  {},
}

var allowedAspectRatios = map[string]struct{}{
	"1:1":  {},
	"4:3":  {},
	"3:4":  {},
	"16:9": {},
	"9:16": {},
}

const (
	// DefaultBriefVersion represents the schema version persisted for briefs.
	DefaultBriefVersion = "2025-06"
	// DefaultBriefPlatform is used when the request omits the platform.
	DefaultBriefPlatform = "instagram"
	// DefaultBriefTone is applied when no tone preference is provided.
	DefaultBriefTone = "casual"
	// DefaultImageAspectRatio is used when the image config omits the ratio.
	DefaultImageAspectRatio = "1:1"
	// DefaultImageQuantity is the minimum image count per pass.
	DefaultImageQuantity = 1
	// MaxImageQuantity caps generated images per pass.
	MaxImageQuantity = 4
	// DefaultExtrasLocale is applied when no locale preference is provided.
	DefaultExtrasLocale = "en"
)

// Normalize fills server defaults and clamps limits in place.
func (b *ContentBrief) Normalize(preferredLocale string) {
	if b == nil {
		return
	}
	if b.Version == "" {
		b.Version = DefaultBriefVersion
	}
	if b.Platform == "" {
		b.Platform = DefaultBriefPlatform
	}
	if b.Tone == "" {
		b.Tone = DefaultBriefTone
	}
	if b.Image.Enabled {
		if b.Image.Quantity <= 0 {
			b.Image.Quantity = DefaultImageQuantity
		}
		if b.Image.Quantity > MaxImageQuantity {
			b.Image.Quantity = MaxImageQuantity
		}
		if b.Image.AspectRatio == "" {
			b.Image.AspectRatio = DefaultImageAspectRatio
		}
	}
	if b.Extras.Locale == "" {
		if preferredLocale != "" {
			b.Extras.Locale = preferredLocale
		} else {
			b.Extras.Locale = DefaultExtrasLocale
		}
	}
}

// Validate ensures the brief satisfies the contract before persistence or
// generation.
func (b ContentBrief) Validate() error {
	if strings.TrimSpace(b.Idea) == "" {
		return fmt.Errorf("idea is required")
	}
	if _, ok := allowedPlatforms[b.Platform]; !ok {
		return fmt.Errorf("platform must be one of instagram, tiktok, youtube, x, linkedin")
	}
	if b.Image.Enabled {
		if b.Image.Quantity < 1 || b.Image.Quantity > MaxImageQuantity {
			return fmt.Errorf("image.quantity must be between 1 and %d", MaxImageQuantity)
		}
		if _, ok := allowedAspectRatios[b.Image.AspectRatio]; !ok {
			return fmt.Errorf("image.aspect_ratio must be one of 1:1, 4:3, 3:4, 16:9, 9:16")
		}
	}
	return nil
}

// PerformanceInput is the validated body for recording post-publish metrics.
// Each metric is independently optional: absent means "not recorded" and is
// stored as NULL, which is distinct from an explicit zero.
type PerformanceInput struct {
	Views    *int64 `json:"views"`
	Likes    *int64 `json:"likes"`
	Comments *int64 `json:"comments"`
	Reposts  *int64 `json:"reposts"`
	Note     string `json:"note"`
}

// Validate rejects negative metric values before they reach storage. The
// aggregation engine treats its input as well-formed, so the check lives
// here at the boundary.
func (p PerformanceInput) Validate() error {
	metrics := map[string]*int64{
		"views":    p.Views,
		"likes":    p.Likes,
		"comments": p.Comments,
		"reposts":  p.Reposts,
	}
	for name, v := range metrics {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

func MustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("json marshal: %w", err))
	}
	return b
}
