package domain

import (
	"fmt"
	"time"
)

// Settings stores per-user generation defaults applied to new briefs.
type Settings struct {
	UserID      string
	Tone        string
	Platform    string
	Locale      string
	AspectRatio string
	UpdatedAt   time.Time
}

const (
	DefaultTone        = "casual"
	DefaultPlatform    = "instagram"
	DefaultLocale      = "en"
	DefaultAspectRatio = "1:1"
)

// DefaultSettings returns the settings a user gets before saving any.
func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:      userID,
		Tone:        DefaultTone,
		Platform:    DefaultPlatform,
		Locale:      DefaultLocale,
		AspectRatio: DefaultAspectRatio,
	}
}

var settingsPlatforms = map[string]struct{}{
	"instagram": {},
	"tiktok":    {},
	"youtube":   {},
	"x":         {},
	"linkedin":  {},
}

var settingsAspectRatios = map[string]struct{}{
	"1:1":  {},
	"4:3":  {},
	"3:4":  {},
	"16:9": {},
	"9:16": {},
}

// ApplyDefaults fills any blank field with the product default.
func (s *Settings) ApplyDefaults() {
	if s.Tone == "" {
		s.Tone = DefaultTone
	}
	if s.Platform == "" {
		s.Platform = DefaultPlatform
	}
	if s.Locale == "" {
		s.Locale = DefaultLocale
	}
	if s.AspectRatio == "" {
		s.AspectRatio = DefaultAspectRatio
	}
}

// Validate checks that platform and aspect ratio are values the generators
// understand.
func (s Settings) Validate() error {
	if _, ok := settingsPlatforms[s.Platform]; !ok {
		return fmt.Errorf("platform must be one of instagram, tiktok, youtube, x, linkedin")
	}
	if _, ok := settingsAspectRatios[s.AspectRatio]; !ok {
		return fmt.Errorf("aspect_ratio must be one of 1:1, 4:3, 3:4, 16:9, 9:16")
	}
	return nil
}
