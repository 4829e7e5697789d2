package main

import "time"

// DefaultSplashSource is the view name used when a call or the config names
// no source.
const DefaultSplashSource = "launch"

// Built-in fallbacks, applied after per-call and persisted values (seconds).
const (
	defaultSplashDelay        = 0
	defaultSplashShowDuration = 3.0
	defaultSplashFadeIn       = 0.2
	defaultSplashFadeOut      = 0.2
)

// SplashOptions are per-call overrides accepted by ShowSplash and HideSplash.
// Nil fields fall through to the persisted settings, then to the defaults.
// HideSplash only consumes Delay and FadeOutDuration.
type SplashOptions struct {
	Source          *string  `json:"source,omitempty"`
	Delay           *float64 `json:"delay,omitempty"`
	ShowDuration    *float64 `json:"showDuration,omitempty"`
	FadeInDuration  *float64 `json:"fadeInDuration,omitempty"`
	FadeOutDuration *float64 `json:"fadeOutDuration,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	Animated        *bool    `json:"animated,omitempty"`
	AutoHide        *bool    `json:"autoHide,omitempty"`
	ShowSpinner     *bool    `json:"showSpinner,omitempty"`
}

// SplashSettings is the persisted splash section of AppConfig. Pointer fields
// distinguish "not set" from an explicit zero/false so call-time merging can
// tell the two apart. Duration values may be written colloquially in either
// seconds or milliseconds; they are normalized when a call config is built,
// never in place.
type SplashSettings struct {
	Source          string   `json:"source,omitempty"`
	Delay           *float64 `json:"delay,omitempty"`
	ShowDuration    *float64 `json:"showDuration,omitempty"`
	FadeInDuration  *float64 `json:"fadeInDuration,omitempty"`
	FadeOutDuration *float64 `json:"fadeOutDuration,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	Animated        *bool    `json:"animated,omitempty"`
	AutoHide        *bool    `json:"autoHide,omitempty"`
	ShowSpinner     *bool    `json:"showSpinner,omitempty"`
}

// SplashConfig is one call's fully resolved configuration. Every duration is
// in seconds here; nothing downstream re-interprets units.
type SplashConfig struct {
	Source          string
	Delay           float64
	ShowDuration    float64
	FadeInDuration  float64
	FadeOutDuration float64
	BackgroundColor string
	Animated        bool
	AutoHide        bool
	ShowSpinner     bool
	IsLaunchSplash  bool
}

// toSeconds normalizes a colloquial duration value. Callers write either
// seconds ("0.25") or milliseconds ("250") with no unit marker; anything from
// 10 up is read as milliseconds. Applied exactly once per field while the
// merged config is built. Not idempotent: toSeconds(10) is 0.01, and 0.01
// then passes through unchanged.
func toSeconds(v float64) float64 {
	if v >= 10 {
		return v / 1000
	}
	return v
}

// resolveSplashConfig merges one call's overrides onto the persisted settings
// and the built-in defaults, field by field, then normalizes the durations.
// An animated splash is always dismissed by an explicit hide, so animated
// forces autoHide off no matter what the caller asked for.
func resolveSplashConfig(opts *SplashOptions, saved *SplashSettings) SplashConfig {
	if opts == nil {
		opts = &SplashOptions{}
	}
	if saved == nil {
		saved = &SplashSettings{}
	}

	cfg := SplashConfig{
		Source:          pickString(opts.Source, saved.Source, DefaultSplashSource),
		Delay:           toSeconds(pickFloat(opts.Delay, saved.Delay, defaultSplashDelay)),
		ShowDuration:    toSeconds(pickFloat(opts.ShowDuration, saved.ShowDuration, defaultSplashShowDuration)),
		FadeInDuration:  toSeconds(pickFloat(opts.FadeInDuration, saved.FadeInDuration, defaultSplashFadeIn)),
		FadeOutDuration: toSeconds(pickFloat(opts.FadeOutDuration, saved.FadeOutDuration, defaultSplashFadeOut)),
		BackgroundColor: pickString(opts.BackgroundColor, saved.BackgroundColor, ""),
		Animated:        pickBool(opts.Animated, saved.Animated, false),
		AutoHide:        pickBool(opts.AutoHide, saved.AutoHide, false),
		ShowSpinner:     pickBool(opts.ShowSpinner, saved.ShowSpinner, false),
	}
	if cfg.Animated {
		cfg.AutoHide = false
	}
	return cfg
}

func pickFloat(call, saved *float64, def float64) float64 {
	if call != nil {
		return *call
	}
	if saved != nil {
		return *saved
	}
	return def
}

func pickBool(call, saved *bool, def bool) bool {
	if call != nil {
		return *call
	}
	if saved != nil {
		return *saved
	}
	return def
}

func pickString(call *string, saved, def string) string {
	if call != nil && *call != "" {
		return *call
	}
	if saved != "" {
		return saved
	}
	return def
}

// secondsToDuration converts a normalized seconds value for the timer layer.
func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
