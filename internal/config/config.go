// Package config resolves the process-wide provider settings once at startup.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmorgan81/storybot/internal/log"
	"github.com/dmorgan81/storybot/internal/param"
	"github.com/samber/lo"
)

const (
	Together = "together"
	Gemini   = "gemini"
)

const (
	EnvProvider    = "STORY_PROVIDER"
	EnvAddr        = "ADDR"
	EnvLogLevel    = "LOG_LEVEL"
	EnvPromptsPath = "PROMPTS_PARAM"
)

// ErrMissing is returned when a required setting has no value in any source.
var ErrMissing = errors.New("configuration missing")

type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s: set one of %s", ErrMissing, strings.Join(e.Keys, ", "))
}

func (e *MissingError) Unwrap() error { return ErrMissing }

// Provider holds what a provider client needs to talk to its vendor.
type Provider struct {
	Name       string
	APIKey     string
	BaseURL    string
	ImageModel string
	StoryModel string
}

// String redacts the key so the value can be logged.
func (p Provider) String() string {
	return fmt.Sprintf("%s(base=%s image=%s story=%s)", p.Name, p.BaseURL, p.ImageModel, p.StoryModel)
}

type Config struct {
	Provider    Provider
	Addr        string
	PromptsPath string
}

type defaults struct {
	prefix     string
	baseURL    string
	imageModel string
	storyModel string
}

var providers = map[string]defaults{
	Together: {
		prefix:     "TOGETHER",
		baseURL:    "https://api.together.xyz/v1",
		imageModel: "black-forest-labs/FLUX.1-schnell-Free",
		storyModel: "meta-llama/Llama-3.2-90B-Vision-Instruct-Turbo",
	},
	Gemini: {
		prefix:     "GEMINI",
		baseURL:    "https://generativelanguage.googleapis.com/",
		imageModel: "gemini-2.0-flash-preview-image-generation",
		storyModel: "gemini-2.0-flash",
	},
}

// Load reads the environment through getenv and, for keys given as parameter paths,
// the fetcher. Only the selected provider's settings are resolved.
func Load(ctx context.Context, getenv func(string) string, fetcher param.Fetcher) (Config, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("config")

	env := func(key, fallback string) string {
		v := strings.TrimSpace(getenv(key))
		return lo.Ternary(v != "", v, fallback)
	}

	name := strings.ToLower(env(EnvProvider, Together))
	d, ok := providers[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown %s %q, want one of %s", EnvProvider, name,
			strings.Join(lo.Keys(providers), ", "))
	}

	keyEnv, keyParamEnv := d.prefix+"_API_KEY", d.prefix+"_API_KEY_PARAM"
	key := env(keyEnv, "")
	if key == "" {
		if path := env(keyParamEnv, ""); path != "" {
			if fetcher == nil {
				return Config{}, fmt.Errorf("%s set but no parameter store available", keyParamEnv)
			}
			v, err := fetcher.Fetch(ctx, path)
			if err != nil {
				return Config{}, fmt.Errorf("resolve %s: %w", keyParamEnv, err)
			}
			key = strings.TrimSpace(v)
		}
	}
	if key == "" {
		return Config{}, &MissingError{Keys: []string{keyEnv, keyParamEnv}}
	}

	cfg := Config{
		Provider: Provider{
			Name:       name,
			APIKey:     key,
			BaseURL:    env(d.prefix+"_BASE_URL", d.baseURL),
			ImageModel: env(d.prefix+"_IMAGE_MODEL", d.imageModel),
			StoryModel: env(d.prefix+"_STORY_MODEL", d.storyModel),
		},
		Addr:        env(EnvAddr, ":8080"),
		PromptsPath: env(EnvPromptsPath, ""),
	}
	log.Info("loaded configuration", "provider", cfg.Provider.String(), "addr", cfg.Addr)
	return cfg, nil
}
