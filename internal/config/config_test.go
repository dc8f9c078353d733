package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorgan81/storybot/internal/config"
)

type mockFetcher struct {
	fetch func(ctx context.Context, path string) (string, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, path string) (string, error) {
	return m.fetch(ctx, path)
}

func (m *mockFetcher) FetchAll(context.Context, string) ([]string, error) {
	return nil, nil
}

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_TogetherDefaults(t *testing.T) {
	cfg, err := config.Load(context.Background(), envOf(map[string]string{
		"TOGETHER_API_KEY": "tk",
	}), nil)
	require.NoError(t, err)

	assert.Equal(t, config.Provider{
		Name:       config.Together,
		APIKey:     "tk",
		BaseURL:    "https://api.together.xyz/v1",
		ImageModel: "black-forest-labs/FLUX.1-schnell-Free",
		StoryModel: "meta-llama/Llama-3.2-90B-Vision-Instruct-Turbo",
	}, cfg.Provider)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.NotContains(t, cfg.Provider.String(), "tk")
}

func TestLoad_GeminiOverrides(t *testing.T) {
	cfg, err := config.Load(context.Background(), envOf(map[string]string{
		"STORY_PROVIDER":     "Gemini",
		"GEMINI_API_KEY":     "gk",
		"GEMINI_BASE_URL":    "http://localhost:9999/",
		"GEMINI_STORY_MODEL": "gemini-test",
		"ADDR":               ":9000",
	}), nil)
	require.NoError(t, err)

	assert.Equal(t, config.Gemini, cfg.Provider.Name)
	assert.Equal(t, "gk", cfg.Provider.APIKey)
	assert.Equal(t, "http://localhost:9999/", cfg.Provider.BaseURL)
	assert.Equal(t, "gemini-test", cfg.Provider.StoryModel)
	assert.Equal(t, "gemini-2.0-flash-preview-image-generation", cfg.Provider.ImageModel)
	assert.Equal(t, ":9000", cfg.Addr)
}

func TestLoad_KeyFromParameterStore(t *testing.T) {
	fetcher := &mockFetcher{fetch: func(_ context.Context, path string) (string, error) {
		assert.Equal(t, "/storybot/together", path)
		return "from-ssm\n", nil
	}}

	cfg, err := config.Load(context.Background(), envOf(map[string]string{
		"TOGETHER_API_KEY_PARAM": "/storybot/together",
	}), fetcher)
	require.NoError(t, err)
	assert.Equal(t, "from-ssm", cfg.Provider.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		fetcher *mockFetcher
		missing bool
	}{
		{
			name:    "no key",
			env:     map[string]string{},
			missing: true,
		},
		{
			name:    "only the other provider has a key",
			env:     map[string]string{"STORY_PROVIDER": "gemini", "TOGETHER_API_KEY": "tk"},
			missing: true,
		},
		{
			name: "parameter store failure",
			env:  map[string]string{"GEMINI_API_KEY_PARAM": "/x", "STORY_PROVIDER": "gemini"},
			fetcher: &mockFetcher{fetch: func(context.Context, string) (string, error) {
				return "", assert.AnError
			}},
		},
		{
			name: "unknown provider",
			env:  map[string]string{"STORY_PROVIDER": "dezgo", "TOGETHER_API_KEY": "tk"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.fetcher != nil {
				_, err = config.Load(context.Background(), envOf(tt.env), tt.fetcher)
			} else {
				_, err = config.Load(context.Background(), envOf(tt.env), nil)
			}
			require.Error(t, err)
			assert.Equal(t, tt.missing, errors.Is(err, config.ErrMissing))
		})
	}
}
