package handler_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorgan81/storybot/internal/handler"
	"github.com/dmorgan81/storybot/internal/image"
	"github.com/dmorgan81/storybot/internal/pipeline"
	"github.com/dmorgan81/storybot/internal/provider"
)

type mockProvider struct {
	generateImage func(ctx context.Context, prompt string) (*image.Image, error)
	generateStory func(ctx context.Context, img *image.Image, topic string) (string, error)
}

func (m *mockProvider) GenerateImage(ctx context.Context, prompt string) (*image.Image, error) {
	return m.generateImage(ctx, prompt)
}

func (m *mockProvider) GenerateStory(ctx context.Context, img *image.Image, topic string) (string, error) {
	return m.generateStory(ctx, img, topic)
}

func setupHandler(t *testing.T, p provider.Provider) *handler.Handler {
	injector := do.New()
	do.ProvideValue[provider.Provider](injector, p)
	do.Provide[*pipeline.Orchestrator](injector, pipeline.NewOrchestrator)
	do.Provide[*handler.Handler](injector, handler.NewHandler)

	h, err := do.Invoke[*handler.Handler](injector)
	require.NoError(t, err)
	return h
}

func TestHandler_Handle(t *testing.T) {
	h := setupHandler(t, &mockProvider{
		generateImage: func(context.Context, string) (*image.Image, error) {
			return &image.Image{Data: []byte("png"), MIMEType: "image/png", Width: 2, Height: 2, URL: "https://x/1.png"}, nil
		},
		generateStory: func(context.Context, *image.Image, string) (string, error) {
			return "Once upon a time...", nil
		},
	})

	out, err := h.Handle(context.Background(), handler.Input{Topic: "A cat playing the piano"})
	require.NoError(t, err)
	assert.Equal(t, "done", out.State)
	assert.Equal(t, "Once upon a time...", out.Story)
	require.NotNil(t, out.Image)
	assert.Equal(t, "https://x/1.png", out.Image.URL)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"state": "done",
		"topic": "A cat playing the piano",
		"image": {"mime_type": "image/png", "width": 2, "height": 2, "url": "https://x/1.png", "data": "cG5n"},
		"story": "Once upon a time..."
	}`, string(raw))
}

func TestHandler_Handle_Failures(t *testing.T) {
	h := setupHandler(t, &mockProvider{
		generateImage: func(context.Context, string) (*image.Image, error) {
			return &image.Image{Data: []byte("png"), MIMEType: "image/png"}, nil
		},
		generateStory: func(context.Context, *image.Image, string) (string, error) {
			return "", assert.AnError
		},
	})

	out, err := h.Handle(context.Background(), handler.Input{Topic: "cats"})
	require.NoError(t, err)
	assert.Equal(t, "failed", out.State)
	assert.NotNil(t, out.Image)
	assert.Equal(t, "Failed to generate story: "+assert.AnError.Error(), out.Error)

	out, err = h.Handle(context.Background(), handler.Input{})
	require.NoError(t, err)
	assert.Equal(t, "idle", out.State)
	assert.Equal(t, pipeline.EmptyTopicWarning, out.Warning)
	assert.Nil(t, out.Image)
}
