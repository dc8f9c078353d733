package provider_test

import (
	"bytes"
	"context"
	"errors"
	goimage "image"
	"image/color"
	"image/png"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorgan81/storybot/internal/config"
	"github.com/dmorgan81/storybot/internal/image"
	"github.com/dmorgan81/storybot/internal/provider"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := goimage.NewRGBA(goimage.Rect(0, 0, 4, 4))
	img.Set(2, 2, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestKindOf(t *testing.T) {
	err := &provider.Error{Kind: provider.DecodeFailed, Provider: "p", Op: "op", Err: assert.AnError}
	assert.Equal(t, provider.DecodeFailed, provider.KindOf(err))
	assert.Equal(t, provider.DecodeFailed, provider.KindOf(errors.Join(errors.New("outer"), err)))
	assert.Equal(t, provider.Kind(0), provider.KindOf(assert.AnError))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "p op: decode failed: "+assert.AnError.Error(), err.Error())
}

func TestNew(t *testing.T) {
	p, err := provider.New(context.Background(), config.Provider{
		Name: config.Together, APIKey: "k", BaseURL: "http://localhost/v1",
	}, http.DefaultClient)
	require.NoError(t, err)
	assert.IsType(t, &provider.Together{}, p)

	p, err = provider.New(context.Background(), config.Provider{
		Name: config.Gemini, APIKey: "k", BaseURL: "http://localhost/",
	}, http.DefaultClient)
	require.NoError(t, err)
	assert.IsType(t, &provider.Gemini{}, p)

	_, err = provider.New(context.Background(), config.Provider{Name: "dezgo"}, http.DefaultClient)
	assert.Error(t, err)
}

func TestGenerateStory_NilImage(t *testing.T) {
	together := provider.NewTogether(config.Provider{Name: config.Together, APIKey: "k"}, http.DefaultClient)
	_, err := together.GenerateStory(context.Background(), nil, "cats")
	assert.Equal(t, provider.DecodeFailed, provider.KindOf(err))

	gemini, err := provider.NewGemini(context.Background(), config.Provider{Name: config.Gemini, APIKey: "k"}, http.DefaultClient)
	require.NoError(t, err)
	_, err = gemini.GenerateStory(context.Background(), &image.Image{}, "cats")
	assert.Equal(t, provider.DecodeFailed, provider.KindOf(err))
}
