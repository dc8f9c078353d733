package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmorgan81/storybot/internal/config"
	"github.com/dmorgan81/storybot/internal/image"
	"github.com/dmorgan81/storybot/internal/log"
	"github.com/dmorgan81/storybot/internal/prompt"
	"google.golang.org/genai"
)

// Gemini receives generated images inline and sends the raw bytes back to the story
// model.
type Gemini struct {
	client     *genai.Client
	imageModel string
	storyModel string
}

var _ Provider = (*Gemini)(nil)

func NewGemini(ctx context.Context, cfg config.Provider, client *http.Client) (*Gemini, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  client,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{
		client:     gc,
		imageModel: cfg.ImageModel,
		storyModel: cfg.StoryModel,
	}, nil
}

func (g *Gemini) GenerateImage(ctx context.Context, p string) (*image.Image, error) {
	const op = "generate image"
	log := log.FromContextOrDiscard(ctx).WithGroup("gemini").With("model", g.imageModel)
	log.Info("generating image", "prompt", p)

	resp, err := g.client.Models.GenerateContent(ctx, g.imageModel, genai.Text(p), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, callFailed(config.Gemini, op, err)
	}

	blob := firstInlineData(resp)
	if blob == nil {
		return nil, decodeFailed(config.Gemini, op, errors.New("no inline image data in response"))
	}

	// the SDK has already base64-decoded the wire payload into Data
	img, err := image.Decode(blob.Data, blob.MIMEType)
	if err != nil {
		return nil, decodeFailed(config.Gemini, op, err)
	}
	log.Info("generated image", "mime", img.MIMEType, "width", img.Width, "height", img.Height)
	return img, nil
}

func (g *Gemini) GenerateStory(ctx context.Context, img *image.Image, topic string) (string, error) {
	const op = "generate story"
	log := log.FromContextOrDiscard(ctx).WithGroup("gemini").With("model", g.storyModel)

	if img == nil || len(img.Data) == 0 {
		return "", decodeFailed(config.Gemini, op, errors.New("no image context"))
	}
	log.Info("generating story", "topic", topic, "bytes", len(img.Data))

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, img.MIMEType),
			genai.NewPartFromText(prompt.StoryFromImage(topic)),
		}, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.storyModel, contents, nil)
	if err != nil {
		return "", callFailed(config.Gemini, op, err)
	}

	story := collectText(resp)
	if story == "" {
		return "", decodeFailed(config.Gemini, op, errors.New("no text in response"))
	}
	log.Info("generated story", "length", len(story))
	return story, nil
}

func firstInlineData(resp *genai.GenerateContentResponse) *genai.Blob {
	for _, part := range parts(resp) {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData
		}
	}
	return nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, part := range parts(resp) {
		if part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// parts returns the parts of the first candidate.
func parts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return nil
	}
	var out []*genai.Part
	for _, p := range c.Content.Parts {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
