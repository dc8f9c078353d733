package provider

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmorgan81/storybot/internal/config"
	"github.com/dmorgan81/storybot/internal/image"
	"github.com/dmorgan81/storybot/internal/log"
	"github.com/dmorgan81/storybot/internal/prompt"
	"github.com/sashabaranov/go-openai"
)

// Together talks to an OpenAI-compatible endpoint and passes the image to the story
// model by URL.
type Together struct {
	client     *openai.Client
	http       *http.Client
	imageModel string
	storyModel string
}

var _ Provider = (*Together)(nil)

func NewTogether(cfg config.Provider, client *http.Client) *Together {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = client
	return &Together{
		client:     openai.NewClientWithConfig(oc),
		http:       client,
		imageModel: cfg.ImageModel,
		storyModel: cfg.StoryModel,
	}
}

func (t *Together) GenerateImage(ctx context.Context, p string) (*image.Image, error) {
	const op = "generate image"
	log := log.FromContextOrDiscard(ctx).WithGroup("together").With("model", t.imageModel)
	log.Info("generating image", "prompt", p)

	resp, err := t.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         p,
		Model:          t.imageModel,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, callFailed(config.Together, op, err)
	}
	if len(resp.Data) == 0 {
		return nil, decodeFailed(config.Together, op, errors.New("no image data returned"))
	}

	data := resp.Data[0]
	switch {
	case data.URL != "":
		img, err := image.Fetch(ctx, t.http, data.URL)
		if err != nil {
			return nil, fetchFailed(config.Together, op, err)
		}
		log.Info("generated image", "url", img.URL, "width", img.Width, "height", img.Height)
		return img, nil
	case data.B64JSON != "":
		// no URL to hand the story model; it gets a data URI instead
		img, err := image.DecodeBase64(data.B64JSON, "")
		if err != nil {
			return nil, decodeFailed(config.Together, op, err)
		}
		log.Info("generated inline image", "width", img.Width, "height", img.Height)
		return img, nil
	default:
		return nil, decodeFailed(config.Together, op, errors.New("image data has neither url nor b64_json"))
	}
}

func (t *Together) GenerateStory(ctx context.Context, img *image.Image, topic string) (string, error) {
	const op = "generate story"
	log := log.FromContextOrDiscard(ctx).WithGroup("together").With("model", t.storyModel)

	if img == nil {
		return "", decodeFailed(config.Together, op, errors.New("no image context"))
	}
	text, url := prompt.StoryFromURL(img.URL, topic), img.URL
	if url == "" {
		text, url = prompt.StoryFromImage(topic), img.DataURI()
	}
	log.Info("generating story", "topic", topic, "url", img.URL)

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.storyModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: text,
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: url},
					},
				},
			},
		},
	})
	if err != nil {
		return "", callFailed(config.Together, op, err)
	}
	if len(resp.Choices) == 0 {
		return "", decodeFailed(config.Together, op, errors.New("no choices returned"))
	}

	story := resp.Choices[0].Message.Content
	if story == "" {
		return "", decodeFailed(config.Together, op, errors.New("empty story content"))
	}
	log.Info("generated story", "length", len(story))
	return story, nil
}
