package handler

import (
	"context"

	"github.com/dmorgan81/storybot/internal/log"
	"github.com/dmorgan81/storybot/internal/pipeline"
	"github.com/samber/do"
)

type Input struct {
	Topic string `json:"topic"`
}

type Image struct {
	MIMEType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	URL      string `json:"url,omitempty"`
	Data     []byte `json:"data"`
}

type Output struct {
	State   string `json:"state"`
	Topic   string `json:"topic"`
	Image   *Image `json:"image,omitempty"`
	Story   string `json:"story,omitempty"`
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

func NewOutput(res pipeline.Result) Output {
	out := Output{
		State:   res.State.String(),
		Topic:   res.Topic,
		Story:   res.Story,
		Warning: res.Warning,
		Error:   res.Message(),
	}
	if img := res.Image; img != nil {
		out.Image = &Image{
			MIMEType: img.MIMEType,
			Width:    img.Width,
			Height:   img.Height,
			URL:      img.URL,
			Data:     img.Data,
		}
	}
	return out
}

type Handler struct {
	orchestrator *pipeline.Orchestrator
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return &Handler{
		orchestrator: do.MustInvoke[*pipeline.Orchestrator](i),
	}, nil
}

// Handle serves Lambda invocations. Pipeline failures are part of the output, not an
// invocation error, so the image survives a failed story step.
func (h *Handler) Handle(ctx context.Context, input Input) (Output, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler").With("input", input)
	log.Info("handling lambda invocation")

	res := h.orchestrator.Run(ctx, input.Topic)
	out := NewOutput(res)
	log.Info("finished lambda invocation", "state", out.State)
	return out, nil
}
