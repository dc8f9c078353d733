package page

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"sync"

	"github.com/dmorgan81/storybot/internal/log"
	"github.com/dmorgan81/storybot/internal/pipeline"
)

//go:embed assets/index.html
var indexTmpl string

type Params struct {
	Topic       string
	Placeholder string
	Provider    string
	Image       template.URL
	ImageSize   string
	Story       string
	Warning     string
	Error       string
}

// FromResult fills the display fields from a finished invocation.
func (p Params) FromResult(res pipeline.Result) Params {
	p.Topic = res.Topic
	p.Story = res.Story
	p.Warning = res.Warning
	p.Error = res.Message()
	if res.Image != nil {
		// data URIs are built from our own base64 output, never from user input
		p.Image = template.URL(res.Image.DataURI())
		if res.Image.Width > 0 {
			p.ImageSize = fmt.Sprintf("%d×%d", res.Image.Width, res.Image.Height)
		}
	}
	return p
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func (g *Templator) Template(ctx context.Context, params Params) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("index").Parse(indexTmpl))
	})

	log := log.FromContextOrDiscard(ctx).WithGroup("templator")
	log.Debug("generating page", "has_image", params.Image != "", "has_error", params.Error != "")

	var data bytes.Buffer
	if err := g.tmpl.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
