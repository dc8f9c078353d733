// Package provider wraps the upstream image and story generation vendors behind one
// capability set.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dmorgan81/storybot/internal/config"
	"github.com/dmorgan81/storybot/internal/image"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Provider generates an image for a prompt and then a story about that image.
// Each call is one blocking round trip with no retries.
type Provider interface {
	GenerateImage(ctx context.Context, prompt string) (*image.Image, error)
	GenerateStory(ctx context.Context, img *image.Image, topic string) (string, error)
}

type Kind int

const (
	RequestFailed Kind = iota + 1
	DecodeFailed
)

func (k Kind) String() string {
	switch k {
	case RequestFailed:
		return "request failed"
	case DecodeFailed:
		return "decode failed"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind     Kind
	Provider string
	Op       string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Provider, e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the failure kind of err, or 0 when err is not a provider error.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return 0
}

func requestFailed(provider, op string, err error) error {
	return &Error{Kind: RequestFailed, Provider: provider, Op: op, Err: err}
}

func decodeFailed(provider, op string, err error) error {
	return &Error{Kind: DecodeFailed, Provider: provider, Op: op, Err: err}
}

// fetchFailed classifies a failed image download.
func fetchFailed(provider, op string, err error) error {
	var decodeErr *image.DecodeError
	if errors.As(err, &decodeErr) {
		return decodeFailed(provider, op, err)
	}
	return requestFailed(provider, op, err)
}

// callFailed classifies an error returned by a vendor SDK call. Transport failures and
// non-2xx statuses are request failures; a 2xx body that does not parse is a decode failure.
func callFailed(provider, op string, err error) error {
	var (
		openaiErr  *openai.APIError
		requestErr *openai.RequestError
		genaiErr   genai.APIError
		urlErr     *url.Error
		syntaxErr  *json.SyntaxError
		typeErr    *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &openaiErr), errors.As(err, &requestErr), errors.As(err, &genaiErr), errors.As(err, &urlErr):
		return requestFailed(provider, op, err)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.ErrUnexpectedEOF):
		return decodeFailed(provider, op, err)
	default:
		return requestFailed(provider, op, err)
	}
}

// New builds the variant named by cfg.Name.
func New(ctx context.Context, cfg config.Provider, client *http.Client) (Provider, error) {
	switch cfg.Name {
	case config.Together:
		return NewTogether(cfg, client), nil
	case config.Gemini:
		return NewGemini(ctx, cfg, client)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Name)
	}
}
