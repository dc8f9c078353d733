package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dmorgan81/storybot/internal/log"
)

// maxFetchSize bounds downloads of provider-hosted images.
const maxFetchSize = 32 << 20

var ErrTooLarge = errors.New("image too large")

// StatusError reports a non-2xx response while downloading an image.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Fetch downloads url and decodes it. Transport and status failures are returned as-is
// so callers can tell them apart from decode failures via errors.As on *DecodeError.
func Fetch(ctx context.Context, client *http.Client, url string) (*Image, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("image").With("url", url)
	log.Info("fetching generated image")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxFetchSize {
		return nil, &DecodeError{Err: fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxFetchSize)}
	}
	log.Info("received generated image", "bytes", len(data))

	mimeType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	img, err := Decode(data, "")
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if mimeType != "" && mimeType != "application/octet-stream" {
		img.MIMEType = mimeType
	}
	img.URL = url
	return img, nil
}

// DecodeError marks a payload that arrived intact but is not a usable image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }
