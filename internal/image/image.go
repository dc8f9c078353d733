// Package image holds the generated picture handed from the image step to the story
// step and on to the UI.
package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	goimage "image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var ErrEmpty = errors.New("empty image payload")

// Image is a validated encoded picture plus its dimensions. URL is set when the
// provider returned the image out-of-band.
type Image struct {
	Data     []byte
	MIMEType string
	Format   string
	Width    int
	Height   int
	URL      string
}

// Decode validates data as a supported raster format and returns the image. An empty
// mimeType is derived from the detected format.
func Decode(data []byte, mimeType string) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	raster, format, err := goimage.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image (%d bytes): %w", len(data), err)
	}
	if mimeType == "" {
		mimeType = "image/" + format
	}
	bounds := raster.Bounds()
	return &Image{
		Data:     data,
		MIMEType: mimeType,
		Format:   format,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// DecodeBase64 decodes an inline, standard base64 payload.
func DecodeBase64(payload string, mimeType string) (*Image, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}
	return Decode(data, mimeType)
}

func (i *Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURI embeds the image for direct display in a page.
func (i *Image) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64()
}
