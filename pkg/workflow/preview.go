package workflow

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
)

// DataURLDecoder validates an image header and renders a base64 data URL.
type DataURLDecoder struct{}

// Decode fails for empty or undecodable content.
func (DataURLDecoder) Decode(ctx context.Context, img Attachment) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(img.Data) == 0 {
		return "", errors.New("empty image")
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", img.Filename, err)
	}

	ct := img.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(img.Data)
	}
	if ct == "application/octet-stream" {
		ct = "image/" + format
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(img.Data), nil
}
