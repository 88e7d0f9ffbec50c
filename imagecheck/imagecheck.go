// Package imagecheck validates image HTTP responses and decodes their
// bodies. It is a pure transformation: no network access, no shared state.
package imagecheck

import (
	"bytes"
	"image"
	"mime"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"

	"imgbind/data"
)

var allowedContentTypes = map[string]bool{
	"image/jpeg":  true,
	"image/jpg":   true,
	"image/pjpeg": true,
	"image/png":   true,
	"image/gif":   true,
}

// Decode inspects the response status and Content-Type, then decodes body
// into an image. Checks short-circuit in order: status, header presence,
// content type, decode. The returned error is always a *data.Error.
func Decode(meta *data.ResponseMeta, body []byte) (image.Image, error) {
	if meta.StatusCode != http.StatusOK {
		return nil, data.NewError(data.HTTPStatusNot200, meta.URL, nil)
	}
	ct, ok := meta.ContentType()
	if !ok {
		return nil, data.NewError(data.MissingContentTypeHeader, meta.URL, nil)
	}
	if !allowedContentTypes[mediaType(ct)] {
		return nil, data.NewError(data.NotAnImageContentType, meta.URL, nil)
	}
	img, err := imaging.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, data.NewError(data.FailedToReadImageData, meta.URL, err)
	}
	return img, nil
}

// mediaType strips parameters ("image/png; charset=utf-8") and lowercases.
func mediaType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}
