package imagecheck

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"testing"

	"imgbind/data"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func meta(status int, contentType string) *data.ResponseMeta {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &data.ResponseMeta{StatusCode: status, Headers: h, URL: "http://x.com/a.png"}
}

func TestDecode(t *testing.T) {
	valid := pngBytes(t)

	t.Run("status not 200 wins regardless of content type", func(t *testing.T) {
		_, err := Decode(meta(404, "image/png"), valid)
		if !data.IsKind(err, data.HTTPStatusNot200) {
			t.Fatalf("expected HTTPStatusNot200, got %v", err)
		}
	})

	t.Run("missing content type", func(t *testing.T) {
		_, err := Decode(meta(200, ""), valid)
		if !data.IsKind(err, data.MissingContentTypeHeader) {
			t.Fatalf("expected MissingContentTypeHeader, got %v", err)
		}
	})

	t.Run("not an image content type", func(t *testing.T) {
		_, err := Decode(meta(200, "text/html"), valid)
		if !data.IsKind(err, data.NotAnImageContentType) {
			t.Fatalf("expected NotAnImageContentType, got %v", err)
		}
	})

	t.Run("malformed bytes", func(t *testing.T) {
		_, err := Decode(meta(200, "image/png"), []byte("not an image"))
		if !data.IsKind(err, data.FailedToReadImageData) {
			t.Fatalf("expected FailedToReadImageData, got %v", err)
		}
	})

	t.Run("valid png decodes", func(t *testing.T) {
		img, err := Decode(meta(200, "image/png"), valid)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		b := img.Bounds()
		if b.Dx() != 2 || b.Dy() != 3 {
			t.Fatalf("unexpected bounds %v", b)
		}
	})

	t.Run("content type parameters and case are ignored", func(t *testing.T) {
		if _, err := Decode(meta(200, "image/png; charset=utf-8"), valid); err != nil {
			t.Fatalf("parameterized content type rejected: %v", err)
		}
		if _, err := Decode(meta(200, "IMAGE/PNG"), valid); err != nil {
			t.Fatalf("uppercase content type rejected: %v", err)
		}
	})
}
