package data

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorKindCodes(t *testing.T) {
	kinds := []struct {
		kind ErrorKind
		code int
	}{
		{InvalidURLString, 0},
		{HTTPStatusNot200, 1},
		{MissingContentTypeHeader, 2},
		{NotAnImageContentType, 3},
		{FailedToReadImageData, 4},
		{SimulatedError, 5},
	}
	for _, k := range kinds {
		if k.kind.Code() != k.code {
			t.Errorf("%s: code %d, want %d", k.kind, k.kind.Code(), k.code)
		}
		if k.kind.String() == "" || k.kind.String() == "unknown error" {
			t.Errorf("kind %d has no description", k.code)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(FailedToReadImageData, "http://x.com/a.png", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable via errors.Is")
	}
	if !IsKind(err, FailedToReadImageData) {
		t.Fatalf("expected IsKind to match")
	}
	if IsKind(err, HTTPStatusNot200) {
		t.Fatalf("IsKind matched the wrong kind")
	}
	wrapped := fmt.Errorf("submit: %w", err)
	if !IsKind(wrapped, FailedToReadImageData) {
		t.Fatalf("expected IsKind to see through wrapping")
	}
}

func TestResponseMetaContentType(t *testing.T) {
	m := &ResponseMeta{StatusCode: 200, Headers: http.Header{}}
	if _, ok := m.ContentType(); ok {
		t.Fatalf("expected absent content type")
	}
	m.Headers.Set("Content-Type", "image/png")
	ct, ok := m.ContentType()
	if !ok || ct != "image/png" {
		t.Fatalf("unexpected content type %q ok=%v", ct, ok)
	}
	var nilMeta *ResponseMeta
	if _, ok := nilMeta.ContentType(); ok {
		t.Fatalf("nil meta should report absent content type")
	}
}
