// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jeranaias/scribe-tui/internal/model"
)

// pngAttachment builds a PNG attachment of the given size.
func pngAttachment(t *testing.T, name string, w, h int) *model.Attachment {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 10 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return model.NewAttachment(name, "image/png", buf.Bytes())
}

func TestCompressDownscales(t *testing.T) {
	att := pngAttachment(t, "big.png", 2048, 1024)

	out, err := Compress(att)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if out.Name != "big.jpg" {
		t.Errorf("name = %q, want big.jpg", out.Name)
	}
	if out.MimeType != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", out.MimeType)
	}

	payload, err := out.DecodePayload()
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("decode jpeg: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
	b := img.Bounds()
	if b.Dx() != MaxEdge || b.Dy() != MaxEdge/2 {
		t.Errorf("dimensions = %dx%d, want %dx%d", b.Dx(), b.Dy(), MaxEdge, MaxEdge/2)
	}
}

func TestCompressKeepsSmallImages(t *testing.T) {
	att := pngAttachment(t, "small.png", 100, 60)

	out, err := Compress(att)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	payload, _ := out.DecodePayload()
	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 60 {
		t.Errorf("small image was resized to %v", img.Bounds())
	}
}

func TestCompressRejectsGarbage(t *testing.T) {
	att := model.NewAttachment("x.png", "image/png", []byte("not an image"))
	if _, err := Compress(att); err == nil {
		t.Error("expected decode error")
	}
}

func TestRenameToJPEG(t *testing.T) {
	tests := []struct{ in, want string }{
		{"photo.png", "photo.jpg"},
		{"photo.jpg", "photo.jpg"},
		{"archive.tar.gz", "archive.tar.jpg"},
		{"noext", "noext.jpg"},
		{"", "image.jpg"},
	}
	for _, tt := range tests {
		if got := renameToJPEG(tt.in); got != tt.want {
			t.Errorf("renameToJPEG(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUploadSuccess(t *testing.T) {
	var gotReq uploadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotReq); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(uploadResponse{URL: "https://cdn.example/abc.jpg"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	url, err := client.Upload(context.Background(), pngAttachment(t, "cat.png", 64, 64))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if url != "https://cdn.example/abc.jpg" {
		t.Errorf("url = %q", url)
	}
	if gotReq.Name != "cat.jpg" {
		t.Errorf("uploaded name = %q, want cat.jpg", gotReq.Name)
	}
	if !strings.HasPrefix(gotReq.Image, "data:image/jpeg;base64,") {
		t.Errorf("uploaded image not a jpeg data URI")
	}
}

func TestUploadRelayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(uploadResponse{Error: "too large"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Upload(context.Background(), pngAttachment(t, "cat.png", 32, 32))
	if !errors.Is(err, ErrRelayRejected) {
		t.Errorf("err = %v, want ErrRelayRejected", err)
	}
	if err != nil && !strings.Contains(err.Error(), "too large") {
		t.Errorf("error detail lost: %v", err)
	}
}

func TestUploadUnconfigured(t *testing.T) {
	client := NewClient("")
	if _, err := client.Upload(context.Background(), pngAttachment(t, "a.png", 8, 8)); err == nil {
		t.Error("expected error for unconfigured relay")
	}
}
