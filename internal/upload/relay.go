// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/image/draw"

	_ "image/gif" // register decoders for the formats users attach
	_ "image/png"

	"github.com/jeranaias/scribe-tui/internal/model"
)

// Downscale and encode parameters. The relay rejects oversized payloads,
// so images are shrunk client-side first.
const (
	// MaxEdge is the pixel budget for the longer image dimension.
	MaxEdge = 1024

	// JPEGQuality is the fixed re-encode quality.
	JPEGQuality = 70

	// requestTimeout bounds one relay round trip.
	requestTimeout = 30 * time.Second
)

// ErrRelayRejected indicates the relay answered with an error payload.
var ErrRelayRejected = errors.New("upload relay rejected the image")

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: requestTimeout,
}

// =============================================================================
// RELAY CLIENT
// =============================================================================

// Client posts compressed attachments to the upload relay.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the given relay URL.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: sharedHTTPClient,
	}
}

// uploadRequest is the relay request body.
type uploadRequest struct {
	Image string `json:"image"`
	Name  string `json:"name"`
}

// uploadResponse is the relay response body.
type uploadResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Upload compresses the attachment and posts it to the relay, returning
// the hosted URL.
func (c *Client) Upload(ctx context.Context, att *model.Attachment) (string, error) {
	if c.endpoint == "" {
		return "", errors.New("upload relay not configured")
	}

	compressed, err := Compress(att)
	if err != nil {
		return "", fmt.Errorf("failed to compress attachment: %w", err)
	}

	bodyBytes, err := json.Marshal(uploadRequest{
		Image: compressed.Data,
		Name:  compressed.Name,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var parsed uploadResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", fmt.Errorf("%w: status %d", ErrRelayRejected, resp.StatusCode)
		}
		return "", fmt.Errorf("unrecognized relay response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrRelayRejected, parsed.Error)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("%w: no url in response", ErrRelayRejected)
	}
	return parsed.URL, nil
}

// =============================================================================
// COMPRESSION
// =============================================================================

// Compress decodes the attachment image, downscales it so the longer
// edge fits MaxEdge, and re-encodes it as JPEG. The returned attachment
// carries the new data URI and the name renamed to .jpg.
func Compress(att *model.Attachment) (*model.Attachment, error) {
	payload, err := att.DecodePayload()
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img = downscale(img)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return &model.Attachment{
		Name:     renameToJPEG(att.Name),
		MimeType: "image/jpeg",
		Data:     "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(out.Bytes()),
	}, nil
}

// downscale shrinks img so its longer edge is at most MaxEdge pixels.
// Smaller images pass through untouched; upscaling would only waste
// bytes.
func downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longer := w
	if h > longer {
		longer = h
	}
	if longer <= MaxEdge {
		return img
	}

	scale := float64(MaxEdge) / float64(longer)
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// renameToJPEG swaps the file extension for .jpg, matching the re-encoded
// payload.
func renameToJPEG(name string) string {
	if name == "" {
		return "image.jpg"
	}
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + ".jpg"
}
