package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture png: %v", err)
	}
	return buf.Bytes()
}

func decodePayload(t *testing.T, payload string) image.Image {
	t.Helper()

	const prefix = "data:image/jpeg;base64,"
	if !strings.HasPrefix(payload, prefix) {
		t.Fatalf("payload missing data URL prefix: %q", payload[:min(len(payload), 40)])
	}

	raw, err := base64.StdEncoding.DecodeString(payload[len(prefix):])
	if err != nil {
		t.Fatalf("decoding payload base64: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decoding payload image: %v", err)
	}
	return img
}

func TestCompressRejectsEmptyAndGarbageInput(t *testing.T) {
	t.Parallel()

	c := NewCompressor(nil)
	ctx := context.Background()

	if _, err := c.Compress(ctx, nil, Inline); err == nil {
		t.Fatal("expected error for empty input")
	}

	if _, err := c.Compress(ctx, []byte("not an image"), Inline); err == nil {
		t.Fatal("expected error for undecodable input")
	}
}

func TestCompressBoundsLongerDimension(t *testing.T) {
	t.Parallel()

	c := NewCompressor(nil)
	payload, err := c.Compress(context.Background(), encodePNG(t, 1600, 400), Inline)
	if err != nil {
		t.Fatalf("Compress returned error: %v", err)
	}

	img := decodePayload(t, payload)
	if w := img.Bounds().Dx(); w != 800 {
		t.Errorf("expected width scaled to 800, got %d", w)
	}
	if h := img.Bounds().Dy(); h != 200 {
		t.Errorf("expected height scaled to 200, got %d", h)
	}
}

func TestCompressNeverUpscales(t *testing.T) {
	t.Parallel()

	c := NewCompressor(nil)
	payload, err := c.Compress(context.Background(), encodePNG(t, 120, 90), Inline)
	if err != nil {
		t.Fatalf("Compress returned error: %v", err)
	}

	img := decodePayload(t, payload)
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 90 {
		t.Errorf("expected 120x90 preserved, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestCompressFeaturedUsesLargerBound(t *testing.T) {
	t.Parallel()

	c := NewCompressor(nil)
	payload, err := c.Compress(context.Background(), encodePNG(t, 1600, 1600), Featured)
	if err != nil {
		t.Fatalf("Compress returned error: %v", err)
	}

	img := decodePayload(t, payload)
	if img.Bounds().Dx() != 1200 || img.Bounds().Dy() != 1200 {
		t.Errorf("expected 1200x1200, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestCompressStaysWithinBudget(t *testing.T) {
	t.Parallel()

	c := NewCompressor(nil)
	payload, err := c.Compress(context.Background(), encodePNG(t, 1600, 1200), Inline)
	if err != nil {
		t.Fatalf("Compress returned error: %v", err)
	}

	// A 800x600 photographic-noise JPEG comfortably fits 150KB even at high
	// quality; the property still holds when the loop has to step down.
	if got := EstimatedBytes(payload); got > 150*1024 {
		t.Errorf("estimated size %d exceeds the inline budget", got)
	}
}

func TestCompressHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCompressor(nil)
	if _, err := c.Compress(ctx, encodePNG(t, 64, 64), Inline); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestEstimatedBytes(t *testing.T) {
	t.Parallel()

	// 8 base64 characters decode to 6 bytes.
	if got := EstimatedBytes("data:image/jpeg;base64,AAAAAAAA"); got != 6 {
		t.Errorf("EstimatedBytes = %d, want 6", got)
	}
}
