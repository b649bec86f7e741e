// Package imaging converts uploaded images into self-contained inline
// payloads small enough to embed in a post's content string.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"strings"

	// Register the decoders for the formats authors upload.
	_ "image/gif"
	_ "image/png"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// Kind selects the bounding dimension and size budget for a compression run.
type Kind int

const (
	// Inline images sit inside the post body.
	Inline Kind = iota
	// Featured images are cover images and get a larger budget.
	Featured
)

const (
	inlineMaxDimension   = 800
	featuredMaxDimension = 1200
	inlineByteBudget     = 150 * 1024
	featuredByteBudget   = 300 * 1024

	startQuality = 90
	qualityStep  = 10
	qualityFloor = 10
)

// Compressor turns raw uploads into bounded JPEG data URLs.
type Compressor struct {
	logger *logrus.Logger
}

// NewCompressor constructs a Compressor. The logger may be nil.
func NewCompressor(logger *logrus.Logger) *Compressor {
	return &Compressor{logger: logger}
}

// Compress decodes data, downscales it so the longer side does not exceed
// the kind's bound (never upscaling), and re-encodes it as a JPEG data URL,
// lowering the quality in fixed steps until the estimated decoded size fits
// the kind's budget or the quality floor is reached. A failed run leaves no
// partial state; the caller decides how to surface the error.
func (c *Compressor) Compress(ctx context.Context, data []byte, kind Kind) (string, error) {
	if len(data) == 0 {
		return "", eris.New("image data is empty")
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", eris.Wrap(err, "decoding image")
	}

	maxDimension, budget := kind.limits()
	scaled := downscale(src, maxDimension)

	var payload string
	quality := startQuality
	for {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "image compression cancelled")
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
			return "", eris.Wrap(err, "encoding jpeg")
		}

		payload = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
		if EstimatedBytes(payload) <= budget || quality-qualityStep < qualityFloor {
			break
		}
		quality -= qualityStep
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"source_format": format,
			"quality":       quality,
			"payload_bytes": EstimatedBytes(payload),
		}).Debug("image compressed")
	}

	return payload, nil
}

func (k Kind) limits() (maxDimension, budget int) {
	if k == Featured {
		return featuredMaxDimension, featuredByteBudget
	}
	return inlineMaxDimension, inlineByteBudget
}

// EstimatedBytes approximates the decoded byte size of a base64 data URL.
func EstimatedBytes(payload string) int {
	idx := strings.Index(payload, ",")
	if idx >= 0 {
		payload = payload[idx+1:]
	}
	return len(payload) * 3 / 4
}

func downscale(src image.Image, maxDimension int) image.Image {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxDimension && height <= maxDimension {
		return src
	}

	if width > height {
		height = height * maxDimension / width
		width = maxDimension
	} else {
		width = width * maxDimension / height
		height = maxDimension
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
