// Package imaging shrinks embedded listing photos to a byte budget by
// re-encoding them as JPEG at decreasing quality.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp" // register decoder
	"golang.org/x/sync/errgroup"

	"github.com/luckyhouse/listing-api/internal/pkg/metrics"
)

const jpegDataURLPrefix = "data:image/jpeg;base64,"

// Config controls the compression loop.
type Config struct {
	MaxBytes     int // output budget in bytes
	StartQuality int
	QualityStep  int
	MinQuality   int // floor; the loop stops here even if over budget
	Workers      int // concurrent photos in NormalizeAll
}

// DefaultConfig is a 500 KiB budget stepping from quality 95 down to 5.
func DefaultConfig() Config {
	return Config{
		MaxBytes:     500 * 1024,
		StartQuality: 95,
		QualityStep:  5,
		MinQuality:   5,
		Workers:      4,
	}
}

// Normalizer implements ports.ImageNormalizer.
type Normalizer struct {
	cfg Config
	log zerolog.Logger
}

// New returns a Normalizer; zero or out-of-range settings fall back to
// DefaultConfig values.
func New(cfg Config, log zerolog.Logger) *Normalizer {
	def := DefaultConfig()
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.StartQuality <= 0 || cfg.StartQuality > 100 {
		cfg.StartQuality = def.StartQuality
	}
	if cfg.QualityStep <= 0 {
		cfg.QualityStep = def.QualityStep
	}
	if cfg.MinQuality <= 0 || cfg.MinQuality > cfg.StartQuality {
		cfg.MinQuality = def.MinQuality
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	return &Normalizer{cfg: cfg, log: log}
}

// Normalize returns photo re-encoded as a JPEG data URL within the byte
// budget. Input that cannot be decoded is returned unchanged.
func (n *Normalizer) Normalize(ctx context.Context, photo string) string {
	start := time.Now()

	img, err := decode(photo)
	if err != nil {
		n.log.Warn().Err(err).Int("input_len", len(photo)).Msg("photo left unchanged: decode failed")
		metrics.PhotosNormalizedTotal.WithLabelValues("fallback").Inc()
		return photo
	}

	out, quality, err := n.compress(ctx, img)
	if err != nil {
		n.log.Warn().Err(err).Msg("photo left unchanged: encode failed")
		metrics.PhotosNormalizedTotal.WithLabelValues("fallback").Inc()
		return photo
	}

	result := "ok"
	if len(out) > n.cfg.MaxBytes {
		result = "over_budget"
	}
	metrics.PhotosNormalizedTotal.WithLabelValues(result).Inc()
	metrics.PhotoBytes.Observe(float64(len(out)))
	metrics.PhotoNormalizeDuration.Observe(time.Since(start).Seconds())

	n.log.Debug().Int("bytes", len(out)).Int("quality", quality).Msg("photo normalized")
	return jpegDataURLPrefix + base64.StdEncoding.EncodeToString(out)
}

// NormalizeAll normalises photos concurrently and keeps their order.
func (n *Normalizer) NormalizeAll(ctx context.Context, photos []string) []string {
	if photos == nil {
		return nil
	}

	out := make([]string, len(photos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.cfg.Workers)
	for i, p := range photos {
		g.Go(func() error {
			out[i] = n.Normalize(gctx, p)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// compress lowers JPEG quality in fixed steps until the encoding fits the
// budget or quality reaches the floor. It returns the last encoding and the
// quality that produced it.
func (n *Normalizer) compress(ctx context.Context, img image.Image) ([]byte, int, error) {
	var buf bytes.Buffer
	quality := n.cfg.StartQuality
	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, 0, fmt.Errorf("encode jpeg at quality %d: %w", quality, err)
		}
		if buf.Len() <= n.cfg.MaxBytes || quality <= n.cfg.MinQuality {
			return buf.Bytes(), quality, nil
		}
		quality -= n.cfg.QualityStep
		if quality < n.cfg.MinQuality {
			quality = n.cfg.MinQuality
		}
	}
}

// decode accepts a data URL or bare base64 payload.
func decode(photo string) (image.Image, error) {
	payload := photo
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("empty image payload")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode base64: %w", err)
		}
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return flatten(img), nil
}

// flatten composites images with transparency onto white; JPEG has no alpha.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}
