package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // GIF uploads
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // WebP uploads
)

// ErrUnsupportedImage is returned for uploads that are not jpeg, png, gif or webp.
var ErrUnsupportedImage = errors.New("only jpeg, png, gif and webp images are accepted")

// MaxPixels caps width x height of an upload before it is decoded.
const MaxPixels = 50_000_000

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Compressor bounds and re-encodes uploaded images
type Compressor struct {
	MaxDimension int // Longest allowed edge, images are never enlarged
	Quality      int // JPEG quality 1-100
}

// Compress sniffs data, rejects pictures over MaxPixels, applies EXIF orientation,
// fits the picture inside MaxDimension x MaxDimension and re-encodes it as JPEG.
func (c Compressor) Compress(data []byte) ([]byte, error) {
	if !allowedTypes[http.DetectContentType(data)] {
		return nil, ErrUnsupportedImage
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d megapixels", ErrUnsupportedImage, cfg.Width, cfg.Height, MaxPixels/1_000_000)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if c.MaxDimension > 0 {
		img = imaging.Fit(img, c.MaxDimension, c.MaxDimension, imaging.Lanczos)
	}
	quality := c.Quality
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// NewObjectName returns a collision resistant file name for a stored image.
func NewObjectName(now time.Time) string {
	return fmt.Sprintf("%d-%s.jpg", now.UnixMilli(), uuid.NewString())
}
