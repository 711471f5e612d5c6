package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gen2brain/avif"
	"github.com/sirupsen/logrus"
)

const coverExtension = ".avif"

// Covers downloads album art once and keeps a bounded-size AVIF thumbnail
// per source URL, keyed by the URL's hash.
type Covers struct {
	dir        string
	maxEdge    int
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewCovers(dir string, maxEdge int, logger *logrus.Logger) *Covers {
	if maxEdge <= 0 {
		maxEdge = 600
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Covers{
		dir:        dir,
		maxEdge:    maxEdge,
		httpClient: &http.Client{Timeout: time.Minute},
		logger:     logger,
	}
}

// Get returns the local thumbnail path for a cover URL, downloading and
// converting it on first use.
func (c *Covers) Get(ctx context.Context, coverURL string) (string, error) {
	if strings.TrimSpace(coverURL) == "" {
		return "", errors.New("cover url is empty")
	}

	destination := filepath.Join(c.dir, hashURL(coverURL)+coverExtension)
	if _, err := os.Stat(destination); err == nil {
		return destination, nil
	}

	source, err := c.fetch(ctx, coverURL)
	if err != nil {
		return "", err
	}

	thumbnail := downscale(source, c.maxEdge)
	if err := writeAVIF(destination, thumbnail); err != nil {
		return "", err
	}

	return destination, nil
}

func (c *Covers) fetch(ctx context.Context, coverURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build cover request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download cover: unexpected status %s", resp.Status)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read cover: %w", err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		// The registered stdlib decoders cover JPEG and PNG; fall back
		// to AVIF explicitly.
		decoded, err = avif.Decode(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("decode cover: %w", err)
		}
	}

	return decoded, nil
}

func writeAVIF(destination string, img image.Image) error {
	tmp := destination + ".part"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create cover file: %w", err)
	}

	encodeErr := avif.Encode(file, img)
	closeErr := file.Close()
	if encodeErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("encode cover: %w", encodeErr)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("close cover file: %w", closeErr)
	}

	if err := os.Rename(tmp, destination); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize cover file: %w", err)
	}

	return nil
}

// downscale shrinks img so its longest edge is at most maxEdge, using
// nearest-neighbour sampling. Covers are decorative; speed wins.
func downscale(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	longest := width
	if height > longest {
		longest = height
	}
	if longest <= maxEdge {
		return img
	}

	scale := float64(maxEdge) / float64(longest)
	targetWidth := int(float64(width) * scale)
	targetHeight := int(float64(height) * scale)
	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	for y := 0; y < targetHeight; y++ {
		sourceY := bounds.Min.Y + y*height/targetHeight
		for x := 0; x < targetWidth; x++ {
			sourceX := bounds.Min.X + x*width/targetWidth
			dst.Set(x, y, img.At(sourceX, sourceY))
		}
	}

	return dst
}

func hashURL(coverURL string) string {
	sum := sha256.Sum256([]byte(coverURL))
	return hex.EncodeToString(sum[:])
}
