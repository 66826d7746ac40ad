package capture

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"chimbori.dev/postshot/core"
	"chimbori.dev/postshot/driver"
)

const DefaultFilename = "screenshot"

// Result is a captured post.
type Result struct {
	img image.Image
	// Box is where the post was found in the viewport.
	Box driver.BoundingBox
}

// NewResult wraps an already cropped image, for callers that produce captures themselves.
func NewResult(img image.Image, box driver.BoundingBox) *Result {
	return &Result{img: img, Box: box}
}

func (r *Result) Image() image.Image {
	return r.img
}

func (r *Result) PNG() ([]byte, error) {
	return core.EncodePNG(r.img)
}

// Base64 returns the standard base64 encoding of [Result.PNG].
func (r *Result) Base64() (string, error) {
	buf, err := r.PNG()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

func (r *Result) WebP() ([]byte, error) {
	return core.EncodeWebP(r.img)
}

// Save writes the image as a PNG to [OutputPath](name) and returns that path.
func (r *Result) Save(name string) (string, error) {
	path := OutputPath(name)
	buf, err := r.PNG()
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := core.WriteFile(path, buf); err != nil {
		return "", err
	}
	return path, nil
}

// OutputPath returns name with its extension replaced by “.png”. An empty name, or a name
// ending in a path separator, refers to [DefaultFilename] in that directory.
func OutputPath(name string) string {
	if name == "" || strings.HasSuffix(name, "/") || strings.HasSuffix(name, string(filepath.Separator)) {
		name = filepath.Join(name, DefaultFilename)
	}
	ext := filepath.Ext(name)
	if ext == filepath.Base(name) {
		ext = "" // “.hidden” is a name, not an extension.
	}
	return strings.TrimSuffix(name, ext) + ".png"
}

// TakeScreenshot captures url and saves it to [OutputPath](filename), returning the path.
func TakeScreenshot(ctx context.Context, url, filename string, opts Options) (string, error) {
	r, err := NewExtractor(opts).Capture(ctx, url)
	if err != nil {
		return "", err
	}
	return r.Save(filename)
}

func TakeImage(ctx context.Context, url string, opts Options) (image.Image, error) {
	r, err := NewExtractor(opts).Capture(ctx, url)
	if err != nil {
		return nil, err
	}
	return r.Image(), nil
}

func TakePNG(ctx context.Context, url string, opts Options) ([]byte, error) {
	r, err := NewExtractor(opts).Capture(ctx, url)
	if err != nil {
		return nil, err
	}
	return r.PNG()
}

func TakeBase64(ctx context.Context, url string, opts Options) (string, error) {
	r, err := NewExtractor(opts).Capture(ctx, url)
	if err != nil {
		return "", err
	}
	return r.Base64()
}
