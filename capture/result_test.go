package capture

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"chimbori.dev/postshot/driver"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "screenshot.png"},
		{"out", "out.png"},
		{"out.png", "out.png"},
		{"out.jpg", "out.png"},
		{"out.tar.gz", "out.tar.png"},
		{"shots/post", "shots/post.png"},
		{"shots.d/post", "shots.d/post.png"},
		{".hidden", ".hidden.png"},
		{"shots/", "shots/screenshot.png"},
		{"/", "/screenshot.png"},
	}

	for _, tt := range tests {
		if got := OutputPath(tt.name); got != tt.want {
			t.Errorf("OutputPath(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func testResult() *Result {
	return NewResult(image.NewNRGBA(image.Rect(0, 0, 30, 20)), driver.BoundingBox{Right: 30, Bottom: 20})
}

func TestResult_PNG(t *testing.T) {
	buf, err := testResult().PNG()
	if err != nil {
		t.Fatalf("PNG failed: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("PNG output does not decode: %v", err)
	}
	if cfg.Width != 30 || cfg.Height != 20 {
		t.Errorf("Expected 30x20, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestResult_Base64(t *testing.T) {
	r := testResult()
	encoded, err := r.Base64()
	if err != nil {
		t.Fatalf("Base64 failed: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("Base64 output is not standard base64: %v", err)
	}
	buf, _ := r.PNG()
	if !bytes.Equal(decoded, buf) {
		t.Error("Expected Base64 to encode the PNG bytes")
	}
}

func TestResult_WebP(t *testing.T) {
	buf, err := testResult().WebP()
	if err != nil {
		t.Fatalf("WebP failed: %v", err)
	}
	if len(buf) < 12 || string(buf[0:4]) != "RIFF" || string(buf[8:12]) != "WEBP" {
		t.Errorf("Expected a RIFF/WEBP container, got % x", buf[:min(len(buf), 12)])
	}
}

func TestResult_Save(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "nested", "post.jpg")

	path, err := testResult().Save(name)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if want := filepath.Join(dir, "nested", "post.png"); path != want {
		t.Errorf("Expected path %q, got %q", want, path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Saved file is missing: %v", err)
	}
	defer f.Close()
	if _, err := png.DecodeConfig(f); err != nil {
		t.Errorf("Saved file is not a PNG: %v", err)
	}
	if _, err := os.Stat(name); !os.IsNotExist(err) {
		t.Errorf("Expected nothing written at %q, got %v", name, err)
	}
}
