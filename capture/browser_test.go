package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"chimbori.dev/postshot/driver"
	"github.com/go-rod/rod/lib/launcher"
)

const postPage = "data:text/html,<html><body style='margin:0'>" +
	"<article style='position:absolute;left:100px;top:80px;width:300px;height:150px;background:blue;'>Post</article>" +
	"</body></html>"

func browserOptions(t *testing.T) Options {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping test that requires Chrome/Chromium in short mode")
	}
	path, found := launcher.LookPath()
	if !found {
		t.Skip("Skipping test: no Chrome/Chromium installed")
	}
	return Options{
		Kind:         driver.Chrome,
		DriverPath:   path,
		Timeout:      5 * time.Second,
		MediaTimeout: 500 * time.Millisecond,
		Locator:      Locator{Version: "test", Post: "//article", Media: "//article//img"},
		Driver:       driver.Options{Headless: true, NoSandbox: true},
	}
}

func TestTakeImage_Chrome(t *testing.T) {
	opts := browserOptions(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	img, err := TakeImage(ctx, postPage, opts)
	if err != nil {
		t.Fatalf("TakeImage failed: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 300 || b.Dy() != 150 {
		t.Errorf("Expected 300x150 image, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestTakePNG_ChromeElementNotFound(t *testing.T) {
	opts := browserOptions(t)
	opts.Timeout = time.Second
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	start := time.Now()
	_, err := TakePNG(ctx, "data:text/html,<html><body>No posts here</body></html>", opts)
	if !errors.Is(err, ErrElementNotFound) {
		t.Fatalf("Expected ErrElementNotFound, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < opts.Timeout {
		t.Errorf("Expected to wait at least %s, waited %s", opts.Timeout, elapsed)
	}
}

func TestCapture_ChromeRepeatable(t *testing.T) {
	opts := browserOptions(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	x := NewExtractor(opts)
	first, err := x.Capture(ctx, postPage)
	if err != nil {
		t.Fatalf("First capture failed: %v", err)
	}
	second, err := x.Capture(ctx, postPage)
	if err != nil {
		t.Fatalf("Second capture failed: %v", err)
	}

	if first.Box != second.Box {
		t.Errorf("Expected the same box twice, got %v and %v", first.Box, second.Box)
	}
	if a, b := first.Image().Bounds().Size(), second.Image().Bounds().Size(); a != b {
		t.Errorf("Expected the same dimensions twice, got %v and %v", a, b)
	}
}
