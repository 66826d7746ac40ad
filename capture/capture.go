// Package capture locates a post on a page, screenshots the viewport and crops the
// screenshot down to the post.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chimbori.dev/postshot/core"
	"chimbori.dev/postshot/driver"
	"github.com/lmittmann/tint"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMediaTimeout = 2 * time.Second
)

var (
	ErrElementNotFound = errors.New("post not found on page")
	ErrEmptyCrop       = core.ErrEmptyCrop
)

// Options configures an [Extractor]. Zero values are replaced with defaults by [NewExtractor].
type Options struct {
	Kind         driver.Kind
	DriverPath   string
	Timeout      time.Duration
	MediaTimeout time.Duration
	Locator      Locator
	Driver       driver.Options
}

func DefaultOptions() Options {
	return Options{
		Kind:         driver.Chrome,
		Timeout:      DefaultTimeout,
		MediaTimeout: DefaultMediaTimeout,
		Locator:      DefaultLocator,
		Driver:       driver.DefaultOptions(),
	}
}

type acquireFunc func(ctx context.Context, kind driver.Kind, driverPath string, opts driver.Options) (driver.Session, error)

// Extractor runs captures with a fixed set of options. Every capture uses a fresh browser.
type Extractor struct {
	opts    Options
	acquire acquireFunc
}

func NewExtractor(opts Options) *Extractor {
	if opts.Kind == "" {
		opts.Kind = driver.Chrome
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MediaTimeout <= 0 {
		opts.MediaTimeout = DefaultMediaTimeout
	}
	opts.Locator = DefaultLocator.Override(opts.Locator)
	return &Extractor{opts: opts, acquire: driver.Acquire}
}

// Capture loads url in a new browser session and returns the post found on it, cropped out
// of a screenshot of the viewport. The session is closed before Capture returns, whether
// or not the capture succeeded.
func (x *Extractor) Capture(ctx context.Context, url string) (*Result, error) {
	s, err := x.acquire(ctx, x.opts.Kind, x.opts.DriverPath, x.opts.Driver)
	if err != nil {
		return nil, err
	}

	closed := false
	closeSession := func() {
		if closed {
			return
		}
		closed = true
		if err := s.Close(); err != nil {
			slog.Warn("failed to close browser session", tint.Err(err), "kind", x.opts.Kind)
		}
	}
	defer closeSession()

	slog.Debug("navigating", "url", url)
	if err := s.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	post, err := s.FindVisible(x.opts.Locator.Post, x.opts.Timeout)
	if err != nil {
		if errors.Is(err, driver.ErrWaitTimeout) {
			return nil, fmt.Errorf("%w: %s (locator %s): %w", ErrElementNotFound, url, x.opts.Locator.Version, err)
		}
		return nil, fmt.Errorf("failed to locate post: %w", err)
	}
	box, err := post.BoundingBox()
	if err != nil {
		return nil, fmt.Errorf("failed to measure post: %w", err)
	}
	slog.Debug("post located", "box", box)

	_ = x.waitMedia(s)

	buf, err := s.CaptureViewport()
	if err != nil {
		return nil, fmt.Errorf("failed to capture viewport: %w", err)
	}
	closeSession()

	full, err := core.DecodeImage(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode viewport capture: %w", err)
	}
	img, err := core.Crop(full, box.Rect())
	if err != nil {
		return nil, fmt.Errorf("failed to crop to %s: %w", box, err)
	}
	return NewResult(img, box), nil
}

// MediaOutcome reports whether the media inside a post became visible before the capture.
type MediaOutcome int

const (
	MediaVisible MediaOutcome = iota
	MediaAbsent
)

func (m MediaOutcome) String() string {
	if m == MediaVisible {
		return "visible"
	}
	return "absent"
}

// waitMedia gives lazily loaded images inside the post a short time to appear. Many posts
// have no media at all, so nothing here can fail a capture.
func (x *Extractor) waitMedia(s driver.Session) MediaOutcome {
	if x.opts.Locator.Media == "" {
		return MediaAbsent
	}
	if _, err := s.FindVisible(x.opts.Locator.Media, x.opts.MediaTimeout); err != nil {
		slog.Debug("media not visible", "reason", err)
		return MediaAbsent
	}
	return MediaVisible
}
