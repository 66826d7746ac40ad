// Package driver launches headless browser sessions and hides the differences between the
// browser automation engines behind [Session] and [Element].
package driver

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"
)

// Sessions always render into a fixed viewport so that bounding boxes are reproducible
// regardless of the host display.
const (
	ViewportWidth  = 1920
	ViewportHeight = 1080
)

var (
	ErrUnsupportedKind = errors.New("unsupported driver kind")
	ErrDriverLaunch    = errors.New("failed to launch driver")
	// ErrBinaryUnavailable marks launch failures caused by the browser binary itself:
	// missing, not executable, or not a browser the back-end can talk to.
	ErrBinaryUnavailable = errors.New("driver binary unavailable")
	ErrWaitTimeout       = errors.New("timed out waiting for element")
)

// Kind selects a browser back-end.
type Kind string

const (
	Chrome  Kind = "chrome"
	Firefox Kind = "firefox"
)

// Kinds lists every supported Kind, in the order they are presented to users.
var Kinds = []Kind{Chrome, Firefox}

// ParseKind accepts the exact kind names only, so that it agrees with [Acquire].
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	switch k {
	case Chrome, Firefox:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q (want one of %v)", ErrUnsupportedKind, s, Kinds)
}

// BinaryName is the conventional executable name for the kind, expected to be
// resolvable from PATH.
func (k Kind) BinaryName() string {
	switch k {
	case Chrome:
		return "google-chrome"
	case Firefox:
		return "firefox"
	}
	return ""
}

// Options are applied to every launch.
type Options struct {
	Headless  bool
	NoSandbox bool
	Debug     bool
}

// DefaultOptions returns headless launch options.
func DefaultOptions() Options {
	return Options{Headless: true}
}

// Session is one running browser, owned by a single capture.
type Session interface {
	// SetViewport resizes the rendering viewport in CSS pixels.
	SetViewport(width, height int) error
	// Navigate loads url and blocks until the page's load event fires.
	Navigate(url string) error
	// FindVisible polls for the element at xpath until it is visible, or returns
	// [ErrWaitTimeout] once timeout has elapsed.
	FindVisible(xpath string, timeout time.Duration) (Element, error)
	// CaptureViewport returns a PNG of the visible viewport.
	CaptureViewport() ([]byte, error)
	// Close terminates the browser. It is safe to call more than once.
	Close() error
}

// Element is a located element on the current page.
type Element interface {
	BoundingBox() (BoundingBox, error)
}

// BoundingBox is an element's extent in viewport pixels.
type BoundingBox struct {
	Left, Top, Right, Bottom int
}

// BoxFromRect builds a BoundingBox from a position & size as reported by the engines.
// Position and size are rounded separately, matching how WebDriver reports integers.
func BoxFromRect(x, y, width, height float64) BoundingBox {
	left := int(math.Round(x))
	top := int(math.Round(y))
	return BoundingBox{
		Left:   left,
		Top:    top,
		Right:  left + int(math.Round(width)),
		Bottom: top + int(math.Round(height)),
	}
}

func (b BoundingBox) Width() int  { return b.Right - b.Left }
func (b BoundingBox) Height() int { return b.Bottom - b.Top }

func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.Left, b.Top, b.Right, b.Bottom)
}
