package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/utils"
)

// chromeBackend drives Chrome/Chromium over the DevTools protocol with chromedp.
// Managed binaries come from rod’s launcher, which downloads a pinned Chromium revision
// into its cache directory on first use.
type chromeBackend struct{}

func (chromeBackend) Resolve(ctx context.Context) (string, error) {
	b := launcher.NewBrowser()
	b.Context = ctx
	b.Logger = utils.LoggerQuiet
	return b.Get()
}

func (chromeBackend) Launch(ctx context.Context, binPath string, opts Options) (Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(ViewportWidth, ViewportHeight),
		chromedp.CombinedOutput(io.Discard),
	)
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if binPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(binPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)

	var tabCtx context.Context
	var cancelTab context.CancelFunc
	if opts.Debug {
		tabCtx, cancelTab = chromedp.NewContext(allocCtx, chromedp.WithErrorf(log.Printf))
	} else {
		tabCtx, cancelTab = chromedp.NewContext(allocCtx)
	}

	// chromedp starts the browser lazily; an empty Run forces the launch so that a bad
	// binary fails here and not halfway through a capture.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, unavailable(err)
	}

	return &chromeSession{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

type chromeSession struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	closed      bool
}

func (s *chromeSession) SetViewport(width, height int) error {
	return chromedp.Run(s.ctx, chromedp.EmulateViewport(int64(width), int64(height)))
}

func (s *chromeSession) Navigate(url string) error {
	return chromedp.Run(s.ctx, chromedp.Navigate(url))
}

func (s *chromeSession) FindVisible(xpath string, timeout time.Duration) (Element, error) {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	// BySearch accepts XPath expressions as well as CSS selectors.
	if err := chromedp.Run(ctx, chromedp.WaitVisible(xpath, chromedp.BySearch)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && s.ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", ErrWaitTimeout, timeout)
		}
		return nil, err
	}
	return &chromeElement{session: s, xpath: xpath}, nil
}

func (s *chromeSession) CaptureViewport() ([]byte, error) {
	var buf []byte
	if err := chromedp.Run(s.ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *chromeSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := chromedp.Cancel(s.ctx)
	s.cancelTab()
	s.cancelAlloc() // Waits for the browser process to exit.
	return err
}

type chromeElement struct {
	session *chromeSession
	xpath   string
}

// Evaluates to the element’s client rect, or null if the XPath no longer matches.
const boundingRectJS = `(function() {
	var el = document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!el) {
		return null;
	}
	var r = el.getBoundingClientRect();
	return {x: r.left, y: r.top, width: r.width, height: r.height};
})()`

type clientRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (e *chromeElement) BoundingBox() (BoundingBox, error) {
	var r *clientRect
	js := fmt.Sprintf(boundingRectJS, strconv.Quote(e.xpath))
	if err := chromedp.Run(e.session.ctx, chromedp.Evaluate(js, &r)); err != nil {
		return BoundingBox{}, err
	}
	if r == nil {
		return BoundingBox{}, fmt.Errorf("element %s is no longer attached", e.xpath)
	}
	return BoxFromRect(r.X, r.Y, r.Width, r.Height), nil
}
