package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// firefoxBackend drives Firefox through playwright. The playwright driver is installed
// on demand; managed Firefox builds live in playwright’s own cache, so Resolve returns
// an empty path and Launch lets playwright pick its installed build.
type firefoxBackend struct{}

var firefoxBrowsers = []string{"firefox"}

func (firefoxBackend) Resolve(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := playwright.Install(&playwright.RunOptions{Browsers: firefoxBrowsers}); err != nil {
		return "", fmt.Errorf("install firefox: %w", err)
	}
	return "", nil
}

func (firefoxBackend) Launch(ctx context.Context, binPath string, opts Options) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The driver is needed even for a custom binary; this is a no-op when it is up to date.
	runOpts := &playwright.RunOptions{Browsers: firefoxBrowsers, SkipInstallBrowsers: true}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("install playwright driver: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if binPath != "" {
		launchOpts.ExecutablePath = playwright.String(binPath)
	}
	browser, err := pw.Firefox.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return nil, unavailable(err)
	}

	page, err := browser.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("open page: %w", err)
	}

	s := &firefoxSession{ctx: ctx, pw: pw, browser: browser, page: page}
	// playwright calls take no context; closing the browser aborts whichever one is running.
	s.stopWatch = context.AfterFunc(ctx, func() {
		_ = browser.Close()
	})
	return s, nil
}

type firefoxSession struct {
	ctx       context.Context
	stopWatch func() bool
	pw        *playwright.Playwright
	browser   playwright.Browser
	page      playwright.Page
	closed    bool
}

// interrupted reports err as a cancellation when the session's context has ended.
func (s *firefoxSession) interrupted(err error) error {
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return err
}

func (s *firefoxSession) SetViewport(width, height int) error {
	if err := s.page.SetViewportSize(width, height); err != nil {
		return s.interrupted(err)
	}
	return nil
}

func (s *firefoxSession) Navigate(url string) error {
	if _, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return s.interrupted(err)
	}
	return nil
}

func (s *firefoxSession) FindVisible(xpath string, timeout time.Duration) (Element, error) {
	loc := s.page.Locator("xpath=" + xpath).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		if s.ctx.Err() == nil && errors.Is(err, playwright.ErrTimeout) {
			return nil, fmt.Errorf("%w after %s", ErrWaitTimeout, timeout)
		}
		return nil, s.interrupted(err)
	}
	return &firefoxElement{locator: loc}, nil
}

func (s *firefoxSession) CaptureViewport() ([]byte, error) {
	buf, err := s.page.Screenshot()
	if err != nil {
		return nil, s.interrupted(err)
	}
	return buf, nil
}

func (s *firefoxSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if !s.stopWatch() {
		// Already closed by cancellation.
		return s.pw.Stop()
	}
	return errors.Join(s.browser.Close(), s.pw.Stop())
}

type firefoxElement struct {
	locator playwright.Locator
}

func (e *firefoxElement) BoundingBox() (BoundingBox, error) {
	r, err := e.locator.BoundingBox()
	if err != nil {
		return BoundingBox{}, err
	}
	if r == nil {
		return BoundingBox{}, errors.New("element is not rendered")
	}
	return BoxFromRect(r.X, r.Y, r.Width, r.Height), nil
}
