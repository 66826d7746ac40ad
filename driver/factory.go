package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/lmittmann/tint"
)

// Backend launches sessions for one Kind.
type Backend interface {
	// Launch starts a browser from binPath. An empty binPath is only passed for back-ends
	// whose Resolve manages the binary location itself.
	Launch(ctx context.Context, binPath string, opts Options) (Session, error)
	// Resolve returns a managed browser binary, downloading & caching it first if needed.
	Resolve(ctx context.Context) (string, error)
}

var backends = map[Kind]Backend{
	Chrome:  chromeBackend{},
	Firefox: firefoxBackend{},
}

// Acquire launches a browser of the given kind and sizes its viewport to
// [ViewportWidth]×[ViewportHeight]. driverPath is optional; see [launch] for how it is used.
func Acquire(ctx context.Context, kind Kind, driverPath string, opts Options) (Session, error) {
	return acquire(ctx, backends, kind, driverPath, opts)
}

func acquire(ctx context.Context, registry map[Kind]Backend, kind Kind, driverPath string, opts Options) (Session, error) {
	backend, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	s, err := launch(ctx, kind, backend, driverPath, opts)
	if err != nil {
		return nil, err
	}

	if err := s.SetViewport(ViewportWidth, ViewportHeight); err != nil {
		if closeErr := s.Close(); closeErr != nil {
			slog.Warn("failed to close session", tint.Err(closeErr), "kind", kind)
		}
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	slog.Debug("session acquired", "kind", kind, "viewport", fmt.Sprintf("%dx%d", ViewportWidth, ViewportHeight))
	return s, nil
}

// launch starts a session from driverPath when one is given, and from the back-end's
// managed binary otherwise. A driverPath that turns out to be unusable ([ErrBinaryUnavailable])
// degrades to the managed binary; any other failure is returned as is.
func launch(ctx context.Context, kind Kind, backend Backend, driverPath string, opts Options) (Session, error) {
	if driverPath != "" {
		s, err := launchCustom(ctx, backend, driverPath, opts)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrBinaryUnavailable) {
			return nil, fmt.Errorf("%w: %s: %w", ErrDriverLaunch, kind, err)
		}
		slog.Warn("custom driver unavailable, falling back to managed driver", tint.Err(err),
			"kind", kind,
			"path", driverPath)
	}
	return launchManaged(ctx, kind, backend, opts)
}

func launchCustom(ctx context.Context, backend Backend, driverPath string, opts Options) (Session, error) {
	binPath, err := lookBinary(driverPath)
	if err != nil {
		return nil, err
	}
	slog.Info("using custom driver", "path", binPath)
	return backend.Launch(ctx, binPath, opts)
}

func launchManaged(ctx context.Context, kind Kind, backend Backend, opts Options) (Session, error) {
	slog.Info("using managed driver", "kind", kind)
	binPath, err := backend.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: resolve managed binary: %w", ErrDriverLaunch, kind, err)
	}

	s, err := backend.Launch(ctx, binPath, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDriverLaunch, kind, err)
	}
	return s, nil
}

// lookBinary resolves path against PATH when it is a bare name, and checks that the
// result is an executable file.
func lookBinary(path string) (string, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", unavailable(err)
	}
	return resolved, nil
}

// FindBinary returns the browser binary to use for kind when it should come from the host.
// For Chrome this is the first Chrome or Chromium found in PATH or a well-known install
// location, under any of their usual names; otherwise it is [Kind.BinaryName].
func FindBinary(kind Kind) string {
	if kind == Chrome {
		if path, found := launcher.LookPath(); found {
			return path
		}
	}
	return kind.BinaryName()
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrBinaryUnavailable, err)
}
