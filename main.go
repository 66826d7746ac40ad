package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chimbori.dev/postshot/capture"
	"chimbori.dev/postshot/conf"
	"chimbori.dev/postshot/core"
	"chimbori.dev/postshot/driver"
	"chimbori.dev/postshot/validation"
	"github.com/dustin/go-humanize"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// takeCapture is replaced in tests so that runs do not need a browser.
var takeCapture = func(ctx context.Context, url string, opts capture.Options) (*capture.Result, error) {
	return capture.NewExtractor(opts).Capture(ctx, url)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02 15:04:05.000",
		NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
	})))
}

func run(args []string) int {
	setupLogging(false)

	flags := pflag.NewFlagSet("postshot", pflag.ContinueOnError)
	driverType := flags.StringP("driver_type", "d", string(driver.Chrome), "browser to drive: chrome or firefox")
	customDriver := flags.StringP("custom_driver", "c", "", "path to a browser binary to use instead of the managed one")
	timeout := flags.IntP("timeout", "t", int(capture.DefaultTimeout/time.Second), "seconds to wait for the post to appear")
	driverFromPath := flags.Bool("driver-from-path", false, "use the browser binary found on PATH for the chosen driver type")
	filename := flags.StringP("filename", "f", capture.DefaultFilename, "output file; the extension is always .png")
	configYml := flags.String("config", "", "path to postshot.yml")
	debug := flags.Bool("debug", false, "print debug logs")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: postshot <url> [flags]\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return exitUsage
	}

	cfg := conf.Default()
	if *configYml != "" {
		var err error
		if cfg, err = conf.ReadConfig(*configYml); err != nil {
			slog.Error("Failed to parse config", tint.Err(err))
			return exitError
		}
	}

	// Flags given explicitly on the command line win over the config file.
	if flags.Changed("driver_type") {
		cfg.Browser.Kind = *driverType
	}
	if flags.Changed("custom_driver") {
		cfg.Browser.DriverPath = *customDriver
	}
	if flags.Changed("timeout") {
		cfg.Capture.Timeout = time.Duration(*timeout) * time.Second
	}
	if flags.Changed("filename") {
		cfg.Output.Filename = *filename
	}
	if *debug {
		cfg.Debug = true
	}

	if cfg.Debug {
		setupLogging(true)
	}
	slog.Debug(conf.AppName, "build-timestamp", conf.BuildTimestamp)

	url, _, err := validation.ValidateUrl(flags.Arg(0))
	if err != nil {
		slog.Error("Invalid URL", tint.Err(err), "url", flags.Arg(0))
		return exitError
	}

	opts, err := captureOptions(cfg, *driverFromPath)
	if err != nil {
		slog.Error("Invalid driver", tint.Err(err))
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// After the first signal, a second one kills the process.
	context.AfterFunc(ctx, stop)

	start := time.Now()
	result, err := takeCapture(ctx, url, opts)
	if err != nil {
		slog.Error("Capture failed", tint.Err(err), "url", url)
		return exitError
	}

	if exists, _ := core.FileExists(capture.OutputPath(cfg.Output.Filename)); exists {
		slog.Warn("Overwriting existing file", "path", capture.OutputPath(cfg.Output.Filename))
	}
	path, err := result.Save(cfg.Output.Filename)
	if err != nil {
		slog.Error("Failed to save screenshot", tint.Err(err), "filename", cfg.Output.Filename)
		return exitError
	}

	var size string
	if info, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	slog.Info("Saved screenshot", "path", path, "size", size, "box", result.Box, "took", time.Since(start).Round(time.Millisecond))
	return exitOK
}

// captureOptions turns a fully merged config into options for a capture.
func captureOptions(cfg conf.AppConfig, driverFromPath bool) (capture.Options, error) {
	kind, err := driver.ParseKind(cfg.Browser.Kind)
	if err != nil {
		return capture.Options{}, err
	}

	driverPath := cfg.Browser.DriverPath
	if driverFromPath {
		driverPath = driver.FindBinary(kind)
	}

	return capture.Options{
		Kind:         kind,
		DriverPath:   driverPath,
		Timeout:      cfg.Capture.Timeout,
		MediaTimeout: cfg.Capture.MediaTimeout,
		Locator:      cfg.Capture.Locator,
		Driver: driver.Options{
			Headless:  *cfg.Browser.Headless,
			NoSandbox: cfg.Browser.NoSandbox,
			Debug:     cfg.Debug,
		},
	}, nil
}
