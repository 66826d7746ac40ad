package conf

// App-specific configuration structs & data.
// Must live in a package of its own so other packages within the app can depend on it without
// causing a circular dependency.

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"chimbori.dev/postshot/capture"
	"chimbori.dev/postshot/core"
	"chimbori.dev/postshot/driver"
	"gopkg.in/yaml.v3"
)

var AppName = "Postshot"

var BuildTimestamp string

type AppConfig struct {
	Browser struct {
		Kind       string `yaml:"kind"`
		DriverPath string `yaml:"driver-path"`
		Headless   *bool  `yaml:"headless"`
		NoSandbox  bool   `yaml:"no-sandbox"`
	} `yaml:"browser"`
	Capture struct {
		Timeout      time.Duration `yaml:"timeout"`
		MediaTimeout time.Duration `yaml:"media-timeout"`
		// Empty locator fields keep the built-in locator.
		Locator capture.Locator `yaml:"locator"`
	} `yaml:"capture"`
	Output struct {
		Filename string `yaml:"filename"`
	} `yaml:"output"`
	Debug bool `yaml:"debug"`
}

// Default returns a config with every default applied, for runs without a config file.
func Default() AppConfig {
	c := &AppConfig{}
	setDefaults(c)
	return *c
}

// ReadConfig parses the YAML file at configYmlFile. Defaults are applied even when an
// error is returned, so callers may keep going with the returned value.
func ReadConfig(configYmlFile string) (AppConfig, error) {
	if BuildTimestamp == "" {
		BuildTimestamp = time.Now().Local().Format("2006-01-02 15:04:05")
	}

	c := &AppConfig{}
	configYmlPath, err := filepath.Abs(configYmlFile)
	if err != nil {
		setDefaults(c)
		return *c, fmt.Errorf("failed to get path to config file: %w", err)
	}

	buf, err := os.ReadFile(configYmlPath)
	if err != nil {
		setDefaults(c)
		return *c, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(buf, c); err != nil {
		setDefaults(c)
		return *c, fmt.Errorf("failed to parse config: %w", err)
	}

	setDefaults(c)
	slog.Debug("config loaded", "path", configYmlPath)
	return *c, nil
}

func setDefaults(c *AppConfig) {
	if c.Browser.Kind == "" {
		c.Browser.Kind = string(driver.Chrome)
	}
	// Headless unless explicitly disabled; a visible window only helps when debugging locators.
	if c.Browser.Headless == nil {
		c.Browser.Headless = core.Ptr(true)
	}
	if c.Capture.Timeout <= 0 {
		c.Capture.Timeout = capture.DefaultTimeout
	}
	if c.Capture.MediaTimeout <= 0 {
		c.Capture.MediaTimeout = capture.DefaultMediaTimeout
	}
	if c.Output.Filename == "" {
		c.Output.Filename = capture.DefaultFilename
	}

	if c.Debug {
		slog.Warn("Debug mode is enabled")
	}
	if !*c.Browser.Headless {
		slog.Warn("Headless mode disabled; a browser window will open")
	}
}
