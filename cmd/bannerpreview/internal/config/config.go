// Package config loads bannerpreview settings from defaults, an optional
// bannerpreview.yaml and BANNERPREVIEW_ environment variables.
package config

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/imagesrc"
	"github.com/go-drift/bannerkit/pkg/profile"
)

// FileName is the settings file looked up in the working directory.
const FileName = "bannerpreview"

// EnvPrefix prefixes environment overrides, e.g. BANNERPREVIEW_RENDER_DEVICE.
const EnvPrefix = "BANNERPREVIEW"

// Config holds CLI settings.
type Config struct {
	Render RenderConfig `mapstructure:"render"`
	Images ImageConfig  `mapstructure:"images"`
	Log    LogConfig    `mapstructure:"log"`
}

// RenderConfig holds pass settings.
type RenderConfig struct {
	Device   string `mapstructure:"device"`
	Language string `mapstructure:"language"`
	// Host is "fullscreen" or "inline".
	Host   string  `mapstructure:"host"`
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	OutDir string  `mapstructure:"out_dir"`
	Dev    bool    `mapstructure:"dev"`
}

// ImageConfig holds image resolution settings.
type ImageConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Concurrency  int           `mapstructure:"concurrency"`
	BlobCapacity int           `mapstructure:"blob_capacity"`
	MaxBytes     int64         `mapstructure:"max_bytes"`
}

// LogConfig holds error reporting settings.
type LogConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// Load reads settings. An explicit path must exist; otherwise
// bannerpreview.yaml in dir is read when present. Env var overrides use
// prefix BANNERPREVIEW_.
func Load(path, dir string) (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("render.device", string(banner.Desktop))
	v.SetDefault("render.language", "")
	v.SetDefault("render.host", "fullscreen")
	v.SetDefault("render.width", 0)
	v.SetDefault("render.height", 0)
	v.SetDefault("render.out_dir", "preview")
	v.SetDefault("render.dev", false)
	v.SetDefault("images.base_url", "")
	v.SetDefault("images.timeout", 10*time.Second)
	v.SetDefault("images.concurrency", 4)
	v.SetDefault("images.blob_capacity", 64)
	v.SetDefault("images.max_bytes", imagesrc.DefaultMaxBytes)
	v.SetDefault("log.verbose", false)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if dir == "" {
			dir = "."
		}
		v.AddConfigPath(dir)
		v.SetConfigName(FileName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Device parses the configured device.
func (c Config) Device() (banner.Device, error) {
	d, ok := banner.ParseDevice(c.Render.Device)
	if !ok {
		return d, fmt.Errorf("unknown device %q (use desktop, tablet or mobile)", c.Render.Device)
	}
	return d, nil
}

// Host returns the configured host. An inline host needs a positive panel
// size.
func (c Config) Host() (profile.Host, error) {
	switch strings.ToLower(c.Render.Host) {
	case "", "fullscreen":
		return profile.FullScreen(), nil
	case "inline":
		if c.Render.Width <= 0 || c.Render.Height <= 0 {
			return profile.Host{}, fmt.Errorf("inline host needs render.width and render.height")
		}
		return profile.Inline(c.Render.Width, c.Render.Height), nil
	}
	return profile.Host{}, fmt.Errorf("unknown host %q (use fullscreen or inline)", c.Render.Host)
}

// ParsePanel parses a "WIDTHxHEIGHT" panel size such as "800x200".
func ParsePanel(s string) (width, height float64, err error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid panel size %q (want WIDTHxHEIGHT)", s)
	}
	if width, err = strconv.ParseFloat(strings.TrimSpace(w), 64); err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid panel width %q", w)
	}
	if height, err = strconv.ParseFloat(strings.TrimSpace(h), 64); err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid panel height %q", h)
	}
	return width, height, nil
}
