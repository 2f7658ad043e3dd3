package cmd

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-drift/bannerkit/cmd/bannerpreview/internal/config"
	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/errors"
	"github.com/go-drift/bannerkit/pkg/imagesrc"
	"github.com/go-drift/bannerkit/pkg/preview"
)

// passFlags is the flag help shared by render and inspect.
const passFlags = `Flags:
  --config FILE      Settings file (default: ./bannerpreview.yaml if present)
  --device NAME      Device profile: desktop, tablet or mobile
  --language LANG    Language to render (default: the banner's default)
  --inline WxH       Render inside an inline panel, e.g. 800x200
  --base-url URL     Origin for routed upload paths
  --blob ID=FILE     Register FILE as the temporary upload ID (repeatable)
  --dev              Log developer warnings
  --verbose          Log every report with stack traces`

type blobArg struct {
	id   string
	path string
}

// passOptions are the parsed arguments of a command that renders.
type passOptions struct {
	bannerPath string
	configPath string
	device     string
	language   string
	panel      string
	baseURL    string
	outDir     string
	dev        bool
	verbose    bool
	blobs      []blobArg
}

// parsePassArgs parses a banner path followed by flags. allowOut enables
// --out for commands that write files.
func parsePassArgs(args []string, allowOut bool) (passOptions, error) {
	var opts passOptions
	value := func(i int, name string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", name)
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, inline, hasInline := strings.Cut(arg, "=")
		if !strings.HasPrefix(arg, "--") {
			if opts.bannerPath != "" {
				return opts, fmt.Errorf("unexpected argument %q", arg)
			}
			opts.bannerPath = arg
			continue
		}

		switch name {
		case "--dev":
			opts.dev = true
			continue
		case "--verbose":
			opts.verbose = true
			continue
		}

		v := inline
		if !hasInline {
			var err error
			if v, err = value(i, name); err != nil {
				return opts, err
			}
			i++
		}
		switch name {
		case "--config":
			opts.configPath = v
		case "--device":
			opts.device = v
		case "--language":
			opts.language = v
		case "--inline":
			opts.panel = v
		case "--base-url":
			opts.baseURL = v
		case "--out":
			if !allowOut {
				return opts, fmt.Errorf("unknown flag %q", name)
			}
			opts.outDir = v
		case "--blob":
			id, path, ok := strings.Cut(v, "=")
			if !ok || id == "" || path == "" {
				return opts, fmt.Errorf("--blob wants ID=FILE, got %q", v)
			}
			opts.blobs = append(opts.blobs, blobArg{id: id, path: path})
		default:
			return opts, fmt.Errorf("unknown flag %q", name)
		}
	}

	if opts.bannerPath == "" {
		return opts, fmt.Errorf("banner configuration path is required")
	}
	return opts, nil
}

// settings loads the settings file and applies flag overrides.
func (o passOptions) settings() (config.Config, error) {
	cfg, err := config.Load(o.configPath, "")
	if err != nil {
		return cfg, err
	}
	if o.device != "" {
		cfg.Render.Device = o.device
	}
	if o.language != "" {
		cfg.Render.Language = o.language
	}
	if o.panel != "" {
		w, h, err := config.ParsePanel(o.panel)
		if err != nil {
			return cfg, err
		}
		cfg.Render.Host = "inline"
		cfg.Render.Width, cfg.Render.Height = w, h
	}
	if o.baseURL != "" {
		cfg.Images.BaseURL = o.baseURL
	}
	if o.outDir != "" {
		cfg.Render.OutDir = o.outDir
	}
	cfg.Render.Dev = cfg.Render.Dev || o.dev
	cfg.Log.Verbose = cfg.Log.Verbose || o.verbose
	return cfg, nil
}

// pass is a session prepared from the command line.
type pass struct {
	settings config.Config
	session  *preview.Session
	reports  *errors.Collector
}

// preparePass loads the banner and builds a session ready to render.
func preparePass(ctx context.Context, opts passOptions) (*pass, error) {
	settings, err := opts.settings()
	if err != nil {
		return nil, err
	}
	device, err := settings.Device()
	if err != nil {
		return nil, err
	}
	host, err := settings.Host()
	if err != nil {
		return nil, err
	}
	cfg, err := banner.Load(opts.bannerPath)
	if err != nil {
		return nil, err
	}

	reports := &errors.Collector{}
	var handler errors.ErrorHandler = reports
	if settings.Log.Verbose {
		handler = errors.MultiHandler{reports, &errors.LogHandler{Verbose: true}}
	}

	remote := imagesrc.NewHTTPLoader(settings.Images.Timeout)
	remote.MaxBytes = settings.Images.MaxBytes
	session := preview.New(preview.Options{
		Device:           device,
		Host:             host,
		Remote:           remote,
		BaseURL:          settings.Images.BaseURL,
		BlobCapacity:     settings.Images.BlobCapacity,
		ImageConcurrency: settings.Images.Concurrency,
		Handler:          handler,
		Dev:              settings.Render.Dev,
	})

	for _, b := range opts.blobs {
		data, err := os.ReadFile(b.path)
		if err != nil {
			return nil, fmt.Errorf("read blob %s: %w", b.id, err)
		}
		session.RegisterBlob(b.id, mime.TypeByExtension(filepath.Ext(b.path)), data)
	}
	session.SetConfig(cfg)
	if settings.Render.Language != "" {
		if err := session.SetLanguage(ctx, settings.Render.Language); err != nil {
			return nil, err
		}
	}
	return &pass{settings: settings, session: session, reports: reports}, nil
}

// summarizeReports returns one line per error kind, sorted by kind name.
func summarizeReports(c *errors.Collector) []string {
	counts := make(map[string]int)
	for _, err := range c.Errors() {
		counts[err.Kind.String()]++
	}
	if n := len(c.Panics()); n > 0 {
		counts[errors.KindPanic.String()] += n
	}
	lines := make([]string, 0, len(counts))
	for kind, n := range counts {
		lines = append(lines, fmt.Sprintf("%s: %d", kind, n))
	}
	sort.Strings(lines)
	return lines
}
