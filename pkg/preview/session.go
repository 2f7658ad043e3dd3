// Package preview drives render passes for one banner editing session.
//
// A Session owns the inputs of a pass (configuration, device, language and
// host geometry) and the state that outlives a pass (image resolution,
// the blob registry and local visibility). Changing an input marks the
// session dirty; the host calls Render to recompute. The session owns no
// timers or subscriptions: a background image result only marks the session
// dirty and calls Options.OnInvalidate.
package preview

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/errors"
	"github.com/go-drift/bannerkit/pkg/graphics"
	"github.com/go-drift/bannerkit/pkg/imagesrc"
	"github.com/go-drift/bannerkit/pkg/profile"
	"github.com/go-drift/bannerkit/pkg/render"
	"github.com/go-drift/bannerkit/pkg/snapshot"
)

// ErrNoConfig is returned by Render before SetConfig has been called.
var ErrNoConfig = stderrors.New("preview: no banner configuration")

// Translator supplies translated component trees.
type Translator interface {
	// TranslateToLanguage prepares components for lang.
	TranslateToLanguage(ctx context.Context, lang string) error
	// TranslatedComponents returns the components for lang, or nil when
	// there is no translation.
	TranslatedComponents(lang string) []banner.Node
}

// Options configures a Session.
type Options struct {
	Device banner.Device
	Host   profile.Host

	Translator Translator
	Selector   render.SelectorRenderer
	Metrics    *graphics.TextMetrics

	// Loader checks image candidates. Nil uses a scheme loader over the
	// session's blob registry, with Remote for http and https URLs.
	Loader imagesrc.Loader
	// Remote loads absolute and routed URLs when Loader is nil; nil leaves
	// them unsupported.
	Remote imagesrc.Loader
	// BaseURL is prepended to routed upload paths.
	BaseURL      string
	BlobCapacity int
	// ImageConcurrency bounds the image loads in flight; 0 means 4.
	ImageConcurrency int
	Now              func() time.Time

	// Handler receives the session's error reports; nil uses the package
	// default handler.
	Handler errors.ErrorHandler
	Dev     bool

	// OnRendered receives the snapshot of every pass.
	OnRendered func(html, css string)
	// OnInvalidate is called when background work makes the session dirty.
	OnInvalidate func()
}

// Result is the outcome of one pass.
type Result struct {
	Tree       *render.Tree
	Snapshot   snapshot.Snapshot
	Visibility Visibility
}

// Session is safe for concurrent use.
type Session struct {
	opts     Options
	reporter errors.Reporter
	registry *imagesrc.BlobRegistry
	images   *imagesrc.Resolver

	mu         sync.Mutex
	cfg        *banner.Config
	device     banner.Device
	language   string
	host       profile.Host
	visibility Visibility
	dirty      bool
	last       *Result
}

// New returns a session. The banner starts visible with preferences hidden.
func New(opts Options) *Session {
	s := &Session{
		opts:       opts,
		reporter:   errors.Reporter{Handler: opts.Handler},
		registry:   imagesrc.NewBlobRegistry(opts.BlobCapacity),
		device:     opts.Device,
		host:       opts.Host,
		visibility: Visibility{Banner: true},
		dirty:      true,
	}
	if s.device == "" {
		s.device = banner.Desktop
	}
	loader := opts.Loader
	if loader == nil {
		loader = imagesrc.SchemeLoader{
			Data: imagesrc.DataURILoader{},
			Blob: imagesrc.BlobLoader{Registry: s.registry},
			HTTP: opts.Remote,
		}
	}
	s.images = imagesrc.NewResolver(imagesrc.Options{
		Chain:       imagesrc.Chain{Registry: s.registry, BaseURL: opts.BaseURL, Now: opts.Now},
		Loader:      loader,
		Concurrency: opts.ImageConcurrency,
		Reporter:    s.reporter,
		OnChange:    func(string, imagesrc.Status) { s.invalidateAsync() },
	})
	return s
}

// Blobs returns the session's blob registry.
func (s *Session) Blobs() *imagesrc.BlobRegistry { return s.registry }

// Images returns the session's image resolver.
func (s *Session) Images() *imagesrc.Resolver { return s.images }

// RegisterBlob stores a temporary upload and marks the session dirty. Images
// referring to id, or to a blob it evicted, resolve again on the next pass.
func (s *Session) RegisterBlob(id, mediaType string, data []byte) {
	if evicted := s.registry.Register(id, mediaType, data); evicted != "" {
		s.images.ForgetBlob(evicted)
	}
	s.images.ForgetBlob(id)
	s.Invalidate()
}

// SetConfig replaces the banner configuration and resets image state.
func (s *Session) SetConfig(cfg *banner.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	if s.language == "" && cfg != nil {
		s.language = cfg.DefaultLanguage
	}
	s.images.Reset()
	s.dirty = true
}

// SetDevice switches the device and resets image state.
func (s *Session) SetDevice(d banner.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d == s.device {
		return
	}
	s.device = d
	s.images.Reset()
	s.dirty = true
}

// SetLanguage switches the language, asking the translator to prepare it
// first. On error the language is left unchanged.
func (s *Session) SetLanguage(ctx context.Context, lang string) error {
	if t := s.opts.Translator; t != nil {
		if err := t.TranslateToLanguage(ctx, lang); err != nil {
			return fmt.Errorf("preview: translate to %s: %w", lang, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
	s.dirty = true
	return nil
}

// Resize reports new host geometry.
func (s *Session) Resize(host profile.Host) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.host = host
	s.dirty = true
}

// Invalidate marks the session dirty.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

func (s *Session) invalidateAsync() {
	s.Invalidate()
	if s.opts.OnInvalidate != nil {
		s.opts.OnInvalidate()
	}
}

// Dirty reports whether an input changed since the last pass.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Last returns the most recent result, or nil.
func (s *Session) Last() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Device returns the current device.
func (s *Session) Device() banner.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// Language returns the current language.
func (s *Session) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// Render runs one synchronous pass and emits its snapshot. Images that are
// still resolving render in their loading state.
func (s *Session) Render(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.cfg == nil {
		s.mu.Unlock()
		return nil, ErrNoConfig
	}
	res := s.pass(ctx)
	s.last = res
	s.dirty = false
	s.mu.Unlock()

	if s.opts.OnRendered != nil {
		s.opts.OnRendered(res.Snapshot.HTML, res.Snapshot.CSS)
	}
	return res, nil
}

// Settle renders, waits for image resolution started by the pass and
// renders again if any result arrived.
func (s *Session) Settle(ctx context.Context) (*Result, error) {
	res, err := s.Render(ctx)
	if err != nil {
		return nil, err
	}
	s.images.Wait()
	if !s.Dirty() {
		return res, nil
	}
	return s.Render(ctx)
}

// pass must be called with s.mu held.
func (s *Session) pass(ctx context.Context) *Result {
	cfg := s.cfg
	layout, ok := cfg.ResolveLayout(s.device)
	if !ok {
		s.reporter.Report(&errors.BannerError{
			Op:   "preview.Render",
			Kind: errors.KindConfigurationMissing,
			Err:  fmt.Errorf("no layout for %s; defaults used", s.device),
		})
	}
	frame := profile.Resolver{Reporter: s.reporter}.Resolve(layout, s.device, s.host)

	components := cfg.Components
	if s.opts.Translator != nil && s.language != "" && s.language != cfg.DefaultLanguage {
		if translated := s.opts.Translator.TranslatedComponents(s.language); len(translated) > 0 {
			components = translated
		}
	}

	r := render.New(render.Options{
		Device:          s.device,
		Language:        s.language,
		DefaultLanguage: cfg.DefaultLanguage,
		Languages:       cfg.Languages,
		Metrics:         s.opts.Metrics,
		Images:          s.images,
		Selector:        s.opts.Selector,
		Reporter:        s.reporter,
		Dev:             s.opts.Dev,
	})
	tree := r.Render(ctx, frame, components)
	return &Result{
		Tree:       tree,
		Snapshot:   snapshot.Capture(tree),
		Visibility: s.visibility,
	}
}
