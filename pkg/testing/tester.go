package testing

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/errors"
	"github.com/go-drift/bannerkit/pkg/preview"
	"github.com/go-drift/bannerkit/pkg/profile"
	"github.com/go-drift/bannerkit/pkg/render"
)

// BaseURL is the origin routed upload paths resolve against in tests.
const BaseURL = "https://banner.test"

// maxSettlePasses bounds PumpAndSettle.
const maxSettlePasses = 8

// ErrSettleTimeout is returned when PumpAndSettle exceeds its pass budget.
var ErrSettleTimeout = stderrors.New("PumpAndSettle: session did not settle")

// BannerTester drives a preview session without a browser. It collects
// error reports instead of logging them, serves images from memory and
// stamps URLs with a fake clock.
type BannerTester struct {
	session   *preview.Session
	collector *errors.Collector
	clock     *FakeClock
	images    *MapLoader
	last      *preview.Result
	snapshots int
}

// TesterOptions customises a tester. The zero value renders the desktop
// profile full screen.
type TesterOptions struct {
	Device   banner.Device
	Host     profile.Host
	Selector render.SelectorRenderer
	// Translator supplies translated component trees; nil disables
	// translation.
	Translator preview.Translator
	Dev        bool
}

// NewBannerTester creates a tester with default options.
func NewBannerTester() *BannerTester {
	return NewBannerTesterWithOptions(TesterOptions{})
}

// NewBannerTesterWithOptions creates a tester from opts.
func NewBannerTesterWithOptions(opts TesterOptions) *BannerTester {
	t := &BannerTester{
		collector: &errors.Collector{},
		clock:     NewFakeClock(),
		images:    &MapLoader{},
	}
	t.session = preview.New(preview.Options{
		Device:     opts.Device,
		Host:       opts.Host,
		Translator: opts.Translator,
		Selector:   opts.Selector,
		Remote:     t.images,
		BaseURL:    BaseURL,
		Now:        t.clock.Now,
		Handler:    t.collector,
		Dev:        opts.Dev,
		OnRendered: func(string, string) { t.snapshots++ },
	})
	return t
}

// NewBannerTesterWithT creates a tester that waits for background image
// work via t.Cleanup(). This is the recommended constructor for tests.
func NewBannerTesterWithT(t *testing.T) *BannerTester {
	tester := NewBannerTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup waits for image resolution still in flight.
func (t *BannerTester) Cleanup() {
	t.session.Images().Wait()
}

// Session returns the underlying preview session.
func (t *BannerTester) Session() *preview.Session { return t.session }

// Errors returns the collector receiving the session's reports.
func (t *BannerTester) Errors() *errors.Collector { return t.collector }

// Clock returns the fake clock for cache-busting timestamps.
func (t *BannerTester) Clock() *FakeClock { return t.clock }

// Images returns the in-memory loader for routed and absolute URLs.
func (t *BannerTester) Images() *MapLoader { return t.images }

// LoadConfig installs cfg for the next pass.
func (t *BannerTester) LoadConfig(cfg *banner.Config) {
	t.session.SetConfig(cfg)
}

// LoadYAML parses and installs a YAML configuration.
func (t *BannerTester) LoadYAML(src string) error {
	cfg, err := banner.Parse([]byte(src))
	if err != nil {
		return err
	}
	t.LoadConfig(cfg)
	return nil
}

// SetDevice switches the device profile.
func (t *BannerTester) SetDevice(d banner.Device) {
	t.session.SetDevice(d)
}

// SetSize hosts the banner inline in a measured panel of the given size.
func (t *BannerTester) SetSize(width, height float64) {
	t.session.Resize(profile.Inline(width, height))
}

// Pump runs a single pass. Images still resolving render in their loading
// state.
func (t *BannerTester) Pump() error {
	res, err := t.session.Render(context.Background())
	if err != nil {
		return err
	}
	t.last = res
	return nil
}

// PumpAndSettle runs passes until every image started by a pass has
// resolved. Returns ErrSettleTimeout if background work keeps invalidating
// the session.
func (t *BannerTester) PumpAndSettle() error {
	ctx := context.Background()
	for range maxSettlePasses {
		res, err := t.session.Settle(ctx)
		if err != nil {
			return err
		}
		t.last = res
		if !t.session.Dirty() {
			return nil
		}
	}
	return ErrSettleTimeout
}

// Passes returns the number of snapshots emitted so far.
func (t *BannerTester) Passes() int { return t.snapshots }

// Tree returns the tree of the latest pass, or nil before the first pump.
func (t *BannerTester) Tree() *render.Tree {
	if t.last == nil {
		return nil
	}
	return t.last.Tree
}

// Result returns the latest pass.
func (t *BannerTester) Result() *preview.Result { return t.last }

// Visibility returns the session's current visibility.
func (t *BannerTester) Visibility() preview.Visibility {
	return t.session.Visibility()
}

// Find evaluates a finder against the latest tree.
func (t *BannerTester) Find(finder Finder) FinderResult {
	tree := t.Tree()
	if tree == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{
		nodes:  finder.Evaluate(tree.Roots),
		finder: finder,
	}
}
