package preview_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/png"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/errors"
	"github.com/go-drift/bannerkit/pkg/imagesrc"
	"github.com/go-drift/bannerkit/pkg/preview"
	"github.com/go-drift/bannerkit/pkg/profile"
)

const configYAML = `
defaultLanguage: en
languages: [en, de]
layout:
  desktop: {type: banner, position: bottom, background: "#fff", width: 100%, height: 200px, minHeight: 100px}
  mobile: {type: floating, position: bottom-right, background: "#fff", width: 100%, height: auto, minHeight: 100px}
components:
  - id: title
    type: text
    content:
      texts: {en: Hello, de: Hallo}
  - id: hero
    type: image
    content: "blob:abc123"
  - id: accept
    type: button
    action: accept_all
    content: Accept
`

func loadConfig(t *testing.T) *banner.Config {
	t.Helper()
	cfg, err := banner.Parse([]byte(configYAML))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRenderRequiresConfig(t *testing.T) {
	s := preview.New(preview.Options{Handler: &errors.Collector{}})
	if _, err := s.Render(context.Background()); !stderrors.Is(err, preview.ErrNoConfig) {
		t.Errorf("Render() err = %v, want ErrNoConfig", err)
	}
}

func TestRenderEmitsSnapshot(t *testing.T) {
	var gotHTML, gotCSS string
	s := preview.New(preview.Options{
		Handler:    &errors.Collector{},
		OnRendered: func(html, css string) { gotHTML, gotCSS = html, css },
	})
	s.SetConfig(loadConfig(t))
	if !s.Dirty() {
		t.Fatal("SetConfig should mark the session dirty")
	}

	res, err := s.Settle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Error("Settle should leave the session clean")
	}
	if !strings.Contains(gotHTML, "bk-title") || !strings.Contains(gotHTML, "Hello") {
		t.Errorf("html = %s", gotHTML)
	}
	if !strings.Contains(gotCSS, ".bk-accept {") {
		t.Errorf("css = %s", gotCSS)
	}
	if res.Snapshot.ID == "" || res.Snapshot.HTML != gotHTML {
		t.Errorf("snapshot = %+v", res.Snapshot)
	}
	if got := res.Tree.Frame.Reference.Size.Width; got != 1280 {
		t.Errorf("frame width = %v, want 1280", got)
	}
}

type fakeTranslator struct {
	fail  error
	asked []string
}

func (f *fakeTranslator) TranslateToLanguage(_ context.Context, lang string) error {
	f.asked = append(f.asked, lang)
	return f.fail
}

func (f *fakeTranslator) TranslatedComponents(lang string) []banner.Node {
	if lang != "de" {
		return nil
	}
	return []banner.Node{{ID: "title", Type: "text", Content: banner.StringContent("Übersetzt")}}
}

func TestSetLanguage(t *testing.T) {
	ctx := context.Background()

	t.Run("content map", func(t *testing.T) {
		s := preview.New(preview.Options{Handler: &errors.Collector{}})
		s.SetConfig(loadConfig(t))
		if err := s.SetLanguage(ctx, "de"); err != nil {
			t.Fatal(err)
		}
		res, _ := s.Render(ctx)
		if got := res.Tree.Find("title").Text.Value; got != "Hallo" {
			t.Errorf("title = %q, want Hallo", got)
		}
	})

	t.Run("translator", func(t *testing.T) {
		tr := &fakeTranslator{}
		s := preview.New(preview.Options{Handler: &errors.Collector{}, Translator: tr})
		s.SetConfig(loadConfig(t))
		if err := s.SetLanguage(ctx, "de"); err != nil {
			t.Fatal(err)
		}
		res, _ := s.Render(ctx)
		if got := res.Tree.Find("title").Text.Value; got != "Übersetzt" {
			t.Errorf("title = %q, want translated", got)
		}
		if res.Tree.Find("accept") != nil {
			t.Error("translated components replace the tree")
		}
		if len(tr.asked) != 1 || tr.asked[0] != "de" {
			t.Errorf("asked = %v", tr.asked)
		}
	})

	t.Run("translator failure keeps language", func(t *testing.T) {
		tr := &fakeTranslator{fail: stderrors.New("quota")}
		s := preview.New(preview.Options{Handler: &errors.Collector{}, Translator: tr})
		s.SetConfig(loadConfig(t))
		if err := s.SetLanguage(ctx, "de"); err == nil {
			t.Fatal("expected error")
		}
		if s.Language() != "en" {
			t.Errorf("Language() = %q, want en", s.Language())
		}
	})
}

func TestRegisterBlobRetriesFailedImage(t *testing.T) {
	ctx := context.Background()
	var c errors.Collector
	var invalidations atomic.Int32
	s := preview.New(preview.Options{Handler: &c, OnInvalidate: func() { invalidations.Add(1) }})
	s.SetConfig(loadConfig(t))

	res, err := s.Settle(ctx)
	if err != nil {
		t.Fatal(err)
	}
	hero := res.Tree.Find("hero").Image
	if hero.State != imagesrc.StateFailed {
		t.Fatalf("hero state = %s, want failed", hero.State)
	}
	if !strings.Contains(res.Snapshot.HTML, "bk-icon") {
		t.Error("failed image should render the error icon")
	}
	if invalidations.Load() == 0 {
		t.Error("background failure should invalidate the session")
	}

	s.RegisterBlob("abc123", "image/png", pngBytes(t))
	if !s.Dirty() {
		t.Error("RegisterBlob should mark the session dirty")
	}
	res, _ = s.Settle(ctx)
	hero = res.Tree.Find("hero").Image
	if hero.State != imagesrc.StateResolved || hero.Strategy != imagesrc.StrategyBlobReference {
		t.Errorf("hero after RegisterBlob = %+v", hero)
	}
}

func TestImageStateResetOnDeviceChange(t *testing.T) {
	ctx := context.Background()
	s := preview.New(preview.Options{Handler: &errors.Collector{}})
	s.RegisterBlob("abc123", "image/png", pngBytes(t))
	s.SetConfig(loadConfig(t))

	if _, err := s.Settle(ctx); err != nil {
		t.Fatal(err)
	}
	before := s.Images().Status("hero")
	if before.State != imagesrc.StateResolved {
		t.Fatalf("hero state = %s, want resolved", before.State)
	}

	s.SetDevice(banner.Mobile)
	if st := s.Images().Status("hero"); st.State != imagesrc.StateIdle {
		t.Errorf("state after device change = %s, want idle", st.State)
	}
	res, _ := s.Settle(ctx)
	hero := res.Tree.Find("hero").Image
	if hero.State != imagesrc.StateResolved || hero.Strategy != imagesrc.StrategyBlobReference {
		t.Errorf("hero after device change = %+v", hero)
	}
	if after := s.Images().Status("hero"); after.Generation <= before.Generation {
		t.Errorf("generation %d -> %d, want a fresh attempt", before.Generation, after.Generation)
	}
	if res.Tree.Device != banner.Mobile {
		t.Errorf("Device = %s", res.Tree.Device)
	}
}

func TestVisibilityApply(t *testing.T) {
	shown := preview.Visibility{Banner: true}
	tests := []struct {
		action banner.Action
		want   preview.Visibility
	}{
		{banner.ActionShowPreferences, preview.Visibility{Banner: true, Preferences: true}},
		{banner.ActionAcceptAll, preview.Visibility{}},
		{banner.ActionRejectAll, preview.Visibility{}},
		{banner.ActionNone, shown},
	}
	for _, tt := range tests {
		if got := shown.Apply(tt.action); got != tt.want {
			t.Errorf("Apply(%s) = %+v, want %+v", tt.action, got, tt.want)
		}
	}
}

func TestDispatch(t *testing.T) {
	s := preview.New(preview.Options{Handler: &errors.Collector{}})
	s.SetConfig(loadConfig(t))
	if _, err := s.Settle(context.Background()); err != nil {
		t.Fatal(err)
	}

	if v := s.Dispatch("self_destruct"); v != (preview.Visibility{Banner: true}) || s.Dirty() {
		t.Errorf("unknown action changed state: %+v dirty=%v", v, s.Dirty())
	}
	if v := s.Dispatch("show_preferences"); !v.Preferences {
		t.Error("show_preferences should open preferences")
	}
	if v := s.Dispatch("accept_all"); v.Banner || v.Preferences {
		t.Errorf("accept_all = %+v, want hidden", v)
	}
	if !s.Dirty() {
		t.Error("visibility change should mark the session dirty")
	}
	s.ShowBanner()
	if v := s.Visibility(); !v.Banner {
		t.Error("ShowBanner should show the banner")
	}
}

func TestResizeMeasuresInlineHost(t *testing.T) {
	ctx := context.Background()
	var c errors.Collector
	s := preview.New(preview.Options{Handler: &c, Host: profile.Host{Kind: profile.HostInline}})
	s.SetConfig(loadConfig(t))

	res, _ := s.Render(ctx)
	if !res.Tree.Stale || !strings.Contains(res.Snapshot.HTML, `data-stale="true"`) {
		t.Error("unmeasured inline host should produce a stale pass")
	}
	if len(c.OfKind(errors.KindGeometryUnavailable)) == 0 {
		t.Error("expected a geometry_unavailable report")
	}

	s.Resize(profile.Inline(800, 400))
	if !s.Dirty() {
		t.Fatal("Resize should mark the session dirty")
	}
	res, _ = s.Render(ctx)
	if res.Tree.Stale {
		t.Error("measured host should not be stale")
	}
	if got := res.Tree.Frame.Reference.Size; got.Width != 800 || got.Height != 200 {
		t.Errorf("frame = %vx%v, want 800x200", got.Width, got.Height)
	}
}
