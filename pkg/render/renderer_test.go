package render_test

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/errors"
	"github.com/go-drift/bannerkit/pkg/graphics"
	"github.com/go-drift/bannerkit/pkg/imagesrc"
	"github.com/go-drift/bannerkit/pkg/profile"
	"github.com/go-drift/bannerkit/pkg/render"
)

func frame(w, h float64) profile.Frame {
	return profile.Frame{Reference: graphics.Measured(w, h)}
}

func styled(style banner.StyleAttributes) map[banner.Device]banner.StyleAttributes {
	return map[banner.Device]banner.StyleAttributes{banner.Desktop: style}
}

func sized(w, h string) map[banner.Device]banner.StyleAttributes {
	return styled(banner.StyleAttributes{Width: banner.ParseDimension(w), Height: banner.ParseDimension(h)})
}

func newRenderer(c *errors.Collector) *render.Renderer {
	return render.New(render.Options{
		Device:          banner.Desktop,
		DefaultLanguage: "en",
		Reporter:        errors.Reporter{Handler: c},
	})
}

func assertSize(t *testing.T, n *render.Node, w, h float64) {
	t.Helper()
	if n == nil {
		t.Fatal("node not rendered")
	}
	if got := n.Bounds.Size(); got.Width != w || got.Height != h {
		t.Errorf("%s size = %vx%v, want %vx%v", n.ID, got.Width, got.Height, w, h)
	}
}

func TestRootsUseFrameChildrenUseContainer(t *testing.T) {
	var c errors.Collector
	tree := newRenderer(&c).Render(context.Background(), frame(800, 400), []banner.Node{
		{
			ID:    "box",
			Type:  "container",
			Style: sized("50%", "200px"),
			Children: []banner.Node{
				{ID: "t", Type: "text", ParentID: "box", Style: sized("100%", ""), Content: banner.StringContent("Hello")},
			},
		},
	})

	assertSize(t, tree.Find("box"), 400, 200)
	// 100% of the 400px container, clamped to 95%.
	assertSize(t, tree.Find("t"), 380, 20)
	if tree.Stale {
		t.Error("tree should not be stale with a measured frame")
	}
}

func TestChildContainment(t *testing.T) {
	var c errors.Collector
	tree := newRenderer(&c).Render(context.Background(), frame(1000, 1000), []banner.Node{
		{ID: "box", Type: "container", Style: sized("300px", "200px")},
		{ID: "btn", Type: "button", ParentID: "box", Style: sized("1000px", "1000px")},
	})
	btn := tree.Find("btn")
	assertSize(t, btn, 285, 190)
	if btn.Style.Width.String() != "285px" {
		t.Errorf("Width = %s, want 285px", btn.Style.Width)
	}
	box := tree.Find("box")
	if !graphics.RectFromLTWH(0, 0, 300, 200).Contains(btn.Bounds) {
		t.Errorf("child %v escapes container %v", btn.Bounds, box.Bounds)
	}
}

func TestEmptyGridContainerPlaceholder(t *testing.T) {
	var c errors.Collector
	tree := newRenderer(&c).Render(context.Background(), frame(800, 400), []banner.Node{
		{
			ID:    "grid",
			Type:  "container",
			Style: sized("400px", "200px"),
			ContainerConfig: map[banner.Device]banner.ContainerConfig{
				banner.Desktop: {DisplayMode: banner.DisplayGrid},
			},
		},
	})
	g := tree.Find("grid")
	if g.Layout == nil || g.Layout.Mode != banner.DisplayGrid {
		t.Fatalf("Layout = %+v", g.Layout)
	}
	if g.Layout.Placeholder != render.EmptyContainerMessage {
		t.Errorf("Placeholder = %q", g.Layout.Placeholder)
	}
	if len(g.Children) != 0 {
		t.Errorf("got %d children, want 0", len(g.Children))
	}
}

func TestGridReportsUnrecognisedTracks(t *testing.T) {
	var c errors.Collector
	tree := newRenderer(&c).Render(context.Background(), frame(800, 400), []banner.Node{
		{
			ID:    "grid",
			Type:  "container",
			Style: sized("400px", "200px"),
			ContainerConfig: map[banner.Device]banner.ContainerConfig{
				banner.Desktop: {DisplayMode: banner.DisplayGrid, GridTemplateColumns: "100px min-content auto"},
			},
			Children: []banner.Node{{ID: "cell", Type: "text", Content: banner.StringContent("x")}},
		},
	})
	if tree.Find("cell") == nil {
		t.Fatal("cell should render")
	}
	reports := c.OfKind(errors.KindParsing)
	if len(reports) != 1 {
		t.Fatalf("got %d parsing reports, want 1", len(reports))
	}
	var pe *errors.ParseError
	if !stderrors.As(reports[0].Err, &pe) || pe.Field != "gridTemplateColumns" || pe.Value != "min-content" {
		t.Errorf("report = %v", reports[0])
	}
	if reports[0].NodeID != "grid" {
		t.Errorf("NodeID = %q, want grid", reports[0].NodeID)
	}
}

func TestUnknownTypeSkipped(t *testing.T) {
	var c errors.Collector
	tree := newRenderer(&c).Render(context.Background(), frame(800, 400), []banner.Node{
		{ID: "a", Type: "text", Content: banner.StringContent("A")},
		{ID: "b", Type: "unknown-widget"},
		{ID: "c", Type: "button", Content: banner.StringContent("OK")},
	})
	if len(tree.Roots) != 2 || tree.Roots[0].ID != "a" || tree.Roots[1].ID != "c" {
		ids := make([]string, len(tree.Roots))
		for i, n := range tree.Roots {
			ids[i] = n.ID
		}
		t.Fatalf("rendered %v, want [a c]", ids)
	}
	reports := c.OfKind(errors.KindUnknownComponentType)
	if len(reports) != 1 || reports[0].NodeID != "b" {
		t.Errorf("reports = %+v", reports)
	}
}

func TestPanicIsolatedToNode(t *testing.T) {
	var c errors.Collector
	r := render.New(render.Options{
		Reporter: errors.Reporter{Handler: &c},
		Selector: render.SelectorFunc(func(render.SelectorProps) string { panic("selector exploded") }),
	})
	tree := r.Render(context.Background(), frame(800, 400), []banner.Node{
		{ID: "box", Type: "container", Style: sized("400px", "200px"), Children: []banner.Node{
			{ID: "lang", Type: "language-selector", ParentID: "box"},
			{ID: "txt", Type: "text", ParentID: "box", Content: banner.StringContent("still here")},
		}},
	})

	lang := tree.Find("lang")
	if lang == nil || !lang.Failed || !strings.Contains(lang.Message, "selector exploded") {
		t.Fatalf("lang = %+v", lang)
	}
	if txt := tree.Find("txt"); txt == nil || txt.Text == nil {
		t.Error("sibling should render")
	}
	if p := c.Panics(); len(p) != 1 || p[0].NodeID != "lang" {
		t.Errorf("panics = %+v", p)
	}
}

func TestTextSizing(t *testing.T) {
	tests := []struct {
		name    string
		style   banner.StyleAttributes
		content banner.Content
		w, h    float64
		lines   int
		visible int
	}{
		{
			name: "floor",
			w:    50, h: 20, lines: 1, visible: 1,
		},
		{
			name:    "capped by max width",
			style:   banner.StyleAttributes{MaxWidth: banner.Px(40)},
			content: banner.StringContent("Hi"),
			w:       40, h: 20, lines: 1, visible: 1,
		},
		{
			name:    "wraps at width",
			style:   banner.StyleAttributes{Width: banner.Px(50)},
			content: banner.StringContent("We use cookies"),
			w:       50, h: 26, lines: 2, visible: 2,
		},
		{
			name:    "clipped by height",
			style:   banner.StyleAttributes{Width: banner.Px(50), Height: banner.Px(20)},
			content: banner.StringContent("We use cookies"),
			w:       50, h: 20, lines: 2, visible: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c errors.Collector
			tree := newRenderer(&c).Render(context.Background(), frame(800, 400), []banner.Node{
				{ID: "t", Type: "text", Style: styled(tt.style), Content: tt.content},
			})
			n := tree.Find("t")
			assertSize(t, n, tt.w, tt.h)
			if len(n.Text.Lines) != tt.lines || n.Text.Visible != tt.visible {
				t.Errorf("lines = %q visible = %d, want %d/%d", n.Text.Lines, n.Text.Visible, tt.lines, tt.visible)
			}
		})
	}
}

func TestTextLanguage(t *testing.T) {
	content := banner.TextsContent(map[string]string{"en": "Hello", "de": "Hallo"})
	for _, tt := range []struct{ lang, want string }{
		{"de", "Hallo"},
		{"fr", "Hello"},
		{"", "Hello"},
	} {
		r := render.New(render.Options{Language: tt.lang, DefaultLanguage: "en"})
		tree := r.Render(context.Background(), frame(800, 400), []banner.Node{{ID: "t", Type: "text", Content: content}})
		if got := tree.Find("t").Text.Value; got != tt.want {
			t.Errorf("language %q: got %q, want %q", tt.lang, got, tt.want)
		}
	}
}

func TestButtonAction(t *testing.T) {
	var c errors.Collector
	tree := newRenderer(&c).Render(context.Background(), frame(800, 400), []banner.Node{
		{ID: "ok", Type: "button", Action: "accept_all", Content: banner.StringContent("Accept")},
		{ID: "odd", Type: "button", Action: "launch_rockets", Content: banner.StringContent("?")},
	})
	if a := tree.Find("ok").Button.Action; a != banner.ActionAcceptAll {
		t.Errorf("ok action = %s", a)
	}
	if a := tree.Find("odd").Button.Action; a != banner.ActionNone {
		t.Errorf("odd action = %s, want none", a)
	}
	// 6 glyphs of 7px plus 16px padding each side, one line plus 8px each side.
	assertSize(t, tree.Find("ok"), 74, 29)
}

func TestFreePosition(t *testing.T) {
	var c errors.Collector
	tree := newRenderer(&c).Render(context.Background(), frame(800, 400), []banner.Node{
		{ID: "box", Type: "container", Style: sized("200px", "100px"), Children: []banner.Node{
			{
				ID:       "b",
				Type:     "button",
				ParentID: "box",
				Style:    sized("20px", "20px"),
				Position: map[banner.Device]banner.Position{
					banner.Desktop: {Top: banner.Percent(10), Left: banner.Px(20)},
				},
			},
		}},
	})
	if o := tree.Find("b").Bounds.Origin(); o.X != 20 || o.Y != 10 {
		t.Errorf("origin = %+v, want (20,10)", o)
	}
}

func TestMissingDeviceKeyIsEmptyStyle(t *testing.T) {
	var c errors.Collector
	r := render.New(render.Options{Device: banner.Mobile, Reporter: errors.Reporter{Handler: &c}})
	tree := r.Render(context.Background(), frame(375, 200), []banner.Node{
		{ID: "b", Type: "button", Style: sized("999px", "999px"), Content: banner.StringContent("Accept")},
	})
	assertSize(t, tree.Find("b"), 74, 29)
}

func TestUnmeasuredFrameIsStale(t *testing.T) {
	var c errors.Collector
	tree := newRenderer(&c).Render(context.Background(), profile.Frame{}, []banner.Node{
		{ID: "b", Type: "button", Style: sized("50%", "40px")},
	})
	if !tree.Stale {
		t.Error("expected stale tree")
	}
	b := tree.Find("b")
	if b.Resolved || b.Style.Width.String() != "50%" {
		t.Errorf("Resolved = %v, Width = %s; want untransformed", b.Resolved, b.Style.Width)
	}
}

func TestImageStates(t *testing.T) {
	var c errors.Collector
	r := newRenderer(&c)
	ctx := context.Background()
	nodes := []banner.Node{
		{ID: "empty", Type: "image"},
		{ID: "hero", Type: "image", Content: banner.StringContent("blob:abc123")},
	}

	tree := r.Render(ctx, frame(800, 400), nodes)
	empty := tree.Find("empty")
	if empty.Image.URL != imagesrc.PlaceholderURL || empty.Image.Loading() {
		t.Errorf("empty image = %+v", empty.Image)
	}
	assertSize(t, empty, 120, 80)

	r.Images().Wait()
	tree = r.Render(ctx, frame(800, 400), nodes)
	hero := tree.Find("hero").Image
	if hero.State != imagesrc.StateFailed || hero.Message != render.ImageErrorMessage {
		t.Errorf("hero image = %+v", hero)
	}
	if n := len(c.OfKind(errors.KindImageResolutionFailure)); n != 1 {
		t.Errorf("got %d resolution failures, want 1", n)
	}

	r.Render(ctx, frame(800, 400), nodes[:1])
	if st := r.Images().Status("hero"); st.State != imagesrc.StateIdle {
		t.Errorf("removed image state = %s, want idle", st.State)
	}
}

func TestRemovedImageLateResultIsDropped(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var changed []string
	images := imagesrc.NewResolver(imagesrc.Options{
		Loader: imagesrc.LoaderFunc(func(context.Context, string) (imagesrc.ImageInfo, error) {
			<-release
			return imagesrc.ImageInfo{Width: 10, Height: 10, Format: "png"}, nil
		}),
		OnChange: func(id string, _ imagesrc.Status) {
			mu.Lock()
			changed = append(changed, id)
			mu.Unlock()
		},
	})
	r := render.New(render.Options{
		Device:   banner.Desktop,
		Images:   images,
		Reporter: errors.Reporter{Handler: &errors.Collector{}},
	})
	ctx := context.Background()
	nodes := []banner.Node{
		{ID: "keep", Type: "image", Content: banner.StringContent("https://img.test/keep.png")},
		{ID: "drop", Type: "image", Content: banner.StringContent("https://img.test/drop.png")},
	}

	tree := r.Render(ctx, frame(800, 400), nodes)
	if !tree.Find("drop").Image.Loading() {
		t.Fatal("drop should be loading after the first pass")
	}
	r.Render(ctx, frame(800, 400), nodes[:1])
	close(release)
	images.Wait()

	if st := images.Status("drop"); st.State != imagesrc.StateIdle {
		t.Errorf("drop state = %s, want idle", st.State)
	}
	mu.Lock()
	got := changed
	mu.Unlock()
	if len(got) != 1 || got[0] != "keep" {
		t.Errorf("changes = %v, want only keep", got)
	}
	tree = r.Render(ctx, frame(800, 400), nodes[:1])
	if tree.Find("drop") != nil {
		t.Error("removed image should not render")
	}
	if st := tree.Find("keep").Image.State; st != imagesrc.StateResolved {
		t.Errorf("keep state = %s, want resolved", st)
	}
}

func TestLanguageSelectorProps(t *testing.T) {
	var got render.SelectorProps
	r := render.New(render.Options{
		Language:  "de",
		Languages: []string{"en", "de"},
		Selector: render.SelectorFunc(func(p render.SelectorProps) string {
			got = p
			return render.DefaultSelector{}.RenderSelector(p)
		}),
	})
	tree := r.Render(context.Background(), frame(800, 400), []banner.Node{{ID: "lang", Type: "languageSelector"}})

	if got.Current != "de" || len(got.Available) != 2 || got.Size.Width != 120 {
		t.Errorf("props = %+v", got)
	}
	markup := tree.Find("lang").Selector.Markup
	if !strings.Contains(markup, `<option value="de" selected>`) {
		t.Errorf("markup = %s", markup)
	}
}

type countingVisitor struct{ text, button, image, container, selector int }

func (v *countingVisitor) VisitText(*render.Text)                         { v.text++ }
func (v *countingVisitor) VisitButton(*render.Button)                     { v.button++ }
func (v *countingVisitor) VisitImage(*render.Image)                       { v.image++ }
func (v *countingVisitor) VisitContainer(*render.Container)               { v.container++ }
func (v *countingVisitor) VisitLanguageSelector(*render.LanguageSelector) { v.selector++ }

func TestDecode(t *testing.T) {
	var v countingVisitor
	for _, typ := range []string{"text", "Button", "image", "container", "language_selector"} {
		comp, err := render.Decode(&banner.Node{ID: typ, Type: typ})
		if err != nil {
			t.Fatalf("Decode(%q): %v", typ, err)
		}
		comp.Accept(&v)
	}
	if v != (countingVisitor{1, 1, 1, 1, 1}) {
		t.Errorf("visits = %+v", v)
	}

	_, err := render.Decode(&banner.Node{Type: "buton"})
	var ute *render.UnknownTypeError
	if !stderrors.As(err, &ute) || ute.Suggestion != "button" {
		t.Errorf("Decode(buton) err = %v", err)
	}
}
