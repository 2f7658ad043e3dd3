package profile

import (
	"testing"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/errors"
	"github.com/go-drift/bannerkit/pkg/graphics"
)

func TestResolveDefaults(t *testing.T) {
	var c errors.Collector
	r := Resolver{Reporter: errors.Reporter{Handler: &c}}
	f := r.Resolve(banner.LayoutProfile{}, banner.Desktop, Inline(800, 400))

	if got := f.Declaration("background"); got != "#ffffff" {
		t.Errorf("background = %q", got)
	}
	if f.Declaration("width") != "100%" || f.Declaration("height") != "auto" || f.Declaration("min-height") != "100px" {
		t.Errorf("declarations = %+v", f.Declarations)
	}
	if f.Declaration("position") != "" {
		t.Errorf("base box should not be positioned, got %q", f.Declaration("position"))
	}
	if f.Reference != graphics.Measured(800, 100) {
		t.Errorf("reference = %+v, want 800x100", f.Reference)
	}
	if n := len(c.OfKind(errors.KindConfigurationMissing)); n != 5 {
		t.Errorf("configuration_missing reports = %d, want 5", n)
	}
}

func TestResolveBannerFullScreenUsesBreakpointWidth(t *testing.T) {
	p := banner.LayoutProfile{Type: banner.LayoutBanner, Position: "top", Background: "#000", Width: banner.Percent(50), MinHeight: banner.Px(120)}
	for _, d := range banner.Devices {
		f := Resolver{Reporter: errors.Reporter{Handler: &errors.Collector{}}}.Resolve(p, d, FullScreen())
		vp := Viewport(d)
		if f.Reference.Size.Width != vp.Width {
			t.Errorf("%s: width = %v, want %v", d, f.Reference.Size.Width, vp.Width)
		}
		if f.Bounds.Top != 0 || f.Declaration("top") != "0" {
			t.Errorf("%s: top banner not anchored at top: %+v", d, f.Bounds)
		}
	}
}

func TestResolveBannerInlineIsPercentAware(t *testing.T) {
	p := banner.LayoutProfile{Type: banner.LayoutBanner, Position: "bottom", Background: "#000", Width: banner.Percent(50), Height: banner.Px(150), MinHeight: banner.Px(100)}
	f := Resolver{Reporter: errors.Reporter{Handler: &errors.Collector{}}}.Resolve(p, banner.Desktop, Inline(1000, 600))
	if f.Declaration("width") != "50%" {
		t.Errorf("width declaration = %q, want 50%%", f.Declaration("width"))
	}
	if f.Bounds != graphics.RectFromLTWH(0, 450, 500, 150) {
		t.Errorf("bounds = %+v", f.Bounds)
	}
}

func TestResolveBannerCentered(t *testing.T) {
	p := banner.LayoutProfile{Type: banner.LayoutBanner, Position: "center", Background: "#000", Width: banner.Percent(100), Height: banner.Px(200), MinHeight: banner.Px(100)}
	f := Resolver{Reporter: errors.Reporter{Handler: &errors.Collector{}}}.Resolve(p, banner.Mobile, FullScreen())
	if f.Bounds.Top != 234 || f.Declaration("transform") != "translateY(-50%)" {
		t.Errorf("bounds = %+v, transform = %q", f.Bounds, f.Declaration("transform"))
	}
}

func TestResolveFloatingCapsWidth(t *testing.T) {
	p := banner.LayoutProfile{Type: banner.LayoutFloating, Position: "bottom-left", Background: "#fff", Width: banner.Percent(100), Height: banner.Px(180), MinHeight: banner.Px(100)}
	tests := []struct {
		device banner.Device
		width  float64
	}{
		{banner.Mobile, 319},
		{banner.Tablet, 461},
		{banner.Desktop, 512},
	}
	for _, tt := range tests {
		f := Resolver{Reporter: errors.Reporter{Handler: &errors.Collector{}}}.Resolve(p, tt.device, FullScreen())
		if f.Reference.Size.Width != tt.width {
			t.Errorf("%s: width = %v, want %v", tt.device, f.Reference.Size.Width, tt.width)
		}
		vp := Viewport(tt.device)
		want := graphics.RectFromLTWH(20, vp.Height-180-20, tt.width, 180)
		if f.Bounds != want {
			t.Errorf("%s: bounds = %+v, want %+v", tt.device, f.Bounds, want)
		}
		if f.Declaration("bottom") != "20px" || f.Declaration("left") != "20px" {
			t.Errorf("%s: declarations = %+v", tt.device, f.Declarations)
		}
	}
}

func TestResolveFloatingUnknownCorner(t *testing.T) {
	p := banner.LayoutProfile{Type: banner.LayoutFloating, Position: "middle", Background: "#fff", Width: banner.Px(300), Height: banner.Px(100), MinHeight: banner.Px(100)}
	f := Resolver{Reporter: errors.Reporter{Handler: &errors.Collector{}}}.Resolve(p, banner.Desktop, FullScreen())
	if f.Position != "bottom-right" || f.Bounds.Left != 1280-300-20 {
		t.Errorf("position = %q, bounds = %+v", f.Position, f.Bounds)
	}
}

func TestResolveModal(t *testing.T) {
	p := banner.LayoutProfile{Type: banner.LayoutModal, Background: "#fff", Width: banner.Percent(100), Height: banner.Px(2000), MinHeight: banner.Px(100)}
	f := Resolver{Reporter: errors.Reporter{Handler: &errors.Collector{}}}.Resolve(p, banner.Desktop, FullScreen())
	if f.Reference != graphics.Measured(600, 640) {
		t.Errorf("reference = %+v, want 600x640", f.Reference)
	}
	if f.Bounds.Left != 340 || f.Bounds.Top != 80 {
		t.Errorf("bounds = %+v", f.Bounds)
	}
	if f.Declaration("overflow") != "auto" || f.Declaration("max-width") != "600px" {
		t.Errorf("declarations = %+v", f.Declarations)
	}
}

func TestResolveInlineUnmeasured(t *testing.T) {
	var c errors.Collector
	f := Resolver{Reporter: errors.Reporter{Handler: &c}}.Resolve(banner.LayoutProfile{Type: banner.LayoutBanner, Background: "#fff"}, banner.Desktop, Host{Kind: HostInline})
	if f.Reference.Measured {
		t.Error("expected unmeasured reference")
	}
	if len(c.OfKind(errors.KindGeometryUnavailable)) != 1 {
		t.Error("expected a geometry_unavailable report")
	}
	if len(f.Declarations) == 0 {
		t.Error("declarations should still be produced")
	}
}
