package errors

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestBannerErrorString(t *testing.T) {
	err := &BannerError{
		Op:   "profile.Resolve",
		Kind: KindConfigurationMissing,
		Err:  &ParseError{Field: "layout.type", Value: ""},
	}
	got := err.Error()
	want := `profile.Resolve [configuration_missing]: cannot parse layout.type ""`
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestBannerErrorWithNode(t *testing.T) {
	err := &BannerError{
		Op:     "render.node",
		Kind:   KindUnknownComponentType,
		NodeID: "hero",
		Err:    &ParseError{Field: "type", Value: "widget"},
	}
	if got := err.Error(); !strings.Contains(got, "node=hero") {
		t.Errorf("error string %q should contain node=hero", got)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindConfigurationMissing, "configuration_missing"},
		{KindGeometryUnavailable, "geometry_unavailable"},
		{KindImageResolutionFailure, "image_resolution_failure"},
		{KindUnknownComponentType, "unknown_component_type"},
		{KindParsing, "parsing"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	tests := []struct {
		err  PanicError
		want string
	}{
		{PanicError{Value: "boom"}, "panic: boom"},
		{PanicError{Op: "render.node", Value: "boom"}, "panic in render.node: boom"},
		{PanicError{Op: "render.node", NodeID: "a", Value: "boom"}, "panic in render.node (node a): boom"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestReporterUsesOwnHandler(t *testing.T) {
	var own Collector
	var global Collector

	old := DefaultHandler
	SetHandler(&global)
	defer SetHandler(old)

	Reporter{Handler: &own}.Report(&BannerError{Op: "a", Kind: KindParsing})
	Report(&BannerError{Op: "b", Kind: KindParsing})

	if n := len(own.Errors()); n != 1 {
		t.Fatalf("own handler got %d errors, want 1", n)
	}
	if n := len(global.Errors()); n != 1 {
		t.Fatalf("global handler got %d errors, want 1", n)
	}
	if own.Errors()[0].Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestRecover(t *testing.T) {
	var c Collector
	old := DefaultHandler
	SetHandler(&c)
	defer SetHandler(old)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	panics := c.Panics()
	if len(panics) != 1 {
		t.Fatalf("expected 1 panic, got %d", len(panics))
	}
	if panics[0].Value != "intentional test panic" {
		t.Errorf("Value = %v", panics[0].Value)
	}
	if panics[0].Op != "test.recover" {
		t.Errorf("Op = %q, want %q", panics[0].Op, "test.recover")
	}
}

func TestRecoverNodeCallsCallback(t *testing.T) {
	var c Collector
	var got any
	func() {
		defer RecoverNode(Reporter{Handler: &c}, "render.node", "n1", func(r any) { got = r })
		panic("bad node")
	}()
	if got != "bad node" {
		t.Errorf("callback value = %v, want %q", got, "bad node")
	}
	if p := c.Panics(); len(p) != 1 || p[0].NodeID != "n1" {
		t.Errorf("unexpected panics: %+v", p)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Error("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	old := DefaultHandler
	defer SetHandler(old)

	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestLogHandlerVerbose(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Verbose: true, Out: &buf}
	h.HandleError(&BannerError{
		Op:         "imagesrc.resolve",
		Kind:       KindImageResolutionFailure,
		NodeID:     "logo",
		Err:        &ParseError{Field: "content", Value: "blob:x"},
		StackTrace: "frame",
		Timestamp:  time.Now(),
	})
	out := buf.String()
	for _, want := range []string{"[bannerkit error]", "image_resolution_failure", "node=logo", "Stack trace:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestCollectorOfKind(t *testing.T) {
	var c Collector
	c.HandleError(&BannerError{Kind: KindParsing})
	c.HandleError(&BannerError{Kind: KindGeometryUnavailable})
	c.HandleError(&BannerError{Kind: KindParsing})

	if n := len(c.OfKind(KindParsing)); n != 2 {
		t.Errorf("OfKind(parsing) = %d, want 2", n)
	}
	c.Reset()
	if n := len(c.Errors()); n != 0 {
		t.Errorf("after Reset got %d errors", n)
	}
}

func TestMultiHandler(t *testing.T) {
	var c Collector
	var buf bytes.Buffer
	h := MultiHandler{&c, &LogHandler{Out: &buf}}

	h.HandleError(&BannerError{Op: "render.node", Kind: KindUnknownComponentType, Err: &ParseError{Field: "type", Value: "x"}})
	h.HandlePanic(&PanicError{Op: "render.node", Value: "boom"})

	if len(c.Errors()) != 1 || len(c.Panics()) != 1 {
		t.Errorf("collector got %d errors, %d panics", len(c.Errors()), len(c.Panics()))
	}
	if out := buf.String(); !strings.Contains(out, "[bannerkit error] render.node") || !strings.Contains(out, "[bannerkit panic]") {
		t.Errorf("log output = %q", out)
	}
}
