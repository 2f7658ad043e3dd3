package testing

import (
	"testing"

	"github.com/go-drift/bannerkit/pkg/graphics"
)

func TestHitTest(t *testing.T) {
	tree := fixtureTree()
	tests := []struct {
		pos  graphics.Offset
		want string
	}{
		{graphics.Offset{X: 110, Y: 55}, "title"},
		{graphics.Offset{X: 240, Y: 60}, "ok"},
		{graphics.Offset{X: 390, Y: 140}, "box"},
		{graphics.Offset{X: 10, Y: 10}, ""},
	}
	for _, tt := range tests {
		var got string
		if n := HitTest(tree, tt.pos); n != nil {
			got = n.ID
		}
		if got != tt.want {
			t.Errorf("HitTest(%v) = %q, want %q", tt.pos, got, tt.want)
		}
	}
}

func TestAbsoluteBounds(t *testing.T) {
	r, ok := AbsoluteBounds(fixtureTree(), "ok")
	if !ok {
		t.Fatal("ok not found")
	}
	if want := graphics.RectFromLTWH(230, 50, 74, 29); r != want {
		t.Errorf("bounds = %+v, want %+v", r, want)
	}
	if _, ok := AbsoluteBounds(fixtureTree(), "missing"); ok {
		t.Error("missing id should not be found")
	}
}
