package imagesrc

import (
	"testing"
	"time"

	"github.com/go-drift/bannerkit/pkg/banner"
)

var fixedNow = func() time.Time { return time.UnixMilli(1700000000000) }

func urls(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.URL
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCandidates(t *testing.T) {
	reg := NewBlobRegistry(4)
	stableURLs(reg)
	reg.Register("up1", "image/png", nil)

	chain := Chain{Registry: reg, BaseURL: "https://cdn.test", Now: fixedNow}

	tests := []struct {
		name       string
		src        Source
		want       []string
		strategies []Strategy
	}{
		{
			name: "empty",
			src:  Source{},
			want: []string{},
		},
		{
			name:       "data uri as is",
			src:        Source{Content: banner.StringContent("data:image/png;base64,AAAA")},
			want:       []string{"data:image/png;base64,AAAA"},
			strategies: []Strategy{StrategyInlineURL},
		},
		{
			name: "routed path with alternate",
			src:  Source{Content: banner.StringContent("/api/uploads/a.png")},
			want: []string{
				"https://cdn.test/api/uploads/a.png?t=1700000000000",
				"https://cdn.test/uploads/a.png?t=1700000000000",
			},
			strategies: []Strategy{StrategyRoutedPath, StrategyAlternateRoute},
		},
		{
			name: "alternate prefix swaps back",
			src:  Source{Content: banner.StringContent("uploads/a.png")},
			want: []string{
				"https://cdn.test/uploads/a.png?t=1700000000000",
				"https://cdn.test/api/uploads/a.png?t=1700000000000",
			},
		},
		{
			name:       "absolute url busted",
			src:        Source{Content: banner.StringContent("https://img.test/x.png?w=2")},
			want:       []string{"https://img.test/x.png?t=1700000000000&w=2"},
			strategies: []Strategy{StrategyAbsoluteURL},
		},
		{
			name:       "unclassifiable text",
			src:        Source{Content: banner.StringContent("just words")},
			want:       []string{},
			strategies: nil,
		},
		{
			name: "preview override then blob then content",
			src: Source{
				PreviewURL: "https://preview.test/p.png",
				BlobID:     "up1",
				Content:    banner.StringContent("data:image/gif;base64,R0lG"),
			},
			want: []string{
				"https://preview.test/p.png?t=1700000000000",
				BlobScheme + "1",
				"data:image/gif;base64,R0lG",
			},
			strategies: []Strategy{StrategyPreviewOverride, StrategyBlobReference, StrategyInlineURL},
		},
		{
			name: "texts default language first",
			src: Source{
				DefaultLanguage: "fr",
				Content: banner.TextsContent(map[string]string{
					"de": "https://img.test/de.png",
					"en": "https://img.test/en.png",
					"fr": "https://img.test/fr.png",
				}),
			},
			want: []string{
				"https://img.test/fr.png?t=1700000000000",
				"https://img.test/de.png?t=1700000000000",
				"https://img.test/en.png?t=1700000000000",
			},
			strategies: []Strategy{StrategyDescriptor, StrategyDescriptor, StrategyDescriptor},
		},
		{
			name:       "url descriptor",
			src:        Source{Content: banner.URLContent("https://img.test/u.png")},
			want:       []string{"https://img.test/u.png?t=1700000000000"},
			strategies: []Strategy{StrategyDescriptor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chain.Candidates(tt.src)
			if !equal(urls(got), tt.want) {
				t.Fatalf("Candidates() = %v, want %v", urls(got), tt.want)
			}
			for i, s := range tt.strategies {
				if got[i].Strategy != s {
					t.Errorf("candidate %d strategy = %s, want %s", i, got[i].Strategy, s)
				}
			}
		})
	}
}

func TestCandidatesBlobFromContent(t *testing.T) {
	reg := NewBlobRegistry(4)
	stableURLs(reg)
	reg.Register("abc", "image/png", nil)
	chain := Chain{Registry: reg, Now: fixedNow}

	got := chain.Candidates(Source{Content: banner.StringContent("blob:abc")})
	want := []string{BlobScheme + "1", "blob:abc"}
	if !equal(urls(got), want) {
		t.Fatalf("Candidates() = %v, want %v", urls(got), want)
	}
}

func TestSourceKeyChanges(t *testing.T) {
	a := Source{Content: banner.StringContent("/uploads/a.png")}
	b := Source{Content: banner.StringContent("/uploads/b.png")}
	if a.Key() == b.Key() {
		t.Error("different content should give different keys")
	}
	if a.Key() != (Source{Content: banner.StringContent("/uploads/a.png")}).Key() {
		t.Error("equal sources should share a key")
	}
}

func TestSourceNamesBlob(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		id   string
		want bool
	}{
		{"explicit id", Source{BlobID: "abc"}, "abc", true},
		{"content reference", Source{Content: banner.StringContent(" blob:abc ")}, "abc", true},
		{"other id", Source{BlobID: "abc"}, "xyz", false},
		{"minted url", Source{Content: banner.StringContent(BlobScheme + "abc")}, "abc", false},
		{"routed path", Source{Content: banner.StringContent("/uploads/abc.png")}, "abc", false},
		{"empty id", Source{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.src.NamesBlob(tt.id); got != tt.want {
				t.Errorf("NamesBlob(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
