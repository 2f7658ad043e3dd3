package imagesrc

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-drift/bannerkit/pkg/banner"
)

// Default routing prefixes for uploaded assets. A relative path under one is
// retried under the other if it fails to load.
const (
	PrimaryPrefix   = "/api/uploads/"
	AlternatePrefix = "/uploads/"
)

// PlaceholderURL is the built-in image used when a component has no image
// content at all.
const PlaceholderURL = "data:image/svg+xml;base64," +
	"PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciIHdpZHRoPSIxMjAiIGhlaWdodD0iODAiIHZpZXdCb3g9IjAgMCAxMjAgODAiPjxyZWN0IHdpZHRoPSIxMjAiIGhlaWdodD0iODAiIGZpbGw9IiNlNWU3ZWIiLz48cGF0aCBkPSJNMzAgNjBsMjAtMjQgMTQgMTYgMTAtMTIgMTYgMjB6IiBmaWxsPSIjOWNhM2FmIi8+PGNpcmNsZSBjeD0iODQiIGN5PSIyNiIgcj0iNyIgZmlsbD0iIzljYTNhZiIvPjwvc3ZnPg=="

// Strategy identifies which rule produced a candidate URL.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyPreviewOverride
	StrategyBlobReference
	StrategyInlineURL
	StrategyRoutedPath
	StrategyAlternateRoute
	StrategyAbsoluteURL
	StrategyDescriptor
	StrategyPlaceholder
)

// String returns a human-readable representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyPreviewOverride:
		return "preview_override"
	case StrategyBlobReference:
		return "blob_reference"
	case StrategyInlineURL:
		return "inline_url"
	case StrategyRoutedPath:
		return "routed_path"
	case StrategyAlternateRoute:
		return "alternate_route"
	case StrategyAbsoluteURL:
		return "absolute_url"
	case StrategyDescriptor:
		return "descriptor"
	case StrategyPlaceholder:
		return "placeholder"
	default:
		return "Strategy(" + strconv.Itoa(int(s)) + ")"
	}
}

// Source is everything an image component offers for resolution.
type Source struct {
	PreviewURL      string
	BlobID          string
	Content         banner.Content
	DefaultLanguage string
}

// Key identifies the source for change detection between passes.
func (s Source) Key() string {
	var sb strings.Builder
	sb.WriteString(s.PreviewURL)
	sb.WriteByte(0)
	sb.WriteString(s.BlobID)
	sb.WriteByte(0)
	sb.WriteString(s.Content.Text)
	sb.WriteByte(0)
	sb.WriteString(s.Content.URL)
	for _, lang := range s.Content.Languages() {
		sb.WriteByte(0)
		sb.WriteString(lang)
		sb.WriteByte('=')
		sb.WriteString(s.Content.Texts[lang])
	}
	return sb.String()
}

// blobIDs returns the registry ids src may refer to, explicit id first.
func (s Source) blobIDs() []string {
	var ids []string
	if s.BlobID != "" {
		ids = append(ids, s.BlobID)
	}
	if text := strings.TrimSpace(s.Content.Text); strings.HasPrefix(text, "blob:") && !strings.HasPrefix(text, BlobScheme) {
		ids = append(ids, strings.TrimPrefix(text, "blob:"))
	}
	return ids
}

// NamesBlob reports whether src refers to the registered blob id.
func (s Source) NamesBlob(id string) bool {
	return id != "" && slices.Contains(s.blobIDs(), id)
}

// Candidate is one URL to try, in order.
type Candidate struct {
	URL      string
	Strategy Strategy
}

// Chain builds the ordered candidate list for a source.
type Chain struct {
	Registry *BlobRegistry
	// BaseURL is prepended to routed relative paths when set.
	BaseURL         string
	PrimaryPrefix   string
	AlternatePrefix string
	// Now stamps cache-busting parameters.
	Now func() time.Time
}

func (c *Chain) prefixes() (string, string) {
	p, a := c.PrimaryPrefix, c.AlternatePrefix
	if p == "" {
		p = PrimaryPrefix
	}
	if a == "" {
		a = AlternatePrefix
	}
	return p, a
}

func (c *Chain) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Candidates returns the URLs to try for src, first match first. An empty
// result means the source has no usable content and the placeholder applies.
func (c *Chain) Candidates(src Source) []Candidate {
	var out []Candidate
	add := func(cands ...Candidate) {
		for _, cand := range cands {
			if cand.URL == "" || slices.ContainsFunc(out, func(o Candidate) bool { return o.URL == cand.URL }) {
				continue
			}
			out = append(out, cand)
		}
	}

	if u := strings.TrimSpace(src.PreviewURL); u != "" {
		if cands := c.classify(u); len(cands) > 0 {
			for i := range cands {
				cands[i].Strategy = StrategyPreviewOverride
			}
			add(cands...)
		} else {
			add(Candidate{URL: u, Strategy: StrategyPreviewOverride})
		}
	}

	if c.Registry != nil {
		for _, id := range src.blobIDs() {
			if u, ok := c.Registry.ObjectURL(id); ok {
				add(Candidate{URL: u, Strategy: StrategyBlobReference})
				break
			}
		}
	}

	add(c.classify(strings.TrimSpace(src.Content.Text))...)

	if u := strings.TrimSpace(src.Content.URL); u != "" {
		add(descriptor(c.classify(u))...)
	}
	if len(src.Content.Texts) > 0 {
		langs := src.Content.Languages()
		if src.DefaultLanguage != "" {
			if i := slices.Index(langs, src.DefaultLanguage); i > 0 {
				langs = append([]string{src.DefaultLanguage}, slices.Delete(langs, i, i+1)...)
			}
		}
		for _, lang := range langs {
			add(descriptor(c.classify(strings.TrimSpace(src.Content.Texts[lang])))...)
		}
	}
	return out
}

func descriptor(cands []Candidate) []Candidate {
	for i := range cands {
		cands[i].Strategy = StrategyDescriptor
	}
	return cands
}

// classify applies the data/blob, routed path and absolute URL rules to s.
func (c *Chain) classify(s string) []Candidate {
	switch {
	case s == "":
		return nil
	case strings.HasPrefix(s, "data:image/") || strings.HasPrefix(s, "blob:"):
		return []Candidate{{URL: s, Strategy: StrategyInlineURL}}
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"):
		return []Candidate{{URL: c.bust(s), Strategy: StrategyAbsoluteURL}}
	}

	primary, alternate := c.prefixes()
	path := s
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	var swapped string
	switch {
	case strings.HasPrefix(path, primary):
		swapped = alternate + strings.TrimPrefix(path, primary)
	case strings.HasPrefix(path, alternate):
		swapped = primary + strings.TrimPrefix(path, alternate)
	default:
		return nil
	}
	return []Candidate{
		{URL: c.bust(c.BaseURL + path), Strategy: StrategyRoutedPath},
		{URL: c.bust(c.BaseURL + swapped), Strategy: StrategyAlternateRoute},
	}
}

// bust appends a timestamp query parameter so previews never show a stale
// cached image.
func (c *Chain) bust(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}
