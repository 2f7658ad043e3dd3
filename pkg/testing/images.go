package testing

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/go-drift/bannerkit/pkg/imagesrc"
)

// ErrNotServed is returned by MapLoader for URLs it has no image for.
var ErrNotServed = stderrors.New("bannertest: image not served")

// MapLoader is an in-memory imagesrc.Loader for routed and absolute URLs.
// Query strings are ignored when matching, so cache-busting parameters never
// affect a lookup. All methods are safe for concurrent use.
type MapLoader struct {
	mu     sync.Mutex
	images map[string]imagesrc.ImageInfo
	calls  []string
}

// Serve makes target load successfully. Target is either a full URL or a
// path; a path matches on any host.
func (m *MapLoader) Serve(target string, info imagesrc.ImageInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.images == nil {
		m.images = make(map[string]imagesrc.ImageInfo)
	}
	m.images[target] = info
}

// Load implements imagesrc.Loader.
func (m *MapLoader) Load(ctx context.Context, raw string) (imagesrc.ImageInfo, error) {
	if err := ctx.Err(); err != nil {
		return imagesrc.ImageInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, raw)

	u, err := url.Parse(raw)
	if err != nil {
		return imagesrc.ImageInfo{}, fmt.Errorf("bannertest: %w", err)
	}
	if info, ok := m.images[u.Path]; ok {
		return info, nil
	}
	u.RawQuery = ""
	if info, ok := m.images[u.String()]; ok {
		return info, nil
	}
	return imagesrc.ImageInfo{}, fmt.Errorf("%w: %s", ErrNotServed, raw)
}

// Calls returns every URL passed to Load, in order.
func (m *MapLoader) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
