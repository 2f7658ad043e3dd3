package imagesrc

import (
	"bytes"
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	// Decoders probed by image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageInfo describes a successfully loaded image.
type ImageInfo struct {
	Width  int
	Height int
	Format string
}

// Loader checks that a candidate URL yields a displayable image.
type Loader interface {
	Load(ctx context.Context, url string) (ImageInfo, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, url string) (ImageInfo, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, url string) (ImageInfo, error) {
	return f(ctx, url)
}

var (
	// ErrUnsupportedScheme is returned for URLs no loader handles.
	ErrUnsupportedScheme = stderrors.New("imagesrc: unsupported url scheme")
	// ErrBlobNotFound is returned for object URLs that were never minted,
	// were revoked, or were evicted.
	ErrBlobNotFound = stderrors.New("imagesrc: blob not found")
	// ErrMalformedDataURI is returned for data URIs that cannot be decoded.
	ErrMalformedDataURI = stderrors.New("imagesrc: malformed data uri")
)

// decode probes data for image dimensions. SVG is accepted without
// rasterizing.
func decode(mediaType string, data []byte) (ImageInfo, error) {
	if strings.HasPrefix(mediaType, "image/svg") || bytes.HasPrefix(bytes.TrimSpace(data), []byte("<svg")) {
		return ImageInfo{Format: "svg"}, nil
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("imagesrc: decode %s: %w", mediaType, err)
	}
	return ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// DataURILoader decodes data: URIs in memory.
type DataURILoader struct{}

// Load decodes a data URI.
func (DataURILoader) Load(_ context.Context, raw string) (ImageInfo, error) {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return ImageInfo{}, ErrUnsupportedScheme
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return ImageInfo{}, ErrMalformedDataURI
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	var data []byte
	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return ImageInfo{}, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
		}
		data = b
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return ImageInfo{}, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
		}
		data = []byte(s)
	}
	return decode(mediaType, data)
}

// BlobLoader resolves object URLs minted by a registry.
type BlobLoader struct {
	Registry *BlobRegistry
}

// Load looks up and decodes the blob behind an object URL.
func (l BlobLoader) Load(_ context.Context, raw string) (ImageInfo, error) {
	if l.Registry == nil {
		return ImageInfo{}, ErrBlobNotFound
	}
	b, ok := l.Registry.Lookup(raw)
	if !ok {
		return ImageInfo{}, fmt.Errorf("%w: %s", ErrBlobNotFound, raw)
	}
	return decode(b.MediaType, b.Data)
}

// DefaultMaxBytes bounds how much of a remote image is read while probing.
const DefaultMaxBytes = 8 << 20

// HTTPLoader fetches http(s) URLs and probes the response body.
type HTTPLoader struct {
	Client *http.Client
	// MaxBytes bounds the bytes read per image; 0 uses DefaultMaxBytes.
	MaxBytes int64
}

// NewHTTPLoader returns a loader with its own client and timeout.
func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	return &HTTPLoader{Client: &http.Client{Timeout: timeout}}
}

// Load fetches raw and decodes the image header.
func (l *HTTPLoader) Load(ctx context.Context, raw string) (ImageInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("imagesrc: build request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("imagesrc: fetch %s: %w", raw, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ImageInfo{}, fmt.Errorf("imagesrc: fetch %s: status %d", raw, resp.StatusCode)
	}
	limit := l.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("imagesrc: read %s: %w", raw, err)
	}
	return decode(resp.Header.Get("Content-Type"), data)
}

// SchemeLoader dispatches on the URL scheme.
type SchemeLoader struct {
	Data Loader
	Blob Loader
	HTTP Loader
}

// Load routes raw to the loader for its scheme.
func (l SchemeLoader) Load(ctx context.Context, raw string) (ImageInfo, error) {
	var next Loader
	switch {
	case strings.HasPrefix(raw, "data:"):
		next = l.Data
	case strings.HasPrefix(raw, "blob:"):
		next = l.Blob
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		next = l.HTTP
	}
	if next == nil {
		return ImageInfo{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, raw)
	}
	return next.Load(ctx, raw)
}

// NewLoader returns the standard scheme loader for a registry.
func NewLoader(registry *BlobRegistry, timeout time.Duration) SchemeLoader {
	return SchemeLoader{
		Data: DataURILoader{},
		Blob: BlobLoader{Registry: registry},
		HTTP: NewHTTPLoader(timeout),
	}
}
