package imagesrc

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultBlobCapacity is the number of blobs a registry keeps before it
// starts evicting the oldest.
const DefaultBlobCapacity = 32

// BlobScheme prefixes object URLs minted by a registry.
const BlobScheme = "blob:bannerkit/"

// Blob is a temporary upload held in memory until it is persisted
// elsewhere. URL is the object URL currently pointing at it.
type Blob struct {
	ID        string
	MediaType string
	Data      []byte
	URL       string
}

// BlobRegistry is a fixed-capacity ring buffer of blobs. Registering past
// capacity evicts the oldest blob and revokes its object URL.
type BlobRegistry struct {
	mu    sync.Mutex
	slots []*Blob
	next  int
	count int
	byID  map[string]int
	byURL map[string]int

	// newURL mints object URLs; tests replace it for stable output.
	newURL func() string
}

// NewBlobRegistry returns a registry holding at most capacity blobs.
// A capacity below one uses DefaultBlobCapacity.
func NewBlobRegistry(capacity int) *BlobRegistry {
	if capacity < 1 {
		capacity = DefaultBlobCapacity
	}
	return &BlobRegistry{
		slots:  make([]*Blob, capacity),
		byID:   make(map[string]int),
		byURL:  make(map[string]int),
		newURL: func() string { return BlobScheme + uuid.NewString() },
	}
}

// Cap returns the registry capacity.
func (r *BlobRegistry) Cap() int { return len(r.slots) }

// Len returns the number of blobs currently held.
func (r *BlobRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Register stores data under id. Re-registering an id replaces its data in
// place and revokes its object URL. It returns the id of the evicted blob,
// or "" if nothing was evicted.
func (r *BlobRegistry) Register(id, mediaType string, data []byte) (evicted string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.byID[id]; ok {
		b := r.slots[i]
		delete(r.byURL, b.URL)
		r.slots[i] = &Blob{ID: id, MediaType: mediaType, Data: data}
		return ""
	}

	if old := r.slots[r.next]; old != nil {
		delete(r.byID, old.ID)
		delete(r.byURL, old.URL)
		evicted = old.ID
		r.count--
	}
	r.slots[r.next] = &Blob{ID: id, MediaType: mediaType, Data: data}
	r.byID[id] = r.next
	r.next = (r.next + 1) % len(r.slots)
	r.count++
	return evicted
}

// Has reports whether id is registered.
func (r *BlobRegistry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id]
	return ok
}

// ObjectURL returns the object URL for id, minting one on first use. The URL
// stays valid until the blob is re-registered, evicted or reset, so every
// component referencing the same blob shares it.
func (r *BlobRegistry) ObjectURL(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return "", false
	}
	b := r.slots[i]
	if b.URL != "" {
		return b.URL, true
	}
	url := r.newURL()
	nb := *b
	nb.URL = url
	r.slots[i] = &nb
	r.byURL[url] = i
	return url, true
}

// Lookup returns the blob an object URL points at. Revoked and evicted URLs
// are not found.
func (r *BlobRegistry) Lookup(url string) (Blob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byURL[url]
	if !ok {
		return Blob{}, false
	}
	return *r.slots[i], true
}

// Reset drops every blob.
func (r *BlobRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.slots)
	clear(r.byID)
	clear(r.byURL)
	r.next, r.count = 0, 0
}
