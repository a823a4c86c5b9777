// Package preview turns a selected image file into a revocable, locally
// rendered preview handle.
package preview

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// RefScheme prefixes every handle reference
const RefScheme = "preview://"

// defaultCacheSize is the number of rendered sizes kept per handle
const defaultCacheSize = 8

// ErrReleased is returned when a released handle is used
var ErrReleased = errors.New("preview handle released")

// Manager creates handles and tracks the ones not yet released
type Manager struct {
	mu        sync.Mutex
	live      map[string]*Handle
	cacheSize int
}

// NewManager creates a handle manager
func NewManager() *Manager {
	return &Manager{
		live:      make(map[string]*Handle),
		cacheSize: defaultCacheSize,
	}
}

// Acquire decodes the image at path and returns a new handle for it
func (m *Manager) Acquire(path string) (*Handle, error) {
	// #nosec G304 - the user picked this file
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	cache, err := lru.New[renderKey, string](m.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create render cache: %w", err)
	}

	h := &Handle{
		ref:    RefScheme + uuid.NewString(),
		path:   path,
		size:   info.Size(),
		format: format,
		bounds: img.Bounds(),
		img:    img,
		cache:  cache,
		owner:  m,
	}

	m.mu.Lock()
	m.live[h.ref] = h
	m.mu.Unlock()

	return h, nil
}

// Live returns the number of handles not yet released
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// ReleaseAll releases every live handle
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	handles := make([]*Handle, 0, len(m.live))
	for _, h := range m.live {
		handles = append(handles, h)
	}
	m.mu.Unlock()

	for _, h := range handles {
		h.Release()
	}
}

func (m *Manager) forget(ref string) {
	m.mu.Lock()
	delete(m.live, ref)
	m.mu.Unlock()
}

type renderKey struct {
	width, height int
}

// Handle is a decoded image plus cached terminal renders
type Handle struct {
	ref    string
	path   string
	size   int64
	format string
	bounds image.Rectangle

	mu       sync.Mutex
	img      image.Image
	cache    *lru.Cache[renderKey, string]
	released bool
	owner    *Manager
}

// Ref returns the handle's unique reference
func (h *Handle) Ref() string { return h.ref }

// Path returns the source file path
func (h *Handle) Path() string { return h.path }

// Name returns the source file name
func (h *Handle) Name() string { return filepath.Base(h.path) }

// Size returns the source file size in bytes
func (h *Handle) Size() int64 { return h.size }

// Format returns the decoder name, e.g. "png"
func (h *Handle) Format() string { return h.format }

// Bounds returns the decoded image bounds
func (h *Handle) Bounds() image.Rectangle { return h.bounds }

// Released reports whether Release was called
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Release frees the decoded image and invalidates the handle. It is safe to
// call more than once.
func (h *Handle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	h.img = nil
	h.cache.Purge()
	h.mu.Unlock()

	if h.owner != nil {
		h.owner.forget(h.ref)
	}
}

// Render draws the image into at most width columns and height rows using
// half-block cells, two vertical pixels per cell.
func (h *Handle) Render(width, height int) (string, error) {
	if width < 1 || height < 1 {
		return "", fmt.Errorf("render area %dx%d too small", width, height)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return "", ErrReleased
	}

	key := renderKey{width: width, height: height}
	if out, ok := h.cache.Get(key); ok {
		return out, nil
	}

	out := renderHalfBlocks(h.img, width, height)
	h.cache.Add(key, out)
	return out, nil
}

func renderHalfBlocks(img image.Image, width, height int) string {
	// #nosec G115 - width and height are positive
	thumb := resize.Thumbnail(uint(width), uint(height*2), img, resize.Bilinear)
	b := thumb.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := hexColor(thumb.At(x, y))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(top))
			if y+1 < b.Max.Y {
				style = style.Background(lipgloss.Color(hexColor(thumb.At(x, y+1))))
			}
			sb.WriteString(style.Render("▀"))
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexColor(c interface{ RGBA() (r, g, b, a uint32) }) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
