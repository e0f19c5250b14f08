package tmx

import (
	"fmt"
	"image"
	"io/fs"
	"sync"

	// The direct resolver decodes whatever the host registered; tileset
	// images are almost always PNG, occasionally JPEG.
	_ "image/jpeg"
	_ "image/png"
)

// Image is the pixel-region handle tiles are carved from. The underlying
// pixel storage is owned by the image resolver, not by this package;
// *ebiten.Image and every stdlib image type satisfy it.
type Image interface {
	Bounds() image.Rectangle
}

// TextureRegion is a rectangular window into a source image. FlipV marks a
// vertical mirror baked in at tileset slice time for y-up loads; renderers
// compose it into their draw transform.
type TextureRegion struct {
	Image Image
	Rect  image.Rectangle
	FlipV bool
}

// NewTextureRegion returns a region spanning the whole image.
func NewTextureRegion(img Image) *TextureRegion {
	return &TextureRegion{Image: img, Rect: img.Bounds()}
}

// Width returns the region width in pixels.
func (r *TextureRegion) Width() int { return r.Rect.Dx() }

// Height returns the region height in pixels.
func (r *TextureRegion) Height() int { return r.Rect.Dy() }

// Sub carves a sub-region; x and y are relative to this region's corner.
func (r *TextureRegion) Sub(x, y, w, h int) *TextureRegion {
	min := r.Rect.Min
	return &TextureRegion{
		Image: r.Image,
		Rect:  image.Rect(min.X+x, min.Y+y, min.X+x+w, min.Y+y+h),
		FlipV: r.FlipV,
	}
}

// Filter selects how resolved images are sampled when scaled.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

// ImageOptions is passed through to the image resolver on every resolve.
// The filter and mip-map fields come from Parameters untouched; the decode
// core itself never interprets them. DeclaredSize carries the width/height
// the document declares for the image, so resolvers that never touch pixels
// can still size the region.
type ImageOptions struct {
	GenerateMipMaps bool
	MinFilter       Filter
	MagFilter       Filter
	DeclaredSize    image.Point
}

// ImageResolver turns a tileset image path into a pixel-region handle. It is
// the only collaborator that owns pixel storage; regions handed out stay
// valid for the lifetime of the loaded map.
type ImageResolver interface {
	ResolveImage(path string, opts ImageOptions) (*TextureRegion, error)
}

// DirectResolver reads and decodes images from a filesystem as they are
// requested, caching by path. It is the synchronous default used by
// Loader.Load.
type DirectResolver struct {
	FS fs.FS

	mu    sync.Mutex
	cache map[string]*TextureRegion
}

// NewDirectResolver returns a resolver reading from fsys.
func NewDirectResolver(fsys fs.FS) *DirectResolver {
	return &DirectResolver{FS: fsys}
}

// ResolveImage implements ImageResolver.
func (d *DirectResolver) ResolveImage(path string, _ ImageOptions) (*TextureRegion, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.cache[path]; ok {
		return r, nil
	}
	f, err := d.FS.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	r := NewTextureRegion(img)
	if d.cache == nil {
		d.cache = make(map[string]*TextureRegion)
	}
	d.cache[path] = r
	return r, nil
}

// RegistryResolver resolves images that were registered ahead of time,
// typically after an asynchronous loading pass staged the paths returned by
// Loader.Dependencies. Resolving an unregistered path is an error.
type RegistryResolver struct {
	mu      sync.Mutex
	regions map[string]*TextureRegion
}

// NewRegistryResolver returns an empty registry.
func NewRegistryResolver() *RegistryResolver {
	return &RegistryResolver{regions: make(map[string]*TextureRegion)}
}

// Register associates an already resolved image with a path.
func (r *RegistryResolver) Register(path string, img Image) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions[path] = NewTextureRegion(img)
}

// ResolveImage implements ImageResolver.
func (r *RegistryResolver) ResolveImage(path string, _ ImageOptions) (*TextureRegion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg, ok := r.regions[path]; ok {
		return reg, nil
	}
	return nil, fmt.Errorf("image %s not registered", path)
}

// nullImage is a pixel-less image with declared bounds.
type nullImage struct {
	w, h int
}

func (n nullImage) Bounds() image.Rectangle { return image.Rect(0, 0, n.w, n.h) }

// DataResolver resolves every image to a pixel-less region of the size the
// document declares. It suits data-only loads (collision extraction, map
// inspection) where no rendering will ever happen.
type DataResolver struct{}

// ResolveImage implements ImageResolver.
func (DataResolver) ResolveImage(path string, opts ImageOptions) (*TextureRegion, error) {
	if opts.DeclaredSize.X <= 0 || opts.DeclaredSize.Y <= 0 {
		return nil, fmt.Errorf("image %s: document declares no size", path)
	}
	return NewTextureRegion(nullImage{opts.DeclaredSize.X, opts.DeclaredSize.Y}), nil
}
