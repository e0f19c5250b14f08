package render

import (
	"bytes"
	"fmt"
	"io/fs"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/automoto/tmx"
)

// ImageLoader is a tmx.ImageResolver producing ebiten images, cached by
// path so tilesets sharing a source image share one texture.
type ImageLoader struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[string]*tmx.TextureRegion
}

// NewImageLoader returns a loader reading image files from fsys.
func NewImageLoader(fsys fs.FS) *ImageLoader {
	return &ImageLoader{
		fsys:  fsys,
		cache: make(map[string]*tmx.TextureRegion),
	}
}

// ResolveImage implements tmx.ImageResolver.
func (l *ImageLoader) ResolveImage(path string, _ tmx.ImageOptions) (*tmx.TextureRegion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.cache[path]; ok {
		return r, nil
	}

	raw, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read image file %s: %w", path, err)
	}
	img, _, err := ebitenutil.NewImageFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("create image from bytes for %s: %w", path, err)
	}

	r := tmx.NewTextureRegion(img)
	l.cache[path] = r
	return r, nil
}
