// Package render draws maps decoded by the tmx package, either onto an
// ebiten image for games or onto a plain image.RGBA for headless tools.
package render

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/automoto/tmx"
)

// Renderer draws a decoded map onto an ebiten screen. It expects a map
// loaded with Parameters.YDown set, so that grid row 0 is the top of the
// screen.
type Renderer struct {
	m      *tmx.Map
	filter ebiten.Filter
}

// New returns a renderer for m. params selects the sampling filter; nil
// means nearest-neighbour.
func New(m *tmx.Map, params *tmx.Parameters) *Renderer {
	filter := ebiten.FilterNearest
	if params != nil && params.MagFilter == tmx.FilterLinear {
		filter = ebiten.FilterLinear
	}
	return &Renderer{m: m, filter: filter}
}

// Draw renders every visible tile layer in document order. camX and camY are
// the camera position in map pixels; the camera is centered on the screen,
// scaled by zoom.
func (r *Renderer) Draw(screen *ebiten.Image, camX, camY, zoom float64) {
	if zoom == 0 {
		zoom = 1.0
	}
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	for _, layer := range r.m.Layers {
		if layer.Kind != tmx.TileLayerKind || !layer.Visible {
			continue
		}
		grid := layer.Tiles
		for y := 0; y < grid.Height; y++ {
			for x := 0; x < grid.Width; x++ {
				cell := grid.Cell(x, y)
				if cell == nil {
					continue
				}
				src, err := regionImage(cell.Tile.Region)
				if err != nil {
					continue
				}

				op := &ebiten.DrawImageOptions{Filter: r.filter}
				applyCellTransform(&op.GeoM, cell, grid, x, y)
				// Camera transform: translate to camera-relative position,
				// scale by zoom, center on screen.
				op.GeoM.Translate(-camX, -camY)
				op.GeoM.Scale(zoom, zoom)
				op.GeoM.Translate(float64(w)/2, float64(h)/2)
				op.ColorScale.ScaleAlpha(float32(layer.Opacity))
				screen.DrawImage(src, op)
			}
		}
	}
}

// applyCellTransform composes the cell's flip and quarter-turn rotation
// about the tile center, then anchors the tile to the bottom edge of its
// grid cell (oversized tiles grow upward, as Tiled renders them).
func applyCellTransform(g *ebiten.GeoM, cell *tmx.Cell, grid *tmx.TileLayer, x, y int) {
	region := cell.Tile.Region
	tw, th := float64(region.Width()), float64(region.Height())

	g.Translate(-tw/2, -th/2)
	sx, sy := 1.0, 1.0
	if cell.FlipH {
		sx = -1
	}
	if cell.FlipV != region.FlipV {
		sy = -1
	}
	g.Scale(sx, sy)
	if cell.Rotation != tmx.Rotate0 {
		g.Rotate(-float64(cell.Rotation) * math.Pi / 180)
	}
	g.Translate(
		float64(x*grid.TileWidth)+tw/2,
		float64((y+1)*grid.TileHeight)-th/2,
	)
}

// regionImage carves the ebiten sub-image a region refers to. It fails when
// the map was loaded through a resolver that does not produce ebiten images.
func regionImage(region *tmx.TextureRegion) (*ebiten.Image, error) {
	src, ok := region.Image.(*ebiten.Image)
	if !ok {
		return nil, fmt.Errorf("render: region image is %T, not *ebiten.Image", region.Image)
	}
	return src.SubImage(region.Rect).(*ebiten.Image), nil
}
