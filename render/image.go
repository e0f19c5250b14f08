package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/automoto/tmx"
)

// ToImage composites every visible tile layer into a top-down image.RGBA,
// for thumbnails and headless tooling. The map must have been loaded through
// a resolver whose images carry pixels (for example tmx.DirectResolver);
// params must be the same parameters the map was loaded with, so the row
// order and baked mirrors are undone consistently.
func ToImage(m *tmx.Map, params *tmx.Parameters) (*image.RGBA, error) {
	if params == nil {
		params = &tmx.Parameters{}
	}
	scaler := scalerFor(params.MagFilter)

	dst := image.NewRGBA(image.Rect(0, 0, m.PixelWidth(), m.PixelHeight()))
	if bg, ok := parseHexColor(m.BackgroundColor); ok {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}

	for _, layer := range m.Layers {
		if layer.Kind != tmx.TileLayerKind || !layer.Visible {
			continue
		}
		grid := layer.Tiles
		for y := 0; y < grid.Height; y++ {
			// Under the y-up convention row 0 is the bottom of the map.
			row := y
			if !params.YDown {
				row = grid.Height - 1 - y
			}
			for x := 0; x < grid.Width; x++ {
				cell := grid.Cell(x, y)
				if cell == nil {
					continue
				}
				if err := drawCell(dst, scaler, cell, grid, x, row); err != nil {
					return nil, err
				}
			}
		}
	}
	return dst, nil
}

func drawCell(dst *image.RGBA, scaler draw.Interpolator, cell *tmx.Cell, grid *tmx.TileLayer, x, row int) error {
	region := cell.Tile.Region
	src, ok := region.Image.(image.Image)
	if !ok {
		return fmt.Errorf("render: region image %T carries no pixels", region.Image)
	}

	sr := region.Rect
	tw, th := float64(sr.Dx()), float64(sr.Dy())
	sx, sy := 1.0, 1.0
	if cell.FlipH {
		sx = -1
	}
	if cell.FlipV != region.FlipV {
		sy = -1
	}

	// Center the source tile on the origin, flip, rotate, then anchor to the
	// bottom edge of the destination grid cell.
	mat := translate(
		float64(x*grid.TileWidth)+tw/2,
		float64((row+1)*grid.TileHeight)-th/2,
	)
	if cell.Rotation != tmx.Rotate0 {
		mat = mul(mat, rotate(-float64(cell.Rotation)*math.Pi/180))
	}
	mat = mul(mat, scale(sx, sy))
	mat = mul(mat, translate(-(float64(sr.Min.X) + tw/2), -(float64(sr.Min.Y) + th/2)))

	scaler.Transform(dst, mat, src, sr, draw.Over, nil)
	return nil
}

func scalerFor(f tmx.Filter) draw.Interpolator {
	if f == tmx.FilterLinear {
		return draw.ApproxBiLinear
	}
	return draw.NearestNeighbor
}

// Affine helpers over f64.Aff3 (row-major 2x3, src to dst).

func translate(tx, ty float64) f64.Aff3 {
	return f64.Aff3{1, 0, tx, 0, 1, ty}
}

func scale(sx, sy float64) f64.Aff3 {
	return f64.Aff3{sx, 0, 0, 0, sy, 0}
}

func rotate(theta float64) f64.Aff3 {
	s, c := math.Sin(theta), math.Cos(theta)
	return f64.Aff3{c, -s, 0, s, c, 0}
}

// mul composes two affine transforms: the result applies b first, then a.
func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

// parseHexColor parses Tiled's "#rrggbb" background color attribute.
func parseHexColor(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	n, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, true
}
