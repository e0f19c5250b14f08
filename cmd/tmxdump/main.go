// tmxdump loads a TMX map and prints its structure: tilesets, layers, cell
// occupancy and objects. With -png it also composites the tile layers into a
// preview image.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/automoto/tmx"
	"github.com/automoto/tmx/render"
)

func main() {
	pngOut := flag.String("png", "", "write a rendered preview to this file")
	yDown := flag.Bool("ydown", true, "keep the document's y-down convention")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: tmxdump [flags] map.tmx\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	mapPath := flag.Arg(0)

	dir, file := filepath.Split(mapPath)
	if dir == "" {
		dir = "."
	}
	loader := &tmx.Loader{FS: os.DirFS(dir)}
	if *pngOut == "" {
		// No pixels needed for a structure dump.
		loader.Resolver = tmx.DataResolver{}
	}

	params := &tmx.Parameters{YDown: *yDown}
	m, err := loader.Load(file, params)
	if err != nil {
		log.Fatalf("[tmxdump] %v", err)
	}

	dump(m)

	if *pngOut != "" {
		img, err := render.ToImage(m, params)
		if err != nil {
			log.Fatalf("[tmxdump] render: %v", err)
		}
		f, err := os.Create(*pngOut)
		if err != nil {
			log.Fatalf("[tmxdump] %v", err)
		}
		defer f.Close()
		if err := png.Encode(f, img); err != nil {
			log.Fatalf("[tmxdump] encode %s: %v", *pngOut, err)
		}
		log.Printf("[tmxdump] wrote %s (%dx%d)", *pngOut, img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func dump(m *tmx.Map) {
	fmt.Printf("map: %dx%d cells, %dx%d px tiles, orientation %q\n",
		m.Width, m.Height, m.TileWidth, m.TileHeight, m.Orientation)
	if m.BackgroundColor != "" {
		fmt.Printf("background: %s\n", m.BackgroundColor)
	}

	for _, ts := range m.Tilesets {
		fmt.Printf("tileset %q: firstgid=%d tiles=%d image=%s (%dx%d)\n",
			ts.Name, ts.FirstGID, ts.Count(), ts.ImageSource, ts.ImageWidth, ts.ImageHeight)
	}

	for _, layer := range m.Layers {
		switch layer.Kind {
		case tmx.TileLayerKind:
			grid := layer.Tiles
			occupied := 0
			for y := 0; y < grid.Height; y++ {
				for x := 0; x < grid.Width; x++ {
					if grid.Cell(x, y) != nil {
						occupied++
					}
				}
			}
			fmt.Printf("layer %q: %dx%d, %d/%d cells occupied, opacity %.2f\n",
				layer.Name, grid.Width, grid.Height, occupied, grid.Width*grid.Height, layer.Opacity)
		case tmx.ObjectLayerKind:
			fmt.Printf("object layer %q: %d objects\n", layer.Name, len(layer.Objects))
			for _, o := range layer.Objects {
				fmt.Printf("  %s %q at (%.1f, %.1f) %gx%g\n",
					shapeName(o.Shape), o.Name, o.X, o.Y, o.Width, o.Height)
			}
		}
	}
}

func shapeName(s tmx.ObjectShape) string {
	switch s {
	case tmx.RectangleShape:
		return "rectangle"
	case tmx.EllipseShape:
		return "ellipse"
	case tmx.PolygonShape:
		return "polygon"
	case tmx.PolylineShape:
		return "polyline"
	case tmx.TileShape:
		return "tile"
	}
	return "unknown"
}
