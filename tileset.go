package tmx

import (
	"fmt"
	"image"
)

// loadTileset decodes one <tileset> element, slices its image into tiles and
// registers the result on the map. External tilesets (source attribute) are
// parsed first and contribute every attribute except firstgid, which only
// the including document may set.
func (d *decoder) loadTileset(m *Map, el *Element) error {
	name := el.Attr("name", "")
	firstGID := el.UintAttr("firstgid", 1)
	tileWidth := el.IntAttr("tilewidth", 0)
	tileHeight := el.IntAttr("tileheight", 0)
	spacing := el.IntAttr("spacing", 0)
	margin := el.IntAttr("margin", 0)

	basePath := d.basePath
	if source := el.Attr("source", ""); source != "" {
		tsxPath := relativePath(d.basePath, source)
		external, err := parseDocument(d.fsys, tsxPath)
		if err != nil {
			return fmt.Errorf("tmx: tileset %q: external tileset: %w", name, err)
		}
		el = external
		basePath = tsxPath
		name = el.Attr("name", name)
		tileWidth = el.IntAttr("tilewidth", 0)
		tileHeight = el.IntAttr("tileheight", 0)
		spacing = el.IntAttr("spacing", 0)
		margin = el.IntAttr("margin", 0)
	}

	if tileWidth <= 0 || tileHeight <= 0 {
		return fmt.Errorf("tmx: tileset %q: invalid tile size %dx%d", name, tileWidth, tileHeight)
	}
	if margin < 0 || spacing < 0 {
		return fmt.Errorf("tmx: tileset %q: negative margin or spacing", name)
	}

	imageEl := el.Child("image")
	if imageEl == nil {
		return fmt.Errorf("tmx: tileset %q has no image element", name)
	}
	imageSource := imageEl.Attr("source", "")
	imageWidth := imageEl.IntAttr("width", 0)
	imageHeight := imageEl.IntAttr("height", 0)
	imagePath := relativePath(basePath, imageSource)

	opts := d.imageOptions()
	opts.DeclaredSize = image.Pt(imageWidth, imageHeight)
	region, err := d.resolver.ResolveImage(imagePath, opts)
	if err != nil {
		return &MissingImageError{Tileset: name, Source: imagePath, Err: err}
	}

	ts := &Tileset{
		Name:        name,
		FirstGID:    firstGID,
		TileWidth:   tileWidth,
		TileHeight:  tileHeight,
		Spacing:     spacing,
		Margin:      margin,
		ImageSource: imageSource,
		ImageWidth:  imageWidth,
		ImageHeight: imageHeight,
		Properties:  make(Properties),
		tiles:       make(map[uint32]*Tile),
	}

	sliceTiles(ts, region, !d.params.YDown)

	// Per-tile custom properties are keyed by local id.
	for _, tileEl := range el.ChildrenNamed("tile") {
		local := tileEl.UintAttr("id", 0)
		tile := ts.Tile(firstGID + local)
		if tile == nil {
			continue
		}
		tile.Properties.loadProperties(tileEl.Child("properties"))
	}
	ts.Properties.loadProperties(el.Child("properties"))

	m.Tilesets = append(m.Tilesets, ts)
	return nil
}

// sliceTiles walks the image region in row-major order, carving one
// tileWidth x tileHeight tile wherever a full tile fits between the margins,
// and assigning consecutive gids starting at FirstGID. Under a y-up
// convention each region is mirrored vertically once, at slice time.
func sliceTiles(ts *Tileset, region *TextureRegion, yUp bool) {
	w, h := region.Width(), region.Height()
	gid := ts.FirstGID
	for y := ts.Margin; y+ts.TileHeight <= h-ts.Margin; y += ts.TileHeight + ts.Spacing {
		for x := ts.Margin; x+ts.TileWidth <= w-ts.Margin; x += ts.TileWidth + ts.Spacing {
			sub := region.Sub(x, y, ts.TileWidth, ts.TileHeight)
			if yUp {
				sub.FlipV = !sub.FlipV
			}
			ts.putTile(gid, &Tile{
				ID:         gid,
				Region:     sub,
				Properties: make(Properties),
			})
			gid++
		}
	}
}

// tilesetImages returns the image paths a document's tilesets depend on,
// resolving external tilesets but decoding nothing else.
func (d *decoder) tilesetImages(root *Element) ([]string, error) {
	var images []string
	for _, el := range root.ChildrenNamed("tileset") {
		basePath := d.basePath
		if source := el.Attr("source", ""); source != "" {
			tsxPath := relativePath(d.basePath, source)
			external, err := parseDocument(d.fsys, tsxPath)
			if err != nil {
				return nil, fmt.Errorf("tmx: tileset %q: external tileset: %w", el.Attr("name", ""), err)
			}
			el = external
			basePath = tsxPath
		}
		imageEl := el.Child("image")
		if imageEl == nil {
			return nil, fmt.Errorf("tmx: tileset %q has no image element", el.Attr("name", ""))
		}
		images = append(images, relativePath(basePath, imageEl.Attr("source", "")))
	}
	return images, nil
}
