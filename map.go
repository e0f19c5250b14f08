package tmx

// Map is a fully decoded TMX document: dimensions in cells, cell size in
// pixels, the tileset registry and the layers in document order. A Map is
// built in one load pass and should be treated as read-only afterwards.
type Map struct {
	Width, Height         int
	TileWidth, TileHeight int
	Orientation           string
	BackgroundColor       string
	Properties            Properties
	Tilesets              Tilesets
	Layers                []*Layer
}

// PixelWidth returns the map width in pixels.
func (m *Map) PixelWidth() int { return m.Width * m.TileWidth }

// PixelHeight returns the map height in pixels.
func (m *Map) PixelHeight() int { return m.Height * m.TileHeight }

// LayerKind discriminates the two layer variants.
type LayerKind int

const (
	TileLayerKind LayerKind = iota
	ObjectLayerKind
)

// Layer is one visual plane of the map. The baseline fields are shared by
// both variants; Kind selects which of Tiles or Objects is populated.
type Layer struct {
	Name       string
	Visible    bool
	Opacity    float64
	Properties Properties

	Kind    LayerKind
	Tiles   *TileLayer // set when Kind == TileLayerKind
	Objects []*Object  // set when Kind == ObjectLayerKind
}

// TileLayer is a dense grid of cells. The grid size is fixed at construction
// and never resized.
type TileLayer struct {
	Width, Height         int
	TileWidth, TileHeight int

	cells []*Cell
}

func newTileLayer(width, height, tileWidth, tileHeight int) *TileLayer {
	return &TileLayer{
		Width:      width,
		Height:     height,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		cells:      make([]*Cell, width*height),
	}
}

// Cell returns the cell at (x, y), or nil if the cell is empty or the
// coordinates are out of bounds.
func (t *TileLayer) Cell(x, y int) *Cell {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return nil
	}
	return t.cells[y*t.Width+x]
}

func (t *TileLayer) setCell(x, y int, c *Cell) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.cells[y*t.Width+x] = c
}

// Cell rotation quadrants, in degrees.
const (
	Rotate0   = 0
	Rotate90  = 90
	Rotate180 = 180
	Rotate270 = 270
)

// Cell is one occupied position in a tile layer: the referenced tile plus
// the canonical flip/rotation composed from the gid's three flip bits. The
// Tile pointer is a reference into the owning tileset, never a copy.
type Cell struct {
	GID      uint32 // gid with the flip bits cleared
	Tile     *Tile
	FlipH    bool
	FlipV    bool
	Rotation int // one of Rotate0, Rotate90, Rotate180, Rotate270
}

// Tile is one fixed-size region sliced out of a tileset image.
type Tile struct {
	ID         uint32 // global id (tileset firstgid + local offset)
	Region     *TextureRegion
	Properties Properties
}

// Tileset is a named block of tiles sliced from one source image, occupying
// the contiguous gid range [FirstGID, FirstGID+Count()).
type Tileset struct {
	Name                  string
	FirstGID              uint32
	TileWidth, TileHeight int
	Spacing, Margin       int
	ImageSource           string
	ImageWidth            int
	ImageHeight           int
	Properties            Properties

	tiles map[uint32]*Tile
}

// Tile returns the tile with the given gid, or nil if this tileset does not
// contain it.
func (ts *Tileset) Tile(gid uint32) *Tile {
	return ts.tiles[gid]
}

// Count returns the number of tiles sliced from the image.
func (ts *Tileset) Count() int { return len(ts.tiles) }

func (ts *Tileset) putTile(gid uint32, t *Tile) {
	ts.tiles[gid] = t
}

// Tilesets is the map's tileset registry, in document order.
type Tilesets []*Tileset

// Tile resolves a gid (without flip bits) across all registered tilesets.
// It returns nil for gid 0 and for gids no tileset contains.
func (t Tilesets) Tile(gid uint32) *Tile {
	if gid == 0 {
		return nil
	}
	for _, ts := range t {
		if tile := ts.Tile(gid); tile != nil {
			return tile
		}
	}
	return nil
}

// ObjectShape discriminates the object variants of an object layer.
type ObjectShape int

const (
	RectangleShape ObjectShape = iota
	EllipseShape
	PolygonShape
	PolylineShape
	TileShape
)

// Point is one vertex of a polygon or polyline, in pixels relative to the
// object position.
type Point struct {
	X, Y float64
}

// Object is a shape placed on an object layer. The baseline fields are
// shared by all variants; Shape selects the geometry. Points is populated
// for polygons and polylines, Stamp for tile objects.
type Object struct {
	Name       string
	Type       string
	Visible    bool
	Properties Properties

	Shape         ObjectShape
	X, Y          float64
	Width, Height float64
	Points        []Point
	Stamp         *TileStamp
}

// TileStamp carries the extra state of a tile object: the referenced tile
// and the transform applied around Origin when rendered.
type TileStamp struct {
	GID              uint32 // gid with the flip bits cleared
	Tile             *Tile
	OriginX, OriginY float64 // rotation/scale pivot relative to the corner
	Rotation         float64 // radians, clockwise
	ScaleX, ScaleY   float64
}
