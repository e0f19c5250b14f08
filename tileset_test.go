package tmx

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func newTestTileset(firstGID uint32, tw, th, margin, spacing int) *Tileset {
	return &Tileset{
		FirstGID:  firstGID,
		TileWidth: tw, TileHeight: th,
		Margin: margin, Spacing: spacing,
		tiles: make(map[uint32]*Tile),
	}
}

func TestSliceTileCounts(t *testing.T) {
	tests := []struct {
		name            string
		w, h            int
		tw, th          int
		margin, spacing int
	}{
		{"exact grid", 64, 32, 16, 16, 0, 0},
		{"margin", 68, 36, 16, 16, 2, 0},
		{"spacing", 67, 33, 16, 16, 0, 1},
		{"margin and spacing", 71, 37, 16, 16, 2, 1},
		{"partial edge discarded", 70, 40, 16, 16, 0, 0},
		{"too small", 10, 10, 16, 16, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestTileset(1, tt.tw, tt.th, tt.margin, tt.spacing)
			sliceTiles(ts, NewTextureRegion(nullImage{tt.w, tt.h}), false)

			cols := (tt.w - 2*tt.margin + tt.spacing) / (tt.tw + tt.spacing)
			rows := (tt.h - 2*tt.margin + tt.spacing) / (tt.th + tt.spacing)
			if cols < 0 {
				cols = 0
			}
			if rows < 0 {
				rows = 0
			}
			want := cols * rows
			if ts.Count() != want {
				t.Fatalf("count = %d, want %d", ts.Count(), want)
			}
			// Ids form the contiguous block [FirstGID, FirstGID+count).
			for gid := ts.FirstGID; gid < ts.FirstGID+uint32(want); gid++ {
				if ts.Tile(gid) == nil {
					t.Errorf("gid %d missing", gid)
				}
			}
			if ts.Tile(ts.FirstGID+uint32(want)) != nil {
				t.Errorf("gid %d present beyond the block", ts.FirstGID+uint32(want))
			}
		})
	}
}

func TestSliceRowMajorOrder(t *testing.T) {
	ts := newTestTileset(1, 16, 16, 2, 1)
	sliceTiles(ts, NewTextureRegion(nullImage{71, 37}), false)

	// 4 columns by 2 rows given 71x37 with margin 2, spacing 1.
	if ts.Count() != 8 {
		t.Fatalf("count = %d, want 8", ts.Count())
	}
	first := ts.Tile(1).Region.Rect
	if first.Min.X != 2 || first.Min.Y != 2 {
		t.Errorf("tile 1 at %v, want corner (2,2)", first.Min)
	}
	second := ts.Tile(2).Region.Rect
	if second.Min.X != 19 || second.Min.Y != 2 {
		t.Errorf("tile 2 at %v, want corner (19,2)", second.Min)
	}
	// First tile of the second row.
	fifth := ts.Tile(5).Region.Rect
	if fifth.Min.X != 2 || fifth.Min.Y != 19 {
		t.Errorf("tile 5 at %v, want corner (2,19)", fifth.Min)
	}
	for gid := uint32(1); gid <= 8; gid++ {
		r := ts.Tile(gid).Region.Rect
		if r.Dx() != 16 || r.Dy() != 16 {
			t.Errorf("tile %d region %v, want 16x16", gid, r)
		}
	}
}

func TestSliceBakedVerticalMirror(t *testing.T) {
	up := newTestTileset(1, 16, 16, 0, 0)
	sliceTiles(up, NewTextureRegion(nullImage{32, 16}), true)
	if !up.Tile(1).Region.FlipV {
		t.Error("y-up slicing did not mirror the region")
	}

	down := newTestTileset(1, 16, 16, 0, 0)
	sliceTiles(down, NewTextureRegion(nullImage{32, 16}), false)
	if down.Tile(1).Region.FlipV {
		t.Error("y-down slicing mirrored the region")
	}
}

func TestGIDSpacePartitioning(t *testing.T) {
	// First tileset: 8 tiles (gids 1..8). Second starts at 9.
	a := newTestTileset(1, 16, 16, 0, 0)
	sliceTiles(a, NewTextureRegion(nullImage{64, 32}), false)
	b := newTestTileset(9, 16, 16, 0, 0)
	sliceTiles(b, NewTextureRegion(nullImage{48, 16}), false)
	registry := Tilesets{a, b}

	if tile := registry.Tile(8); tile == nil || a.Tile(8) != tile {
		t.Errorf("gid 8 resolved to %v, want last tile of first tileset", tile)
	}
	if tile := registry.Tile(9); tile == nil || b.Tile(9) != tile {
		t.Errorf("gid 9 resolved to %v, want first tile of second tileset", tile)
	}
	if tile := registry.Tile(12); tile != nil {
		t.Errorf("gid 12 resolved to %v, want nil", tile)
	}
}

func TestTilesetProperties(t *testing.T) {
	doc := mapDoc(1, 1, `<tileset firstgid="1" name="props" tilewidth="16" tileheight="16">
  <image source="ground.png" width="64" height="32"/>
  <tile id="2">
    <properties>
      <property name="slope" value="45_up_right"/>
    </properties>
  </tile>
  <properties>
    <property name="kind" value="terrain"/>
  </properties>
</tileset>`)
	m := mustLoadFixture(t, doc, nil)

	ts := m.Tilesets[0]
	if got := ts.Properties.GetString("kind"); got != "terrain" {
		t.Errorf("tileset property kind = %q, want terrain", got)
	}
	// Local id 2 means gid firstgid+2 = 3.
	if got := ts.Tile(3).Properties.GetString("slope"); got != "45_up_right" {
		t.Errorf("tile 3 slope = %q, want 45_up_right", got)
	}
	if got := ts.Tile(1).Properties.GetString("slope"); got != "" {
		t.Errorf("tile 1 slope = %q, want empty", got)
	}
}

func TestExternalTileset(t *testing.T) {
	fsys := fstest.MapFS{
		"maps/map.tmx": &fstest.MapFile{Data: []byte(mapDoc(1, 1,
			`<tileset firstgid="7" source="../tilesets/ground.tsx"/>`))},
		"tilesets/ground.tsx": &fstest.MapFile{Data: []byte(
			`<tileset name="ground" tilewidth="16" tileheight="16" spacing="0" margin="0">
  <image source="../images/ground.png" width="64" height="32"/>
</tileset>`)},
	}
	loader := &Loader{FS: fsys, Resolver: DataResolver{}}
	m, err := loader.Load("maps/map.tmx", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	ts := m.Tilesets[0]
	if ts.Name != "ground" {
		t.Errorf("name = %q, want ground (from external document)", ts.Name)
	}
	if ts.FirstGID != 7 {
		t.Errorf("firstgid = %d, want 7 (from including document)", ts.FirstGID)
	}
	if ts.Count() != 8 {
		t.Errorf("count = %d, want 8", ts.Count())
	}
	if ts.Tile(7) == nil || ts.Tile(14) == nil || ts.Tile(15) != nil {
		t.Error("gid block not anchored at firstgid 7")
	}
}

func TestExternalTilesetMissingDocument(t *testing.T) {
	doc := mapDoc(1, 1, `<tileset firstgid="1" source="nowhere.tsx"/>`)
	_, err := loadFixture(t, doc, nil)
	var de *DocumentError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DocumentError", err)
	}
	if de.Path != "nowhere.tsx" {
		t.Errorf("path = %q, want nowhere.tsx", de.Path)
	}
}

func TestTilesetInvalidGeometry(t *testing.T) {
	tests := []struct {
		name    string
		tileset string
	}{
		{"no tile size", `<tileset firstgid="1" name="bad">
  <image source="ground.png" width="64" height="32"/>
</tileset>`},
		{"zero tile width", `<tileset firstgid="1" name="bad" tilewidth="0" tileheight="16">
  <image source="ground.png" width="64" height="32"/>
</tileset>`},
		{"negative spacing", `<tileset firstgid="1" name="bad" tilewidth="16" tileheight="16" spacing="-16">
  <image source="ground.png" width="64" height="32"/>
</tileset>`},
		{"negative margin", `<tileset firstgid="1" name="bad" tilewidth="16" tileheight="16" margin="-1">
  <image source="ground.png" width="64" height="32"/>
</tileset>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFixture(t, mapDoc(1, 1, tt.tileset), nil)
			if err == nil {
				t.Fatal("load succeeded, want error")
			}
			if !strings.Contains(err.Error(), "bad") {
				t.Errorf("error %q does not name the tileset", err)
			}
		})
	}
}

func TestTilesetMissingImageElement(t *testing.T) {
	doc := mapDoc(1, 1, `<tileset firstgid="1" name="broken" tilewidth="16" tileheight="16"/>`)
	if _, err := loadFixture(t, doc, nil); err == nil {
		t.Fatal("load succeeded, want error for missing image element")
	}
}

func TestMissingImageError(t *testing.T) {
	fsys := fstest.MapFS{
		"map.tmx": &fstest.MapFile{Data: []byte(mapDoc(1, 1, testTileset))},
	}
	// The direct resolver has no ground.png to read.
	loader := &Loader{FS: fsys}
	_, err := loader.Load("map.tmx", nil)
	var me *MissingImageError
	if !errors.As(err, &me) {
		t.Fatalf("err = %v, want MissingImageError", err)
	}
	if me.Tileset != "ground" {
		t.Errorf("tileset = %q, want ground", me.Tileset)
	}
}
