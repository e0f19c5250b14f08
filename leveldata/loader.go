package leveldata

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/automoto/tmx"
)

// Layer names this package understands.
const (
	solidLayer  = "wg-tiles"
	spawnLayer  = "PlayerSpawn"
	patrolLayer = "PatrolPaths"
)

// Load parses a TMX file and extracts its gameplay data. It takes an fs.FS
// so callers can pass embed.FS (client) or os.DirFS (server). Tileset images
// are never read; the declared sizes in the document are enough.
func Load(fsys fs.FS, tmxPath string) (*LevelData, error) {
	loader := &tmx.Loader{FS: fsys, Resolver: tmx.DataResolver{}}
	m, err := loader.Load(tmxPath, &tmx.Parameters{YDown: true})
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	data := &LevelData{
		PatrolPaths: make(map[string]PatrolPath),
		MapWidth:    m.PixelWidth(),
		MapHeight:   m.PixelHeight(),
	}

	for _, layer := range m.Layers {
		switch {
		case layer.Kind == tmx.TileLayerKind && layer.Name == solidLayer:
			collectSolids(data, layer.Tiles)
		case layer.Kind == tmx.ObjectLayerKind && layer.Name == spawnLayer:
			collectSpawns(data, layer.Objects)
		case layer.Kind == tmx.ObjectLayerKind && layer.Name == patrolLayer:
			collectPatrolPaths(data, layer.Objects)
		}
	}

	return data, nil
}

func collectSolids(data *LevelData, grid *tmx.TileLayer) {
	tileW := float64(grid.TileWidth)
	tileH := float64(grid.TileHeight)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			cell := grid.Cell(x, y)
			if cell == nil {
				continue
			}
			data.SolidRects = append(data.SolidRects, SolidRect{
				X:         float64(x) * tileW,
				Y:         float64(y) * tileH,
				W:         tileW,
				H:         tileH,
				SlopeType: cell.Tile.Properties.GetString("slope"),
			})
		}
	}
}

func collectSpawns(data *LevelData, objects []*tmx.Object) {
	for _, o := range objects {
		data.SpawnPoints = append(data.SpawnPoints, SpawnPoint{
			X:     o.X,
			Y:     o.Y,
			Index: o.Properties.GetInt("spawnIndex"),
		})
	}
	// Sort spawns left-to-right for consistent assignment.
	sort.Slice(data.SpawnPoints, func(i, j int) bool {
		return data.SpawnPoints[i].X < data.SpawnPoints[j].X
	})
}

func collectPatrolPaths(data *LevelData, objects []*tmx.Object) {
	for _, o := range objects {
		if o.Shape != tmx.PolylineShape || len(o.Points) < 2 {
			continue
		}
		points := make([]Point, len(o.Points))
		for i, p := range o.Points {
			points[i] = Point{X: o.X + p.X, Y: o.Y + p.Y}
		}
		data.PatrolPaths[o.Name] = PatrolPath{Name: o.Name, Points: points}
	}
}

// LoadAll discovers all .tmx files in levelsDir within fsys, loads each, and
// returns a map keyed by stem name plus a sorted list of names.
func LoadAll(fsys fs.FS, levelsDir string) (map[string]*LevelData, []string, error) {
	pattern := levelsDir + "/*.tmx"
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("no .tmx files found in %s", levelsDir)
	}

	levels := make(map[string]*LevelData, len(matches))
	names := make([]string, 0, len(matches))

	for _, path := range matches {
		data, err := Load(fsys, path)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", path, err)
		}
		stem := strings.TrimSuffix(filepath.Base(path), ".tmx")
		levels[stem] = data
		names = append(names, stem)
	}

	sort.Strings(names)
	return levels, names, nil
}
