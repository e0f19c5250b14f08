// Package leveldata extracts gameplay data (collision rectangles, spawn
// points, patrol paths) from TMX levels. It depends only on the tmx decoder
// and carries no rendering state, so clients and headless servers can share
// it.
package leveldata

// LevelData holds the gameplay-relevant data parsed from one TMX level.
type LevelData struct {
	SolidRects  []SolidRect
	SpawnPoints []SpawnPoint
	PatrolPaths map[string]PatrolPath
	MapWidth    int
	MapHeight   int
}

// SolidRect is one solid collision tile.
type SolidRect struct {
	X, Y, W, H float64
	SlopeType  string // "", "45_up_right", "45_up_left"
}

// SpawnPoint is a player spawn location.
type SpawnPoint struct {
	X, Y  float64
	Index int
}

// PatrolPath is a named polyline converted to world coordinates.
type PatrolPath struct {
	Name   string
	Points []Point
}

// Point is a position in map pixels.
type Point struct {
	X, Y float64
}
