// tmxview is an interactive TMX map viewer: WASD/arrow keys pan, the mouse
// wheel zooms, and the camera position is remembered per map between runs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/quasilyte/gdata"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/automoto/tmx"
	"github.com/automoto/tmx/render"
)

const (
	screenWidth  = 1280
	screenHeight = 720
	panSpeed     = 8.0
	zoomStep     = 1.25
	minZoom      = 0.25
	maxZoom      = 8.0
)

// savedCamera is the per-map camera state stored on disk.
type savedCamera struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

type viewer struct {
	renderer *render.Renderer
	mapName  string

	camX, camY float64
	zoom       float64
	zoomTarget float64
	zoomTween  *gween.Tween

	store *gdata.Manager
}

func (v *viewer) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
		v.camX -= panSpeed / v.zoom
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
		v.camX += panSpeed / v.zoom
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		v.camY -= panSpeed / v.zoom
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		v.camY += panSpeed / v.zoom
	}

	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		if wheelY > 0 {
			v.zoomTarget *= zoomStep
		} else {
			v.zoomTarget /= zoomStep
		}
		v.zoomTarget = clamp(v.zoomTarget, minZoom, maxZoom)
		// Ease toward the new zoom instead of snapping.
		v.zoomTween = gween.New(float32(v.zoom), float32(v.zoomTarget), 0.2, ease.OutQuad)
	}
	if v.zoomTween != nil {
		value, finished := v.zoomTween.Update(1.0 / 60.0)
		v.zoom = float64(value)
		if finished {
			v.zoomTween = nil
		}
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	v.renderer.Draw(screen, v.camX, v.camY, v.zoom)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s  cam=(%.0f, %.0f) zoom=%.2f",
		v.mapName, v.camX, v.camY, v.zoom))
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func (v *viewer) cameraKey() string {
	return "camera_" + strings.NewReplacer("/", "_", "\\", "_", ".", "_").Replace(v.mapName)
}

func (v *viewer) restoreCamera() {
	if v.store == nil {
		return
	}
	raw, err := v.store.LoadItem(v.cameraKey())
	if err != nil || raw == nil {
		return
	}
	var cam savedCamera
	if err := json.Unmarshal(raw, &cam); err != nil {
		log.Printf("[tmxview] could not parse saved camera: %v", err)
		return
	}
	v.camX, v.camY = cam.X, cam.Y
	v.zoom = clamp(cam.Zoom, minZoom, maxZoom)
	v.zoomTarget = v.zoom
}

func (v *viewer) saveCamera() {
	if v.store == nil {
		return
	}
	raw, err := json.Marshal(savedCamera{X: v.camX, Y: v.camY, Zoom: v.zoom})
	if err != nil {
		return
	}
	if err := v.store.SaveItem(v.cameraKey(), raw); err != nil {
		log.Printf("[tmxview] could not save camera: %v", err)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: tmxview map.tmx\n")
		os.Exit(2)
	}
	mapPath := flag.Arg(0)

	dir, file := filepath.Split(mapPath)
	if dir == "" {
		dir = "."
	}
	fsys := os.DirFS(dir)

	loader := &tmx.Loader{FS: fsys, Resolver: render.NewImageLoader(fsys)}
	params := &tmx.Parameters{YDown: true}
	m, err := loader.Load(file, params)
	if err != nil {
		log.Fatalf("[tmxview] %v", err)
	}
	log.Printf("[tmxview] loaded %s: %dx%d cells, %d tilesets, %d layers",
		mapPath, m.Width, m.Height, len(m.Tilesets), len(m.Layers))

	v := &viewer{
		renderer:   render.New(m, params),
		mapName:    file,
		camX:       float64(m.PixelWidth()) / 2,
		camY:       float64(m.PixelHeight()) / 2,
		zoom:       1.0,
		zoomTarget: 1.0,
	}

	store, err := gdata.Open(gdata.Config{AppName: "tmxview"})
	if err != nil {
		log.Printf("[tmxview] persistence unavailable: %v", err)
	} else {
		v.store = store
		v.restoreCamera()
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("tmxview - " + file)
	if err := ebiten.RunGame(v); err != nil {
		log.Fatalf("[tmxview] %v", err)
	}
	v.saveCamera()
}
