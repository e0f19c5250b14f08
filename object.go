package tmx

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Custom property names that transform tile objects when rendered. These
// are plain Tiled custom properties, invisible in the editor's preview.
const (
	propertyRotation        = "rotation"
	propertyRotationDegrees = "rotationDeg"
	propertyScaleX          = "scaleX"
	propertyScaleY          = "scaleY"
	propertyWidth           = "width"
	propertyHeight          = "height"
)

// ObjectProcessor is called once per decoded object, after baseline and
// custom properties are merged and stamp transforms applied. It may return a
// replacement object, or nil to drop the object from the layer.
type ObjectProcessor func(m *Map, layer *Layer, obj *Object) *Object

// loadObjectGroup decodes one <objectgroup> element into an object layer.
func (d *decoder) loadObjectGroup(m *Map, el *Element) error {
	layer := &Layer{
		Name:       el.Attr("name", ""),
		Visible:    el.BoolAttr("visible", true),
		Opacity:    el.FloatAttr("opacity", 1.0),
		Properties: make(Properties),
		Kind:       ObjectLayerKind,
	}
	layer.Properties.loadProperties(el.Child("properties"))

	for _, objEl := range el.ChildrenNamed("object") {
		obj, err := d.loadObject(m, objEl)
		if err != nil {
			return fmt.Errorf("tmx: object layer %q: %w", layer.Name, err)
		}
		if d.post != nil {
			obj = d.post(m, layer, obj)
		}
		if obj != nil {
			layer.Objects = append(layer.Objects, obj)
		}
	}

	m.Layers = append(m.Layers, layer)
	return nil
}

// loadObject decodes one <object> element, dispatching on its shape child.
// Under a y-up convention the declared y is remapped from the map top, and
// shapes anchored at their top-left corner in the source convention are
// further shifted down by their height.
func (d *decoder) loadObject(m *Map, el *Element) (*Object, error) {
	yUp := !d.params.YDown

	x := el.FloatAttr("x", 0)
	y := el.FloatAttr("y", 0)
	if yUp {
		y = float64(m.PixelHeight()) - y
	}
	width := el.FloatAttr("width", 0)
	height := el.FloatAttr("height", 0)

	obj := &Object{
		Name:       el.Attr("name", ""),
		Type:       el.Attr("type", ""),
		Visible:    el.BoolAttr("visible", true),
		Properties: make(Properties),
		Width:      width,
		Height:     height,
	}

	switch {
	case el.Child("polygon") != nil:
		points, err := parsePoints(el.Child("polygon").Attr("points", ""), yUp)
		if err != nil {
			return nil, fmt.Errorf("object %q: polygon: %w", obj.Name, err)
		}
		obj.Shape = PolygonShape
		obj.Points = points
		obj.X, obj.Y = x, y
	case el.Child("polyline") != nil:
		points, err := parsePoints(el.Child("polyline").Attr("points", ""), yUp)
		if err != nil {
			return nil, fmt.Errorf("object %q: polyline: %w", obj.Name, err)
		}
		obj.Shape = PolylineShape
		obj.Points = points
		obj.X, obj.Y = x, y
	case el.Child("ellipse") != nil:
		obj.Shape = EllipseShape
		obj.X = x
		obj.Y = cornerY(y, height, yUp)
	case el.HasAttr("gid"):
		d.loadTileObject(m, obj, el, x, y)
	default:
		obj.Shape = RectangleShape
		obj.X = x
		obj.Y = cornerY(y, height, yUp)
	}

	// Baseline properties precede the custom ones, so a custom property of
	// the same name wins.
	obj.Properties["name"] = obj.Name
	if obj.Type != "" {
		obj.Properties["type"] = obj.Type
	}
	obj.Properties["x"] = strconv.FormatFloat(x, 'f', -1, 64)
	obj.Properties["y"] = strconv.FormatFloat(cornerY(y, height, yUp), 'f', -1, 64)
	obj.Properties.loadProperties(el.Child("properties"))

	if obj.Shape == TileShape {
		applyStampProperties(obj)
	}
	return obj, nil
}

// loadTileObject fills obj as a tile stamp. The gid attribute is masked of
// its flip bits the same way cell gids are before the registry lookup; the
// raw attribute value is kept as the "gid" property.
func (d *decoder) loadTileObject(m *Map, obj *Object, el *Element, x, y float64) {
	rawGID := el.UintAttr("gid", 0)
	id := rawGID &^ flagMask
	tile := m.Tilesets.Tile(id)

	obj.Shape = TileShape
	obj.X, obj.Y = x, y
	obj.Stamp = &TileStamp{
		GID:    id,
		Tile:   tile,
		ScaleX: 1,
		ScaleY: 1,
	}
	if tile != nil {
		obj.Width = float64(tile.Region.Width())
		obj.Height = float64(tile.Region.Height())
	}
	obj.Properties["gid"] = strconv.FormatUint(uint64(rawGID), 10)
}

// applyStampProperties applies the tile-stamp transform properties after the
// property merge: rotation (radians, with a degrees fallback), scale, and
// explicit size overrides. The origin is recomputed to the shape center
// last, since it depends on the final size.
func applyStampProperties(obj *Object) {
	s := obj.Stamp
	p := obj.Properties
	if p.Has(propertyRotation) {
		s.Rotation = p.GetFloat(propertyRotation)
	} else if p.Has(propertyRotationDegrees) {
		s.Rotation = p.GetFloat(propertyRotationDegrees) * math.Pi / 180
	}
	if p.Has(propertyScaleX) {
		s.ScaleX = p.GetFloat(propertyScaleX)
	}
	if p.Has(propertyScaleY) {
		s.ScaleY = p.GetFloat(propertyScaleY)
	}
	if p.Has(propertyWidth) {
		if v := p.GetFloat(propertyWidth); v >= 0 {
			obj.Width = v
		}
	}
	if p.Has(propertyHeight) {
		if v := p.GetFloat(propertyHeight); v >= 0 {
			obj.Height = v
		}
	}
	s.OriginX = obj.Width / 2
	s.OriginY = obj.Height / 2
}

// cornerY converts a top-left anchored shape's y to the stored corner under
// the active convention.
func cornerY(y, height float64, yUp bool) float64 {
	if yUp {
		return y - height
	}
	return y
}

// parsePoints parses a whitespace-separated list of "x,y" vertex pairs. The
// y values are negated under a y-up convention.
func parsePoints(s string, yUp bool) ([]Point, error) {
	fields := strings.Fields(s)
	points := make([]Point, 0, len(fields))
	for _, pair := range fields {
		xs, ys, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, fmt.Errorf("malformed point %q", pair)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed point %q: %w", pair, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed point %q: %w", pair, err)
		}
		if yUp {
			y = -y
		}
		points = append(points, Point{X: x, Y: y})
	}
	return points, nil
}
