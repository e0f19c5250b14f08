package tmx

import (
	"io/fs"
	"os"
	"strconv"
)

// Parameters tunes a load. The zero value loads the map for a y-up
// coordinate system (origin at the bottom-left) with nearest-neighbour
// filtering, matching the typical renderer.
type Parameters struct {
	// YDown keeps the document's native convention: row 0 at the top and
	// object y growing downward.
	YDown bool
	// GenerateMipMaps, MinFilter and MagFilter are handed to the image
	// resolver untouched; the decoder itself never interprets them.
	GenerateMipMaps bool
	MinFilter       Filter
	MagFilter       Filter
}

// Loader decodes TMX documents from a filesystem. The zero value reads from
// the process working directory and resolves images directly.
type Loader struct {
	// FS is the filesystem map documents, external tilesets and (for the
	// default resolver) images are read from. Defaults to os.DirFS(".") so
	// callers can pass an embed.FS or os.DirFS of their asset root.
	FS fs.FS
	// Resolver turns tileset image paths into regions. Defaults to a
	// DirectResolver over FS.
	Resolver ImageResolver
	// PostProcess, when set, is invoked once per decoded map object and may
	// replace or drop it.
	PostProcess ObjectProcessor
	// UnknownElement, when set, is invoked for top-level layer elements this
	// package does not decode, such as imagelayer. The default is to skip
	// them.
	UnknownElement func(m *Map, el *Element) error
}

// Document is a parsed but not yet decoded map: the result of the prepare
// phase of a two-phase load. It records the image paths the map depends on
// so callers can stage asynchronous image loads before calling Finish.
type Document struct {
	Path   string
	root   *Element
	images []string
}

// Images returns the image paths the document's tilesets require, in
// document order.
func (d *Document) Images() []string { return d.images }

// Load decodes the map at path using the default Loader.
func Load(path string, params *Parameters) (*Map, error) {
	return (&Loader{}).Load(path, params)
}

// Load decodes the map at path in one synchronous pass, resolving images as
// they are encountered. It returns either a fully assembled map or an
// error; never a partial map.
func (l *Loader) Load(path string, params *Parameters) (*Map, error) {
	doc, err := l.Prepare(path)
	if err != nil {
		return nil, err
	}
	return l.Finish(doc, l.resolver(), params)
}

// Dependencies returns the image paths the map at path requires, without
// decoding any layer data.
func (l *Loader) Dependencies(path string) ([]string, error) {
	doc, err := l.Prepare(path)
	if err != nil {
		return nil, err
	}
	return doc.Images(), nil
}

// Prepare parses the document at path and determines its image
// dependencies. It may run on any goroutine; the returned Document is ready
// for Finish once every dependency image is available.
func (l *Loader) Prepare(path string) (*Document, error) {
	fsys := l.fs()
	root, err := parseDocument(fsys, path)
	if err != nil {
		return nil, err
	}
	d := &decoder{fsys: fsys, basePath: path}
	images, err := d.tilesetImages(root)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, root: root, images: images}, nil
}

// Finish builds the map model from a prepared document, carving tile regions
// out of the images resolver returns. Callers using a deferred resolver must
// have every dependency registered before calling Finish.
func (l *Loader) Finish(doc *Document, resolver ImageResolver, params *Parameters) (*Map, error) {
	if params == nil {
		params = &Parameters{}
	}
	if resolver == nil {
		resolver = l.resolver()
	}
	d := &decoder{
		fsys:     l.fs(),
		resolver: resolver,
		params:   *params,
		basePath: doc.Path,
		post:     l.PostProcess,
		unknown:  l.UnknownElement,
	}
	return d.loadMap(doc.root)
}

func (l *Loader) fs() fs.FS {
	if l.FS != nil {
		return l.FS
	}
	return os.DirFS(".")
}

func (l *Loader) resolver() ImageResolver {
	if l.Resolver != nil {
		return l.Resolver
	}
	return NewDirectResolver(l.fs())
}

// decoder carries the state of one load pass.
type decoder struct {
	fsys     fs.FS
	resolver ImageResolver
	params   Parameters
	basePath string
	post     ObjectProcessor
	unknown  func(m *Map, el *Element) error
}

func (d *decoder) imageOptions() ImageOptions {
	return ImageOptions{
		GenerateMipMaps: d.params.GenerateMipMaps,
		MinFilter:       d.params.MinFilter,
		MagFilter:       d.params.MagFilter,
	}
}

// loadMap assembles the whole map from the document root: map attributes,
// custom map properties, every tileset in document order, then the layer
// walk, also in document order.
func (d *decoder) loadMap(root *Element) (*Map, error) {
	m := &Map{
		Width:           root.IntAttr("width", 0),
		Height:          root.IntAttr("height", 0),
		TileWidth:       root.IntAttr("tilewidth", 0),
		TileHeight:      root.IntAttr("tileheight", 0),
		Orientation:     root.Attr("orientation", ""),
		BackgroundColor: root.Attr("backgroundcolor", ""),
		Properties:      make(Properties),
	}

	if m.Orientation != "" {
		m.Properties["orientation"] = m.Orientation
	}
	m.Properties["width"] = strconv.Itoa(m.Width)
	m.Properties["height"] = strconv.Itoa(m.Height)
	m.Properties["tilewidth"] = strconv.Itoa(m.TileWidth)
	m.Properties["tileheight"] = strconv.Itoa(m.TileHeight)
	if m.BackgroundColor != "" {
		m.Properties["backgroundcolor"] = m.BackgroundColor
	}
	// Custom map properties override the attribute-derived ones.
	m.Properties.loadProperties(root.Child("properties"))

	for _, el := range root.ChildrenNamed("tileset") {
		if err := d.loadTileset(m, el); err != nil {
			return nil, err
		}
	}

	for _, el := range root.Children {
		switch el.Name {
		case "tileset", "properties":
			// handled above
		case "layer":
			if err := d.loadTileLayer(m, el); err != nil {
				return nil, err
			}
		case "objectgroup":
			if err := d.loadObjectGroup(m, el); err != nil {
				return nil, err
			}
		default:
			// imagelayer and anything newer than this decoder.
			if d.unknown != nil {
				if err := d.unknown(m, el); err != nil {
					return nil, err
				}
			}
		}
	}
	return m, nil
}
