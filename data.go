package tmx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Flip flags occupying the top three bits of a stored gid.
const (
	flagFlipHorizontal uint32 = 0x80000000
	flagFlipVertical   uint32 = 0x40000000
	flagFlipDiagonal   uint32 = 0x20000000
	flagMask                  = flagFlipHorizontal | flagFlipVertical | flagFlipDiagonal
)

// loadTileLayer decodes one <layer> element into a tile layer and appends it
// to the map.
// maxLayerCells bounds the cell allocation of one layer, so a corrupt
// dimension attribute fails cleanly instead of exhausting memory.
const maxLayerCells = 1 << 26

func (d *decoder) loadTileLayer(m *Map, el *Element) error {
	name := el.Attr("name", "")
	width := el.IntAttr("width", 0)
	height := el.IntAttr("height", 0)
	if width <= 0 || height <= 0 {
		return &CellDataError{Layer: name, Err: fmt.Errorf("invalid dimensions %dx%d", width, height)}
	}
	if uint64(width)*uint64(height) > maxLayerCells {
		return &CellDataError{Layer: name, Err: fmt.Errorf("%dx%d cells exceeds the layer limit", width, height)}
	}

	data := el.Child("data")
	if data == nil {
		return &CellDataError{Layer: name, Err: errors.New("no data element")}
	}
	encoding := data.Attr("encoding", "")
	compression := data.Attr("compression", "")

	gids, err := decodeCellData(encoding, compression, data.Text, width, height)
	if err != nil {
		var ue *UnsupportedEncodingError
		if errors.As(err, &ue) {
			ue.Layer = name
			return err
		}
		return &CellDataError{Layer: name, Err: err}
	}

	grid := newTileLayer(width, height, m.TileWidth, m.TileHeight)
	for y := 0; y < height; y++ {
		row := y
		if !d.params.YDown {
			row = height - 1 - y
		}
		for x := 0; x < width; x++ {
			if cell := composeCell(gids[y*width+x], m.Tilesets); cell != nil {
				grid.setCell(x, row, cell)
			}
		}
	}

	layer := &Layer{
		Name:       name,
		Visible:    el.BoolAttr("visible", true),
		Opacity:    el.FloatAttr("opacity", 1.0),
		Properties: make(Properties),
		Kind:       TileLayerKind,
		Tiles:      grid,
	}
	layer.Properties.loadProperties(el.Child("properties"))
	m.Layers = append(m.Layers, layer)
	return nil
}

// decodeCellData turns the raw text of a <data> element into exactly
// width*height stored gids, in row-major source order. Supported are csv and
// base64, the latter optionally gzip- or zlib-compressed. Compressed streams
// are consumed incrementally; both a shortfall and trailing bytes are
// errors.
func decodeCellData(encoding, compression, text string, width, height int) ([]uint32, error) {
	switch encoding {
	case "csv":
		return decodeCSV(text, width, height)
	case "base64":
		// Reject an unrecognized compression before touching the payload.
		if compression != "" && compression != "gzip" && compression != "zlib" {
			return nil, &UnsupportedEncodingError{Encoding: encoding, Compression: compression}
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("base64: %w", err)
		}
		switch compression {
		case "gzip":
			zr, err := gzip.NewReader(bytes.NewReader(raw))
			if err != nil {
				return nil, fmt.Errorf("gzip: %w", err)
			}
			defer zr.Close()
			return readCellStream(zr, width, height)
		case "zlib":
			zr, err := zlib.NewReader(bytes.NewReader(raw))
			if err != nil {
				return nil, fmt.Errorf("zlib: %w", err)
			}
			defer zr.Close()
			return readCellStream(zr, width, height)
		}
		if len(raw) != width*height*4 {
			return nil, fmt.Errorf("got %d bytes, want %d", len(raw), width*height*4)
		}
		gids := make([]uint32, width*height)
		for i := range gids {
			gids[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
		return gids, nil
	case "":
		// No encoding attribute means inline XML cell elements, which this
		// package does not decode.
		return nil, &UnsupportedEncodingError{Encoding: "xml"}
	default:
		return nil, &UnsupportedEncodingError{Encoding: encoding}
	}
}

// readCellStream reads width*height little-endian uint32 values from r and
// verifies the stream holds nothing more.
func readCellStream(r io.Reader, width, height int) ([]uint32, error) {
	gids := make([]uint32, width*height)
	var buf [4]byte
	for i := range gids {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		gids[i] = binary.LittleEndian.Uint32(buf[:])
	}
	if _, err := io.ReadFull(r, buf[:1]); err != io.EOF {
		return nil, fmt.Errorf("trailing data after %d cells", len(gids))
	}
	return gids, nil
}

func decodeCSV(text string, width, height int) ([]uint32, error) {
	tokens := strings.Split(strings.TrimSpace(text), ",")
	if len(tokens) != width*height {
		return nil, fmt.Errorf("got %d cells, want %d", len(tokens), width*height)
	}
	gids := make([]uint32, len(tokens))
	for i, tok := range tokens {
		n, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		gids[i] = uint32(n)
	}
	return gids, nil
}

// composeCell resolves one stored gid into a cell, composing the three flip
// bits into the canonical (flipH, flipV, rotation) form. A gid no tileset
// contains yields nil: the cell stays empty, it is not an error. The
// diagonal bit denotes a transpose, which combines with the axis flips into
// exactly four (flip, quarter-turn) pairs.
func composeCell(gid uint32, tilesets Tilesets) *Cell {
	flipH := gid&flagFlipHorizontal != 0
	flipV := gid&flagFlipVertical != 0
	flipD := gid&flagFlipDiagonal != 0
	id := gid &^ flagMask

	tile := tilesets.Tile(id)
	if tile == nil {
		return nil
	}

	cell := &Cell{GID: id, Tile: tile}
	if flipD {
		switch {
		case flipH && flipV:
			cell.FlipH = true
			cell.Rotation = Rotate270
		case flipH:
			cell.Rotation = Rotate270
		case flipV:
			cell.Rotation = Rotate90
		default:
			cell.FlipV = true
			cell.Rotation = Rotate270
		}
	} else {
		cell.FlipH = flipH
		cell.FlipV = flipV
	}
	return cell
}
