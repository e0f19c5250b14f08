package tmx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"strings"
	"testing"
	"testing/fstest"
)

// testTileset is a 64x32 image of 16px tiles: a 4x2 grid, gids 1..8.
const testTileset = `<tileset firstgid="1" name="ground" tilewidth="16" tileheight="16">
  <image source="ground.png" width="64" height="32"/>
</tileset>`

// mapDoc wraps body in a map element of the given cell size.
func mapDoc(width, height int, body string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.0" orientation="orthogonal" width="%d" height="%d" tilewidth="16" tileheight="16">
%s
</map>`, width, height, body)
}

// layerDoc builds a <layer> element holding the given data block.
func layerDoc(name string, width, height int, dataAttrs, payload string) string {
	return fmt.Sprintf(`<layer name="%s" width="%d" height="%d">
  <data %s>%s</data>
</layer>`, name, width, height, dataAttrs, payload)
}

// gidBytes packs gids as little-endian uint32s.
func gidBytes(gids []uint32) []byte {
	buf := make([]byte, 4*len(gids))
	for i, g := range gids {
		binary.LittleEndian.PutUint32(buf[i*4:], g)
	}
	return buf
}

func base64Payload(t *testing.T, gids []uint32, compression string) string {
	t.Helper()
	raw := gidBytes(gids)
	switch compression {
	case "":
	case "gzip":
		var b bytes.Buffer
		zw := gzip.NewWriter(&b)
		if _, err := zw.Write(raw); err != nil {
			t.Fatal(err)
		}
		if err := zw.Close(); err != nil {
			t.Fatal(err)
		}
		raw = b.Bytes()
	case "zlib":
		var b bytes.Buffer
		zw := zlib.NewWriter(&b)
		if _, err := zw.Write(raw); err != nil {
			t.Fatal(err)
		}
		if err := zw.Close(); err != nil {
			t.Fatal(err)
		}
		raw = b.Bytes()
	default:
		t.Fatalf("unknown compression %q", compression)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func csvPayload(gids []uint32) string {
	tokens := make([]string, len(gids))
	for i, g := range gids {
		tokens[i] = fmt.Sprint(g)
	}
	return strings.Join(tokens, ",")
}

// fixtureFS wraps a map document string as a filesystem holding map.tmx.
func fixtureFS(doc string) fstest.MapFS {
	return fstest.MapFS{"map.tmx": &fstest.MapFile{Data: []byte(doc)}}
}

// loadFixture decodes a map document given as a string, resolving images
// from their declared sizes.
func loadFixture(t *testing.T, doc string, params *Parameters) (*Map, error) {
	t.Helper()
	loader := &Loader{FS: fixtureFS(doc), Resolver: DataResolver{}}
	return loader.Load("map.tmx", params)
}

func mustLoadFixture(t *testing.T, doc string, params *Parameters) *Map {
	t.Helper()
	m, err := loadFixture(t, doc, params)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}

// pngBytes encodes a blank RGBA image of the given size.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var b bytes.Buffer
	if err := png.Encode(&b, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return b.Bytes()
}
