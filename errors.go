package tmx

import "fmt"

// DocumentError reports a map or external tileset document that could not be
// read or parsed.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("tmx: read document %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// UnsupportedEncodingError reports a tile layer whose data block uses an
// encoding or compression this package does not handle. The absent encoding
// attribute (Tiled's legacy plain-XML cells) is reported as "xml".
type UnsupportedEncodingError struct {
	Layer       string
	Encoding    string
	Compression string
}

func (e *UnsupportedEncodingError) Error() string {
	if e.Compression != "" {
		return fmt.Sprintf("tmx: layer %q: unrecognized compression %q", e.Layer, e.Compression)
	}
	return fmt.Sprintf("tmx: layer %q: unsupported encoding %q", e.Layer, e.Encoding)
}

// CellDataError reports malformed cell data inside a layer: a byte or token
// count mismatch, a decompression failure, or an unparsable numeric token.
type CellDataError struct {
	Layer string
	Err   error
}

func (e *CellDataError) Error() string {
	return fmt.Sprintf("tmx: layer %q: malformed cell data: %v", e.Layer, e.Err)
}

func (e *CellDataError) Unwrap() error { return e.Err }

// MissingImageError reports a tileset image that could not be resolved.
type MissingImageError struct {
	Tileset string
	Source  string
	Err     error
}

func (e *MissingImageError) Error() string {
	return fmt.Sprintf("tmx: tileset %q: resolve image %s: %v", e.Tileset, e.Source, e.Err)
}

func (e *MissingImageError) Unwrap() error { return e.Err }
