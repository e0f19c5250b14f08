package tmx

import (
	"encoding/xml"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
)

// Element is one node of a parsed TMX/TSX document: a named tag with string
// attributes, ordered children and accumulated character data.
type Element struct {
	Name     string
	Attrs    map[string]string
	Children []*Element
	Text     string
}

// Attr returns the named attribute, or def if it is absent.
func (e *Element) Attr(name, def string) string {
	if v, ok := e.Attrs[name]; ok {
		return v
	}
	return def
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attrs[name]
	return ok
}

// IntAttr returns the named attribute parsed as an int, or def if the
// attribute is absent or not a number.
func (e *Element) IntAttr(name string, def int) int {
	v, ok := e.Attrs[name]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// UintAttr returns the named attribute parsed as a uint32, or def if the
// attribute is absent or not a number. Tile gids use the full 32-bit range.
func (e *Element) UintAttr(name string, def uint32) uint32 {
	v, ok := e.Attrs[name]
	if !ok {
		return def
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return def
	}
	return uint32(n)
}

// FloatAttr returns the named attribute parsed as a float64, or def if the
// attribute is absent or not a number.
func (e *Element) FloatAttr(name string, def float64) float64 {
	v, ok := e.Attrs[name]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// BoolAttr interprets the named attribute as Tiled's 0/1 flag, or def if it
// is absent.
func (e *Element) BoolAttr(name string, def bool) bool {
	v, ok := e.Attrs[name]
	if !ok {
		return def
	}
	return strings.TrimSpace(v) != "0"
}

// Child returns the first child with the given tag name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all direct children with the given tag name, in
// document order.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// parseElement reads an XML document from r and returns its root element.
func parseElement(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var stack []*Element
	var root *Element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local, Attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				el.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			} else if root == nil {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, io.ErrUnexpectedEOF
	}
	return root, nil
}

// parseDocument opens a path in fsys and parses it into an element tree.
func parseDocument(fsys fs.FS, name string) (*Element, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, &DocumentError{Path: name, Err: err}
	}
	defer f.Close()
	root, err := parseElement(f)
	if err != nil {
		return nil, &DocumentError{Path: name, Err: err}
	}
	return root, nil
}

// relativePath resolves rel against the directory of base. Both slash kinds
// and ".." segments are supported; the result is an io/fs style slash path.
func relativePath(base, rel string) string {
	rel = strings.ReplaceAll(rel, `\`, "/")
	return path.Clean(path.Join(path.Dir(base), rel))
}
