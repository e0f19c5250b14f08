package tmx

import "strconv"

// Properties holds the custom key/value metadata Tiled attaches to maps,
// tilesets, tiles, layers and objects. Values are stored as the raw strings
// from the document; the getters parse on access.
type Properties map[string]string

// Has reports whether a property with the given name exists.
func (p Properties) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// GetString returns the named property, or "" if it is absent.
func (p Properties) GetString(name string) string {
	return p[name]
}

// GetInt returns the named property parsed as an int, or 0.
func (p Properties) GetInt(name string) int {
	n, _ := strconv.Atoi(p[name])
	return n
}

// GetFloat returns the named property parsed as a float64, or 0.
func (p Properties) GetFloat(name string) float64 {
	f, _ := strconv.ParseFloat(p[name], 64)
	return f
}

// GetBool returns the named property parsed as a bool. Tiled writes "true"
// and "false"; anything unparsable is false.
func (p Properties) GetBool(name string) bool {
	b, _ := strconv.ParseBool(p[name])
	return b
}

// loadProperties merges the <property> children of a <properties> element
// into p. A property without a value attribute takes its element text, which
// is how Tiled stores multiline values.
func (p Properties) loadProperties(el *Element) {
	if el == nil || el.Name != "properties" {
		return
	}
	for _, prop := range el.ChildrenNamed("property") {
		name := prop.Attr("name", "")
		if name == "" {
			continue
		}
		value, ok := prop.Attrs["value"]
		if !ok {
			value = prop.Text
		}
		p[name] = value
	}
}
