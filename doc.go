// Package tmx decodes maps produced by the Tiled editor (.tmx) into an
// in-memory model: tile layers with per-cell flip and rotation state, object
// layers with typed shapes, tilesets sliced from their source images, and
// the custom properties attached at every level.
//
// The package decodes documents; it does not render them or own pixel data.
// Images are obtained through an ImageResolver, either synchronously
// (DirectResolver), from a pre-staged registry (RegistryResolver after
// Loader.Dependencies), or without pixels at all (DataResolver) for purely
// data-driven consumers such as collision extraction.
//
// Tile layer data is accepted in csv and base64 encodings, the latter
// optionally gzip- or zlib-compressed. The legacy element-per-cell XML
// encoding and image layers are not supported.
package tmx
