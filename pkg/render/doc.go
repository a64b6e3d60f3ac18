// Package render serializes vdom trees to HTML.
//
// Text and attribute values are escaped. Raw nodes are written verbatim and
// must only carry trusted markup.
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(node)
//
// RenderPage wraps a body tree in a full document with doctype, head,
// stylesheets and deferred scripts.
package render
