package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/safetrade/site/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Development only.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces.
	Indent string
}

// Renderer renders VNode trees to HTML. A Renderer holds no per-render
// state and may be shared between goroutines.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a VNode tree to w.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	sw := &stickyWriter{w: w}
	if err := r.renderNode(sw, node, 0); err != nil {
		return err
	}
	return sw.err
}

// stickyWriter remembers the first write error and drops later writes.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) WriteString(str string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}

func (r *Renderer) renderNode(w *stickyWriter, node *vdom.VNode, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node, depth)
	case vdom.KindText:
		w.WriteString(escapeHTML(node.Text))
	case vdom.KindFragment:
		for _, child := range node.Children {
			if err := r.renderNode(w, child, depth); err != nil {
				return err
			}
		}
	case vdom.KindRaw:
		w.WriteString(node.Text)
	default:
		return fmt.Errorf("render: unknown node kind %d", node.Kind)
	}
	return nil
}

func (r *Renderer) renderElement(w *stickyWriter, node *vdom.VNode, depth int) error {
	tag := node.Tag
	if tag == "" {
		return fmt.Errorf("render: element without tag")
	}

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}
	w.WriteString("<")
	w.WriteString(tag)
	renderAttributes(w, node.Props)
	w.WriteString(">")

	if vdom.IsVoidElement(tag) {
		if r.config.Pretty {
			w.WriteString("\n")
		}
		return nil
	}

	block := r.config.Pretty && hasElementChild(node) && !inlineElements[tag]
	if block {
		w.WriteString("\n")
	}
	for _, child := range node.Children {
		if err := r.renderNode(w, child, depth+1); err != nil {
			return err
		}
	}
	if block {
		r.writeIndent(w, depth)
	}

	w.WriteString("</")
	w.WriteString(tag)
	w.WriteString(">")
	if r.config.Pretty {
		w.WriteString("\n")
	}
	return w.err
}

// renderAttributes writes props in key order. true booleans render as bare
// attributes and false booleans are omitted.
func renderAttributes(w *stickyWriter, props vdom.Props) {
	if len(props) == 0 {
		return
	}
	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := props[key].(type) {
		case nil:
			continue
		case bool:
			if v {
				w.WriteString(" " + key)
			}
		default:
			w.WriteString(" " + key + `="` + escapeAttr(attrToString(v)) + `"`)
		}
	}
}

func attrToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func hasElementChild(node *vdom.VNode) bool {
	for _, c := range node.Children {
		if c != nil && c.Kind != vdom.KindText {
			return true
		}
	}
	return false
}

var inlineElements = map[string]bool{
	"a":        true,
	"button":   true,
	"label":    true,
	"span":     true,
	"strong":   true,
	"textarea": true,
	"title":    true,
	"td":       true,
	"th":       true,
}

func (r *Renderer) writeIndent(w *stickyWriter, depth int) {
	w.WriteString(strings.Repeat(r.config.Indent, depth))
}
