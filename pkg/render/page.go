package render

import (
	"io"

	"github.com/safetrade/site/pkg/vdom"
)

// PageData contains everything needed to render a complete HTML document.
type PageData struct {
	// Body is the content of the body element.
	Body *vdom.VNode

	// Title is the page title.
	Title string

	// Description fills the description meta tag when set.
	Description string

	// Lang is the lang attribute of the html element. Defaults to "en".
	Lang string

	// StyleSheets are stylesheet URLs linked from the head.
	StyleSheets []string

	// Scripts are script URLs loaded with defer.
	Scripts []string

	// Alternates link the same page in other languages.
	Alternates []Alternate
}

// Alternate is a link to a translation of the page.
type Alternate struct {
	Lang string
	Href string
}

// RenderPage renders a complete HTML document to w.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	return r.RenderToWriter(w, Document(page))
}

// Document builds the html element for page.
func Document(page PageData) *vdom.VNode {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	head := []*vdom.VNode{
		vdom.Meta(vdom.Charset("utf-8")),
		vdom.Meta(vdom.Name("viewport"), vdom.Content("width=device-width, initial-scale=1")),
		vdom.If(page.Title != "", vdom.Title(vdom.Text(page.Title))),
		vdom.If(page.Description != "", vdom.Meta(vdom.Name("description"), vdom.Content(page.Description))),
	}
	for _, alt := range page.Alternates {
		head = append(head, vdom.Link(vdom.Rel("alternate"), vdom.Hreflang(alt.Lang), vdom.Href(alt.Href)))
	}
	for _, href := range page.StyleSheets {
		head = append(head, vdom.Link(vdom.Rel("stylesheet"), vdom.Href(href)))
	}
	for _, src := range page.Scripts {
		head = append(head, vdom.Script(vdom.Src(src), vdom.Defer()))
	}

	return vdom.Html(vdom.Lang(lang),
		vdom.Head(head),
		vdom.Body(page.Body),
	)
}
