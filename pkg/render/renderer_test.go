package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/safetrade/site/pkg/vdom"
)

func renderString(t *testing.T, n *vdom.VNode) string {
	t.Helper()
	got, err := NewRenderer(RendererConfig{}).RenderToString(n)
	if err != nil {
		t.Fatalf("RenderToString: %v", err)
	}
	return got
}

func TestRenderElements(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.VNode
		want string
	}{
		{"text is escaped", vdom.P(`<b>"Tom" & 'Jerry'</b>`), `<p>&lt;b&gt;&quot;Tom&quot; &amp; &#39;Jerry&#39;&lt;/b&gt;</p>`},
		{"attributes sorted", vdom.Div(vdom.ID("x"), vdom.Class("c")), `<div class="c" id="x"></div>`},
		{"void element", vdom.Input(vdom.Type("email"), vdom.Name("email")), `<input name="email" type="email">`},
		{"true bool bare", vdom.Button(vdom.Disabled(true), "Send"), `<button disabled>Send</button>`},
		{"false bool omitted", vdom.Button(vdom.Disabled(false), "Send"), `<button>Send</button>`},
		{"details open", vdom.Details(vdom.Open(), vdom.Summary("Q")), `<details open><summary>Q</summary></details>`},
		{"int attribute", vdom.Textarea(vdom.Rows(5)), `<textarea rows="5"></textarea>`},
		{"attribute escaped", vdom.Input(vdom.Value("a\"b\nc")), `<input value="a&quot;b&#10;c">`},
		{"raw verbatim", vdom.Div(vdom.Raw("<i>ok</i>")), `<div><i>ok</i></div>`},
		{"fragment flattens", vdom.Fragment(vdom.Span("a"), vdom.Span("b")), `<span>a</span><span>b</span>`},
		{"nil node", nil, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderString(t, tt.node); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestRenderPretty(t *testing.T) {
	r := NewRenderer(RendererConfig{Pretty: true})
	got, err := r.RenderToString(vdom.Ul(vdom.Li("a")))
	if err != nil {
		t.Fatal(err)
	}
	want := "<ul>\n  <li>a</li>\n</ul>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	if _, err := r.RenderToString(&vdom.VNode{Kind: vdom.KindElement}); err == nil {
		t.Error("element without tag should fail")
	}
	if _, err := r.RenderToString(&vdom.VNode{Kind: vdom.VKind(99)}); err == nil {
		t.Error("unknown kind should fail")
	}

	boom := errors.New("boom")
	if err := r.RenderToWriter(failingWriter{boom}, vdom.P("x")); !errors.Is(err, boom) {
		t.Errorf("RenderToWriter() = %v, want %v", err, boom)
	}
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestRenderPage(t *testing.T) {
	var b strings.Builder
	err := NewRenderer(RendererConfig{}).RenderPage(&b, PageData{
		Title:       "Safe <Trade>",
		Description: "Managed trading",
		Lang:        "bg-BG",
		StyleSheets: []string{"/assets/site.abc.css"},
		Scripts:     []string{"/assets/live.abc.js"},
		Alternates:  []Alternate{{Lang: "en-US", Href: "/?lang=en-US"}},
		Body:        vdom.Main(vdom.ID("top")),
	})
	if err != nil {
		t.Fatal(err)
	}
	got := b.String()

	for _, want := range []string{
		"<!DOCTYPE html>\n<html lang=\"bg-BG\">",
		`<meta charset="utf-8">`,
		`<title>Safe &lt;Trade&gt;</title>`,
		`<meta content="Managed trading" name="description">`,
		`<link href="/?lang=en-US" hreflang="en-US" rel="alternate">`,
		`<link href="/assets/site.abc.css" rel="stylesheet">`,
		`<script defer src="/assets/live.abc.js"></script>`,
		`<body><main id="top"></main></body></html>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("page missing %q\n%s", want, got)
		}
	}
}

func TestRenderPageDefaultLang(t *testing.T) {
	doc := Document(PageData{})
	if doc.Props["lang"] != "en" {
		t.Errorf("lang = %v, want en", doc.Props["lang"])
	}
}
