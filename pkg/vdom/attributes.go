package vdom

import (
	"strconv"
	"strings"
)

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Attribute sets an arbitrary attribute.
func Attribute(key string, value any) Attr { return attr(key, value) }

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
// Empty class names are dropped.
func Class(classes ...string) Attr {
	kept := classes[:0:0]
	for _, c := range classes {
		if c != "" {
			kept = append(kept, c)
		}
	}
	return attr("class", strings.Join(kept, " "))
}

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Accessibility attributes

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attr { return attr("aria-hidden", strconv.FormatBool(hidden)) }

// AriaExpanded sets the aria-expanded attribute.
func AriaExpanded(expanded bool) Attr { return attr("aria-expanded", strconv.FormatBool(expanded)) }

// AriaControls sets the aria-controls attribute.
func AriaControls(id string) Attr { return attr("aria-controls", id) }

// AriaDescribedBy sets the aria-describedby attribute.
func AriaDescribedBy(id string) Attr { return attr("aria-describedby", id) }

// AriaInvalid sets the aria-invalid attribute.
func AriaInvalid(invalid bool) Attr { return attr("aria-invalid", strconv.FormatBool(invalid)) }

// AriaLive sets the aria-live attribute.
func AriaLive(mode string) Attr { return attr("aria-live", mode) }

// AriaBusy sets the aria-busy attribute.
func AriaBusy(busy bool) Attr { return attr("aria-busy", strconv.FormatBool(busy)) }

// TitleAttr sets the title attribute (named to avoid conflict with Title element).
func TitleAttr(title string) Attr { return attr("title", title) }

// Lang sets the lang attribute.
func Lang(lang string) Attr { return attr("lang", lang) }

// Link attributes

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Rel sets the rel attribute.
func Rel(rel string) Attr { return attr("rel", rel) }

// Hreflang sets the hreflang attribute.
func Hreflang(lang string) Attr { return attr("hreflang", lang) }

// Src sets the src attribute.
func Src(src string) Attr { return attr("src", src) }

// Defer sets the defer attribute.
func Defer() Attr { return attr("defer", true) }

// Form attributes

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Value sets the value attribute.
func Value(value string) Attr { return attr("value", value) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// For sets the for attribute on a label.
func For(id string) Attr { return attr("for", id) }

// Action sets the action attribute on a form.
func Action(url string) Attr { return attr("action", url) }

// Method sets the method attribute on a form.
func Method(m string) Attr { return attr("method", m) }

// Rows sets the rows attribute on a textarea.
func Rows(n int) Attr { return attr("rows", n) }

// Autocomplete sets the autocomplete attribute.
func Autocomplete(value string) Attr { return attr("autocomplete", value) }

// NoValidate sets the novalidate attribute on a form.
func NoValidate() Attr { return attr("novalidate", true) }

// Disabled sets the disabled attribute when disabled is true.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }

// Open sets the open attribute on a details element.
func Open() Attr { return attr("open", true) }

// Meta attributes

// Charset sets the charset attribute.
func Charset(cs string) Attr { return attr("charset", cs) }

// Content sets the content attribute on a meta element.
func Content(c string) Attr { return attr("content", c) }

// Table attributes

// Scope sets the scope attribute on a table header.
func Scope(s string) Attr { return attr("scope", s) }

// Live wiring

// LiveWidget marks the root element of a live widget fragment.
func LiveWidget(name string) Attr { return Data("widget", name) }

// LiveEvent names the event an element sends to its widget.
func LiveEvent(event string) Attr { return Data("event", event) }
