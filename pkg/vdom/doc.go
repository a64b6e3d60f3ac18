// Package vdom provides the virtual node tree the site is rendered from.
//
// Pages and widget fragments are built as VNode trees with variadic element
// constructors and rendered to HTML by package render:
//
//	Section(ID("contact"), Class("section"),
//	    H2(Text(tr.T("contact.title"))),
//	    Form(Method("post"), Action("/contact"), ...),
//	)
//
// Arguments to an element constructor may be nil, Attr, []Attr, *VNode,
// []*VNode or string. Nil arguments are skipped so optional attributes and
// children can be written inline with If.
//
// Live widgets are wired with data attributes (LiveWidget, LiveEvent) that
// the browser script reads; the tree itself carries no handlers.
package vdom
