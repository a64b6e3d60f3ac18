// Package live serves the /live WebSocket endpoint.
//
// Each connection is a Session: it mounts its own contact form, testimonial
// carousel and FAQ accordion, applies the events the browser sends, and
// answers with re-rendered widget fragments. The widgets are disposed when
// the connection ends.
//
// Wire format (JSON text frames):
//
//	→ {"widget":"contact","type":"input","field":"email","value":"a@b.co","seq":7}
//	→ {"widget":"contact","type":"submit"}
//	→ {"widget":"testimonials","type":"next"}
//	→ {"widget":"testimonials","type":"select","index":3}
//	→ {"widget":"faq","type":"toggle","index":2}
//	← {"widget":"contact","html":"<div data-widget=\"contact\" ...>","seq":7}
//
// The upgrade request carries the page's query string. A session opened
// from /?sent=1 mounts the contact form on its confirmation view, and t
// positions the testimonial carousel.
package live
