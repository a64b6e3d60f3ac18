// Package widget holds the stateful page widgets: the contact form, the
// testimonial carousel and the FAQ accordion.
//
// A widget lives for as long as it is mounted, which for the live site means
// one WebSocket connection. State changes are announced through an OnChange
// callback; callers read the current state with Snapshot. Dispose unmounts a
// widget: pending timers and submissions are cancelled and late callbacks
// become no-ops.
//
// Contact form lifecycle:
//
//	Idle --Submit (valid)--> Submitting --submitter ok--> Submitted --5s--> Idle
//	Idle --Submit (invalid)--> Idle (field errors shown)
//	Submitting --submitter error--> Idle (Failure set, fields kept)
package widget
