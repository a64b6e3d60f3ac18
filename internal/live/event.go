package live

// Event types sent by the browser.
const (
	EventInput  = "input"
	EventSubmit = "submit"
	EventNext   = "next"
	EventPrev   = "prev"
	EventSelect = "select"
	EventToggle = "toggle"
)

// Event is an inbound message. Seq numbers input events; the browser
// increments it on every keystroke.
type Event struct {
	Widget string `json:"widget"`
	Type   string `json:"type"`
	Field  string `json:"field,omitempty"`
	Value  string `json:"value,omitempty"`
	Index  int    `json:"index,omitempty"`
	Seq    uint64 `json:"seq,omitempty"`
}

// Fragment is an outbound message replacing one widget's markup.
//
// Contact fragments carry the Seq of the last input event applied before
// they were rendered. A fragment whose Seq is behind the browser's latest
// input does not hold that keystroke yet, so the browser keeps the focused
// field's own value.
type Fragment struct {
	Widget string `json:"widget"`
	HTML   string `json:"html"`
	Seq    uint64 `json:"seq,omitempty"`
}
