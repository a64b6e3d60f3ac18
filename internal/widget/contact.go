package widget

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/safetrade/site/internal/clock"
	"github.com/safetrade/site/internal/i18n"
)

var (
	// ErrDisposed is returned by operations on an unmounted widget.
	ErrDisposed = errors.New("widget: disposed")
	// ErrNotEditable is returned while the confirmation view is showing.
	ErrNotEditable = errors.New("widget: form not editable while submitted")
	// ErrSubmitInFlight is returned when a submission is already running.
	ErrSubmitInFlight = errors.New("widget: submission in flight")
	// ErrInvalid is returned by Submit when validation fails.
	ErrInvalid = errors.New("widget: form has errors")
	// ErrUnknownField is returned for a field name outside the form.
	ErrUnknownField = errors.New("widget: unknown field")
)

// DefaultSuccessDisplay is how long the confirmation view stays up.
const DefaultSuccessDisplay = 5000 * time.Millisecond

// Field names a contact form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// Fields lists the form inputs in display order.
var Fields = []Field{FieldName, FieldEmail, FieldMessage}

// ParseField maps an input name to a Field.
func ParseField(name string) (Field, bool) {
	switch Field(name) {
	case FieldName, FieldEmail, FieldMessage:
		return Field(name), true
	}
	return "", false
}

// State is the submission state of the contact form.
type State int

const (
	Idle State = iota
	Submitting
	Submitted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Form holds the contact form inputs.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Get returns the value of f.
func (f Form) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldMessage:
		return f.Message
	}
	return ""
}

// Submission returns the trimmed form as a submission stamped with locale
// and at.
func (f Form) Submission(locale string, at time.Time) Submission {
	return Submission{
		Name:       strings.TrimSpace(f.Name),
		Email:      strings.TrimSpace(f.Email),
		Message:    strings.TrimSpace(f.Message),
		Locale:     locale,
		ReceivedAt: at,
	}
}

func (f *Form) set(field Field, v string) {
	switch field {
	case FieldName:
		f.Name = v
	case FieldEmail:
		f.Email = v
	case FieldMessage:
		f.Message = v
	}
}

// Message keys used for validation and delivery failures.
const (
	KeyNameRequired    = "contact.form.errors.nameRequired"
	KeyEmailRequired   = "contact.form.errors.emailRequired"
	KeyEmailInvalid    = "contact.form.errors.emailInvalid"
	KeyMessageRequired = "contact.form.errors.messageRequired"
	KeySendFailed      = "contact.form.errors.sendFailed"
	KeyRateLimited     = "contact.form.errors.rateLimited"
)

// emailPattern is a structural check only: something@something.something
// with no whitespace.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Validate checks form and returns one message per failing field. An empty
// map means the form is valid.
func Validate(form Form, tr i18n.Translator) map[Field]string {
	if tr == nil {
		tr = i18n.Keys
	}
	errs := make(map[Field]string)
	if strings.TrimSpace(form.Name) == "" {
		errs[FieldName] = tr.T(KeyNameRequired)
	}
	if strings.TrimSpace(form.Email) == "" {
		errs[FieldEmail] = tr.T(KeyEmailRequired)
	} else if !emailPattern.MatchString(form.Email) {
		errs[FieldEmail] = tr.T(KeyEmailInvalid)
	}
	if strings.TrimSpace(form.Message) == "" {
		errs[FieldMessage] = tr.T(KeyMessageRequired)
	}
	return errs
}

// ContactSnapshot is a copy of the contact widget's state.
type ContactSnapshot struct {
	Form    Form
	Errors  map[Field]string
	State   State
	Failure string
}

// SubmitDisabled reports whether the submit control is disabled.
func (s ContactSnapshot) SubmitDisabled() bool { return s.State == Submitting }

// ContactOptions configures a contact widget.
type ContactOptions struct {
	// Translator resolves validation and failure messages.
	// Default: i18n.Keys.
	Translator i18n.Translator

	// Submitter delivers valid submissions.
	// Default: Simulated on Clock with DefaultSubmitDelay.
	Submitter Submitter

	// Clock drives the success display timer. Default: clock.Real().
	Clock clock.Clock

	// SuccessDisplay is how long Submitted lasts before returning to Idle.
	// Default: DefaultSuccessDisplay.
	SuccessDisplay time.Duration

	// OnChange is called, outside the widget lock, after every state change.
	// It is never called after Dispose returns; Dispose waits for a running
	// call to finish, so OnChange must not call Dispose.
	OnChange func()
}

// Contact is the contact form widget.
type Contact struct {
	tr             i18n.Translator
	submitter      Submitter
	clock          clock.Clock
	successDisplay time.Duration
	onChange       func()

	// notifyMu serializes OnChange calls with Dispose.
	notifyMu sync.Mutex

	mu       sync.Mutex
	form     Form
	errors   map[Field]string
	state    State
	failure  string
	gen      uint64
	cancel   context.CancelFunc
	reset    clock.Timer
	disposed bool

	inflight sync.WaitGroup
}

// NewContact mounts a contact widget with empty fields in the Idle state.
func NewContact(opts ContactOptions) *Contact {
	c := &Contact{
		tr:             opts.Translator,
		submitter:      opts.Submitter,
		clock:          opts.Clock,
		successDisplay: opts.SuccessDisplay,
		onChange:       opts.OnChange,
		errors:         make(map[Field]string),
	}
	if c.tr == nil {
		c.tr = i18n.Keys
	}
	if c.clock == nil {
		c.clock = clock.Real()
	}
	if c.submitter == nil {
		c.submitter = NewSimulated(c.clock)
	}
	if c.successDisplay <= 0 {
		c.successDisplay = DefaultSuccessDisplay
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Contact) Snapshot() ContactSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Contact) snapshotLocked() ContactSnapshot {
	errs := make(map[Field]string, len(c.errors))
	for k, v := range c.errors {
		errs[k] = v
	}
	return ContactSnapshot{Form: c.form, Errors: errs, State: c.state, Failure: c.failure}
}

// UpdateField sets one input and clears that input's error. Other errors are
// left alone.
func (c *Contact) UpdateField(field Field, value string) error {
	if _, ok := ParseField(string(field)); !ok {
		return ErrUnknownField
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.state == Submitted {
		c.mu.Unlock()
		return ErrNotEditable
	}
	c.form.set(field, value)
	delete(c.errors, field)
	c.failure = ""
	c.mu.Unlock()

	c.notify()
	return nil
}

// Validate recomputes the field errors from scratch and reports whether the
// form is valid.
func (c *Contact) Validate() bool {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return false
	}
	c.errors = Validate(c.form, c.tr)
	ok := len(c.errors) == 0
	c.mu.Unlock()

	c.notify()
	return ok
}

// Submit validates the form and, when valid, starts a submission. It returns
// ErrInvalid when validation fails; errors are then visible in Snapshot.
func (c *Contact) Submit() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	switch c.state {
	case Submitting:
		c.mu.Unlock()
		return ErrSubmitInFlight
	case Submitted:
		c.mu.Unlock()
		return ErrNotEditable
	}

	c.failure = ""
	c.errors = Validate(c.form, c.tr)
	if len(c.errors) > 0 {
		c.mu.Unlock()
		c.notify()
		return ErrInvalid
	}

	c.state = Submitting
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	sub := c.form.Submission(c.tr.Locale(), c.clock.Now())
	c.inflight.Add(1)
	c.mu.Unlock()

	c.notify()

	go func() {
		defer c.inflight.Done()
		c.complete(gen, c.submitter.Submit(ctx, sub))
	}()
	return nil
}

// ShowConfirmation puts the widget straight into Submitted with empty
// fields, as after a delivered submission, and starts the success display
// timer. It is used when the page was reached through the form fallback's
// redirect.
func (c *Contact) ShowConfirmation() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.state == Submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	if c.reset != nil {
		c.reset.Stop()
	}
	c.gen++
	gen := c.gen
	c.state = Submitted
	c.form = Form{}
	c.errors = make(map[Field]string)
	c.failure = ""
	c.reset = c.clock.AfterFunc(c.successDisplay, func() { c.expire(gen) })
	c.mu.Unlock()

	c.notify()
	return nil
}

// complete applies the outcome of submission gen.
func (c *Contact) complete(gen uint64, err error) {
	c.mu.Lock()
	if c.disposed || gen != c.gen || c.state != Submitting {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if err != nil {
		c.state = Idle
		if errors.Is(err, ErrRateLimited) {
			c.failure = c.tr.T(KeyRateLimited)
		} else {
			c.failure = c.tr.T(KeySendFailed)
		}
		c.mu.Unlock()
		c.notify()
		return
	}

	c.state = Submitted
	c.form = Form{}
	c.errors = make(map[Field]string)
	c.reset = c.clock.AfterFunc(c.successDisplay, func() { c.expire(gen) })
	c.mu.Unlock()

	c.notify()
}

// expire ends the confirmation view of submission gen.
func (c *Contact) expire(gen uint64) {
	c.mu.Lock()
	if c.disposed || gen != c.gen || c.state != Submitted {
		c.mu.Unlock()
		return
	}
	c.state = Idle
	c.reset = nil
	c.mu.Unlock()

	c.notify()
}

// Dispose unmounts the widget. It cancels a running submission and the
// success timer, and waits for a running OnChange call. Safe to call more
// than once.
func (c *Contact) Dispose() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.reset != nil {
		c.reset.Stop()
		c.reset = nil
	}
}

// Wait blocks until no submission goroutine is running.
func (c *Contact) Wait() {
	c.inflight.Wait()
}

func (c *Contact) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	disposed := c.disposed
	c.mu.Unlock()
	if disposed || c.onChange == nil {
		return
	}
	c.onChange()
}
