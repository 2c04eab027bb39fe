package access

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

// State is the lifecycle position of a Dialog
type State int

const (
	StateOpen State = iota
	StateResponding
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateResponding:
		return "responding"
	default:
		return "closed"
	}
}

// Request is one AccessDialog call
type Request struct {
	Handle       dbus.ObjectPath
	Sender       string // unique bus name of the caller
	AppID        string
	ParentWindow string
	Title        string
	Subtitle     string
	Body         string
	Options      Options
}

// Response is what the caller receives once the dialog has closed
type Response struct {
	Outcome Outcome
	Results map[string]string
}

// Presenter shows and hides the dialog widget
type Presenter interface {
	// Present shows the dialog
	Present(d *Dialog) error
	// Dismiss hides the dialog and calls done once it is fully gone,
	// including any close animation
	Dismiss(d *Dialog, done func())
}

// ChoiceState is a shown choice with its current selection
type ChoiceState struct {
	Choice
	Checked bool
}

// Dialog is one access request shown to the user. It moves
// Open -> Responding -> Closed exactly once; triggers after the first are
// ignored.
type Dialog struct {
	req       *Request
	presenter Presenter

	mu       sync.Mutex
	state    State
	choices  []ChoiceState
	unexport func()
	onClosed []func(Response)

	resp      Response
	done      chan struct{}
	closeOnce sync.Once
}

// NewDialog creates an open dialog for req
func NewDialog(req *Request, presenter Presenter) *Dialog {
	d := &Dialog{
		req:       req,
		presenter: presenter,
		done:      make(chan struct{}),
	}
	for _, c := range req.Options.Checkboxes() {
		d.choices = append(d.choices, ChoiceState{Choice: c, Checked: c.Selected})
	}
	return d
}

// Request returns the request the dialog was opened for
func (d *Dialog) Request() *Request {
	return d.req
}

// State returns the current lifecycle state
func (d *Dialog) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Choices returns the shown choices and their current selection
func (d *Dialog) Choices() []ChoiceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ChoiceState(nil), d.choices...)
}

// SetChoice records the user's selection for a shown choice
func (d *Dialog) SetChoice(id string, checked bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateOpen {
		return ErrNotOpen
	}
	for i := range d.choices {
		if d.choices[i].ID == id {
			d.choices[i].Checked = checked
			return nil
		}
	}
	return fmt.Errorf("unknown choice %q", id)
}

// OnClosed registers fn to run after the dialog reaches Closed
func (d *Dialog) OnClosed(fn func(Response)) {
	d.mu.Lock()
	if d.state != StateClosed {
		d.onClosed = append(d.onClosed, fn)
		d.mu.Unlock()
		return
	}
	resp := d.resp
	d.mu.Unlock()
	fn(resp)
}

// Grant answers the request positively
func (d *Dialog) Grant() { d.respond(Granted) }

// Deny answers the request negatively
func (d *Dialog) Deny() { d.respond(Denied) }

// Dismiss handles the window's close control, answered like Deny
func (d *Dialog) Dismiss() { d.respond(Denied) }

// Cancel closes the dialog on behalf of the caller. Only the connection that
// made the request may cancel it; anyone else gets ErrForbidden and the
// dialog stays open.
func (d *Dialog) Cancel(sender string) error {
	if sender != d.req.Sender {
		return fmt.Errorf("%w: %s did not open request %s", ErrForbidden, sender, d.req.Handle)
	}
	d.respond(Closed)
	return nil
}

// Done is closed once the response is available
func (d *Dialog) Done() <-chan struct{} {
	return d.done
}

// Response returns the final response. It is only meaningful after Done.
func (d *Dialog) Response() Response {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resp
}

// Wait blocks until the dialog has closed or ctx is done
func (d *Dialog) Wait(ctx context.Context) (Response, error) {
	select {
	case <-d.done:
		return d.Response(), nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// setEndpoint records how to remove the per-request endpoint
func (d *Dialog) setEndpoint(unexport func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unexport = unexport
}

func (d *Dialog) respond(outcome Outcome) {
	d.mu.Lock()
	if d.state != StateOpen {
		d.mu.Unlock()
		return
	}
	d.state = StateResponding

	// The endpoint goes away before anything is sent so a late Close()
	// cannot race the response
	unexport := d.unexport
	d.unexport = nil

	results := map[string]string{}
	if outcome == Granted {
		for _, c := range d.choices {
			if c.Checked {
				results[c.ID] = "true"
			} else {
				results[c.ID] = "false"
			}
		}
	}
	d.resp = Response{Outcome: outcome, Results: results}
	d.mu.Unlock()

	if unexport != nil {
		unexport()
	}

	if d.presenter == nil {
		d.finish()
		return
	}
	d.presenter.Dismiss(d, d.finish)
}

// finish runs when the widget is gone. It resolves the response exactly once.
func (d *Dialog) finish() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.state = StateClosed
		resp := d.resp
		hooks := d.onClosed
		d.onClosed = nil
		d.mu.Unlock()

		// hooks free the service slot, so they run before waiters wake
		for _, fn := range hooks {
			fn(resp)
		}
		close(d.done)
	})
}
