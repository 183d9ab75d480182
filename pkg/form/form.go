package form

import (
	"context"
	"errors"

	"github.com/goliatone/go-resource/pkg/resource"
)

// State is the form container's position in the edit/save lifecycle.
type State string

const (
	// StateClean: working state matches original, save disabled.
	StateClean State = "clean"
	// StateDirty: edits pending, save enabled when constraints pass.
	StateDirty State = "dirty"
	// StateSaving: a save is in flight, save disabled against duplicates.
	StateSaving State = "saving"
	// StateError: the last save or delete failed; effectively dirty, the
	// error is surfaced and save is re-enabled for retry.
	StateError State = "error"
)

// ErrClosed is returned by operations on a form after Close.
var ErrClosed = errors.New("form: form is closed")

// Form binds a resource model to a set of bound fields and drives the
// Clean/Dirty/Saving/Error lifecycle around the model's save and delete
// operations. The form subscribes to the model on construction so derived
// state stays consistent even when a change originates elsewhere (for
// example a programmatic revert); Close unregisters that subscription.
type Form struct {
	model *resource.Model

	state       State
	lastErr     error
	unsubscribe func()
	closed      bool
}

// New binds a form container to a model.
func New(model *resource.Model) *Form {
	f := &Form{model: model}
	f.state = f.restingState()
	f.unsubscribe = model.Subscribe(f.onModelEvent)
	return f
}

// Model returns the bound model.
func (f *Form) Model() *resource.Model { return f.model }

// State returns the current lifecycle state.
func (f *Form) State() State { return f.state }

// Err returns the failure surfaced by the last save or delete. It is
// cleared by the next successful operation or by Revert; an edit moves the
// form back to Dirty but keeps the message visible for the user.
func (f *Form) Err() error { return f.lastErr }

// Fields returns one bound field per schema attribute in stable order.
func (f *Form) Fields() []Field {
	desc := f.model.Descriptor()
	names := desc.AttributeNames()
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, Field{
			model: f.model,
			name:  name,
			label: Label(name),
			kind:  kindOf(desc.Schema[name]),
		})
	}
	return fields
}

// Field looks up the bound field for one attribute.
func (f *Form) Field(name string) (Field, bool) {
	desc := f.model.Descriptor()
	if _, ok := desc.Schema[name]; !ok {
		return Field{}, false
	}
	return Field{
		model: f.model,
		name:  name,
		label: Label(name),
		kind:  kindOf(desc.Schema[name]),
	}, true
}

// CanSave gates the save control: the model must allow a save and no save
// may already be in flight.
func (f *Form) CanSave() bool {
	if f.closed || f.state == StateSaving {
		return false
	}
	return f.model.CanSave()
}

// Save runs the model save inside the Saving state. Failures transition to
// Error with the cause surfaced; success returns the form to Clean.
func (f *Form) Save(ctx context.Context) error {
	if f.closed {
		return ErrClosed
	}
	if f.state == StateSaving {
		return resource.ErrSaveInFlight
	}

	f.state = StateSaving
	if err := f.model.Save(ctx); err != nil {
		f.state = StateError
		f.lastErr = err
		return err
	}
	f.lastErr = nil
	f.state = f.restingState()
	return nil
}

// Delete removes the record after the container confirmed the action with
// the user. A failed delete leaves the record editable with the error
// surfaced.
func (f *Form) Delete(ctx context.Context) error {
	if f.closed {
		return ErrClosed
	}
	if f.state == StateSaving {
		return resource.ErrSaveInFlight
	}
	if err := f.model.Delete(ctx); err != nil {
		f.state = StateError
		f.lastErr = err
		return err
	}
	f.lastErr = nil
	f.state = StateClean
	return nil
}

// Revert discards pending edits and clears any surfaced error.
func (f *Form) Revert() {
	if f.closed {
		return
	}
	f.lastErr = nil
	f.model.Revert()
}

// Close unregisters the model subscription. Safe to call more than once;
// notifications after Close are no-ops on this form.
func (f *Form) Close() {
	if f.closed {
		return
	}
	f.closed = true
	if f.unsubscribe != nil {
		f.unsubscribe()
	}
}

// onModelEvent recomputes derived state when the model changes, whatever
// the origin of the change. Events arriving mid-save (the model notifies
// EventSaved before Save returns) leave the Saving state alone; Save itself
// settles the final state.
func (f *Form) onModelEvent(event resource.Event) {
	if f.closed || f.state == StateSaving {
		return
	}
	switch event.Kind {
	case resource.EventReverted:
		f.lastErr = nil
		f.state = f.restingState()
	default:
		f.state = f.restingState()
	}
}

func (f *Form) restingState() State {
	if f.model.IsDirty() {
		return StateDirty
	}
	return StateClean
}
