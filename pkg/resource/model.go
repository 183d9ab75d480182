package resource

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Model is one record of a remote resource type. It tracks the authoritative
// state as last loaded or saved (original) next to the working state edited
// by the UI (attributes), and exposes dirty checking, revert and the
// save/delete lifecycle on top of a Client.
//
// A Model assumes a single mutator, matching an event-driven UI: it is not
// safe for concurrent use from multiple goroutines.
type Model struct {
	desc   Descriptor
	client Client

	id         string
	attributes map[string]any
	original   map[string]any

	listeners    map[int]Listener
	nextListener int

	saving  bool
	deleted bool
}

// New constructs a not-yet-created record with the schema defaults as both
// working and original state.
func New(desc Descriptor, client Client) (*Model, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("resource: client is required")
	}
	desc.Root = normalizeRoot(desc.Root)
	return &Model{
		desc:       desc,
		client:     client,
		attributes: desc.defaults(),
		original:   desc.defaults(),
		listeners:  make(map[int]Listener),
	}, nil
}

// Hydrate constructs an existing record from a fetched representation.
// Payload keys outside the schema are ignored; missing keys keep the schema
// default. The identifier is read from the descriptor's IDField.
func Hydrate(desc Descriptor, client Client, payload map[string]any) (*Model, error) {
	m, err := New(desc, client)
	if err != nil {
		return nil, err
	}
	m.apply(payload)
	return m, nil
}

// Load fetches the record with the given id and hydrates a model from it.
func Load(ctx context.Context, desc Descriptor, client Client, id string) (*Model, error) {
	m, err := New(desc, client)
	if err != nil {
		return nil, err
	}
	payload, err := client.Fetch(ctx, m.desc.Root, id)
	if err != nil {
		return nil, err
	}
	m.apply(payload)
	if m.id == "" {
		m.id = id
	}
	return m, nil
}

// Descriptor returns the configuration backing this model.
func (m *Model) Descriptor() Descriptor { return m.desc }

// ID returns the record identifier, empty for a not-yet-created record.
func (m *Model) ID() string { return m.id }

// IsNew reports whether the record has never been persisted.
func (m *Model) IsNew() bool { return m.id == "" }

// IsDeleted reports whether Delete succeeded on this record.
func (m *Model) IsDeleted() bool { return m.deleted }

// Saving reports whether a save is currently in flight.
func (m *Model) Saving() bool { return m.saving }

// Get returns the working value of one attribute. Unknown names return nil.
func (m *Model) Get(name string) any {
	return m.attributes[name]
}

// Set updates one working attribute and notifies subscribers. Names outside
// the schema are rejected so attributes always hold exactly the schema keys.
func (m *Model) Set(name string, value any) error {
	if m.deleted {
		return ErrDeleted
	}
	if _, ok := m.desc.Schema[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	m.attributes[name] = value
	m.notify(Event{Kind: EventSet, Field: name})
	return nil
}

// Attributes returns a copy of the working state.
func (m *Model) Attributes() map[string]any {
	return copyAttributes(m.attributes)
}

// Original returns a copy of the last-synced state.
func (m *Model) Original() map[string]any {
	return copyAttributes(m.original)
}

// IsDirty reports whether any working attribute differs from original.
func (m *Model) IsDirty() bool {
	return !reflect.DeepEqual(m.attributes, m.original)
}

// DirtyFields lists the attributes that differ from original, sorted.
func (m *Model) DirtyFields() []string {
	var dirty []string
	for name, value := range m.attributes {
		if !reflect.DeepEqual(value, m.original[name]) {
			dirty = append(dirty, name)
		}
	}
	sort.Strings(dirty)
	return dirty
}

// CanSave reports whether the save action should be enabled: the record is
// dirty or new, every required attribute is non-empty, and the record has
// not been deleted. Unsatisfied constraints never error, they just gate.
func (m *Model) CanSave() bool {
	if m.deleted {
		return false
	}
	if !m.IsDirty() && !m.IsNew() {
		return false
	}
	for _, name := range m.desc.Required {
		if isEmptyValue(m.attributes[name]) {
			return false
		}
	}
	return true
}

// Save persists the working state: a create when the record is new, an
// update otherwise. On success original is replaced with the attributes as
// captured at the moment of the call and a backend-assigned identifier is
// adopted. On failure both attribute sets are left untouched and the error
// is returned, so the record stays dirty and the user can retry.
//
// A Save while another is in flight returns ErrSaveInFlight; edits made
// during the flight are kept and show up as dirtiness after success.
func (m *Model) Save(ctx context.Context) error {
	if m.deleted {
		return ErrDeleted
	}
	if m.saving {
		return ErrSaveInFlight
	}
	m.saving = true
	defer func() { m.saving = false }()

	snapshot := copyAttributes(m.attributes)

	if m.IsNew() {
		payload, err := m.client.Create(ctx, m.desc.Root, snapshot)
		if err != nil {
			return err
		}
		if raw, ok := payload[m.desc.idField()]; ok {
			m.id = formatID(raw)
		}
	} else {
		if _, err := m.client.Update(ctx, m.desc.Root, m.id, snapshot); err != nil {
			return err
		}
	}

	m.original = snapshot
	m.notify(Event{Kind: EventSaved})
	return nil
}

// Delete removes the record from its collection. Deleting a record that was
// never persisted succeeds locally without a backend call. On failure the
// record is unchanged and the error is surfaced.
func (m *Model) Delete(ctx context.Context) error {
	if m.deleted {
		return ErrDeleted
	}
	if !m.IsNew() {
		if err := m.client.Delete(ctx, m.desc.Root, m.id); err != nil {
			return err
		}
	}
	m.deleted = true
	m.notify(Event{Kind: EventDeleted})
	return nil
}

// Fetch reloads the record from the backend, replacing both the working and
// the original state.
func (m *Model) Fetch(ctx context.Context) error {
	if m.deleted {
		return ErrDeleted
	}
	if m.IsNew() {
		return fmt.Errorf("resource: cannot fetch a record without an id")
	}
	payload, err := m.client.Fetch(ctx, m.desc.Root, m.id)
	if err != nil {
		return err
	}
	m.apply(payload)
	m.notify(Event{Kind: EventFetched})
	return nil
}

// Revert discards working changes, resetting attributes to original.
func (m *Model) Revert() {
	m.attributes = copyAttributes(m.original)
	m.notify(Event{Kind: EventReverted})
}

// Subscribe registers a change listener fired after every mutating
// operation. The returned function deregisters the listener and is safe to
// call more than once.
func (m *Model) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	token := m.nextListener
	m.nextListener++
	m.listeners[token] = fn
	return func() {
		delete(m.listeners, token)
	}
}

// DeleteConfirmMessage returns the per-type confirmation wording, falling
// back to a generic message.
func (m *Model) DeleteConfirmMessage() string {
	if strings.TrimSpace(m.desc.DeleteConfirm) != "" {
		return m.desc.DeleteConfirm
	}
	return DefaultDeleteConfirm
}

func (m *Model) notify(event Event) {
	if len(m.listeners) == 0 {
		return
	}
	tokens := make([]int, 0, len(m.listeners))
	for token := range m.listeners {
		tokens = append(tokens, token)
	}
	sort.Ints(tokens)
	for _, token := range tokens {
		if fn, ok := m.listeners[token]; ok {
			fn(event)
		}
	}
}

// apply overlays a backend representation onto the model and syncs original.
func (m *Model) apply(payload map[string]any) {
	attrs := m.desc.defaults()
	for name := range m.desc.Schema {
		if value, ok := payload[name]; ok {
			attrs[name] = cloneValue(value)
		}
	}
	if raw, ok := payload[m.desc.idField()]; ok {
		m.id = formatID(raw)
	}
	m.attributes = attrs
	m.original = copyAttributes(attrs)
}
