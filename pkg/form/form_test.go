package form

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/goliatone/go-resource/pkg/resource"
)

type scriptedClient struct {
	createPayload map[string]any
	saveErrs      []error
	savePos       int
	deleteErr     error
}

func (c *scriptedClient) nextSaveErr() error {
	if c.savePos >= len(c.saveErrs) {
		return nil
	}
	err := c.saveErrs[c.savePos]
	c.savePos++
	return err
}

func (c *scriptedClient) Create(_ context.Context, _ string, _ map[string]any) (map[string]any, error) {
	if err := c.nextSaveErr(); err != nil {
		return nil, err
	}
	return c.createPayload, nil
}

func (c *scriptedClient) Update(_ context.Context, _, _ string, _ map[string]any) (map[string]any, error) {
	if err := c.nextSaveErr(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (c *scriptedClient) Fetch(_ context.Context, _, _ string) (map[string]any, error) {
	return nil, errors.New("not scripted")
}

func (c *scriptedClient) Delete(_ context.Context, _, _ string) error {
	return c.deleteErr
}

func articleDescriptor() resource.Descriptor {
	return resource.Descriptor{
		Name: "article",
		Root: "/articles",
		Schema: map[string]any{
			"title":     "",
			"published": false,
			"rating":    float64(0),
		},
		Required: []string{"title"},
	}
}

func newTestForm(t *testing.T, client resource.Client, payload map[string]any) *Form {
	t.Helper()
	var (
		m   *resource.Model
		err error
	)
	if payload == nil {
		m, err = resource.New(articleDescriptor(), client)
	} else {
		m, err = resource.Hydrate(articleDescriptor(), client, payload)
	}
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	return New(m)
}

func TestFieldsDeriveFromSchema(t *testing.T) {
	f := newTestForm(t, &scriptedClient{}, nil)
	defer f.Close()

	var got []struct {
		Name string
		Kind Kind
	}
	for _, field := range f.Fields() {
		got = append(got, struct {
			Name string
			Kind Kind
		}{field.Name(), field.Kind()})
	}

	want := []struct {
		Name string
		Kind Kind
	}{
		{"published", KindBoolean},
		{"rating", KindNumber},
		{"title", KindText},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	title, ok := f.Field("title")
	if !ok {
		t.Fatal("title field missing")
	}
	if title.Label() != "Title" || !title.Required() {
		t.Fatalf("title field metadata: label %q required %v", title.Label(), title.Required())
	}
	if _, ok := f.Field("nope"); ok {
		t.Fatal("unknown attribute must not produce a field")
	}
}

func TestFieldIsPureView(t *testing.T) {
	f := newTestForm(t, &scriptedClient{}, map[string]any{"id": "3", "title": "draft"})
	defer f.Close()

	field, _ := f.Field("title")
	if got := field.Value(); got != "draft" {
		t.Fatalf("field must read through the model, got %v", got)
	}

	// A change originating elsewhere is visible with no field-local state.
	if err := f.Model().Set("title", "renamed"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := field.Value(); got != "renamed" {
		t.Fatalf("field must reflect external edits, got %v", got)
	}

	if err := field.SetValue("from field"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if got := f.Model().Get("title"); got != "from field" {
		t.Fatalf("field writes must land in the model, got %v", got)
	}
	if !field.Dirty() {
		t.Fatal("edited field should report dirty")
	}
}

func TestStateMachineTransitions(t *testing.T) {
	client := &scriptedClient{
		saveErrs: []error{
			&resource.CommunicationError{Method: "PUT", StatusCode: 502},
			nil,
		},
	}
	f := newTestForm(t, client, map[string]any{"id": "3", "title": "draft"})
	defer f.Close()

	if f.State() != StateClean || f.CanSave() {
		t.Fatalf("initial state: %s canSave=%v", f.State(), f.CanSave())
	}

	// Clean --edit--> Dirty
	field, _ := f.Field("title")
	if err := field.SetValue("edited"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if f.State() != StateDirty || !f.CanSave() {
		t.Fatalf("after edit: %s canSave=%v", f.State(), f.CanSave())
	}

	// Dirty --save--> Saving --failure--> Error
	if err := f.Save(context.Background()); err == nil {
		t.Fatal("scripted failure expected")
	}
	if f.State() != StateError {
		t.Fatalf("after failed save: %s", f.State())
	}
	if f.Err() == nil {
		t.Fatal("error must be surfaced")
	}
	if !f.CanSave() {
		t.Fatal("save must be re-enabled for retry")
	}

	// Error --retry--> Saving --success--> Clean
	if err := f.Save(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if f.State() != StateClean || f.Err() != nil {
		t.Fatalf("after successful save: %s err=%v", f.State(), f.Err())
	}

	// any state --revert--> Clean
	if err := field.SetValue("scratch"); err != nil {
		t.Fatalf("set: %v", err)
	}
	f.Revert()
	if f.State() != StateClean || f.Model().IsDirty() {
		t.Fatalf("after revert: %s dirty=%v", f.State(), f.Model().IsDirty())
	}
}

func TestErrorStateKeepsMessageAcrossEdits(t *testing.T) {
	client := &scriptedClient{saveErrs: []error{&resource.CommunicationError{StatusCode: 500}}}
	f := newTestForm(t, client, map[string]any{"id": "3", "title": "draft"})
	defer f.Close()

	field, _ := f.Field("title")
	_ = field.SetValue("edited")
	_ = f.Save(context.Background())
	if f.State() != StateError {
		t.Fatalf("state: %s", f.State())
	}

	// Error --edit--> Dirty, message still visible for the user.
	_ = field.SetValue("edited again")
	if f.State() != StateDirty {
		t.Fatalf("edit after error: %s", f.State())
	}
	if f.Err() == nil {
		t.Fatal("surfaced error should remain until the next success or revert")
	}

	f.Revert()
	if f.Err() != nil {
		t.Fatal("revert must clear the surfaced error")
	}
}

func TestFailedDeleteSurfacesError(t *testing.T) {
	client := &scriptedClient{deleteErr: &resource.CommunicationError{Method: "DELETE", StatusCode: 500}}
	f := newTestForm(t, client, map[string]any{"id": "3", "title": "draft"})
	defer f.Close()

	if err := f.Delete(context.Background()); err == nil {
		t.Fatal("scripted delete failure expected")
	}
	if f.State() != StateError || f.Err() == nil {
		t.Fatalf("after failed delete: %s err=%v", f.State(), f.Err())
	}
	if f.Model().IsDeleted() {
		t.Fatal("record must stay editable after a failed delete")
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	f := newTestForm(t, &scriptedClient{}, map[string]any{"id": "3", "title": "draft"})
	model := f.Model()

	f.Close()
	f.Close() // idempotent

	// A late notification must not act on the closed form.
	if err := model.Set("title", "late"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if f.State() != StateClean {
		t.Fatalf("closed form reacted to a model event: %s", f.State())
	}
	if err := f.Save(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("save on closed form: want ErrClosed, got %v", err)
	}
}
