// Package resource exposes the module's primary entry points: record models
// bound to a REST backend, form containers over those models, and the
// terminal and HTML renderers that edit or display them.
package resource

import (
	"context"

	"github.com/goliatone/go-resource/pkg/form"
	htmlrenderer "github.com/goliatone/go-resource/pkg/renderers/html"
	"github.com/goliatone/go-resource/pkg/renderers/tui"
	pkgresource "github.com/goliatone/go-resource/pkg/resource"
	"github.com/goliatone/go-resource/pkg/rest"
)

// Descriptor declares a resource type as data: collection root, schema
// defaults, and constraints.
type Descriptor = pkgresource.Descriptor

// Model is a client-side record with dirty tracking and a save/delete
// lifecycle.
type Model = pkgresource.Model

// Client is the persistence seam models save through.
type Client = pkgresource.Client

// Event describes one model change notification.
type Event = pkgresource.Event

// ValidationError carries field-keyed messages from a rejected save.
type ValidationError = pkgresource.ValidationError

// CommunicationError reports a transport or protocol failure.
type CommunicationError = pkgresource.CommunicationError

// Form drives the Clean/Dirty/Saving/Error lifecycle over a model.
type Form = form.Form

// Field is a pure view over one model attribute.
type Field = form.Field

// NewModel builds a fresh, unsaved record from its descriptor defaults.
func NewModel(desc Descriptor, client Client) (*Model, error) {
	return pkgresource.New(desc, client)
}

// HydrateModel builds a record from an already-fetched payload.
func HydrateModel(desc Descriptor, client Client, payload map[string]any) (*Model, error) {
	return pkgresource.Hydrate(desc, client, payload)
}

// LoadModel fetches a record by identifier and binds it.
func LoadModel(ctx context.Context, desc Descriptor, client Client, id string) (*Model, error) {
	return pkgresource.Load(ctx, desc, client, id)
}

// NewForm binds a form container to a model.
func NewForm(model *Model) *Form {
	return form.New(model)
}

// NewRESTClient builds the HTTP-backed persistence client.
func NewRESTClient(baseURL string, options ...rest.Option) (*rest.Client, error) {
	return rest.New(baseURL, options...)
}

// EditTerminal runs an interactive terminal session over the form: edit
// fields, save, revert, delete.
func EditTerminal(ctx context.Context, f *Form, options ...tui.Option) error {
	session, err := tui.New(f, options...)
	if err != nil {
		return err
	}
	return session.Run(ctx)
}

// RenderHTML renders the form's current state as an HTML document.
func RenderHTML(ctx context.Context, f *Form, options ...htmlrenderer.Option) ([]byte, error) {
	renderer, err := htmlrenderer.New(options...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, f)
}
