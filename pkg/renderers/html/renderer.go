// Package html renders a bound form as a server-side HTML document: one
// control per field, dirty and error affordances, and a save button gated on
// the form's lifecycle state.
package html

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-resource/pkg/form"
	"github.com/goliatone/go-resource/pkg/resource"
)

const templateName = "templates/form.tmpl"

// Stylesheet asset key resolved through the theme's AssetURL hook.
const themeAssetStylesheet = "form.stylesheet"

// Option customises the renderer configuration.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer TemplateRenderer
	theme            *theme.RendererConfig
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTheme applies theme tokens, CSS variables, and asset resolution to the
// rendered document.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// Renderer turns a bound form into an HTML document.
type Renderer struct {
	templates TemplateRenderer
	theme     *theme.RendererConfig
}

// New constructs an HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if _, err := fs.Stat(cfg.templateFS, templateName); err != nil {
		return nil, fmt.Errorf("html: template %q not found: %w", templateName, err)
	}

	templateRenderer := cfg.templateRenderer
	if templateRenderer == nil {
		engine, err := NewEngine(
			WithEngineFS(cfg.templateFS),
			WithEngineExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html: configure template renderer: %w", err)
		}
		templateRenderer = engine
	}

	return &Renderer{
		templates: templateRenderer,
		theme:     cfg.theme,
	}, nil
}

// ContentType returns the MIME type for generated documents.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the HTML document for the form's current state.
func (r *Renderer) Render(ctx context.Context, f *form.Form) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("html: form is required")
	}
	if r.templates == nil {
		return nil, fmt.Errorf("html: template renderer is nil")
	}

	fieldErrs, formErrs := splitErrors(f.Err())

	fields := f.Fields()
	fieldData := make([]map[string]any, 0, len(fields))
	for _, field := range fields {
		entry := map[string]any{
			"name":     field.Name(),
			"label":    field.Label(),
			"kind":     string(field.Kind()),
			"value":    controlValue(field),
			"required": field.Required(),
			"dirty":    field.Dirty(),
			"errors":   fieldErrs[field.Name()],
		}
		if field.Kind() == form.KindBoolean {
			checked, _ := field.Value().(bool)
			entry["checked"] = checked
		}
		fieldData = append(fieldData, entry)
	}

	action, method := submitTarget(f.Model())
	data := map[string]any{
		"title":       documentTitle(f.Model()),
		"state":       string(f.State()),
		"can_save":    f.CanSave(),
		"action":      action,
		"method":      method,
		"fields":      fieldData,
		"form_errors": formErrs,
		"theme":       buildThemeContext(r.theme),
	}

	rendered, err := r.templates.RenderTemplate(templateName, data)
	if err != nil {
		return nil, fmt.Errorf("html: render template: %w", err)
	}
	return []byte(rendered), nil
}

// splitErrors maps a save failure into sanitized per-field and form-level
// message lists.
func splitErrors(failure error) (map[string][]string, []string) {
	if failure == nil {
		return nil, nil
	}
	if verr, ok := resource.AsValidation(failure); ok {
		fields := make(map[string][]string, len(verr.Fields))
		for name, messages := range verr.Fields {
			fields[name] = sanitizeMessages(messages)
		}
		return fields, sanitizeMessages(verr.Form)
	}
	return nil, []string{sanitizeMessage(failure.Error())}
}

func documentTitle(model *resource.Model) string {
	name := model.Descriptor().Name
	if name == "" {
		name = strings.Trim(model.Descriptor().Root, "/")
	}
	if model.IsNew() {
		return fmt.Sprintf("New %s", name)
	}
	return fmt.Sprintf("%s #%s", name, model.ID())
}

func submitTarget(model *resource.Model) (action, method string) {
	root := model.Descriptor().Root
	if model.IsNew() {
		return root, "POST"
	}
	return strings.TrimRight(root, "/") + "/" + url.PathEscape(model.ID()), "PUT"
}

// controlValue renders a field value as the string the form control carries.
// Lists and objects serialize to JSON for the textarea control.
func controlValue(field form.Field) string {
	switch v := field.Value().(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

type rendererTheme struct {
	Name         string            `json:"name"`
	Variant      string            `json:"variant"`
	Tokens       map[string]string `json:"tokens,omitempty"`
	CSSVars      map[string]string `json:"cssVars,omitempty"`
	CSSVarsStyle string            `json:"css_vars_style,omitempty"`
	Stylesheet   string            `json:"stylesheet,omitempty"`
}

func buildThemeContext(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	ctx := rendererTheme{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Tokens:  copyStringMap(cfg.Tokens),
		CSSVars: copyStringMap(cfg.CSSVars),
	}
	ctx.CSSVarsStyle = cssVarsStyle(ctx.CSSVars)
	var resolver func(string) string = cfg.AssetURL
	if resolver != nil {
		if resolved := resolver(themeAssetStylesheet); strings.TrimSpace(resolved) != "" {
			ctx.Stylesheet = resolved
		}
	}
	return map[string]any{
		"name":           ctx.Name,
		"variant":        ctx.Variant,
		"tokens":         ctx.Tokens,
		"css_vars":       ctx.CSSVars,
		"css_vars_style": ctx.CSSVarsStyle,
		"stylesheet":     ctx.Stylesheet,
	}
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
