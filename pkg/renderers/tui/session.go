// Package tui drives an interactive terminal editing session over a bound
// form: a menu of attribute fields plus save, revert, and delete actions,
// with prompts routed through a swappable PromptDriver.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-resource/pkg/form"
	"github.com/goliatone/go-resource/pkg/resource"
)

const (
	actionSave   = "Save"
	actionRevert = "Revert edits"
	actionDelete = "Delete record"
	actionQuit   = "Quit"
)

// Session runs the edit loop for one bound form. It owns no state of its own
// beyond the driver: every read and write goes through the form's fields so
// the model stays the single source of truth.
type Session struct {
	driver   PromptDriver
	form     *form.Form
	pageSize int
}

// New builds a session around a bound form. The survey driver is the default;
// tests and embedders swap it with WithPromptDriver.
func New(f *form.Form, options ...Option) (*Session, error) {
	if f == nil {
		return nil, errors.New("tui: form is required")
	}
	s := &Session{
		driver: newSurveyDriver(),
		form:   f,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		return nil, ErrDriverRequired
	}
	return s, nil
}

// Run loops the field menu until the user saves and quits, deletes the
// record, or aborts. Aborting a prompt surfaces ErrAborted to the caller.
func (s *Session) Run(ctx context.Context) error {
	for {
		fields := s.form.Fields()
		options := s.menuOptions(fields)

		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:  s.title(),
			Options:  options,
			PageSize: s.pageSize,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			return fmt.Errorf("tui: unexpected menu selection %d", idx)
		}

		switch {
		case idx < len(fields):
			if err := s.editField(ctx, fields[idx]); err != nil {
				return err
			}
		case options[idx] == actionSave:
			if err := s.save(ctx); err != nil {
				return err
			}
		case options[idx] == actionRevert:
			s.form.Revert()
			if err := s.driver.Info(ctx, "Edits discarded."); err != nil {
				return err
			}
		case options[idx] == actionDelete:
			done, err := s.deleteRecord(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		case options[idx] == actionQuit:
			done, err := s.quit(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

func (s *Session) title() string {
	model := s.form.Model()
	name := model.Descriptor().Name
	if name == "" {
		name = model.Descriptor().Root
	}
	if model.IsNew() {
		return fmt.Sprintf("%s (new)", name)
	}
	return fmt.Sprintf("%s #%s", name, model.ID())
}

func (s *Session) menuOptions(fields []form.Field) []string {
	options := make([]string, 0, len(fields)+4)
	for _, field := range fields {
		options = append(options, fieldEntry(field))
	}
	return append(options, actionSave, actionRevert, actionDelete, actionQuit)
}

// fieldEntry renders one menu line: label, current value, dirty marker.
func fieldEntry(field form.Field) string {
	marker := ""
	if field.Dirty() {
		marker = " *"
	}
	return fmt.Sprintf("%s: %s%s", field.Label(), valueSummary(field.Value()), marker)
}

func (s *Session) editField(ctx context.Context, field form.Field) error {
	switch field.Kind() {
	case form.KindBoolean:
		current, _ := field.Value().(bool)
		answer, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: field.Label() + "?",
			Default: current,
		})
		if err != nil {
			return err
		}
		return field.SetValue(answer)

	case form.KindNumber:
		answer, err := s.driver.Input(ctx, InputConfig{
			Message:   field.Label(),
			Default:   valueSummary(field.Value()),
			Validator: validateNumber,
		})
		if err != nil {
			return err
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
		if err != nil {
			return fmt.Errorf("tui: parse %s: %w", field.Name(), err)
		}
		return field.SetValue(value)

	case form.KindList, form.KindObject:
		answer, err := s.driver.Input(ctx, InputConfig{
			Message:   field.Label(),
			Default:   jsonSummary(field.Value()),
			Help:      "Enter a JSON value.",
			Validator: validateJSON,
		})
		if err != nil {
			return err
		}
		var value any
		if err := json.Unmarshal([]byte(answer), &value); err != nil {
			return fmt.Errorf("tui: parse %s: %w", field.Name(), err)
		}
		return field.SetValue(value)

	default:
		cfg := InputConfig{
			Message: field.Label(),
			Default: valueSummary(field.Value()),
		}
		if field.Required() {
			cfg.Validator = validateRequired
		}
		answer, err := s.driver.Input(ctx, cfg)
		if err != nil {
			return err
		}
		return field.SetValue(answer)
	}
}

// save runs the form save and reports the outcome through the driver. Save
// failures keep the session alive so the user can fix fields and retry.
func (s *Session) save(ctx context.Context) error {
	if !s.form.CanSave() {
		return s.driver.Info(ctx, "Nothing to save.")
	}
	if err := s.form.Save(ctx); err != nil {
		return s.reportFailure(ctx, err)
	}
	return s.driver.Info(ctx, "Saved.")
}

// deleteRecord confirms and deletes. A confirmed, successful delete ends the
// session; a declined confirm or a failed delete keeps it running.
func (s *Session) deleteRecord(ctx context.Context) (bool, error) {
	confirmed, err := s.driver.Confirm(ctx, ConfirmConfig{
		Message: s.form.Model().DeleteConfirmMessage(),
		Default: false,
	})
	if err != nil {
		return false, err
	}
	if !confirmed {
		return false, nil
	}
	if err := s.form.Delete(ctx); err != nil {
		return false, s.reportFailure(ctx, err)
	}
	if err := s.driver.Info(ctx, "Deleted."); err != nil {
		return true, err
	}
	return true, nil
}

// quit asks before discarding pending edits.
func (s *Session) quit(ctx context.Context) (bool, error) {
	if s.form.State() == form.StateClean {
		return true, nil
	}
	return s.driver.Confirm(ctx, ConfirmConfig{
		Message: "Discard unsaved changes?",
		Default: false,
	})
}

// reportFailure prints validation feedback per field, or the transport error
// as-is, and keeps the session alive.
func (s *Session) reportFailure(ctx context.Context, failure error) error {
	if verr, ok := resource.AsValidation(failure); ok {
		for _, name := range verr.FieldNames() {
			label := name
			if field, ok := s.form.Field(name); ok {
				label = field.Label()
			}
			msg := fmt.Sprintf("%s: %s", label, strings.Join(verr.Fields[name], "; "))
			if err := s.driver.Info(ctx, msg); err != nil {
				return err
			}
		}
		for _, msg := range verr.Form {
			if err := s.driver.Info(ctx, msg); err != nil {
				return err
			}
		}
		return nil
	}
	return s.driver.Info(ctx, "Request failed: "+failure.Error())
}

func validateRequired(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func validateNumber(value string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
		return errors.New("enter a number")
	}
	return nil
}

func validateJSON(value string) error {
	if !json.Valid([]byte(value)) {
		return errors.New("enter valid JSON")
	}
	return nil
}

// valueSummary renders a value for menu lines and input defaults.
func valueSummary(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return jsonSummary(v)
	}
}

func jsonSummary(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(raw)
}
