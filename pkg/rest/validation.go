package rest

import (
	"encoding/json"
	"net/http"

	"github.com/goliatone/go-resource/pkg/resource"
)

// decodeValidation turns a 400/422 body carrying field-keyed messages into a
// resource.ValidationError. Accepted shapes:
//
//	{"errors": {"name": ["required"]}}
//	{"name": ["required"], "non_field_errors": ["conflict"]}
//	{"errors": {"name": "required"}}
//
// Anything else returns nil so the caller falls back to a
// CommunicationError.
func decodeValidation(status int, raw []byte) *resource.ValidationError {
	if status != http.StatusBadRequest && status != http.StatusUnprocessableEntity {
		return nil
	}
	if len(raw) == 0 {
		return nil
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil
	}

	source := outer
	wrapped := false
	if nested, ok := outer["errors"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(nested, &inner); err == nil && len(inner) > 0 {
			source = inner
			wrapped = true
		}
	}

	payload := make(map[string][]string, len(source))
	for key, value := range source {
		messages := decodeMessages(value, wrapped)
		if len(messages) == 0 {
			continue
		}
		payload[key] = messages
	}
	if len(payload) == 0 {
		return nil
	}

	verr := resource.MapFieldErrors(payload, nil)
	if len(verr.Fields) == 0 && len(verr.Form) == 0 {
		return nil
	}
	return verr
}

// decodeMessages reads one field entry. Bare strings count only inside an
// "errors" wrapper: a flat body with string values ({"status": "..."}) is a
// status payload, not field feedback.
func decodeMessages(raw json.RawMessage, allowString bool) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	if !allowString {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}
