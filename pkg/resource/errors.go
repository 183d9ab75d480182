package resource

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnknownAttribute is returned by Set for names outside the schema.
	ErrUnknownAttribute = errors.New("resource: unknown attribute")
	// ErrSaveInFlight is returned when Save is called while another save on
	// the same model has not finished.
	ErrSaveInFlight = errors.New("resource: save already in flight")
	// ErrDeleted is returned by mutating operations on a deleted model.
	ErrDeleted = errors.New("resource: record has been deleted")
)

// CommunicationError reports a transport failure or a non-success response
// the client could not interpret further. The model never inspects it; it is
// surfaced to the caller so the user can retry.
type CommunicationError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *CommunicationError) Error() string {
	var b strings.Builder
	b.WriteString("resource: request failed")
	if e.Method != "" || e.URL != "" {
		fmt.Fprintf(&b, " (%s %s)", e.Method, e.URL)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *CommunicationError) Unwrap() error { return e.Err }

// ValidationError carries structured, field-keyed messages returned by the
// backend alongside any messages that could not be attributed to a field.
type ValidationError struct {
	Fields map[string][]string
	Form   []string
}

func (e *ValidationError) Error() string {
	total := len(e.Form)
	for _, messages := range e.Fields {
		total += len(messages)
	}
	if total == 0 {
		return "resource: validation failed"
	}
	return fmt.Sprintf("resource: validation failed (%d message(s))", total)
}

// FieldNames returns the attributed field keys in stable sorted order.
func (e *ValidationError) FieldNames() []string {
	if len(e.Fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AsValidation unwraps err into a ValidationError when one is present.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// AsCommunication unwraps err into a CommunicationError when one is present.
func AsCommunication(err error) (*CommunicationError, bool) {
	var cerr *CommunicationError
	if errors.As(err, &cerr) {
		return cerr, true
	}
	return nil, false
}

// MapFieldErrors normalises a server error payload into a ValidationError
// keyed by the attribute names in known. Server payloads address fields in a
// variety of shapes (JSON pointers, dotted paths, bracketed indices, wrapper
// segments such as "data" or "attributes"); unknown paths degrade to
// form-level messages so nothing is lost.
func MapFieldErrors(payload map[string][]string, known []string) *ValidationError {
	verr := &ValidationError{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		verr.Fields = nil
		return verr
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, name := range known {
		knownSet[name] = struct{}{}
	}

	for rawKey, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		field, formLevel := mapErrorKey(rawKey, knownSet)
		if formLevel {
			verr.Form = append(verr.Form, normalized...)
			continue
		}
		verr.Fields[field] = append(verr.Fields[field], normalized...)
	}

	if len(verr.Fields) == 0 {
		verr.Fields = nil
	}
	verr.Form = normalizeMessages(verr.Form)
	return verr
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorKey(raw string, known map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := parseKeySegments(trimmed)
	segments = dropWrapperSegments(segments)
	segments = stripNumericSegments(segments)
	if len(segments) == 0 {
		return "", true
	}

	// Prefer the deepest segment that names a known attribute; flat schemas
	// mean the match is usually the last segment.
	for i := len(segments) - 1; i >= 0; i-- {
		if _, ok := known[segments[i]]; ok {
			return segments[i], false
		}
	}
	// Without a schema to match against, trust the last segment.
	if len(known) == 0 {
		return segments[len(segments)-1], false
	}
	return "", true
}

func parseKeySegments(key string) []string {
	if key == "" {
		return nil
	}

	clean := strings.TrimPrefix(key, "#/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":       {},
		"request":    {},
		"payload":    {},
		"data":       {},
		"attributes": {},
	}
	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	if len(segments) == 0 {
		return segments
	}
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
