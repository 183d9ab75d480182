package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// sanitizeMessage strips markup from backend-provided messages before they
// reach a template. Validation feedback comes from the wire and is untrusted.
func sanitizeMessage(raw string) string {
	return strings.TrimSpace(messageSanitizer().Sanitize(raw))
}

func sanitizeMessages(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, msg := range raw {
		cleaned := sanitizeMessage(msg)
		if cleaned == "" {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

func messageSanitizer() *bluemonday.Policy {
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	return messagePolicy
}
