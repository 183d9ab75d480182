package tui

import "errors"

var (
	// ErrAborted signals the user aborted the session (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrDriverRequired is returned when a session is built without a usable
	// prompt driver.
	ErrDriverRequired = errors.New("tui: prompt driver is required")
)
