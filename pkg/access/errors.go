package access

import "errors"

var (
	// ErrAlreadyInProgress is returned while another access dialog is open
	ErrAlreadyInProgress = errors.New("already showing a system access dialog")

	// ErrForbidden is returned when the caller may not perform the operation
	ErrForbidden = errors.New("access denied")

	// ErrNoSuchRequest is returned when a handle does not name the open dialog
	ErrNoSuchRequest = errors.New("no such request")

	// ErrInvalidOptions is returned for malformed AccessDialog options
	ErrInvalidOptions = errors.New("invalid options")

	// ErrNotOpen is returned when a dialog no longer accepts input
	ErrNotOpen = errors.New("dialog is not open")
)
