package tui

import "errors"

// ErrMissingDialogService is returned when the dialog port is not provided.
var ErrMissingDialogService = errors.New("tui: dialog service is required")
