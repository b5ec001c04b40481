package tui

import "github.com/custodia-labs/zenji/internal/core/ports/driving"

// Ports holds the driving ports the TUI talks to.
type Ports struct {
	// Dialog runs the intake conversation.
	Dialog driving.DialogService
}

// Validate checks that all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Dialog == nil {
		return ErrMissingDialogService
	}
	return nil
}
