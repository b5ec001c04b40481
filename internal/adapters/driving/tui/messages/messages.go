// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/custodia-labs/zenji/internal/core/domain"
)

// SessionStarted carries the result of opening a new session.
type SessionStarted struct {
	Start domain.SessionStart
	Err   error
}

// TurnSubmitted is sent when the user presses enter on a non-empty message.
type TurnSubmitted struct {
	Message string
}

// TurnCompleted carries the assistant's reply for one turn.
type TurnCompleted struct {
	Reply domain.TurnReply
	Err   error
}

// Quit requests the application to exit.
type Quit struct{}
