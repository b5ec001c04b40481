// Package mcp provides an MCP (Model Context Protocol) server adapter for zenji.
// It lets AI assistants query the flower essence index and run intake sessions.
package mcp

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")
