// Package mcp provides an MCP (Model Context Protocol) server adapter for pdfqa.
// It lets AI assistants ask questions about an indexed PDF and retrieve
// the chunks answers are grounded in.
package mcp

import "errors"

// ErrMissingIndex is returned when no loaded index is provided.
var ErrMissingIndex = errors.New("mcp: a loaded index is required")

// ErrMissingAnswerService is returned by the ask tool when answering is not configured.
var ErrMissingAnswerService = errors.New("mcp: answer service is not configured")
