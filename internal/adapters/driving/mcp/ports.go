package mcp

import (
	"github.com/custodia-labs/pdfqa/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Index is the loaded index tools query.
	Index driving.Index

	// Answer generates grounded answers. Optional; without it only
	// retrieval is available.
	Answer driving.AnswerService

	// TopK is the number of chunks retrieve returns when a request omits k.
	// Zero means domain.DefaultTopK.
	TopK int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Index == nil {
		return ErrMissingIndex
	}
	return nil
}
