package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriScheme = "pdfqa://"

	// IndexResourceURI describes the loaded index.
	IndexResourceURI = uriScheme + "index"
)

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         IndexResourceURI,
		Name:        "index",
		Description: "How the loaded index was built: source PDF, embedding model, chunk count",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

func (s *Server) handleIndexResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.ports.Index.Manifest(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling manifest: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
