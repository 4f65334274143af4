package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfqa/internal/adapters/driving/mcp"
	"github.com/custodia-labs/pdfqa/internal/core/domain"
)

var (
	mcpPort     int
	mcpPDF      string
	mcpIndexDir string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server over the loaded index so AI
assistants can ask questions about the PDF.

Tools:
  ask       answer a question, with page-numbered sources
  retrieve  return the most similar chunks without generating an answer

Resources:
  pdfqa://index  how the index was built

By default the server communicates over stdio. Use --port to serve
streamable HTTP instead, for the MCP Inspector or remote clients.

Examples:
  pdfqa mcp serve
  pdfqa mcp serve --pdf report.pdf --port 8080

Desktop client configuration:
  {
    "mcpServers": {
      "pdfqa": {
        "command": "/path/to/pdfqa",
        "args": ["mcp", "serve", "--index-dir", "/path/to/faiss_index"]
      }
    }
  }`,
	Annotations: needs(needsPipeline),
	RunE:        runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpPDF, "pdf", "", "PDF to index if no index exists yet")
	mcpServeCmd.Flags().StringVar(&mcpIndexDir, "index-dir", "", "index directory (default from settings, faiss_index)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if err := requireIndexService(); err != nil {
		return err
	}

	ctx := cmd.Context()
	idx, err := indexService.BuildOrLoad(ctx, domain.BuildRequest{
		PDFPath:  mcpPDF,
		IndexDir: resolveIndexDir(mcpIndexDir),
	})
	if err != nil {
		return err
	}
	defer idx.Close()

	server, err := mcp.NewServer(&mcp.Ports{
		Index:  idx,
		Answer: answerService,
		TopK:   resolveTopK(),
	}, version)
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		// stdout is free in HTTP mode; in stdio mode it carries the protocol.
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
