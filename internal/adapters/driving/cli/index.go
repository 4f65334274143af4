package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfqa/internal/adapters/driving/watch"
	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driving"
)

var (
	indexDir   string
	indexForce bool
	indexWatch bool
)

var indexCmd = &cobra.Command{
	Use:   "index <pdf>",
	Short: "Build or load the index for a PDF",
	Long: `Extracts the PDF's text, splits it into chunks, embeds them and saves
the index. If an index already exists in the index directory it is loaded
instead; use --force to rebuild it.

With --watch the command keeps running and rebuilds the index whenever the
PDF changes.`,
	Args:        cobra.ExactArgs(1),
	Annotations: needs(needsPipeline),
	RunE:        runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexDir, "index-dir", "", "index directory (default from settings, faiss_index)")
	indexCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "rebuild even if an index exists")
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "rebuild when the PDF changes")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if err := requireIndexService(); err != nil {
		return err
	}

	ctx := cmd.Context()
	out := newPrinter(cmd.OutOrStdout())
	req := domain.BuildRequest{
		PDFPath:      args[0],
		IndexDir:     resolveIndexDir(indexDir),
		ForceRebuild: indexForce,
	}

	idx, err := indexService.BuildOrLoad(ctx, req)
	if err != nil {
		return fmt.Errorf("index %s: %w", req.PDFPath, err)
	}
	out.Manifest(req.IndexDir, idx.Manifest())

	if !indexWatch {
		return idx.Close()
	}

	current := idx
	defer func() { _ = current.Close() }()

	rebuild := func(ctx context.Context) error {
		next, err := rebuildIndex(ctx, req)
		if err != nil {
			return err
		}
		_ = current.Close()
		current = next
		out.Manifest(req.IndexDir, current.Manifest())
		return nil
	}

	w, err := watch.New(req.PDFPath, rebuild)
	if err != nil {
		return err
	}
	cmd.Printf("\nWatching %s for changes (Ctrl+C to stop)\n", req.PDFPath)
	return w.Run(ctx)
}

func rebuildIndex(ctx context.Context, req domain.BuildRequest) (driving.Index, error) {
	req.ForceRebuild = true
	return indexService.BuildOrLoad(ctx, req)
}

// resolveIndexDir prefers the flag, then settings, then the built-in default.
func resolveIndexDir(flag string) string {
	if flag != "" {
		return flag
	}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && settings.Index.Dir != "" {
			return settings.Index.Dir
		}
	}
	return domain.DefaultIndexDir
}

// resolveTopK returns retrieval.k from settings, or zero when unavailable.
func resolveTopK() int {
	if settingsService == nil {
		return 0
	}
	settings, err := settingsService.Get()
	if err != nil {
		return 0
	}
	return settings.Retrieval.K
}
