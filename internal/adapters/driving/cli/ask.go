package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
)

var (
	askPDF      string
	askIndexDir string
	askK        int
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed PDF",
	Long: `Retrieves the chunks most similar to the question and asks the language
model to answer from them alone. If the document does not contain the
answer the model says so instead of guessing.

The existing index is used; pass --pdf to build it first when missing.`,
	Args:        cobra.ExactArgs(1),
	Annotations: needs(needsPipeline),
	RunE:        runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askPDF, "pdf", "", "PDF to index if no index exists yet")
	askCmd.Flags().StringVar(&askIndexDir, "index-dir", "", "index directory (default from settings, faiss_index)")
	askCmd.Flags().IntVarP(&askK, "top-k", "k", 0, "number of chunks to retrieve (default from settings, 4)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireIndexService(); err != nil {
		return err
	}
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	if strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("%w: question must not be empty", domain.ErrInvalidInput)
	}

	ctx := cmd.Context()
	req := domain.BuildRequest{
		PDFPath:  askPDF,
		IndexDir: resolveIndexDir(askIndexDir),
	}

	idx, err := indexService.BuildOrLoad(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) && askPDF == "" {
			return fmt.Errorf("%w (run 'pdfqa index <pdf>' first or pass --pdf)", err)
		}
		return err
	}
	defer idx.Close()

	result, err := answerService.Answer(ctx, idx, args[0], askK)
	if err != nil {
		return err
	}

	if askJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	newPrinter(cmd.OutOrStdout()).Answer(result)
	return nil
}
