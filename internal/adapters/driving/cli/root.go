// Package cli implements the pdfqa command line interface.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfqa/internal/core/ports/driving"
	"github.com/custodia-labs/pdfqa/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// Services used by commands. Set by SetServices or by the bootstrap
// before a command that needs them runs.
var (
	indexService    driving.IndexService
	answerService   driving.AnswerService
	settingsService driving.SettingsService
	closeServices   func() error
)

// Need levels a command declares through its annotations.
const (
	annotationNeeds = "pdfqa.needs"
	needsSettings   = "settings"
	needsPipeline   = "pipeline"
)

// Services bundles the driving ports the commands call.
type Services struct {
	Index    driving.IndexService
	Answer   driving.AnswerService
	Settings driving.SettingsService

	// Close releases provider resources. Optional.
	Close func() error
}

// Bootstrap builds services once flags are parsed. withPipeline is false
// for commands that only read or write settings, so no embedding model
// or LLM client needs to be created for them.
type Bootstrap func(configDir string, withPipeline bool) (*Services, error)

var bootstrap Bootstrap

var rootCmd = &cobra.Command{
	Use:   "pdfqa",
	Short: "Ask questions about a PDF",
	Long: `pdfqa answers questions about a PDF document using only what the
document says. The PDF is split into chunks, embedded and stored in a local
index; each question retrieves the most similar chunks and a language model
answers from them, citing page numbers.

Quick start:
  export GROQ_API_KEY=...
  pdfqa index report.pdf
  pdfqa ask "What was revenue in 2023?"`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setupServices,
	PersistentPostRunE: teardownServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show pipeline stages and timings")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.pdfqa)")
}

// SetVersion sets the version reported by the version command and the MCP server.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap registers the function that builds services lazily.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		indexService, answerService, settingsService, closeServices = nil, nil, nil, nil
		return
	}
	indexService = s.Index
	answerService = s.Answer
	settingsService = s.Settings
	closeServices = s.Close
}

// Execute runs the root command. The context is cancelled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	need := cmd.Annotations[annotationNeeds]
	if need == "" || bootstrap == nil {
		return nil
	}
	if settingsService != nil && (need == needsSettings || indexService != nil) {
		return nil
	}

	svc, err := bootstrap(configDir, need == needsPipeline)
	if err != nil {
		return err
	}
	SetServices(svc)
	return nil
}

func teardownServices(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

func needs(level string) map[string]string {
	return map[string]string{annotationNeeds: level}
}

func requireIndexService() error {
	if indexService == nil {
		return errors.New("index service not configured")
	}
	return nil
}
