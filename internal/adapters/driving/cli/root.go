// Package cli provides the command-line interface for the validation
// engine. It is a thin driving adapter: commands parse arguments, call
// the core services through their driving ports, and print results.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cachemem "github.com/custodia-labs/notecheck/internal/adapters/driven/cache/memory"
	configfile "github.com/custodia-labs/notecheck/internal/adapters/driven/config/file"
	"github.com/custodia-labs/notecheck/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/notecheck/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/notecheck/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/custodia-labs/notecheck/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/notecheck/internal/core/ports/driven"
	"github.com/custodia-labs/notecheck/internal/core/ports/driving"
	"github.com/custodia-labs/notecheck/internal/core/services"
	"github.com/custodia-labs/notecheck/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose  bool
	flagConfig   string
	flagDataDir  string
	flagProvider string
	flagModel    string
	flagBaseURL  string
)

// Services the commands call. Wired by setupServices, replaced by tests.
var (
	validationService driving.ValidationService
	indexService      driving.IndexService
	closers           []func() error
)

var rootCmd = &cobra.Command{
	Use:   "notecheck",
	Short: "Validate study notes against reference material",
	Long: `Notecheck indexes reference documents and validates study topics
against them: each topic is embedded, matched against indexed reference
chunks, and scored for completeness, accuracy and coverage, with typed
content gaps explaining what is missing or wrong.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.notecheck/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.notecheck/data)")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "ollama", "embedding provider (ollama or openai)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "embedding model override")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "embedding API base URL override")
}

// Execute runs the root command.
func Execute() {
	defer closeAll()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupServices wires the full adapter stack. Commands that talk to the
// engine call it from their RunE; version and help do not pay the
// startup cost.
func setupServices(cmd *cobra.Command) error {
	if validationService != nil && indexService != nil {
		return nil
	}

	configPath := flagConfig
	if configPath == "" {
		p, err := configfile.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}
	cfg, err := configfile.Load(configPath)
	if err != nil {
		return err
	}

	embedder, err := newEmbeddingService()
	if err != nil {
		return err
	}
	closers = append(closers, embedder.Close)
	if err := embedder.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("embedding service unreachable: %w", err)
	}

	store, err := sqlite.NewStore(flagDataDir)
	if err != nil {
		return fmt.Errorf("opening reference store: %w", err)
	}
	closers = append(closers, store.Close)

	index := vectormem.New()
	closers = append(closers, index.Close)

	indexer := services.NewIndexer(store, index, embedder, cfg)
	if err := indexer.RebuildIndex(cmd.Context()); err != nil {
		return fmt.Errorf("rebuilding vector index: %w", err)
	}

	cache := cachemem.New(cachemem.DefaultCapacity)

	indexService = indexer
	validationService = services.NewValidator(embedder, index, cache, cfg)
	return nil
}

// newEmbeddingService builds the embedding backend selected by
// --provider.
func newEmbeddingService() (driven.EmbeddingService, error) {
	switch flagProvider {
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: flagBaseURL,
			Model:   flagModel,
		}), nil
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: flagBaseURL,
			Model:   flagModel,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (want ollama or openai)", flagProvider)
	}
}

func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		_ = closers[i]()
	}
	closers = nil
}
