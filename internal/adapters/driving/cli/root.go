// Package cli implements the docsift command surface with cobra.
// Two operations carry the core contract - ingest and query - and the
// remaining commands manage documents, themes and answer composition.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	configfile "github.com/docsift/docsift/internal/adapters/driven/config/file"
	embeddingollama "github.com/docsift/docsift/internal/adapters/driven/embedding/ollama"
	embeddingopenai "github.com/docsift/docsift/internal/adapters/driven/embedding/openai"
	llmollama "github.com/docsift/docsift/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/docsift/docsift/internal/adapters/driven/llm/openai"
	"github.com/docsift/docsift/internal/adapters/driven/vectorstore/sqlite"
	"github.com/docsift/docsift/internal/chunker"
	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
	"github.com/docsift/docsift/internal/core/ports/driving"
	"github.com/docsift/docsift/internal/core/services"
	"github.com/docsift/docsift/internal/logger"
	"github.com/docsift/docsift/internal/themes"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	flagConfig  string
	flagDataDir string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docsift",
	Short: "Semantic retrieval and thematic classification for plain text",
	Long: `docsift ingests plain text documents, splits them into overlapping
chunks, embeds them through an external provider, and answers queries
by cosine similarity over the stored vectors. Chunks are classified
against a fixed theme taxonomy with confidence scores.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
		// Provider API keys may live in a local .env file.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.docsift/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.docsift/data)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging to stderr")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// app bundles the wired services for one command invocation.
type app struct {
	cfg       *configfile.Config
	store     driven.VectorStore
	embedder  driven.EmbeddingService
	generator driven.AnswerGenerator

	ingest    driving.IngestService
	search    driving.SearchService
	themes    driving.ThemeService
	documents driving.DocumentService
}

// newApp loads configuration and wires the full service graph.
// withGenerator controls whether the answer generator is constructed;
// only the ask command needs it.
func newApp(withGenerator bool) (*app, error) {
	configPath := flagConfig
	if configPath == "" {
		var err error
		configPath, err = configfile.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := configfile.Load(configPath)
	if err != nil {
		return nil, err
	}

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = cfg.DataDir
	}

	embedder, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore(dataDir, embedder.Dimensions())
	if err != nil {
		embedder.Close()
		return nil, err
	}

	splitter, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		store.Close()
		embedder.Close()
		return nil, err
	}

	taxonomy, err := configfile.LoadTaxonomy(cfg.Classifier.TaxonomyPath)
	if err != nil {
		store.Close()
		embedder.Close()
		return nil, err
	}
	classifier, err := themes.NewClassifier(taxonomy, cfg.Classifier.Floor)
	if err != nil {
		store.Close()
		embedder.Close()
		return nil, err
	}

	ingestClassifier := classifier
	if cfg.Classifier.Disabled {
		ingestClassifier = nil
	}

	var generator driven.AnswerGenerator
	if withGenerator {
		generator, err = buildGenerator(cfg.Generator)
		if err != nil {
			store.Close()
			embedder.Close()
			return nil, err
		}
	}

	a := &app{
		cfg:       cfg,
		store:     store,
		embedder:  embedder,
		generator: generator,
	}
	a.ingest = services.NewIngestService(store, embedder, splitter, ingestClassifier, services.IngestOptions{
		Concurrency: cfg.Ingest.Concurrency,
		Timeout:     time.Duration(cfg.Ingest.TimeoutSeconds) * time.Second,
		Attempts:    cfg.Ingest.Attempts,
	})
	a.search = services.NewSearchService(store, embedder, generator)
	a.themes = services.NewThemeService(store, classifier)
	a.documents = services.NewDocumentService(store)
	return a, nil
}

// Close releases all adapter resources.
func (a *app) Close() {
	if a.generator != nil {
		a.generator.Close()
	}
	a.embedder.Close()
	a.store.Close()
}

func buildEmbedder(cfg configfile.ProviderConfig) (driven.EmbeddingService, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch cfg.Provider {
	case "", "ollama":
		return embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    timeout,
			Dimensions: cfg.Dimensions,
		}), nil

	case "openai":
		svc, err := embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:     apiKey(cfg),
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    timeout,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfiguration, cfg.Provider)
	}
}

func buildGenerator(cfg configfile.ProviderConfig) (driven.AnswerGenerator, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch cfg.Provider {
	case "", "ollama":
		return llmollama.NewGenerator(llmollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		}), nil

	case "openai":
		gen, err := llmopenai.NewGenerator(llmopenai.Config{
			APIKey:  apiKey(cfg),
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
		}
		return gen, nil

	case "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: unknown generator provider %q", domain.ErrConfiguration, cfg.Provider)
	}
}

func apiKey(cfg configfile.ProviderConfig) string {
	env := cfg.APIKeyEnv
	if env == "" {
		env = "OPENAI_API_KEY"
	}
	return os.Getenv(env)
}
