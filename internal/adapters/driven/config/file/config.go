// Package file loads docsift configuration and taxonomy files.
// Configuration is stored as TOML in the docsift config directory and
// is read once at startup; the taxonomy is read-only for the lifetime
// of a classifier instance.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/docsift/docsift/internal/chunker"
	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/services"
	"github.com/docsift/docsift/internal/themes"
)

// Config is the top-level docsift configuration.
type Config struct {
	// DataDir overrides the default ~/.docsift/data location.
	DataDir string `toml:"data_dir"`

	Chunking   ChunkingConfig   `toml:"chunking"`
	Classifier ClassifierConfig `toml:"classifier"`
	Ingest     IngestConfig     `toml:"ingest"`
	Embedding  ProviderConfig   `toml:"embedding"`
	Generator  ProviderConfig   `toml:"generator"`
}

// ChunkingConfig controls the splitter.
type ChunkingConfig struct {
	// Size is the chunk size in characters.
	Size int `toml:"size"`

	// Overlap is the overlap between consecutive chunks in characters.
	Overlap int `toml:"overlap"`
}

// ClassifierConfig controls thematic classification.
type ClassifierConfig struct {
	// Floor is the minimum confidence below which chunks stay
	// unclassified.
	Floor float64 `toml:"floor"`

	// Disabled skips classification at ingest time.
	Disabled bool `toml:"disabled"`

	// TaxonomyPath points to a TOML taxonomy override. Empty uses the
	// built-in taxonomy.
	TaxonomyPath string `toml:"taxonomy_path"`
}

// IngestConfig tunes the embedding stage of ingestion.
type IngestConfig struct {
	// Concurrency bounds parallel embedding calls.
	Concurrency int `toml:"concurrency"`

	// TimeoutSeconds applies per embedding call.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// Attempts is the total tries per chunk, including the first.
	Attempts int `toml:"attempts"`
}

// ProviderConfig selects and tunes an external provider.
type ProviderConfig struct {
	// Provider is "ollama", "openai" or "none".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// Model overrides the provider's default model.
	Model string `toml:"model"`

	// Dimensions overrides the embedding dimension, where applicable.
	Dimensions int `toml:"dimensions"`

	// APIKeyEnv names the environment variable holding the API key
	// (default: OPENAI_API_KEY for the openai provider).
	APIKeyEnv string `toml:"api_key_env"`

	// TimeoutSeconds overrides the request timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// DefaultConfigPath returns ~/.docsift/config.toml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".docsift", "config.toml"), nil
}

// Load reads the configuration at path, falling back to defaults for
// any setting the file omits. A missing file yields pure defaults; a
// malformed file is a configuration error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Chunking: ChunkingConfig{
			Size:    chunker.DefaultChunkSize,
			Overlap: chunker.DefaultOverlap,
		},
		Classifier: ClassifierConfig{
			Floor: themes.DefaultFloor,
		},
		Ingest: IngestConfig{
			Concurrency: services.DefaultEmbedConcurrency,
			Attempts:    services.DefaultEmbedAttempts,
		},
		Embedding: ProviderConfig{Provider: "ollama"},
		Generator: ProviderConfig{Provider: "ollama"},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", domain.ErrConfiguration, path, err)
	}
	return cfg, nil
}

// taxonomyFile is the TOML shape of a taxonomy override.
type taxonomyFile struct {
	Themes []struct {
		ID       string   `toml:"id"`
		Label    string   `toml:"label"`
		Triggers []string `toml:"triggers"`
	} `toml:"themes"`
}

// LoadTaxonomy builds the classifier taxonomy: the TOML file at path
// when set, otherwise the built-in default.
func LoadTaxonomy(path string) (*themes.Taxonomy, error) {
	if path == "" {
		return themes.Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading taxonomy %s: %w", domain.ErrConfiguration, path, err)
	}

	var file taxonomyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parsing taxonomy %s: %w", domain.ErrConfiguration, path, err)
	}

	declared := make([]domain.Theme, len(file.Themes))
	for i, t := range file.Themes {
		declared[i] = domain.Theme{ID: t.ID, Label: t.Label, Triggers: t.Triggers}
	}
	return themes.NewTaxonomy(declared)
}
