package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mnemos-dev/mnemos/internal/capability"
	"github.com/mnemos-dev/mnemos/internal/engine"
	"github.com/mnemos-dev/mnemos/internal/scope"
	"github.com/spf13/cobra"
)

const defaultEmbedDims = 256

// dataDir returns the directory mnemos stores its database under,
// honoring MNEMOS_DATA_DIR and falling back to ~/.mnemos.
func dataDir() string {
	if d := os.Getenv("MNEMOS_DATA_DIR"); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mnemos"
	}
	return filepath.Join(home, ".mnemos")
}

// resolveDBPath picks the database path from the --db flag, then
// MNEMOS_DB_PATH, then the default data directory.
func resolveDBPath(cmd *cobra.Command) string {
	if dbPathFlag != "" {
		return dbPathFlag
	}
	if p := os.Getenv("MNEMOS_DB_PATH"); p != "" {
		return p
	}
	return filepath.Join(dataDir(), "mnemos.db")
}

// buildEmbedder chooses between a networked embedder and the local,
// dependency-free one based on MNEMOS_EMBED_URL.
func buildEmbedder() (engine.EmbedFn, string) {
	url := os.Getenv("MNEMOS_EMBED_URL")
	if url == "" {
		dims := defaultEmbedDims
		if v := os.Getenv("MNEMOS_EMBED_DIMS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				dims = n
			}
		}
		return capability.NewLocalEmbedder(dims), "local-v1"
	}

	model := os.Getenv("MNEMOS_EMBED_MODEL")
	if model == "" {
		model = "text-embedding-3-small"
	}
	return capability.NewHTTPEmbedder(url, os.Getenv("MNEMOS_EMBED_KEY"), model), model
}

// buildLlmOption wires an LLM capability via engine.WithLlmClient when
// MNEMOS_LLM_URL is set; the fact-extraction and conflict-classification
// steps that need one simply go unused otherwise.
func buildLlmOption() engine.Option {
	url := os.Getenv("MNEMOS_LLM_URL")
	if url == "" {
		return nil
	}
	model := os.Getenv("MNEMOS_LLM_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	client := capability.NewHTTPLlmClient(url, os.Getenv("MNEMOS_LLM_KEY"), model)
	return engine.WithLlmClient(client)
}

// openEngine opens the engine at the resolved database path, wiring
// whichever embedding/LLM capability the environment describes.
func openEngine(cmd *cobra.Command) (*engine.Engine, error) {
	dbPath := resolveDBPath(cmd)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	embed, model := buildEmbedder()

	var opts []engine.Option
	if opt := buildLlmOption(); opt != nil {
		opts = append(opts, opt)
	}

	return engine.Open(dbPath, embed, model, opts...)
}

// resolveAgentScope falls back to auto-detecting the caller's git
// scope when no explicit scope is given; an unset scope is not an
// error, since most commands operate across every scope for an agent.
func resolveAgentScope(explicit string) string {
	if explicit != "" {
		return explicit
	}
	s, err := scope.DetectCurrent()
	if err != nil {
		return ""
	}
	return s
}
