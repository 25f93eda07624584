// Command pathway is a terminal front end for the course-planning session:
// it loads a subject catalog, generates AI study roadmaps for a target
// occupation, and renders them as a semester grid.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/brunobiangulo/pathway"
)

var (
	configPath string
	catalogArg string
	verbose    bool
	jsonOut    bool
)

var rootCmd = &cobra.Command{
	Use:   "pathway",
	Short: "AI-assisted course planning from a subject catalog",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		// Logs go to stderr so --json output stays parseable.
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&catalogArg, "catalog", "", "Catalog path or URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of rendered output")
}

// loadConfig assembles the effective configuration: file, then environment,
// then flags.
func loadConfig() (pathway.Config, error) {
	cfg := pathway.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = pathway.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
	}

	if v := os.Getenv("PATHWAY_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("PATHWAY_CATALOG_URL"); v != "" {
		cfg.Catalog.URL = v
	}
	if v := os.Getenv("PATHWAY_HANDBOOK_PATH"); v != "" {
		cfg.Catalog.HandbookPath = v
	}
	if v := os.Getenv("PATHWAY_CHAT_PROVIDER"); v != "" {
		cfg.Chat.Provider = v
	}
	if v := os.Getenv("PATHWAY_CHAT_MODEL"); v != "" {
		cfg.Chat.Model = v
	}
	if v := os.Getenv("PATHWAY_CHAT_BASE_URL"); v != "" {
		cfg.Chat.BaseURL = v
	}
	if v := os.Getenv("PATHWAY_CHAT_API_KEY"); v != "" {
		cfg.Chat.APIKey = v
	}
	if v := os.Getenv("PATHWAY_EMBED_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("PATHWAY_EMBED_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("PATHWAY_EMBED_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("PATHWAY_EMBED_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}

	// Fallback: well-known provider env vars for API keys.
	if cfg.Chat.APIKey == "" {
		cfg.Chat.APIKey = providerKeyFromEnv(cfg.Chat.Provider)
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = providerKeyFromEnv(cfg.Embedding.Provider)
	}

	if catalogArg != "" {
		if isURL(catalogArg) {
			cfg.Catalog.URL = catalogArg
			cfg.Catalog.Path = ""
		} else {
			cfg.Catalog.Path = catalogArg
			cfg.Catalog.URL = ""
		}
	}
	return cfg, nil
}

func providerKeyFromEnv(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "groq":
		return os.Getenv("GROQ_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return ""
	}
}

func isURL(s string) bool {
	return len(s) > 8 && (s[:7] == "http://" || s[:8] == "https://")
}
