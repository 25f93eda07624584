package pathway

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a planning session.
type Config struct {
	// Catalog describes where the subject catalog is loaded from.
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`

	// Chat is the LLM endpoint used for roadmap generation and enrichment.
	Chat LLMConfig `json:"chat" yaml:"chat"`

	// Embedding is an optional LLM endpoint used for semantic subject
	// shortlisting. When unset, shortlisting falls back to keyword search.
	Embedding LLMConfig `json:"embedding" yaml:"embedding"`

	// MaxPromptSubjects caps how many subjects are serialized into the
	// generation prompt. 0 means no cap (the whole catalog is sent).
	MaxPromptSubjects int `json:"max_prompt_subjects" yaml:"max_prompt_subjects"`

	// RelevanceThreshold is the minimum career-relevance score for
	// FilterByCareerRelevance when the caller does not pass one.
	RelevanceThreshold float64 `json:"relevance_threshold" yaml:"relevance_threshold"`

	// EmbeddingDim must match the embedding model's output dimension.
	EmbeddingDim int `json:"embedding_dim" yaml:"embedding_dim"`
}

// CatalogConfig selects the catalog source. Exactly one of Path or URL
// should be set; Path wins when both are. An .xlsx Path is loaded as a
// spreadsheet export, anything else as the JSON catalog document.
type CatalogConfig struct {
	Path string `json:"path" yaml:"path"`
	URL  string `json:"url" yaml:"url"`

	// HandbookPath optionally points at a course-handbook PDF used to fill
	// in missing subject descriptions after the catalog loads.
	HandbookPath string `json:"handbook_path,omitempty" yaml:"handbook_path,omitempty"`
}

// LLMConfig configures a single LLM provider endpoint.
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"` // ollama, openai, groq, gemini, custom
	Model    string `json:"model" yaml:"model"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

// DefaultConfig returns a Config with sensible defaults for local inference.
func DefaultConfig() Config {
	return Config{
		Catalog: CatalogConfig{
			Path: "subjects.json",
		},
		Chat: LLMConfig{
			Provider: "ollama",
			Model:    "llama3.1:8b",
			BaseURL:  "http://localhost:11434",
		},
		Embedding: LLMConfig{
			Provider: "ollama",
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		MaxPromptSubjects:  0,
		RelevanceThreshold: 0.5,
		EmbeddingDim:       768,
	}
}

// LoadConfig reads a config file. The format is chosen by extension:
// .yaml/.yml are decoded as YAML, everything else as JSON.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing YAML config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing JSON config: %w", err)
		}
	}
	return cfg, nil
}
