package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// A Source supplies the raw subject list. Sources are read-only; absence or
// malformed content is an error, never a partial parse.
type Source interface {
	// Load fetches and decodes the full subject list.
	Load(ctx context.Context) ([]Subject, error)
}

// catalogDocument is the top-level shape of the static JSON catalog.
type catalogDocument struct {
	Subjects []Subject `json:"subjects"`
}

// decodeCatalog parses a JSON catalog document.
func decodeCatalog(r io.Reader) ([]Subject, error) {
	var doc catalogDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing catalog JSON: %w", err)
	}
	if doc.Subjects == nil {
		return nil, fmt.Errorf("catalog document has no subjects field")
	}
	return doc.Subjects, nil
}

// FileSource loads the catalog from a local JSON document.
type FileSource struct {
	Path string
}

func (s *FileSource) Load(ctx context.Context) ([]Subject, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()
	return decodeCatalog(f)
}

// HTTPSource loads the catalog from a well-known URL with a read-only GET.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSource) Load(ctx context.Context) ([]Subject, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building catalog request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching catalog: unexpected status %d", resp.StatusCode)
	}
	return decodeCatalog(resp.Body)
}

// StaticSource serves a fixed subject list. Used in tests and as a seam for
// callers that already hold the subjects in memory.
type StaticSource struct {
	Subjects []Subject
	Err      error
}

func (s *StaticSource) Load(ctx context.Context) ([]Subject, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Subjects, nil
}
