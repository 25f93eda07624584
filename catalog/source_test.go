package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const catalogJSON = `{
	"subjects": [
		{"id": "cs101", "code": "CS101", "name": "Intro to Programming", "credits": 6, "year": 1, "semester": 1},
		{"id": "cs201", "code": "CS201", "name": "Data Structures", "credits": 6, "year": 1, "semester": 2, "prerequisites": ["cs101"]}
	]
}`

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subjects.json")
	if err := os.WriteFile(path, []byte(catalogJSON), 0644); err != nil {
		t.Fatalf("writing catalog file: %v", err)
	}

	subjects, err := (&FileSource{Path: path}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(subjects) != 2 || subjects[0].ID != "cs101" || subjects[1].Prerequisites[0] != "cs101" {
		t.Errorf("unexpected subjects: %+v", subjects)
	}
}

func TestFileSourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `{"subjects": [`},
		{"missing subjects field", `{"courses": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "subjects.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("writing catalog file: %v", err)
			}
			if _, err := (&FileSource{Path: path}).Load(context.Background()); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src := &FileSource{Path: filepath.Join(t.TempDir(), "nope.json")}
	if _, err := src.Load(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(catalogJSON))
	}))
	defer srv.Close()

	subjects, err := (&HTTPSource{URL: srv.URL}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(subjects) != 2 {
		t.Errorf("got %d subjects, want 2", len(subjects))
	}
}

func TestHTTPSourceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := (&HTTPSource{URL: srv.URL}).Load(context.Background()); err == nil {
		t.Error("expected error for non-200 status")
	}
}
