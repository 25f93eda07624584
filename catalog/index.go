package catalog

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// Index is an in-memory search index over the loaded subjects: FTS5 for
// keyword ranking and sqlite-vec for semantic similarity when subject
// embeddings are available. It exists to shortlist subjects for the
// generation prompt; it holds no state beyond the process and is rebuilt
// from the catalog whenever the subject list is replaced.
type Index struct {
	db  *sql.DB
	dim int
	ids map[int64]string
}

// indexSchema returns the DDL for the in-memory index tables.
func indexSchema(dim int) string {
	return fmt.Sprintf(`
CREATE TABLE subjects (
    rowid INTEGER PRIMARY KEY,
    subject_id TEXT NOT NULL UNIQUE
);

CREATE VIRTUAL TABLE subjects_fts USING fts5(
    name,
    description,
    keywords,
    tokenize='porter unicode61'
);

CREATE VIRTUAL TABLE vec_subjects USING vec0(
    subject_rowid INTEGER PRIMARY KEY,
    embedding float[%d]
);`, dim)
}

// NewIndex builds an in-memory index over the given subjects. dim must match
// the embedding model's output dimension; embeddings are added separately
// via AddEmbedding since they come from a network round-trip.
func NewIndex(subjects []Subject, dim int) (*Index, error) {
	if dim <= 0 {
		dim = 768
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory index: %w", err)
	}
	// An in-memory database vanishes when its sole connection closes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(indexSchema(dim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}

	idx := &Index{db: db, dim: dim, ids: make(map[int64]string, len(subjects))}
	for _, s := range subjects {
		res, err := db.Exec("INSERT INTO subjects (subject_id) VALUES (?)", s.ID)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("indexing subject %q: %w", s.ID, err)
		}
		rowid, err := res.LastInsertId()
		if err != nil {
			db.Close()
			return nil, err
		}
		idx.ids[rowid] = s.ID

		_, err = db.Exec(
			"INSERT INTO subjects_fts (rowid, name, description, keywords) VALUES (?, ?, ?, ?)",
			rowid, s.Name, s.Description, strings.Join(s.Keywords, " "))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("indexing subject text %q: %w", s.ID, err)
		}
	}
	return idx, nil
}

// Close releases the index. The in-memory database is discarded.
func (x *Index) Close() error {
	return x.db.Close()
}

// KeywordSearch returns subject ids ranked by BM25 relevance to the query.
func (x *Index) KeywordSearch(ctx context.Context, query string, limit int) ([]string, error) {
	fts := sanitizeFTSQuery(query)
	if fts == "" {
		return nil, nil
	}

	rows, err := x.db.QueryContext(ctx, `
		SELECT rowid FROM subjects_fts
		WHERE subjects_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, fts, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var rowid int64
		if err := rows.Scan(&rowid); err != nil {
			return nil, err
		}
		if id, ok := x.ids[rowid]; ok {
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}

// AddEmbedding stores a subject's embedding vector.
func (x *Index) AddEmbedding(ctx context.Context, subjectID string, embedding []float32) error {
	var rowid int64
	err := x.db.QueryRowContext(ctx,
		"SELECT rowid FROM subjects WHERE subject_id = ?", subjectID).Scan(&rowid)
	if err != nil {
		return fmt.Errorf("unknown subject %q: %w", subjectID, err)
	}
	_, err = x.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO vec_subjects (subject_rowid, embedding) VALUES (?, ?)",
		rowid, serializeFloat32(embedding))
	return err
}

// SemanticSearch returns the k subject ids nearest to the query embedding.
func (x *Index) SemanticSearch(ctx context.Context, queryEmbedding []float32, k int) ([]string, error) {
	rows, err := x.db.QueryContext(ctx, `
		SELECT subject_rowid FROM vec_subjects
		WHERE embedding MATCH ? AND k = ?
		ORDER BY distance
	`, serializeFloat32(queryEmbedding), k)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var rowid int64
		if err := rows.Scan(&rowid); err != nil {
			return nil, err
		}
		if id, ok := x.ids[rowid]; ok {
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}

// sanitizeFTSQuery strips FTS5 operators and joins the remaining words with
// OR for broad matching.
func sanitizeFTSQuery(query string) string {
	replacer := strings.NewReplacer(
		"\"", "", "*", "", "(", "", ")", "", "+", "", "-", "",
		"^", "", ":", "", "?", "", "[", "", "]", "", "{", "", "}", "",
		"!", "", ".", "", ",", "", ";", "",
	)
	words := strings.Fields(replacer.Replace(query))
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, " OR ")
}

// serializeFloat32 encodes a vector in sqlite-vec's little-endian layout.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
