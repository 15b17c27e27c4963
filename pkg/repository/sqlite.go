package repository

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
	_ "modernc.org/sqlite"
)

// SQLite implements Repository with an on-disk database. Embeddings are stored
// as little-endian float32 blobs and similarity search is a brute-force cosine
// scan, which is adequate for a single-user news memory.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", path))
	}

	s := &SQLite{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLite) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return goerr.Wrap(err, "pragma failed", goerr.V("pragma", p))
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			embedding BLOB NOT NULL,
			source TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			summary_preview TEXT
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return goerr.Wrap(err, "schema creation failed")
	}

	return nil
}

func (s *SQLite) PutDocument(ctx context.Context, doc *model.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO documents (id, text, embedding, source, created_at, summary_preview) VALUES (?, ?, ?, ?, ?, ?)",
		string(doc.ID),
		doc.Text,
		encodeFloat32Slice(doc.Embedding),
		string(doc.Source),
		doc.CreatedAt.UTC().Format(time.RFC3339Nano),
		doc.SummaryPreview,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to put document", goerr.V("id", doc.ID))
	}

	return nil
}

func (s *SQLite) GetDocument(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, text, embedding, source, created_at, summary_preview FROM documents WHERE id = ?",
		string(id),
	)

	doc, err := scanDocument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, goerr.Wrap(ErrDocumentNotFound, "no such document", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("id", id))
	}

	return doc, nil
}

func (s *SQLite) ListDocuments(ctx context.Context, offset, limit int) ([]*model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, embedding, source, created_at, summary_preview FROM documents ORDER BY rowid LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list documents")
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan document")
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate documents")
	}

	return docs, nil
}

func (s *SQLite) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, embedding, source, created_at, summary_preview FROM documents ORDER BY rowid",
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load documents for search")
	}
	defer rows.Close()

	type scored struct {
		doc   *model.Document
		score float64
		order int
	}

	var candidates []scored
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan document")
		}
		candidates = append(candidates, scored{
			doc:   doc,
			score: cosineSimilarity(embedding, doc.Embedding),
			order: len(candidates),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate documents")
	}

	// Descending similarity, insertion order as the stable tiebreak
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	docs := make([]*model.Document, 0, limit)
	for i := 0; i < limit; i++ {
		docs = append(docs, candidates[i].doc)
	}

	return docs, nil
}

func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close database")
	}
	return nil
}

func scanDocument(scan func(dest ...any) error) (*model.Document, error) {
	var (
		id, text, source, createdAt string
		embBytes                    []byte
		preview                     sql.NullString
	)

	if err := scan(&id, &text, &embBytes, &source, &createdAt, &preview); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid created_at", goerr.V("value", createdAt))
	}

	return &model.Document{
		ID:             model.DocumentID(id),
		Text:           text,
		Embedding:      decodeFloat32Slice(embBytes),
		Source:         model.SourceType(source),
		CreatedAt:      ts,
		SummaryPreview: preview.String,
	}, nil
}

func encodeFloat32Slice(vals []float32) []byte {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeFloat32Slice(buf []byte) []float32 {
	vals := make([]float32, len(buf)/4)
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vals
}
