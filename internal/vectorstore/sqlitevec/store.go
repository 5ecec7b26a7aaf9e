// Package sqlitevec backs the C5 VectorIndex with a directory-persisted
// SQLite database plus the sqlite-vec extension for nearest-neighbor search
// (spec §4.6). It is grounded on the bbiangul-go-reason store package's use
// of the same extension, trimmed to the single docs/vec_docs pair this
// index's invariants require.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/platform/clinicerr"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

func init() {
	sqlite_vec.Auto()
}

const fileName = "index.db"

// Index is the directory-persisted vector index. A zero value is not usable;
// construct with New (build path) or Load (retrieve path).
type Index struct {
	log *logger.Logger
	db  *sql.DB
	dim int
}

// Result pairs a retrieved IndexedDoc with its similarity score.
type Result struct {
	Doc   domain.IndexedDoc
	Score float64
}

// New opens or creates the index database under dir, creating the schema if
// absent. Used on the build path: callers populate it with Rebuild (from
// scratch) or Upsert (incremental, as the ingestion pipeline does).
func New(log *logger.Logger, dir string, dim int) (*Index, error) {
	if log == nil {
		return nil, fmt.Errorf("sqlitevec: logger required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sqlitevec: mkdir %s: %w", dir, err)
	}
	db, err := open(filepath.Join(dir, fileName))
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL(dim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitevec: schema: %w", err)
	}
	return &Index{log: log.With("service", "sqlitevec.Index"), db: db, dim: dim}, nil
}

// Load rehydrates a previously built index from dir. Returns
// clinicerr.ErrIndexAbsent if no index file exists there yet (spec §7: a
// retrieve call before any build/load reports IndexAbsent).
func Load(log *logger.Logger, dir string, dim int) (*Index, error) {
	if log == nil {
		return nil, fmt.Errorf("sqlitevec: logger required")
	}
	path := filepath.Join(dir, fileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, clinicerr.ErrIndexAbsent
		}
		return nil, fmt.Errorf("sqlitevec: stat %s: %w", path, err)
	}
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL(dim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitevec: schema: %w", err)
	}
	return &Index{log: log.With("service", "sqlitevec.Index"), db: db, dim: dim}, nil
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("sqlitevec: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitevec: ping %s: %w", path, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func (ix *Index) Close() error {
	if ix == nil || ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// Rebuild replaces the index contents with docs and their embeddings.
// build_index is a from-scratch operation (spec §4.6): it does not merge
// with any prior index.
func (ix *Index) Rebuild(ctx context.Context, docs []domain.IndexedDoc, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("sqlitevec: %d docs but %d embeddings", len(docs), len(embeddings))
	}
	return ix.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM docs"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM vec_docs"); err != nil {
			return err
		}
		for i, doc := range docs {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO docs (source_file, patient_name, content) VALUES (?, ?, ?)`,
				doc.Metadata.SourceFile, doc.Metadata.PatientName, doc.Content)
			if err != nil {
				return fmt.Errorf("insert doc %q: %w", doc.Metadata.SourceFile, err)
			}
			rowID, err := res.LastInsertId()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO vec_docs (rowid, embedding) VALUES (?, ?)`,
				rowID, serializeFloat32(embeddings[i])); err != nil {
				return fmt.Errorf("insert embedding %q: %w", doc.Metadata.SourceFile, err)
			}
		}
		return nil
	})
}

// Upsert inserts or replaces a single document, preserving the at-most-one-
// per-DocumentId invariant; used by incremental re-index runs.
func (ix *Index) Upsert(ctx context.Context, doc domain.IndexedDoc, embedding []float32) error {
	return ix.inTx(ctx, func(tx *sql.Tx) error {
		var rowID int64
		err := tx.QueryRowContext(ctx, `SELECT rowid FROM docs WHERE source_file = ?`, doc.Metadata.SourceFile).Scan(&rowID)
		switch {
		case err == sql.ErrNoRows:
			res, err := tx.ExecContext(ctx,
				`INSERT INTO docs (source_file, patient_name, content) VALUES (?, ?, ?)`,
				doc.Metadata.SourceFile, doc.Metadata.PatientName, doc.Content)
			if err != nil {
				return err
			}
			rowID, err = res.LastInsertId()
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if _, err := tx.ExecContext(ctx,
				`UPDATE docs SET patient_name = ?, content = ? WHERE rowid = ?`,
				doc.Metadata.PatientName, doc.Content, rowID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM vec_docs WHERE rowid = ?`, rowID); err != nil {
				return err
			}
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO vec_docs (rowid, embedding) VALUES (?, ?)`, rowID, serializeFloat32(embedding))
		return err
	})
}

// SourceFiles returns the DocumentIds currently indexed, for use as the
// downstream key set in C5's work-set diff (spec §4.1) against freshly
// structured documents.
func (ix *Index) SourceFiles(ctx context.Context) (map[string]struct{}, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT source_file FROM docs`)
	if err != nil {
		return nil, fmt.Errorf("sqlitevec: source files: %w", err)
	}
	defer rows.Close()

	out := map[string]struct{}{}
	for rows.Next() {
		var sourceFile string
		if err := rows.Scan(&sourceFile); err != nil {
			return nil, err
		}
		out[sourceFile] = struct{}{}
	}
	return out, rows.Err()
}

// Retrieve returns the k nearest documents to queryEmbedding, most similar
// first.
func (ix *Index) Retrieve(ctx context.Context, queryEmbedding []float32, k int) ([]Result, error) {
	if k <= 0 {
		k = 1
	}
	rows, err := ix.db.QueryContext(ctx, `
		SELECT d.source_file, d.patient_name, d.content, v.distance
		FROM vec_docs v
		JOIN docs d ON d.rowid = v.rowid
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, serializeFloat32(queryEmbedding), k)
	if err != nil {
		return nil, fmt.Errorf("sqlitevec: retrieve: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		var distance float64
		if err := rows.Scan(&r.Doc.Metadata.SourceFile, &r.Doc.Metadata.PatientName, &r.Doc.Content, &distance); err != nil {
			return nil, err
		}
		r.Score = 1.0 - distance
		out = append(out, r)
	}
	return out, rows.Err()
}

func (ix *Index) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
