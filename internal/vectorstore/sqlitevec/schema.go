package sqlitevec

import "fmt"

// schemaSQL mirrors the single-table layout retrieve() needs: one row per
// DocumentId (invariant: at most one IndexedDoc per DocumentId), with its
// embedding held in a companion vec0 virtual table keyed by rowid.
func schemaSQL(dim int) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS docs (
    rowid INTEGER PRIMARY KEY,
    source_file TEXT NOT NULL UNIQUE,
    patient_name TEXT NOT NULL,
    content TEXT NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_docs USING vec0(
    rowid INTEGER PRIMARY KEY,
    embedding float[%d] distance_metric=cosine
);
`, dim)
}
