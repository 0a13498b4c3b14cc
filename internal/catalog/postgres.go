package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// LoadPostgres reads the catalog from a database table with (doc_id, url)
// columns. Used by deployments that keep the crawl frontier in Postgres
// instead of the flat catalog artifact.
func LoadPostgres(ctx context.Context, db *sql.DB, table string) (*Catalog, error) {
	if table == "" {
		table = "documents"
	}
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT doc_id, url FROM %s", table))
	if err != nil {
		return nil, fmt.Errorf("querying catalog table %s: %w", table, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.URL); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog rows: %w", err)
	}
	return New(docs), nil
}
