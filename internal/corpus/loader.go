// Package corpus bootstraps the index from a Postgres table at startup.
package corpus

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/kgoto/aliasearch/internal/engine"
	"github.com/kgoto/aliasearch/pkg/logger"
	"github.com/kgoto/aliasearch/pkg/postgres"
	"github.com/kgoto/aliasearch/pkg/resilience"
)

// Load reads every document from the configured table. The table is expected
// to have a text name column and a text[] aliases column:
//
//	CREATE TABLE documents (
//	    name    TEXT PRIMARY KEY,
//	    aliases TEXT[] NOT NULL DEFAULT '{}'
//	);
//
// The read is retried so the service survives a database that is still
// coming up alongside it.
func Load(ctx context.Context, client *postgres.Client, table string) ([]engine.Document, error) {
	log := logger.WithComponent("corpus")

	var docs []engine.Document
	err := resilience.Retry(ctx, "corpus-load", resilience.RetryConfig{MaxAttempts: 5}, func() error {
		var err error
		docs, err = query(ctx, client, table)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info("corpus loaded", "table", table, "documents", len(docs))
	return docs, nil
}

func query(ctx context.Context, client *postgres.Client, table string) ([]engine.Document, error) {
	// Table names cannot be bound as parameters; the value comes from
	// trusted config, quote it anyway.
	stmt := fmt.Sprintf(`SELECT name, aliases FROM %s ORDER BY name`, pq.QuoteIdentifier(table))

	rows, err := client.DB.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("querying corpus table %s: %w", table, err)
	}
	defer rows.Close()

	var docs []engine.Document
	for rows.Next() {
		var doc engine.Document
		if err := rows.Scan(&doc.Name, pq.Array(&doc.Aliases)); err != nil {
			return nil, fmt.Errorf("scanning corpus row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating corpus rows: %w", err)
	}
	return docs, nil
}
