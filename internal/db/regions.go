package db

import (
	"context"
	"fmt"

	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

// position keeps the row order of the imported table, which decides ties
// between equally good name matches.
var regionsSchema = []string{
	`CREATE TABLE IF NOT EXISTS regions (
		region_id   TEXT PRIMARY KEY,
		region_name TEXT NOT NULL,
		parent_id   TEXT REFERENCES regions (region_id) DEFERRABLE INITIALLY DEFERRED,
		position    INTEGER NOT NULL DEFAULT 0
	)`,
	`ALTER TABLE regions ADD COLUMN IF NOT EXISTS position INTEGER NOT NULL DEFAULT 0`,
}

// EnsureRegionsTable creates the regions table when missing and adds columns
// missing from older versions of it.
func (c *Connection) EnsureRegionsTable(ctx context.Context) error {
	for _, stmt := range regionsSchema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create regions table: %w", err)
		}
	}
	return nil
}

// ReplaceRegions swaps the contents of the regions table for nodes in one
// transaction. The nodes are indexed first so that an invalid hierarchy never
// reaches the database.
func (c *Connection) ReplaceRegions(ctx context.Context, nodes []regions.Node) (int, error) {
	if _, err := regions.NewIndex(nodes); err != nil {
		return 0, err
	}

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "TRUNCATE TABLE regions"); err != nil {
		return 0, fmt.Errorf("failed to truncate regions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO regions (region_id, region_name, parent_id, position)
		VALUES ($1, $2, NULLIF($3, ''), $4)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range nodes {
		parent := ""
		if !n.Parent.IsUnresolved() {
			parent = n.Parent.String()
		}
		if _, err := stmt.ExecContext(ctx, n.ID.String(), n.Name, parent, i); err != nil {
			return 0, fmt.Errorf("failed to insert %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit regions: %w", err)
	}
	return len(nodes), nil
}
