package regions

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is the subset of *sql.DB used to load the region table.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// regionsQuery returns rows in import order, so that ties between equal
// matches break the same way as for the CSV the table was loaded from.
const regionsQuery = `
	SELECT region_id, region_name, COALESCE(parent_id, '')
	FROM regions
	ORDER BY position, region_id
`

// LoadSQL reads the regions table and indexes it.
func LoadSQL(ctx context.Context, q Querier) (*Index, error) {
	rows, err := q.QueryContext(ctx, regionsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		var rawID, name, rawParent string
		if err := rows.Scan(&rawID, &name, &rawParent); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		id, err := ParseID(rawID)
		if err != nil {
			return nil, err
		}
		var parent ID
		if rawParent != "" {
			if parent, err = ParseID(rawParent); err != nil {
				return nil, err
			}
		}
		nodes = append(nodes, Node{ID: id, Name: name, Parent: parent})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read regions: %w", err)
	}

	return NewIndex(nodes)
}
