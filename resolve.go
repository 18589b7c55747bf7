package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// resolveSelectedTables maps the cross-product of schema and table tokens to
// catalog object identities. An unknown schema or a table name that exists
// nowhere in the catalog fails the whole run; a pairing that merely does not
// exist under a given schema is skipped, since every table token is tried
// against every schema token. An empty result set is fatal.
func resolveSelectedTables(ctx context.Context, db *sql.DB, schemaNames, tableNames []string) ([]SelectedTable, error) {
	type schemaRef struct {
		id   int
		name string
	}

	var schemas []schemaRef
	for _, name := range schemaNames {
		var id int
		err := db.QueryRowContext(ctx,
			`SELECT schema_id FROM sys.schemas WHERE name = @p1`, name).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("schema %q does not exist in the source database", name)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve schema %q: %w", name, err)
		}
		schemas = append(schemas, schemaRef{id: id, name: name})
	}

	for _, name := range tableNames {
		var count int
		if err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sys.tables WHERE name = @p1`, name).Scan(&count); err != nil {
			return nil, fmt.Errorf("resolve table %q: %w", name, err)
		}
		if count == 0 {
			return nil, fmt.Errorf("table %q does not exist in the source database", name)
		}
	}

	var selected []SelectedTable
	seen := make(map[int]bool) // object_id uniqueness across the cross-product
	for _, s := range schemas {
		for _, tableName := range tableNames {
			var objectID int
			err := db.QueryRowContext(ctx,
				`SELECT object_id FROM sys.tables WHERE schema_id = @p1 AND name = @p2`,
				s.id, tableName).Scan(&objectID)
			if errors.Is(err, sql.ErrNoRows) {
				continue // valid table name, just not under this schema
			}
			if err != nil {
				return nil, fmt.Errorf("resolve %s.%s: %w", s.name, tableName, err)
			}
			if seen[objectID] {
				continue
			}
			seen[objectID] = true
			selected = append(selected, SelectedTable{
				SchemaID:   s.id,
				ObjectID:   objectID,
				SchemaName: s.name,
				TableName:  tableName,
			})
		}
	}

	if len(selected) == 0 {
		return nil, errors.New("no matching objects: none of the table names exist under the given schemas")
	}
	return selected, nil
}
