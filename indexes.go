package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// sys.indexes.type values this tool can recreate.
const (
	indexTypeClustered    = 1
	indexTypeNonclustered = 2
	indexTypeXML          = 3
)

const indexQuery = `
SELECT i.index_id, i.name, i.type, i.type_desc, i.is_unique,
       ISNULL(i.filter_definition, ''), ISNULL(ds.name, ''),
       ISNULL(xi.secondary_type_desc, ''), ISNULL(pxi.name, '')
FROM sys.indexes i
LEFT JOIN sys.data_spaces ds ON ds.data_space_id = i.data_space_id
LEFT JOIN sys.xml_indexes xi
  ON xi.object_id = i.object_id AND xi.index_id = i.index_id
LEFT JOIN sys.xml_indexes pxi
  ON pxi.object_id = xi.object_id AND pxi.index_id = xi.using_xml_index_id
WHERE i.object_id = @p1 AND i.index_id > 0
  AND i.is_primary_key = 0 AND i.is_unique_constraint = 0
  AND i.is_hypothetical = 0 AND i.is_disabled = 0
ORDER BY i.index_id`

const indexColumnQuery = `
SELECT ic.index_id, c.name, ic.key_ordinal, ic.is_descending_key, ic.is_included_column
FROM sys.index_columns ic
JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
WHERE ic.object_id = @p1
ORDER BY ic.index_id, ic.is_included_column, ic.key_ordinal, ic.index_column_id`

// collectIndexes reads every index of every selected table that is not
// already represented as a PK/UNIQUE constraint. The exclusion filters on the
// index identity flags, so a constraint row and an index row can never both
// describe the same physical index.
func collectIndexes(ctx context.Context, db *sql.DB, tables []SelectedTable) ([]IndexDef, error) {
	var all []IndexDef

	for _, t := range tables {
		defs, err := collectTableIndexes(ctx, db, t)
		if err != nil {
			return nil, err
		}
		all = append(all, defs...)
	}

	return all, nil
}

func collectTableIndexes(ctx context.Context, db *sql.DB, t SelectedTable) ([]IndexDef, error) {
	rows, err := db.QueryContext(ctx, indexQuery, t.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("query indexes for %s.%s: %w", t.SchemaName, t.TableName, err)
	}
	defer rows.Close()

	var defs []IndexDef
	byID := make(map[int]*IndexDef)
	for rows.Next() {
		d := IndexDef{ObjectID: t.ObjectID}
		if err := rows.Scan(&d.IndexID, &d.Name, &d.Type, &d.TypeDesc, &d.IsUnique,
			&d.Filter, &d.Filegroup, &d.XMLRole, &d.UsingXMLIndex); err != nil {
			return nil, fmt.Errorf("scan index for %s.%s: %w", t.SchemaName, t.TableName, err)
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indexes for %s.%s: %w", t.SchemaName, t.TableName, err)
	}
	for i := range defs {
		byID[defs[i].IndexID] = &defs[i]
	}

	colRows, err := db.QueryContext(ctx, indexColumnQuery, t.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("query index columns for %s.%s: %w", t.SchemaName, t.TableName, err)
	}
	defer colRows.Close()

	// The catalog can surface the same column twice per index through
	// data-space joins; a duplicate key or include entry is a correctness
	// bug in the emitted DDL, so both sides deduplicate per index.
	seen := make(map[string]bool)
	for colRows.Next() {
		var (
			indexID, keyOrdinal  int
			name                 string
			descending, included bool
		)
		if err := colRows.Scan(&indexID, &name, &keyOrdinal, &descending, &included); err != nil {
			return nil, fmt.Errorf("scan index column for %s.%s: %w", t.SchemaName, t.TableName, err)
		}
		d, ok := byID[indexID]
		if !ok {
			continue // PK/UNIQUE-backing index, already excluded
		}
		key := fmt.Sprintf("%d/%t/%s", indexID, included, name)
		if seen[key] {
			continue
		}
		seen[key] = true
		if included {
			d.Included = append(d.Included, name)
		} else {
			d.KeyColumns = append(d.KeyColumns, indexColumn{Name: name, Descending: descending})
		}
	}
	if err := colRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index columns for %s.%s: %w", t.SchemaName, t.TableName, err)
	}

	return defs, nil
}

// indexUnsupportedReason reports why an index cannot be recreated by this
// tool, if it cannot.
func indexUnsupportedReason(idx IndexDef) (string, bool) {
	switch idx.Type {
	case indexTypeClustered, indexTypeNonclustered, indexTypeXML:
	default:
		return fmt.Sprintf("index kind %s is not supported", idx.TypeDesc), true
	}
	if len(idx.KeyColumns) == 0 {
		return "index has no key columns", true
	}
	if idx.Type == indexTypeXML && idx.XMLRole != "" && idx.UsingXMLIndex == "" {
		return "secondary XML index has no primary XML index to build on", true
	}
	return "", false
}

// collectIndexWarnings lists the indexes the run will skip, up front, instead
// of letting them fail at execution time.
func collectIndexWarnings(set *CloneSet) []string {
	var warnings []string
	for _, t := range set.Tables {
		for _, idx := range set.indexesFor(t.ObjectID) {
			if reason, unsupported := indexUnsupportedReason(*idx); unsupported {
				warnings = append(warnings,
					fmt.Sprintf("%s.%s index %s: %s", t.SchemaName, t.TableName, idx.Name, reason))
			}
		}
	}
	return warnings
}

// indexDDL produces the CREATE INDEX statement for one collected index.
func indexDDL(t SelectedTable, idx IndexDef) string {
	var b strings.Builder

	b.WriteString("CREATE ")
	if idx.IsUnique && idx.Type != indexTypeXML {
		b.WriteString("UNIQUE ")
	}
	if idx.Type == indexTypeXML && idx.XMLRole == "" {
		b.WriteString("PRIMARY ")
	}
	b.WriteString(idx.TypeDesc)
	fmt.Fprintf(&b, " INDEX %s ON %s (%s)",
		sqlIdent(idx.Name),
		qualifiedName(t.SchemaName, t.TableName),
		indexKeyColumnList(idx))

	if len(idx.Included) > 0 {
		fmt.Fprintf(&b, " INCLUDE (%s)", quotedColumnList(idx.Included))
	}
	if idx.Type == indexTypeXML && idx.XMLRole != "" {
		fmt.Fprintf(&b, " USING XML INDEX %s FOR %s", sqlIdent(idx.UsingXMLIndex), idx.XMLRole)
	}
	if idx.Filter != "" {
		fmt.Fprintf(&b, " WHERE %s", idx.Filter)
	}
	if idx.Filegroup != "" && idx.Type != indexTypeXML {
		fmt.Fprintf(&b, " ON %s", sqlIdent(idx.Filegroup))
	}

	return b.String()
}

// indexKeyColumnList renders the ordered key column list. The ASC/DESC suffix
// applies only to ordinary row-store kinds; XML keys are unordered.
func indexKeyColumnList(idx IndexDef) string {
	parts := make([]string, len(idx.KeyColumns))
	for i, c := range idx.KeyColumns {
		if idx.Type != indexTypeClustered && idx.Type != indexTypeNonclustered {
			parts[i] = sqlIdent(c.Name)
			continue
		}
		dir := "ASC"
		if c.Descending {
			dir = "DESC"
		}
		parts[i] = sqlIdent(c.Name) + " " + dir
	}
	return strings.Join(parts, ", ")
}
