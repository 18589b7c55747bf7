package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// collectConstraints runs the four constraint discovery queries for every
// selected table and unions the results into one set.
func collectConstraints(ctx context.Context, db *sql.DB, tables []SelectedTable) ([]ConstraintDef, error) {
	var all []ConstraintDef

	for _, t := range tables {
		for _, collect := range []func(context.Context, *sql.DB, SelectedTable) ([]ConstraintDef, error){
			collectKeyConstraints,
			collectDefaultConstraints,
			collectCheckConstraints,
			collectForeignKeys,
		} {
			defs, err := collect(ctx, db, t)
			if err != nil {
				return nil, err
			}
			all = append(all, defs...)
		}
	}

	return all, nil
}

const keyConstraintQuery = `
SELECT kc.object_id, kc.name, kc.type, i.index_id, i.type_desc, ISNULL(ds.name, '')
FROM sys.key_constraints kc
JOIN sys.indexes i
  ON i.object_id = kc.parent_object_id AND i.index_id = kc.unique_index_id
LEFT JOIN sys.data_spaces ds ON ds.data_space_id = i.data_space_id
WHERE kc.parent_object_id = @p1
ORDER BY kc.name`

const keyColumnQuery = `
SELECT c.name, ic.is_descending_key
FROM sys.index_columns ic
JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
WHERE ic.object_id = @p1 AND ic.index_id = @p2 AND ic.key_ordinal > 0
ORDER BY ic.key_ordinal`

// collectKeyConstraints reads PRIMARY KEY and UNIQUE constraints. The column
// list is ordered by key ordinal with the per-column sort direction preserved.
func collectKeyConstraints(ctx context.Context, db *sql.DB, t SelectedTable) ([]ConstraintDef, error) {
	rows, err := db.QueryContext(ctx, keyConstraintQuery, t.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("query key constraints for %s.%s: %w", t.SchemaName, t.TableName, err)
	}
	defer rows.Close()

	type keyRow struct {
		def     ConstraintDef
		indexID int
	}
	var pending []keyRow
	for rows.Next() {
		var (
			kr        keyRow
			kcType    string
			indexKind string
		)
		if err := rows.Scan(&kr.def.ConstraintID, &kr.def.Name, &kcType, &kr.indexID, &indexKind, &kr.def.Filegroup); err != nil {
			return nil, fmt.Errorf("scan key constraint for %s.%s: %w", t.SchemaName, t.TableName, err)
		}
		kr.def.ObjectID = t.ObjectID
		if strings.TrimSpace(kcType) == "PK" {
			kr.def.Kind = ConstraintPrimaryKey
		} else {
			kr.def.Kind = ConstraintUnique
		}
		kr.def.TypeClause = kr.def.Kind.String() + " " + indexKind
		pending = append(pending, kr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate key constraints for %s.%s: %w", t.SchemaName, t.TableName, err)
	}

	var defs []ConstraintDef
	for _, kr := range pending {
		cols, err := queryKeyColumns(ctx, db, t.ObjectID, kr.indexID)
		if err != nil {
			return nil, fmt.Errorf("query key columns for %s: %w", kr.def.Name, err)
		}
		kr.def.ColumnList = keyColumnList(cols)
		defs = append(defs, kr.def)
	}
	return defs, nil
}

func queryKeyColumns(ctx context.Context, db *sql.DB, objectID, indexID int) ([]indexColumn, error) {
	rows, err := db.QueryContext(ctx, keyColumnQuery, objectID, indexID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []indexColumn
	for rows.Next() {
		var c indexColumn
		if err := rows.Scan(&c.Name, &c.Descending); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// keyColumnList renders an ordinal-ordered key column list with explicit
// ASC/DESC per column.
func keyColumnList(cols []indexColumn) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		dir := "ASC"
		if c.Descending {
			dir = "DESC"
		}
		parts[i] = sqlIdent(c.Name) + " " + dir
	}
	return strings.Join(parts, ", ")
}

const defaultConstraintQuery = `
SELECT dc.object_id, dc.name, dc.type_desc, dc.definition, c.name
FROM sys.default_constraints dc
JOIN sys.columns c
  ON c.object_id = dc.parent_object_id AND c.column_id = dc.parent_column_id
WHERE dc.parent_object_id = @p1
ORDER BY dc.name`

// collectDefaultConstraints reads column defaults: one row per defaulted
// column, carrying the literal default expression and the owning column.
func collectDefaultConstraints(ctx context.Context, db *sql.DB, t SelectedTable) ([]ConstraintDef, error) {
	rows, err := db.QueryContext(ctx, defaultConstraintQuery, t.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("query default constraints for %s.%s: %w", t.SchemaName, t.TableName, err)
	}
	defer rows.Close()

	var defs []ConstraintDef
	for rows.Next() {
		def := ConstraintDef{ObjectID: t.ObjectID, Kind: ConstraintDefault}
		var typeDesc string
		if err := rows.Scan(&def.ConstraintID, &def.Name, &typeDesc, &def.Definition, &def.Column); err != nil {
			return nil, fmt.Errorf("scan default constraint for %s.%s: %w", t.SchemaName, t.TableName, err)
		}
		def.TypeClause = trimConstraintSuffix(typeDesc)
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

const checkConstraintQuery = `
SELECT cc.object_id, cc.name, cc.type_desc, cc.definition
FROM sys.check_constraints cc
WHERE cc.parent_object_id = @p1
ORDER BY cc.name`

// collectCheckConstraints reads table-level check constraints with their
// boolean expression verbatim.
func collectCheckConstraints(ctx context.Context, db *sql.DB, t SelectedTable) ([]ConstraintDef, error) {
	rows, err := db.QueryContext(ctx, checkConstraintQuery, t.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("query check constraints for %s.%s: %w", t.SchemaName, t.TableName, err)
	}
	defer rows.Close()

	var defs []ConstraintDef
	for rows.Next() {
		def := ConstraintDef{ObjectID: t.ObjectID, Kind: ConstraintCheck}
		var typeDesc string
		if err := rows.Scan(&def.ConstraintID, &def.Name, &typeDesc, &def.Definition); err != nil {
			return nil, fmt.Errorf("scan check constraint for %s.%s: %w", t.SchemaName, t.TableName, err)
		}
		def.TypeClause = trimConstraintSuffix(typeDesc)
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// trimConstraintSuffix strips the catalog's constraint-kind suffix from a
// type label, e.g. DEFAULT_CONSTRAINT -> DEFAULT.
func trimConstraintSuffix(typeDesc string) string {
	return strings.TrimSuffix(typeDesc, "_CONSTRAINT")
}

const foreignKeyQuery = `
SELECT fk.object_id, fk.name,
       fk.delete_referential_action, fk.update_referential_action,
       s.name, rt.name
FROM sys.foreign_keys fk
JOIN sys.tables rt ON rt.object_id = fk.referenced_object_id
JOIN sys.schemas s ON s.schema_id = rt.schema_id
WHERE fk.parent_object_id = @p1
ORDER BY fk.name`

const foreignKeyColumnQuery = `
SELECT pc.name, rc.name
FROM sys.foreign_key_columns fkc
JOIN sys.columns pc
  ON pc.object_id = fkc.parent_object_id AND pc.column_id = fkc.parent_column_id
JOIN sys.columns rc
  ON rc.object_id = fkc.referenced_object_id AND rc.column_id = fkc.referenced_column_id
WHERE fkc.constraint_object_id = @p1
ORDER BY fkc.referenced_column_id`

// fkColumnPair is one referencing/referenced column mapping of a foreign key.
type fkColumnPair struct {
	Column    string
	RefColumn string
}

// collectForeignKeys reads foreign keys with their column mappings resolved to
// source and referenced schema/table/column names. Pairs are ordered by the
// referenced column's ordinal, keeping the two lists aligned.
func collectForeignKeys(ctx context.Context, db *sql.DB, t SelectedTable) ([]ConstraintDef, error) {
	rows, err := db.QueryContext(ctx, foreignKeyQuery, t.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys for %s.%s: %w", t.SchemaName, t.TableName, err)
	}
	defer rows.Close()

	type fkRow struct {
		def                 ConstraintDef
		deleteAction        int
		updateAction        int
		refSchema, refTable string
	}
	var pending []fkRow
	for rows.Next() {
		var fr fkRow
		if err := rows.Scan(&fr.def.ConstraintID, &fr.def.Name,
			&fr.deleteAction, &fr.updateAction,
			&fr.refSchema, &fr.refTable); err != nil {
			return nil, fmt.Errorf("scan foreign key for %s.%s: %w", t.SchemaName, t.TableName, err)
		}
		fr.def.ObjectID = t.ObjectID
		fr.def.Kind = ConstraintForeignKey
		fr.def.TypeClause = ConstraintForeignKey.String()
		pending = append(pending, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys for %s.%s: %w", t.SchemaName, t.TableName, err)
	}

	var defs []ConstraintDef
	for _, fr := range pending {
		pairs, err := queryForeignKeyColumns(ctx, db, fr.def.ConstraintID)
		if err != nil {
			return nil, fmt.Errorf("query foreign key columns for %s: %w", fr.def.Name, err)
		}
		fr.def.ColumnList, fr.def.Definition = foreignKeyClauses(
			fr.refSchema, fr.refTable, pairs, fr.deleteAction, fr.updateAction)
		defs = append(defs, fr.def)
	}
	return defs, nil
}

func queryForeignKeyColumns(ctx context.Context, db *sql.DB, constraintID int) ([]fkColumnPair, error) {
	rows, err := db.QueryContext(ctx, foreignKeyColumnQuery, constraintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []fkColumnPair
	for rows.Next() {
		var p fkColumnPair
		if err := rows.Scan(&p.Column, &p.RefColumn); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// foreignKeyClauses renders the referencing column list and the REFERENCES
// clause, both in the pair order supplied (referenced-ordinal order), with
// ON DELETE / ON UPDATE appended for non-default referential actions.
func foreignKeyClauses(refSchema, refTable string, pairs []fkColumnPair, deleteAction, updateAction int) (columnList, definition string) {
	cols := make([]string, len(pairs))
	refCols := make([]string, len(pairs))
	for i, p := range pairs {
		cols[i] = p.Column
		refCols[i] = p.RefColumn
	}

	var b strings.Builder
	fmt.Fprintf(&b, "REFERENCES %s (%s)", qualifiedName(refSchema, refTable), quotedColumnList(refCols))
	if clause := referentialAction(deleteAction); clause != "" {
		b.WriteString(" ON DELETE ")
		b.WriteString(clause)
	}
	if clause := referentialAction(updateAction); clause != "" {
		b.WriteString(" ON UPDATE ")
		b.WriteString(clause)
	}
	return quotedColumnList(cols), b.String()
}

// referentialAction maps a catalog referential-action code to its clause
// keyword. Code 0 (NO ACTION) is the engine default and is omitted.
func referentialAction(code int) string {
	switch code {
	case 1:
		return "CASCADE"
	case 2:
		return "SET NULL"
	case 3:
		return "SET DEFAULT"
	}
	return ""
}
