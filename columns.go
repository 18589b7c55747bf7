package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// catalogColumn is the raw catalog row for one column, before definition text
// is synthesized.
type catalogColumn struct {
	ObjectID     int
	Ordinal      int
	Name         string
	TypeName     string // declared type, possibly a user-defined alias
	IsUserType   bool
	BaseTypeName string // underlying system type
	MaxLength    int    // stored byte length; -1 for MAX types
	Precision    int
	Scale        int
	Collation    string
	Nullable     bool
	IsIdentity   bool
	Seed         sql.NullInt64
	Increment    sql.NullInt64
	IsComputed   bool
	ComputedExpr string
}

const columnQuery = `
SELECT c.column_id, c.name,
       ut.name, ut.is_user_defined, st.name,
       c.max_length, c.precision, c.scale,
       ISNULL(c.collation_name, ''),
       c.is_nullable, c.is_identity, c.is_computed,
       ISNULL(cc.definition, ''),
       CAST(ic.seed_value AS bigint), CAST(ic.increment_value AS bigint)
FROM sys.columns c
JOIN sys.types ut ON ut.user_type_id = c.user_type_id
JOIN sys.types st ON st.user_type_id = c.system_type_id
LEFT JOIN sys.computed_columns cc
  ON cc.object_id = c.object_id AND cc.column_id = c.column_id
LEFT JOIN sys.identity_columns ic
  ON ic.object_id = c.object_id AND ic.column_id = c.column_id
WHERE c.object_id = @p1
ORDER BY c.column_id`

// collectColumns reads every column of every selected table and synthesizes
// both textual definitions. preserveCollation and targetCollation drive the
// optional explicit COLLATE clause.
func collectColumns(ctx context.Context, db *sql.DB, tables []SelectedTable, preserveCollation bool, targetCollation string) (map[int][]ColumnDef, error) {
	out := make(map[int][]ColumnDef)

	for _, t := range tables {
		rows, err := db.QueryContext(ctx, columnQuery, t.ObjectID)
		if err != nil {
			return nil, fmt.Errorf("query columns for %s.%s: %w", t.SchemaName, t.TableName, err)
		}

		for rows.Next() {
			c := catalogColumn{ObjectID: t.ObjectID}
			if err := rows.Scan(
				&c.Ordinal, &c.Name,
				&c.TypeName, &c.IsUserType, &c.BaseTypeName,
				&c.MaxLength, &c.Precision, &c.Scale,
				&c.Collation,
				&c.Nullable, &c.IsIdentity, &c.IsComputed,
				&c.ComputedExpr,
				&c.Seed, &c.Increment,
			); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan column for %s.%s: %w", t.SchemaName, t.TableName, err)
			}
			out[t.ObjectID] = append(out[t.ObjectID], ColumnDef{
				ObjectID:      c.ObjectID,
				Ordinal:       c.Ordinal,
				Name:          c.Name,
				NativeDef:     columnDefinition(c, c.TypeName, preserveCollation, targetCollation),
				TranslatedDef: translatedDefinition(c, preserveCollation, targetCollation),
			})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate columns for %s.%s: %w", t.SchemaName, t.TableName, err)
		}
		rows.Close()
	}

	return out, nil
}

// columnDefinition builds the textual definition for a column using the given
// type name. Computed columns reduce to their expression.
func columnDefinition(c catalogColumn, typeName string, preserveCollation bool, targetCollation string) string {
	if c.IsComputed {
		return "AS " + c.ComputedExpr
	}

	var b strings.Builder
	b.WriteString(strings.ToUpper(typeName))
	b.WriteString(typeSuffix(typeName, c.MaxLength, c.Precision, c.Scale))

	if preserveCollation && c.Collation != "" && !strings.EqualFold(c.Collation, targetCollation) {
		b.WriteString(" COLLATE ")
		b.WriteString(c.Collation)
	}

	if c.Nullable {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}

	if c.IsIdentity {
		b.WriteByte(' ')
		b.WriteString(identityClause(c.Seed, c.Increment))
	}

	return b.String()
}

// translatedDefinition builds the built-in-type equivalent of a user-defined
// type column. Columns whose declared type is not user-defined yield "".
func translatedDefinition(c catalogColumn, preserveCollation bool, targetCollation string) string {
	if !c.IsUserType {
		return ""
	}
	return columnDefinition(c, c.BaseTypeName, preserveCollation, targetCollation)
}

// typeSuffix returns the length/precision/scale suffix for a type family.
// User-defined aliases fall through every family and get no suffix; the alias
// carries its own length on the target.
func typeSuffix(typeName string, maxLength, precision, scale int) string {
	switch strings.ToLower(typeName) {
	case "char", "varchar", "binary", "varbinary":
		if maxLength == -1 {
			return "(MAX)"
		}
		return fmt.Sprintf("(%d)", maxLength)
	case "nchar", "nvarchar":
		if maxLength == -1 {
			return "(MAX)"
		}
		// wide-character types store two bytes per character
		return fmt.Sprintf("(%d)", maxLength/2)
	case "time", "datetime2", "datetimeoffset":
		return fmt.Sprintf("(%d)", scale)
	case "decimal", "numeric":
		return fmt.Sprintf("(%d,%d)", precision, scale)
	}
	return ""
}

// identityClause renders IDENTITY(seed,increment), defaulting seed/increment
// to 0/1 when the catalog carries no value. Both are rendered as single
// digits; values with more than one digit truncate to their first digit with
// the sign kept, a known limitation.
func identityClause(seed, increment sql.NullInt64) string {
	s, inc := int64(0), int64(1)
	if seed.Valid {
		s = seed.Int64
	}
	if increment.Valid {
		inc = increment.Int64
	}
	return fmt.Sprintf("IDENTITY(%s,%s)", firstDigit(s), firstDigit(inc))
}

func firstDigit(v int64) string {
	s := strconv.FormatInt(v, 10)
	if strings.HasPrefix(s, "-") {
		return s[:2]
	}
	return s[:1]
}
