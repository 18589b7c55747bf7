package main

import (
	"fmt"
	"strings"
)

// sqlIdent returns a bracket-quoted T-SQL identifier, doubling any closing
// brackets embedded in the name.
func sqlIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// qualifiedName returns a bracket-quoted schema.object reference.
func qualifiedName(schema, object string) string {
	return sqlIdent(schema) + "." + sqlIdent(object)
}

// quotedColumnList joins column names with bracket quoting.
func quotedColumnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = sqlIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// createTableDDL produces the columns-only CREATE TABLE statement for one
// selected table. When translate is set, user-defined-type columns use their
// built-in translated definition instead of the native alias definition.
func createTableDDL(t SelectedTable, cols []ColumnDef, translate bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", qualifiedName(t.SchemaName, t.TableName))

	for i, col := range cols {
		def := col.NativeDef
		if translate && col.TranslatedDef != "" {
			def = col.TranslatedDef
		}
		fmt.Fprintf(&b, "  %s %s", sqlIdent(col.Name), def)

		if i < len(cols)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}

	b.WriteString(")")
	return b.String()
}

// constraintDDL produces the ALTER TABLE ... ADD CONSTRAINT statement for one
// collected constraint of any kind.
func constraintDDL(t SelectedTable, c ConstraintDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s ",
		qualifiedName(t.SchemaName, t.TableName), sqlIdent(c.Name))

	switch c.Kind {
	case ConstraintPrimaryKey, ConstraintUnique:
		fmt.Fprintf(&b, "%s (%s)", c.TypeClause, c.ColumnList)
		if c.Filegroup != "" {
			fmt.Fprintf(&b, " ON %s", sqlIdent(c.Filegroup))
		}
	case ConstraintDefault:
		fmt.Fprintf(&b, "DEFAULT %s FOR %s", c.Definition, sqlIdent(c.Column))
	case ConstraintCheck:
		fmt.Fprintf(&b, "CHECK %s", c.Definition)
	case ConstraintForeignKey:
		fmt.Fprintf(&b, "FOREIGN KEY (%s) %s", c.ColumnList, c.Definition)
	}

	return b.String()
}
