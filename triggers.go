package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const triggerQuery = `
SELECT tr.object_id, tr.name, m.definition
FROM sys.triggers tr
LEFT JOIN sys.sql_modules m ON m.object_id = tr.object_id
WHERE tr.parent_id = @p1 AND tr.is_ms_shipped = 0
ORDER BY tr.name`

// collectTriggers reads the DML triggers of every selected table. A trigger
// whose stored module text is unavailable is encrypted: it is recorded with
// the flag set and no body lines.
func collectTriggers(ctx context.Context, db *sql.DB, tables []SelectedTable) ([]TriggerDef, error) {
	var all []TriggerDef

	for _, t := range tables {
		rows, err := db.QueryContext(ctx, triggerQuery, t.ObjectID)
		if err != nil {
			return nil, fmt.Errorf("query triggers for %s.%s: %w", t.SchemaName, t.TableName, err)
		}

		for rows.Next() {
			def := TriggerDef{ObjectID: t.ObjectID}
			var body sql.NullString
			if err := rows.Scan(&def.TriggerID, &def.Name, &body); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan trigger for %s.%s: %w", t.SchemaName, t.TableName, err)
			}
			if body.Valid {
				def.Lines = splitTriggerLines(body.String)
			} else {
				def.IsEncrypted = true
			}
			all = append(all, def)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate triggers for %s.%s: %w", t.SchemaName, t.TableName, err)
		}
		rows.Close()
	}

	return all, nil
}

// splitTriggerLines reconstructs a trigger body as numbered lines, using the
// stored CRLF terminator as the delimiter.
func splitTriggerLines(definition string) []TriggerLine {
	parts := strings.Split(definition, "\r\n")
	lines := make([]TriggerLine, len(parts))
	for i, text := range parts {
		lines[i] = TriggerLine{Number: i + 1, Text: text}
	}
	return lines
}

// triggerDDL reassembles the replay statement from the stored body lines.
func triggerDDL(tr TriggerDef) string {
	parts := make([]string, len(tr.Lines))
	for i, l := range tr.Lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\r\n")
}

// collectTriggerWarnings reports encrypted triggers whose bodies cannot be
// retrieved. They are skipped, never failed on.
func collectTriggerWarnings(set *CloneSet) []string {
	var warnings []string
	for _, t := range set.Tables {
		for _, tr := range set.triggersFor(t.ObjectID) {
			if tr.IsEncrypted {
				warnings = append(warnings, fmt.Sprintf(
					"%s.%s trigger %s is encrypted; its definition cannot be read and it will not be cloned",
					t.SchemaName, t.TableName, tr.Name))
			}
		}
	}
	return warnings
}
