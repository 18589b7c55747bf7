package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
)

// runHookFiles reads each SQL script and executes every batch against the
// target. Hooks run outside the clone transaction; a failing batch aborts the
// run regardless of the continue_on_error setting.
func runHookFiles(ctx context.Context, db *sql.DB, cfg *CloneConfig, files []string, phase string) error {
	if len(files) == 0 {
		return nil
	}
	log.Printf("  running %s hooks (%d files)...", phase, len(files))

	for _, f := range files {
		path := cfg.resolvePath(f)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("hook %s: read %s: %w", phase, f, err)
		}

		batches := splitBatches(string(data))
		log.Printf("    %s: %d batches", f, len(batches))
		for i, batch := range batches {
			if _, err := db.ExecContext(ctx, batch); err != nil {
				return fmt.Errorf("hook %s: %s: batch %d: %w\nSQL: %s", phase, f, i+1, err, batch)
			}
		}
	}
	return nil
}

// splitBatches splits a T-SQL script into executable batches. Lines holding
// only the GO separator (case-insensitive) delimit batches; scripts without
// GO separators are split on semicolons outside single-quoted strings, so
// plain multi-statement files work too.
func splitBatches(script string) []string {
	lines := strings.Split(strings.ReplaceAll(script, "\r\n", "\n"), "\n")

	hasGo := false
	for _, l := range lines {
		if strings.EqualFold(strings.TrimSpace(l), "GO") {
			hasGo = true
			break
		}
	}
	if !hasGo {
		return splitStatements(script)
	}

	var batches []string
	var current []string
	flush := func() {
		if b := strings.TrimSpace(strings.Join(current, "\n")); b != "" {
			batches = append(batches, b)
		}
		current = current[:0]
	}
	for _, l := range lines {
		if strings.EqualFold(strings.TrimSpace(l), "GO") {
			flush()
			continue
		}
		current = append(current, l)
	}
	flush()
	return batches
}

// splitStatements splits SQL text on semicolons, ignoring empty entries and
// semicolons inside single-quoted strings.
func splitStatements(script string) []string {
	var stmts []string
	var current strings.Builder
	inQuote := false

	for i := 0; i < len(script); i++ {
		c := script[i]
		switch {
		case c == '\'' && !inQuote:
			inQuote = true
			current.WriteByte(c)
		case c == '\'' && inQuote:
			// doubled quote is an escaped quote, not a terminator
			if i+1 < len(script) && script[i+1] == '\'' {
				current.WriteByte(c)
				current.WriteByte(c)
				i++
			} else {
				inQuote = false
				current.WriteByte(c)
			}
		case c == ';' && !inQuote:
			s := strings.TrimSpace(current.String())
			if s != "" {
				stmts = append(stmts, s)
			}
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		stmts = append(stmts, s)
	}
	return stmts
}
