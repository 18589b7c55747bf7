package main

import (
	"fmt"
	"io"
	"strings"
)

// reportRow is one line of an outcome table.
type reportRow struct {
	object  string
	detail  string
	cloned  bool
	errText string
}

func outcomeText(cloned bool, errText string) string {
	if cloned {
		return "cloned"
	}
	if errText != "" {
		return "failed"
	}
	return "skipped"
}

// printReport writes the four per-object outcome tables. It runs after every
// clone attempt, including runs aborted by a fatal error, so partially applied
// work is always visible.
func printReport(w io.Writer, set *CloneSet) {
	var tables, constraints, indexes, triggers []reportRow

	for _, t := range set.Tables {
		tables = append(tables, reportRow{
			object:  t.SchemaName + "." + t.TableName,
			cloned:  t.Cloned,
			errText: t.ErrorText,
		})
		for _, c := range set.constraintsFor(t.ObjectID,
			ConstraintCheck, ConstraintDefault, ConstraintPrimaryKey, ConstraintUnique, ConstraintForeignKey) {
			constraints = append(constraints, reportRow{
				object:  t.SchemaName + "." + c.Name,
				detail:  c.Kind.String(),
				cloned:  c.Cloned,
				errText: c.ErrorText,
			})
		}
		for _, idx := range set.indexesFor(t.ObjectID) {
			detail := idx.TypeDesc
			if reason, unsupported := indexUnsupportedReason(*idx); unsupported {
				detail += " (" + reason + ")"
			}
			indexes = append(indexes, reportRow{
				object:  t.SchemaName + "." + idx.Name,
				detail:  detail,
				cloned:  idx.Cloned,
				errText: idx.ErrorText,
			})
		}
		for _, tr := range set.triggersFor(t.ObjectID) {
			detail := ""
			if tr.IsEncrypted {
				detail = "encrypted"
			}
			triggers = append(triggers, reportRow{
				object:  t.SchemaName + "." + tr.Name,
				detail:  detail,
				cloned:  tr.Cloned,
				errText: tr.ErrorText,
			})
		}
	}

	printSection(w, "Tables", tables)
	printSection(w, "Constraints", constraints)
	printSection(w, "Indexes", indexes)
	printSection(w, "Triggers", triggers)
}

func printSection(w io.Writer, title string, rows []reportRow) {
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(rows))
	if len(rows) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}

	width := 0
	for _, r := range rows {
		if len(r.object) > width {
			width = len(r.object)
		}
	}

	for _, r := range rows {
		line := fmt.Sprintf("  %-*s  %-7s", width, r.object, outcomeText(r.cloned, r.errText))
		if r.detail != "" {
			line += "  " + r.detail
		}
		fmt.Fprintln(w, line)
		if r.errText != "" {
			for _, msg := range strings.Split(r.errText, " | ") {
				fmt.Fprintf(w, "  %-*s    ! %s\n", width, "", msg)
			}
		}
	}
}

// printPlan writes every synthesized statement grouped by phase, for dry runs.
func printPlan(w io.Writer, plan []Statement) {
	lastPhase := ""
	for _, st := range plan {
		if st.Phase != lastPhase {
			fmt.Fprintf(w, "\n-- %s\n", st.Phase)
			lastPhase = st.Phase
		}
		fmt.Fprintf(w, "\n-- %s\n%s\nGO\n", st.Object, st.SQL)
	}
}
