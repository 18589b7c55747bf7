package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
)

// Clone phases, in dependency order. Later phases' statements reference
// objects created by earlier ones; foreign keys run after every table and
// key constraint exists.
const (
	phaseCreateTable   = "create table"
	phaseRowConstraint = "check/default constraints"
	phaseKeyConstraint = "primary key/unique constraints"
	phaseCreateIndex   = "indexes"
	phaseForeignKey    = "foreign keys"
	phaseTrigger       = "triggers"
)

// Statement is one synthesized DDL statement bound to the record whose
// outcome it determines. Fatal statements abort the run on error in every
// mode.
type Statement struct {
	Phase   string
	Object  string // schema-qualified label for logs and dry-run output
	SQL     string
	Fatal   bool
	Outcome *Outcome
}

// buildPlan turns the collected clone set into the ordered statement
// sequence. Unsupported indexes and encrypted triggers produce no statements;
// they are surfaced as warnings beforehand.
func buildPlan(set *CloneSet, translateUserTypes bool) []Statement {
	var plan []Statement

	for i := range set.Tables {
		t := &set.Tables[i]
		plan = append(plan, Statement{
			Phase:   phaseCreateTable,
			Object:  t.SchemaName + "." + t.TableName,
			SQL:     createTableDDL(*t, set.Columns[t.ObjectID], translateUserTypes),
			Fatal:   true,
			Outcome: &t.Outcome,
		})
	}

	constraintPhases := []struct {
		phase string
		kinds []ConstraintKind
	}{
		{phaseRowConstraint, []ConstraintKind{ConstraintCheck, ConstraintDefault}},
		{phaseKeyConstraint, []ConstraintKind{ConstraintPrimaryKey, ConstraintUnique}},
	}
	for _, cp := range constraintPhases {
		for i := range set.Tables {
			t := set.Tables[i]
			for _, c := range set.constraintsFor(t.ObjectID, cp.kinds...) {
				plan = append(plan, Statement{
					Phase:   cp.phase,
					Object:  t.SchemaName + "." + c.Name,
					SQL:     constraintDDL(t, *c),
					Outcome: &c.Outcome,
				})
			}
		}
	}

	for i := range set.Tables {
		t := set.Tables[i]
		for _, idx := range set.indexesFor(t.ObjectID) {
			if _, unsupported := indexUnsupportedReason(*idx); unsupported {
				continue
			}
			plan = append(plan, Statement{
				Phase:   phaseCreateIndex,
				Object:  t.SchemaName + "." + idx.Name,
				SQL:     indexDDL(t, *idx),
				Outcome: &idx.Outcome,
			})
		}
	}

	for i := range set.Tables {
		t := set.Tables[i]
		for _, c := range set.constraintsFor(t.ObjectID, ConstraintForeignKey) {
			plan = append(plan, Statement{
				Phase:   phaseForeignKey,
				Object:  t.SchemaName + "." + c.Name,
				SQL:     constraintDDL(t, *c),
				Outcome: &c.Outcome,
			})
		}
	}

	for i := range set.Tables {
		t := set.Tables[i]
		for _, tr := range set.triggersFor(t.ObjectID) {
			if tr.IsEncrypted {
				continue
			}
			plan = append(plan, Statement{
				Phase:   phaseTrigger,
				Object:  t.SchemaName + "." + tr.Name,
				SQL:     triggerDDL(*tr),
				Outcome: &tr.Outcome,
			})
		}
	}

	return plan
}

// ddlExecutor abstracts transactional statement execution against the target
// so the orchestrator can be exercised without a live server.
type ddlExecutor interface {
	Begin(ctx context.Context) error
	Exec(ctx context.Context, query string) error
	Commit() error
	Rollback() error
}

// sqlExecutor runs statements on a *sql.DB, one open transaction at a time.
type sqlExecutor struct {
	db *sql.DB
	tx *sql.Tx
}

func (e *sqlExecutor) Begin(ctx context.Context) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	e.tx = tx
	return nil
}

func (e *sqlExecutor) Exec(ctx context.Context, query string) error {
	if e.tx == nil {
		return errors.New("no open transaction")
	}
	_, err := e.tx.ExecContext(ctx, query)
	return err
}

func (e *sqlExecutor) Commit() error {
	if e.tx == nil {
		return errors.New("no open transaction")
	}
	err := e.tx.Commit()
	e.tx = nil
	return err
}

func (e *sqlExecutor) Rollback() error {
	if e.tx == nil {
		return nil
	}
	err := e.tx.Rollback()
	e.tx = nil
	return err
}

// executePlan submits the plan to the target under the configured error
// policy.
//
// With continueOnError disabled the whole plan runs in a single transaction:
// the first failing statement rolls everything back and aborts the run. With
// it enabled, each statement runs in its own transaction so one bad object
// cannot poison the batch: the failure is recorded on the owning record,
// surfaced as a warning, and execution moves to the next statement. A fatal
// statement (table creation) aborts the run in both modes.
func executePlan(ctx context.Context, exec ddlExecutor, plan []Statement, continueOnError bool) error {
	if !continueOnError {
		if err := exec.Begin(ctx); err != nil {
			return err
		}
		for _, st := range plan {
			log.Printf("  [%s] %s", st.Phase, st.Object)
			if err := exec.Exec(ctx, st.SQL); err != nil {
				st.Outcome.appendError(err.Error())
				if rbErr := exec.Rollback(); rbErr != nil {
					log.Printf("  WARN: rollback failed: %v", rbErr)
				}
				return fmt.Errorf("%s %s: %w\nSQL: %s", st.Phase, st.Object, err, st.SQL)
			}
		}
		if err := exec.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		// flags flip only once the whole transaction is durable; a rollback
		// leaves every record unmarked
		for _, st := range plan {
			st.Outcome.Cloned = true
		}
		return nil
	}

	for _, st := range plan {
		log.Printf("  [%s] %s", st.Phase, st.Object)
		if err := exec.Begin(ctx); err != nil {
			return err
		}
		if err := exec.Exec(ctx, st.SQL); err != nil {
			st.Outcome.appendError(err.Error())
			if rbErr := exec.Rollback(); rbErr != nil {
				log.Printf("  WARN: rollback failed: %v", rbErr)
			}
			if st.Fatal {
				return fmt.Errorf("%s %s: %w\nSQL: %s", st.Phase, st.Object, err, st.SQL)
			}
			log.Printf("  WARN: %s %s failed: %v", st.Phase, st.Object, err)
			continue
		}
		if err := exec.Commit(); err != nil {
			st.Outcome.appendError(err.Error())
			if st.Fatal {
				return fmt.Errorf("%s %s: commit: %w", st.Phase, st.Object, err)
			}
			log.Printf("  WARN: %s %s commit failed: %v", st.Phase, st.Object, err)
			continue
		}
		st.Outcome.Cloned = true
	}
	return nil
}

// ensureTargetSchemas checks that every distinct schema of the selected set
// exists on the target, creating missing ones with default ownership when the
// caller allows it.
func ensureTargetSchemas(ctx context.Context, db *sql.DB, tables []SelectedTable, createMissing bool) error {
	seen := make(map[string]bool)
	for _, t := range tables {
		if seen[t.SchemaName] {
			continue
		}
		seen[t.SchemaName] = true

		var count int
		if err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sys.schemas WHERE name = @p1`, t.SchemaName).Scan(&count); err != nil {
			return fmt.Errorf("check target schema %q: %w", t.SchemaName, err)
		}
		if count > 0 {
			continue
		}
		if !createMissing {
			return fmt.Errorf("schema %q does not exist in the target database (create_missing_schema is disabled)", t.SchemaName)
		}
		log.Printf("  creating schema %s", t.SchemaName)
		ddl := fmt.Sprintf("CREATE SCHEMA %s AUTHORIZATION [dbo]", sqlIdent(t.SchemaName))
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create target schema %q: %w\nSQL: %s", t.SchemaName, err, ddl)
		}
	}
	return nil
}
