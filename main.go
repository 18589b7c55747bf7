package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "sp-clonetable [config.toml]",
	Short: "SQL Server table structure cloning tool",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClone,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to clone TOML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runClone(cmd *cobra.Command, args []string) error {
	// Resolve config path: positional arg takes precedence over --config flag
	cfgPath := configPath
	if len(args) > 0 {
		cfgPath = args[0]
	}
	if cfgPath == "" {
		return fmt.Errorf("config file required: sp-clonetable <config.toml> or sp-clonetable --config <config.toml>")
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	start := time.Now()

	log.Printf("sp-clonetable — SQL Server table structure cloning")
	log.Printf(
		"config: dry_run=%t continue_on_error=%t translate_user_types=%t preserve_collation=%t create_missing_schema=%t",
		cfg.DryRun,
		cfg.ContinueOnError,
		cfg.TranslateUserTypes,
		cfg.PreserveCollation,
		cfg.CreateMissingSchema,
	)

	// 1. Connect to the source
	sourceName, err := sqlserverDatabaseName(cfg.Source.DSN)
	if err != nil {
		return err
	}
	log.Printf("connecting to source...")
	sourceDB, err := sql.Open("sqlserver", cfg.Source.DSN)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer sourceDB.Close()
	if err := sourceDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping source: %w", err)
	}

	// 2. Connect to the target; an empty target DSN clones within the source
	// database
	targetDB := sourceDB
	if cfg.Target.DSN != "" {
		if _, err := sqlserverDatabaseName(cfg.Target.DSN); err != nil {
			return err
		}
		log.Printf("connecting to target...")
		targetDB, err = sql.Open("sqlserver", cfg.Target.DSN)
		if err != nil {
			return fmt.Errorf("open target: %w", err)
		}
		defer targetDB.Close()
		if err := targetDB.PingContext(ctx); err != nil {
			return fmt.Errorf("ping target: %w", err)
		}
	} else {
		log.Printf("no target DSN configured, cloning within the source database")
	}

	// 3. Resolve the selected (schema, table) cross-product
	schemaNames := parseNameList(cfg.SchemaNames, cfg.delimiterRune())
	tableNames := parseNameList(cfg.TableNames, cfg.delimiterRune())
	if len(schemaNames) == 0 || len(tableNames) == 0 {
		return fmt.Errorf("schema_names and table_names must each contain at least one entry")
	}
	log.Printf("resolving %d schema name(s) x %d table name(s) in '%s'...",
		len(schemaNames), len(tableNames), sourceName)

	tables, err := resolveSelectedTables(ctx, sourceDB, schemaNames, tableNames)
	if err != nil {
		return err
	}
	log.Printf("selected %d table(s)", len(tables))
	for _, t := range tables {
		log.Printf("  %s.%s", t.SchemaName, t.TableName)
	}

	// 4. Collect the full structure of the selected set
	targetCollation := ""
	if cfg.PreserveCollation {
		if err := targetDB.QueryRowContext(ctx,
			`SELECT CAST(DATABASEPROPERTYEX(DB_NAME(), 'Collation') AS nvarchar(128))`,
		).Scan(&targetCollation); err != nil {
			return fmt.Errorf("read target collation: %w", err)
		}
		log.Printf("target collation: %s", targetCollation)
	}

	columns, err := collectColumns(ctx, sourceDB, tables, cfg.PreserveCollation, targetCollation)
	if err != nil {
		return err
	}
	totalColumns := 0
	for _, cols := range columns {
		totalColumns += len(cols)
	}
	if totalColumns == 0 {
		return fmt.Errorf("no columns found for any selected table")
	}

	constraints, err := collectConstraints(ctx, sourceDB, tables)
	if err != nil {
		return err
	}
	indexes, err := collectIndexes(ctx, sourceDB, tables)
	if err != nil {
		return err
	}
	triggers, err := collectTriggers(ctx, sourceDB, tables)
	if err != nil {
		return err
	}

	set := &CloneSet{
		Tables:      tables,
		Columns:     columns,
		Constraints: constraints,
		Indexes:     indexes,
		Triggers:    triggers,
	}
	log.Printf("collected %d columns, %d constraints, %d indexes, %d triggers",
		totalColumns, len(constraints), len(indexes), len(triggers))

	for _, w := range collectIndexWarnings(set) {
		log.Printf("  WARN: %s", w)
	}
	for _, w := range collectTriggerWarnings(set) {
		log.Printf("  WARN: %s", w)
	}

	// 5. Synthesize the plan
	plan := buildPlan(set, cfg.TranslateUserTypes)
	log.Printf("synthesized %d statement(s)", len(plan))

	if cfg.DryRun {
		log.Printf("dry run: printing statements, nothing will be executed")
		printPlan(os.Stdout, plan)
		printReport(os.Stdout, set)
		log.Printf("dry run completed in %s", time.Since(start).Round(time.Millisecond))
		return nil
	}

	// 6. Prepare the target, run the hooks, and execute
	if err := applyClone(ctx, os.Stdout, targetDB, cfg, set, plan); err != nil {
		return err
	}

	log.Printf("clone completed in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// applyClone prepares the target schemas, runs the hooks, and executes the
// plan. The outcome report prints on every exit path, fatal aborts included,
// so the caller always sees what was attempted.
func applyClone(ctx context.Context, out io.Writer, db *sql.DB, cfg *CloneConfig, set *CloneSet, plan []Statement) error {
	defer printReport(out, set)

	if err := ensureTargetSchemas(ctx, db, set.Tables, cfg.CreateMissingSchema); err != nil {
		return err
	}
	if err := runHookFiles(ctx, db, cfg, cfg.Hooks.BeforeDDL, "before_ddl"); err != nil {
		return err
	}

	log.Printf("executing...")
	if err := executePlan(ctx, &sqlExecutor{db: db}, plan, cfg.ContinueOnError); err != nil {
		return err
	}

	return runHookFiles(ctx, db, cfg, cfg.Hooks.AfterAll, "after_all")
}
