package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "clone.toml")
	if err := os.WriteFile(cfgFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgFile
}

func TestLoadConfig(t *testing.T) {
	cfgFile := writeConfigFile(t, `
schema_names = "dbo;sales"
table_names = "orders,order_lines"
delimiter = ","
dry_run = true
continue_on_error = true
translate_user_types = true
preserve_collation = true
create_missing_schema = false

[source]
dsn = "sqlserver://sa:pw@localhost?database=prod"

[target]
dsn = "sqlserver://sa:pw@staging?database=prod_clone"

[hooks]
before_ddl = ["pre.sql"]
after_all = ["post.sql"]
`)

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.Source.DSN != "sqlserver://sa:pw@localhost?database=prod" {
		t.Errorf("Source.DSN = %q", cfg.Source.DSN)
	}
	if cfg.Target.DSN != "sqlserver://sa:pw@staging?database=prod_clone" {
		t.Errorf("Target.DSN = %q", cfg.Target.DSN)
	}
	if cfg.SchemaNames != "dbo;sales" {
		t.Errorf("SchemaNames = %q", cfg.SchemaNames)
	}
	if cfg.Delimiter != "," || cfg.delimiterRune() != ',' {
		t.Errorf("Delimiter = %q", cfg.Delimiter)
	}
	if !cfg.DryRun || !cfg.ContinueOnError || !cfg.TranslateUserTypes || !cfg.PreserveCollation {
		t.Error("boolean options not decoded")
	}
	if cfg.CreateMissingSchema {
		t.Error("CreateMissingSchema = true, want false")
	}
	if len(cfg.Hooks.BeforeDDL) != 1 || cfg.Hooks.BeforeDDL[0] != "pre.sql" {
		t.Errorf("Hooks.BeforeDDL = %v", cfg.Hooks.BeforeDDL)
	}
	if cfg.configDir != filepath.Dir(cfgFile) {
		t.Errorf("configDir = %q, want %q", cfg.configDir, filepath.Dir(cfgFile))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfgFile := writeConfigFile(t, `
schema_names = "dbo"
table_names = "orders"

[source]
dsn = "sqlserver://sa:pw@localhost?database=prod"
`)

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.Delimiter != ";" {
		t.Errorf("default Delimiter = %q, want %q", cfg.Delimiter, ";")
	}
	if !cfg.CreateMissingSchema {
		t.Error("default CreateMissingSchema = false, want true")
	}
	if cfg.DryRun || cfg.ContinueOnError || cfg.TranslateUserTypes || cfg.PreserveCollation {
		t.Error("boolean options should default to false")
	}
	if cfg.Target.DSN != "" {
		t.Errorf("default Target.DSN = %q, want empty", cfg.Target.DSN)
	}
}

func TestLoadConfig_MissingSourceDSN(t *testing.T) {
	cfgFile := writeConfigFile(t, `
schema_names = "dbo"
table_names = "orders"
`)
	if _, err := loadConfig(cfgFile); err == nil {
		t.Fatal("expected error for missing source.dsn")
	}
}

func TestLoadConfig_MissingNameLists(t *testing.T) {
	cfgFile := writeConfigFile(t, `
schema_names = "dbo"

[source]
dsn = "sqlserver://sa:pw@localhost?database=prod"
`)
	if _, err := loadConfig(cfgFile); err == nil {
		t.Fatal("expected error for missing table_names")
	}

	cfgFile = writeConfigFile(t, `
table_names = "orders"

[source]
dsn = "sqlserver://sa:pw@localhost?database=prod"
`)
	if _, err := loadConfig(cfgFile); err == nil {
		t.Fatal("expected error for missing schema_names")
	}
}

func TestLoadConfig_BadDelimiter(t *testing.T) {
	for _, delim := range []string{"", ";;"} {
		cfgFile := writeConfigFile(t, `
schema_names = "dbo"
table_names = "orders"
delimiter = "`+delim+`"

[source]
dsn = "sqlserver://sa:pw@localhost?database=prod"
`)
		if _, err := loadConfig(cfgFile); err == nil {
			t.Fatalf("expected error for delimiter %q", delim)
		}
	}
}

func TestLoadConfig_UnknownKeysRejected(t *testing.T) {
	cfgFile := writeConfigFile(t, `
schema_names = "dbo"
table_names = "orders"
copy_data = true

[source]
dsn = "sqlserver://sa:pw@localhost?database=prod"
`)
	if _, err := loadConfig(cfgFile); err == nil {
		t.Fatal("expected error for unknown config key")
	}
}

func TestResolvePath(t *testing.T) {
	cfg := &CloneConfig{configDir: "/home/user/clones"}

	got := cfg.resolvePath("pre.sql")
	want := "/home/user/clones/pre.sql"
	if got != want {
		t.Errorf("resolvePath(relative) = %q, want %q", got, want)
	}

	got = cfg.resolvePath("/absolute/post.sql")
	want = "/absolute/post.sql"
	if got != want {
		t.Errorf("resolvePath(absolute) = %q, want %q", got, want)
	}
}
