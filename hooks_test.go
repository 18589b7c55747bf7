package main

import "testing"

func TestSplitBatches_GoSeparators(t *testing.T) {
	script := "CREATE TABLE [t] ([id] INT)\nGO\nINSERT INTO [t] VALUES (1);\nINSERT INTO [t] VALUES (2);\ngo\nDROP TABLE [t]\nGO\n"

	batches := splitBatches(script)
	if len(batches) != 3 {
		t.Fatalf("len(batches) = %d, want 3: %q", len(batches), batches)
	}
	if batches[0] != "CREATE TABLE [t] ([id] INT)" {
		t.Errorf("batch 0 = %q", batches[0])
	}
	// semicolons inside a GO-delimited batch stay intact
	if batches[1] != "INSERT INTO [t] VALUES (1);\nINSERT INTO [t] VALUES (2);" {
		t.Errorf("batch 1 = %q", batches[1])
	}
	if batches[2] != "DROP TABLE [t]" {
		t.Errorf("batch 2 = %q", batches[2])
	}
}

func TestSplitBatches_CRLFAndNoTrailingGo(t *testing.T) {
	script := "SELECT 1\r\nGO\r\nSELECT 2"
	batches := splitBatches(script)
	if len(batches) != 2 || batches[0] != "SELECT 1" || batches[1] != "SELECT 2" {
		t.Fatalf("batches = %q", batches)
	}
}

func TestSplitBatches_FallsBackToSemicolons(t *testing.T) {
	script := "UPDATE a SET x = 1; DELETE FROM b;"
	batches := splitBatches(script)
	if len(batches) != 2 {
		t.Fatalf("len(batches) = %d, want 2: %q", len(batches), batches)
	}
	if batches[0] != "UPDATE a SET x = 1" || batches[1] != "DELETE FROM b" {
		t.Errorf("batches = %q", batches)
	}
}

func TestSplitStatements_QuotedSemicolons(t *testing.T) {
	script := "INSERT INTO t VALUES ('a;b'); INSERT INTO t VALUES ('it''s; fine')"
	stmts := splitStatements(script)
	if len(stmts) != 2 {
		t.Fatalf("len(stmts) = %d, want 2: %q", len(stmts), stmts)
	}
	if stmts[0] != "INSERT INTO t VALUES ('a;b')" {
		t.Errorf("stmts[0] = %q", stmts[0])
	}
	if stmts[1] != "INSERT INTO t VALUES ('it''s; fine')" {
		t.Errorf("stmts[1] = %q", stmts[1])
	}
}

func TestSplitStatements_DropsEmptyEntries(t *testing.T) {
	stmts := splitStatements(";;  SELECT 1 ;; ")
	if len(stmts) != 1 || stmts[0] != "SELECT 1" {
		t.Fatalf("stmts = %q", stmts)
	}
}
