package main

import (
	"fmt"

	"github.com/microsoft/go-mssqldb/msdsn"
)

// sqlserverDatabaseName parses a go-mssqldb DSN and returns the database it
// targets, failing early on a malformed DSN instead of at connect time. An
// empty result means the DSN relies on the login's default database.
func sqlserverDatabaseName(dsn string) (string, error) {
	cfg, err := msdsn.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse sqlserver dsn: %w", err)
	}
	return cfg.Database, nil
}
