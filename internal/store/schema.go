package store

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schema string

// Migrate applies the embedded schema. Every statement is idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w\n%s", err, stmt)
		}
	}
	return nil
}
