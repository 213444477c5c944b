package scm

import (
	"context"
	"fmt"
	"strings"
)

// EnsureSchema creates the entity tables from the registry if they do not
// exist. Owner references are plain columns, not foreign keys: rows may
// reference owners registered later, matching the loose referential model of
// the domain.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, e := range AllEntities() {
		cols := []string{fmt.Sprintf("%s TEXT PRIMARY KEY", e.IDColumn)}
		for _, c := range e.Columns {
			cols = append(cols, fmt.Sprintf("%s %s", c.Name, sqlType(c.Kind)))
		}
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", e.Table, strings.Join(cols, ", "))
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to ensure %s table: %w", e.Table, err)
		}
	}
	return nil
}

func sqlType(kind ColumnKind) string {
	switch kind {
	case KindInt:
		return "BIGINT"
	case KindReal:
		return "DOUBLE PRECISION"
	}
	return "TEXT"
}
