package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
)

// MigrationExt marks the files Migrate applies
const MigrationExt = ".surql"

// Migrate executes every migration file at the root of fsys in lexical
// order. Migrations are expected to be idempotent (DEFINE ... IF NOT EXISTS)
// so running them on each start is safe.
func Migrate(ctx context.Context, db Database, fsys fs.FS) (int, error) {
	names, err := fs.Glob(fsys, "*"+MigrationExt)
	if err != nil {
		return 0, fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(names)

	for i, name := range names {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return i, fmt.Errorf("reading %s: %w", name, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			continue
		}
		if err := db.Execute(ctx, string(content), nil); err != nil {
			return i, fmt.Errorf("migration %s: %w", path.Base(name), err)
		}
		slog.DebugContext(ctx, "migration applied", slog.String("file", name))
	}

	return len(names), nil
}
