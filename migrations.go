package roomcast

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// MigrationFiles contains the archive schema for every supported driver,
// under migrations/<driver>/. Table names carry a {{prefix}} placeholder.
//
// Example with goose (after substituting the prefix yourself):
//
//	goose.SetBaseFS(roomcast.MigrationFiles)
//	if err := goose.Up(db, "migrations/postgres"); err != nil {
//	    log.Fatal(err)
//	}
//
//go:embed migrations/*/*.sql
var MigrationFiles embed.FS

// Drivers with bundled migrations.
var migrationDrivers = map[string]string{
	"sqlite3":  "sqlite3",
	"mysql":    "mysql",
	"postgres": "postgres",
}

// MigrationStatements returns the archive schema for driver as individual
// statements, in file order, with table names prefixed by prefix.
func MigrationStatements(driver, prefix string) ([]string, error) {
	dir, ok := migrationDrivers[driver]
	if !ok {
		return nil, NewError(ErrCodeConfiguration, fmt.Sprintf("no migrations for driver %q", driver))
	}

	root := path.Join("migrations", dir)
	entries, err := fs.ReadDir(MigrationFiles, root)
	if err != nil {
		return nil, NewErrorWithCause(ErrCodeConfiguration, "failed to read embedded migrations", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var statements []string
	for _, name := range names {
		raw, err := fs.ReadFile(MigrationFiles, path.Join(root, name))
		if err != nil {
			return nil, NewErrorWithCause(ErrCodeConfiguration, "failed to read migration "+name, err)
		}
		sql := strings.ReplaceAll(string(raw), "{{prefix}}", prefix)
		for _, stmt := range strings.Split(sql, ";") {
			if stmt = strings.TrimSpace(stmt); stmt != "" {
				statements = append(statements, stmt)
			}
		}
	}
	return statements, nil
}
