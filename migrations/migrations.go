// Package migrations embeds the SQL schema applied by cmd/migrate.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Migration is one versioned schema step.
type Migration struct {
	Name string
	Up   string
	Down string
}

// All returns the embedded migrations ordered by name.
func All() ([]Migration, error) {
	names, err := fs.Glob(files, "*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, n := range names {
		base := strings.TrimSuffix(n, ".up.sql")
		up, err := fs.ReadFile(files, n)
		if err != nil {
			return nil, err
		}
		down, err := fs.ReadFile(files, base+".down.sql")
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Name: base, Up: string(up), Down: string(down)})
	}
	return out, nil
}
