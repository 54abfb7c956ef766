// Package schema evolves an on-device SQLite store through an ordered list
// of versions. Each version runs once, in one transaction, the first time a
// store created at an older version is opened.
package schema

import (
	"context"
	"fmt"
	"strings"
)

// TableDef declares a table as it exists from its version onward. A version
// that alters an existing table must re-declare the table's full shape so
// fresh stores can be created at the latest schema directly.
type TableDef struct {
	Name   string
	Create string // CREATE TABLE statement, without IF NOT EXISTS

	// KeyColumn and KeyType describe the primary key. They are checked on
	// every open; a mismatch means an illegal in-place key change.
	KeyColumn string
	KeyType   string
}

// Index is a secondary index added by a version.
type Index struct {
	Table  string
	Create string // CREATE INDEX IF NOT EXISTS statement
}

// Column is a column a version adds to an existing table. It is added
// only when the table exists without it, so a table the same version has
// just created in its new shape is left alone.
type Column struct {
	Table string
	Name  string
	Decl  string // type and constraints, e.g. "TEXT NOT NULL DEFAULT ''"
}

// Version is one step of the schema history.
type Version struct {
	Number     int
	Tables     []TableDef
	AddColumns []Column
	Indexes    []Index
	Drop       []string

	// Upgrade transforms existing rows. It only runs on stores created at an
	// older version and must tolerate absent legacy tables.
	Upgrade func(ctx context.Context, tx *Tx) error
}

func checkVersions(versions []Version) error {
	if len(versions) == 0 {
		return fmt.Errorf("no schema versions")
	}
	for i, v := range versions {
		if v.Number != i+1 {
			return fmt.Errorf("schema version %d at position %d: versions must be numbered 1..n in order", v.Number, i)
		}
		created := make(map[string]bool, len(v.Tables))
		for _, t := range v.Tables {
			if t.Name == "" || t.Create == "" {
				return fmt.Errorf("schema version %d: table definition without name or statement", v.Number)
			}
			if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(t.Create)), "CREATE TABLE") {
				return fmt.Errorf("schema version %d: table %s: statement must start with CREATE TABLE", v.Number, t.Name)
			}
			created[t.Name] = true
		}
		for _, c := range v.AddColumns {
			if c.Table == "" || c.Name == "" || c.Decl == "" {
				return fmt.Errorf("schema version %d: column without table, name or declaration", v.Number)
			}
		}
		for _, d := range v.Drop {
			if created[d] {
				return fmt.Errorf("schema version %d: table %s cannot be created and dropped by the same version", v.Number, d)
			}
		}
	}
	return nil
}

// latestTables folds the version history into the set of live tables,
// keeping the last declaration of each and leaving out dropped ones.
func latestTables(versions []Version) []TableDef {
	var order []string
	defs := map[string]TableDef{}
	for _, v := range versions {
		for _, t := range v.Tables {
			if _, ok := defs[t.Name]; !ok {
				order = append(order, t.Name)
			}
			defs[t.Name] = t
		}
		for _, d := range v.Drop {
			delete(defs, d)
		}
	}
	out := make([]TableDef, 0, len(defs))
	for _, name := range order {
		if t, ok := defs[name]; ok {
			out = append(out, t)
		}
	}
	return out
}

func latestIndexes(versions []Version, live []TableDef) []Index {
	alive := make(map[string]bool, len(live))
	for _, t := range live {
		alive[t.Name] = true
	}
	var out []Index
	for _, v := range versions {
		for _, idx := range v.Indexes {
			if alive[idx.Table] {
				out = append(out, idx)
			}
		}
	}
	return out
}

// createIfMissing turns a CREATE TABLE statement into its idempotent form.
func createIfMissing(stmt string) string {
	trimmed := strings.TrimSpace(stmt)
	upper := strings.ToUpper(trimmed)
	if strings.HasPrefix(upper, "CREATE TABLE IF NOT EXISTS") {
		return trimmed
	}
	return "CREATE TABLE IF NOT EXISTS" + trimmed[len("CREATE TABLE"):]
}
