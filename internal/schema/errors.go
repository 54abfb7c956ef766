package schema

import "fmt"

// MigrationErrorKind classifies an unrecoverable store state.
type MigrationErrorKind string

const (
	// KindInterrupted means a previous upgrade left the version dirty.
	KindInterrupted MigrationErrorKind = "interrupted"
	// KindPrimaryKeyChange means a live table's key type differs from its
	// declaration, which SQLite cannot fix in place.
	KindPrimaryKeyChange MigrationErrorKind = "primary_key_change"
	// KindMissingTable means a table the latest schema requires is absent.
	KindMissingTable MigrationErrorKind = "missing_table"
)

// MigrationError reports a store whose schema state cannot be repaired by
// running upgrades. Manager.Open recovers from it by resetting the store.
type MigrationError struct {
	Kind    MigrationErrorKind
	Version int
	Table   string
	Err     error
}

func (e *MigrationError) Error() string {
	msg := fmt.Sprintf("schema migration failed (%s) at version %d", e.Kind, e.Version)
	if e.Table != "" {
		msg += " on table " + e.Table
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MigrationError) Unwrap() error { return e.Err }
