package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"go.uber.org/multierr"
)

const migrationsTable = "schema_migrations"

// Options configures a Manager.
type Options struct {
	// KeepCorruptBackup copies an unrecoverable store to
	// <path>.corrupt-<unix seconds> before it is deleted.
	KeepCorruptBackup bool

	// OnReset is called after a store has been reset and reopened.
	OnReset func(*MigrationError)

	// Now overrides the clock used to name backups.
	Now func() time.Time
}

// Manager applies an ordered version history to SQLite stores.
type Manager struct {
	versions []Version
	logger   *slog.Logger
	opts     Options
}

// NewManager checks the version list and returns a manager for it.
func NewManager(versions []Version, logger *slog.Logger, opts Options) (*Manager, error) {
	if err := checkVersions(versions); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{versions: versions, logger: logger, opts: opts}, nil
}

// Latest returns the newest version number.
func (m *Manager) Latest() int {
	return m.versions[len(m.versions)-1].Number
}

// Open opens (or creates) the store at path and brings it to the latest
// version. A store in an unrecoverable state is deleted and recreated
// empty; the reset is logged at ERROR level and reported through OnReset.
func (m *Manager) Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, err
	}

	err = m.Migrate(ctx, db)
	if err == nil {
		return db, nil
	}

	var merr *MigrationError
	if !errors.As(err, &merr) {
		return nil, multierr.Append(err, db.Close())
	}
	if cerr := db.Close(); cerr != nil {
		return nil, fmt.Errorf("closing store before reset: %w", cerr)
	}

	backup, rerr := m.reset(path)
	if rerr != nil {
		return nil, fmt.Errorf("resetting store after %v: %w", merr, rerr)
	}
	m.logger.Error("store schema unrecoverable, all local data was reset",
		"path", path, "kind", merr.Kind, "version", merr.Version, "table", merr.Table,
		"error", merr.Err, "backup", backup)

	db, err = openSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := m.Migrate(ctx, db); err != nil {
		return nil, multierr.Append(fmt.Errorf("migrating reset store: %w", err), db.Close())
	}
	if m.opts.OnReset != nil {
		m.opts.OnReset(merr)
	}
	return db, nil
}

// Status reports the recorded version and dirty flag of an open store.
// A store without bookkeeping reports database.NilVersion.
func (m *Manager) Status(ctx context.Context, db *sql.DB) (version int, dirty bool, err error) {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return 0, false, fmt.Errorf("opening version table: %w", err)
	}
	return driver.Version()
}

// Migrate brings an open store to the latest version.
func (m *Manager) Migrate(ctx context.Context, db *sql.DB) error {
	// The driver must never be closed: it owns no connection of its own and
	// closing it would close db.
	driver, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("opening version table: %w", err)
	}
	if err := driver.Lock(); err != nil {
		return fmt.Errorf("locking version table: %w", err)
	}
	defer driver.Unlock()

	current, dirty, err := driver.Version()
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if dirty {
		return &MigrationError{Kind: KindInterrupted, Version: current, Err: migrate.ErrDirty{Version: current}}
	}
	latest := m.Latest()
	if current > latest {
		return fmt.Errorf("store schema version %d is newer than supported version %d", current, latest)
	}

	if current == database.NilVersion {
		if err := m.create(ctx, db, driver); err != nil {
			return err
		}
	} else {
		for _, v := range m.versions[current:] {
			if err := m.upgrade(ctx, db, driver, v, current); err != nil {
				return err
			}
			current = v.Number
		}
	}
	return m.verify(ctx, db)
}

// create builds a fresh store directly at the latest schema.
func (m *Manager) create(ctx context.Context, db *sql.DB, driver database.Driver) error {
	latest := m.Latest()
	tables := latestTables(m.versions)
	indexes := latestIndexes(m.versions, tables)

	if err := driver.SetVersion(latest, true); err != nil {
		return fmt.Errorf("marking version %d: %w", latest, err)
	}
	err := inTx(ctx, db, func(tx *sql.Tx) error {
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, createIfMissing(t.Create)); err != nil {
				return fmt.Errorf("creating table %s: %w", t.Name, err)
			}
		}
		for _, idx := range indexes {
			if _, err := tx.ExecContext(ctx, idx.Create); err != nil {
				return fmt.Errorf("creating index on %s: %w", idx.Table, err)
			}
		}
		return nil
	})
	if err != nil {
		return multierr.Append(fmt.Errorf("creating schema version %d: %w", latest, err),
			driver.SetVersion(database.NilVersion, false))
	}
	if err := driver.SetVersion(latest, false); err != nil {
		return fmt.Errorf("recording version %d: %w", latest, err)
	}
	m.logger.Info("store created", "version", latest, "tables", len(tables))
	return nil
}

// upgrade applies one version to a store at version prev. The version is
// marked dirty for the duration so an interruption is detected on the
// next open.
func (m *Manager) upgrade(ctx context.Context, db *sql.DB, driver database.Driver, v Version, prev int) error {
	if err := driver.SetVersion(v.Number, true); err != nil {
		return fmt.Errorf("marking version %d: %w", v.Number, err)
	}
	err := inTx(ctx, db, func(tx *sql.Tx) error {
		for _, t := range v.Tables {
			if _, err := tx.ExecContext(ctx, createIfMissing(t.Create)); err != nil {
				return fmt.Errorf("creating table %s: %w", t.Name, err)
			}
		}
		for _, c := range v.AddColumns {
			if err := addColumn(ctx, tx, c); err != nil {
				return err
			}
		}
		if v.Upgrade != nil {
			if err := v.Upgrade(ctx, &Tx{tx: tx}); err != nil {
				return fmt.Errorf("upgrade transform: %w", err)
			}
		}
		for _, idx := range v.Indexes {
			if _, err := tx.ExecContext(ctx, idx.Create); err != nil {
				return fmt.Errorf("creating index on %s: %w", idx.Table, err)
			}
		}
		for _, name := range v.Drop {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", name)); err != nil {
				return fmt.Errorf("dropping table %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return multierr.Append(fmt.Errorf("upgrading to schema version %d: %w", v.Number, err),
			driver.SetVersion(prev, false))
	}
	if err := driver.SetVersion(v.Number, false); err != nil {
		return fmt.Errorf("recording version %d: %w", v.Number, err)
	}
	m.logger.Info("store upgraded", "from", prev, "to", v.Number)
	return nil
}

// verify checks that every live table exists with its declared key type.
func (m *Manager) verify(ctx context.Context, db *sql.DB) error {
	latest := m.Latest()
	for _, t := range latestTables(m.versions) {
		if t.KeyColumn == "" {
			continue
		}
		colType, isKey, found, err := keyColumnType(ctx, db, t.Name, t.KeyColumn)
		if err != nil {
			return err
		}
		if !found {
			return &MigrationError{Kind: KindMissingTable, Version: latest, Table: t.Name,
				Err: fmt.Errorf("key column %s not found", t.KeyColumn)}
		}
		if !isKey || !strings.EqualFold(colType, t.KeyType) {
			return &MigrationError{Kind: KindPrimaryKeyChange, Version: latest, Table: t.Name,
				Err: fmt.Errorf("key column %s has type %s, want %s", t.KeyColumn, colType, t.KeyType)}
		}
	}
	return nil
}

// addColumn adds c unless its table is absent or already has the column.
func addColumn(ctx context.Context, tx *sql.Tx, c Column) error {
	exists, err := tableExists(ctx, tx, c.Table)
	if err != nil || !exists {
		return err
	}
	_, _, found, err := keyColumnType(ctx, tx, c.Table, c.Name)
	if err != nil || found {
		return err
	}
	stmt := fmt.Sprintf("ALTER TABLE %q ADD COLUMN %q %s", c.Table, c.Name, c.Decl)
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("adding column %s.%s: %w", c.Table, c.Name, err)
	}
	return nil
}

func keyColumnType(ctx context.Context, db rowsQueryer, table, column string) (colType string, isKey, found bool, err error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return "", false, false, fmt.Errorf("inspecting table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return "", false, false, fmt.Errorf("scanning table info for %s: %w", table, err)
		}
		if name == column {
			return typ, pk > 0, true, rows.Err()
		}
	}
	return "", false, false, rows.Err()
}

// reset deletes the store files, keeping a copy of the database first when
// configured. It returns the backup path, if any.
func (m *Manager) reset(path string) (string, error) {
	var backup string
	if m.opts.KeepCorruptBackup {
		backup = fmt.Sprintf("%s.corrupt-%d", path, m.opts.Now().Unix())
		if err := copyFile(path, backup); err != nil {
			return "", fmt.Errorf("backing up corrupt store: %w", err)
		}
	}
	var errs error
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = multierr.Append(errs, err)
		}
	}
	return backup, errs
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, out.Close()) }()

	_, err = io.Copy(out, in)
	return err
}

func inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		return multierr.Append(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// openSQLite opens a single-connection store with foreign keys and WAL on.
func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		return nil, multierr.Append(fmt.Errorf("pinging store %s: %w", path, err), db.Close())
	}
	return db, nil
}
