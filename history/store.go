package history

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/rpmpkg/core/internal/errkind"
	"github.com/rpmpkg/core/internal/log"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

// Store is the Transaction History Store (spec §4.4): a relational log of
// transactions, items, console output and comps state, backed by either
// Postgres or SQLite through database/sql.
//
// Store serialises every accessor through its *sql.DB connection pool, in
// keeping with the "owns its database connection; all accessors serialise
// through it" resource policy; callers must not share one Store across goals
// whose sacks belong to different pools.
type Store struct {
	db      *sql.DB
	dialect string
	log     *log.Logger
}

// Open connects to driverName ("pgx" or "sqlite") at dsn, runs pending
// migrations, and returns a ready Store. driverName selects both the
// database/sql driver and the migration/goose dialect.
func Open(driverName, dsn string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}

	var dialect string
	var migrations embed.FS
	var migrationsDir string
	switch driverName {
	case "pgx":
		dialect = "postgres"
		migrations = postgresMigrations
		migrationsDir = "migrations/postgres"
	case "sqlite":
		dialect = "sqlite3"
		migrations = sqliteMigrations
		migrationsDir = "migrations/sqlite"
	default:
		return nil, errkind.New(errkind.Internal, fmt.Sprintf("history: unsupported driver %q", driverName))
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errkind.Wrap(errkind.FileInvalid, err, "history: open database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errkind.Wrap(errkind.FileInvalid, err, "history: ping database")
	}
	if driverName == "sqlite" {
		// modernc.org/sqlite serialises access per connection; a pool of more
		// than one connection against the same DSN (including ":memory:")
		// produces independent databases, so pin to a single connection.
		db.SetMaxOpenConns(1)
	}

	if err := migrate(db, dialect, migrations, migrationsDir); err != nil {
		db.Close()
		return nil, err
	}

	logger.WithFields(log.Fields{"driver": driverName}).Info("history store opened")
	return &Store{db: db, dialect: dialect, log: logger}, nil
}

func migrate(db *sql.DB, dialect string, fsys embed.FS, dir string) error {
	if err := goose.SetDialect(dialect); err != nil {
		return errkind.Wrap(errkind.Internal, err, "history: set goose dialect")
	}
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	if err := goose.Up(db, dir); err != nil {
		return errkind.Wrap(errkind.Internal, err, "history: run migrations")
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func wrapSQL(kind errkind.Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return errkind.Wrap(kind, errors.WithStack(err), msg)
}
