package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"expensetracker/backend/config"
)

var (
	// ErrNotFound is returned when a row does not exist or is not visible to the caller.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an insert violates a unique constraint.
	ErrConflict = errors.New("record already exists")
)

// DB is a *sql.DB that knows its driver, so queries written with '?'
// placeholders can run on postgres too.
type DB struct {
	*sql.DB
	Driver string
}

// Open connects to the configured database.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case "sqlite3":
		return openSQLite(cfg.Path)
	case "postgres":
		return openPostgres(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openSQLite(path string) (*DB, error) {
	// Connection parameters to better handle concurrency
	dsn := "file:" + path + "?_journal=WAL&_busy_timeout=10000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("Using SQLite database at %s", path)
	return &DB{DB: db, Driver: "sqlite3"}, nil
}

func openPostgres(url string) (*DB, error) {
	log.Printf("Connecting to PostgreSQL: %s", MaskPassword(url))

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL")
	return &DB{DB: db, Driver: "postgres"}, nil
}

// Rebind rewrites '?' placeholders as $1, $2, ... for postgres.
func (db *DB) Rebind(query string) string {
	if db.Driver != "postgres" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// MaskPassword masks the password in a connection URL for logging.
func MaskPassword(connStr string) string {
	schemeEnd := strings.Index(connStr, "://")
	at := strings.LastIndex(connStr, "@")
	if schemeEnd < 0 || at < schemeEnd {
		return connStr
	}

	userinfo := connStr[schemeEnd+3 : at]
	colon := strings.Index(userinfo, ":")
	if colon < 0 {
		return connStr
	}

	masked := userinfo[:colon+1] + strings.Repeat("*", len(userinfo)-colon-1)
	return connStr[:schemeEnd+3] + masked + connStr[at:]
}

// isUniqueViolation recognizes unique constraint errors from both drivers.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// micros converts between time.Time and the BIGINT unix-microsecond columns.
func micros(t time.Time) int64 { return t.UnixMicro() }

func fromMicros(us int64) time.Time { return time.UnixMicro(us).UTC() }
