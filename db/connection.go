package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config describes how to reach the database. Path is used by the SQLite
// driver, the remaining fields by PostgreSQL.
type Config struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c Config) driver() string {
	if c.Driver == "" {
		return DriverSQLite
	}
	return c.Driver
}

// flavor returns the sqlbuilder flavor matching the driver placeholders
func (c Config) flavor() (sqlbuilder.Flavor, error) {
	switch c.driver() {
	case DriverSQLite:
		return sqlbuilder.SQLite, nil
	case DriverPostgres:
		return sqlbuilder.PostgreSQL, nil
	default:
		return sqlbuilder.DefaultFlavor, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

// dataSourceName is the DSN handed to database/sql
func (c Config) dataSourceName() string {
	if c.driver() == DriverSQLite {
		// Enable foreign keys and WAL mode on every pooled connection
		return fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", c.Path)
	}
	return c.postgresURL()
}

// migrateURL is the database URL understood by golang-migrate
func (c Config) migrateURL() string {
	if c.driver() == DriverSQLite {
		return "sqlite://" + c.Path + "?_pragma=foreign_keys(1)"
	}
	return c.postgresURL()
}

func (c Config) postgresURL() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String()
}

// String describes the target without credentials, for logs
func (c Config) String() string {
	if c.driver() == DriverSQLite {
		return "sqlite:" + c.Path
	}
	return fmt.Sprintf("postgres:%s:%d/%s", c.Host, c.Port, c.Name)
}

func connection(config Config) (*sql.DB, error) {
	db, err := sql.Open(config.driver(), config.dataSourceName())
	if err != nil {
		return nil, err
	}

	if config.driver() == DriverSQLite {
		db.SetMaxOpenConns(4) // WAL allows concurrent readers alongside the single writer
		db.SetMaxIdleConns(2)

		if _, err := db.Exec(`
			PRAGMA synchronous = NORMAL;
			PRAGMA temp_store = MEMORY;
		`); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragmas: %w", err)
		}
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
	}

	db.SetConnMaxLifetime(time.Hour) // Recreate connections after an hour
	db.SetConnMaxIdleTime(time.Hour) // Close idle connections after an hour

	return db, nil
}
