// Package database provides datastore management for remi.
//
// A single *DB handle is opened at startup and shared by ingestion and every
// conversation turn. SQLite is the default; MySQL is supported for parity
// with existing deployments.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/remibot/remi-go/internal/config"
)

// DB wraps a database connection with additional metadata.
type DB struct {
	*sql.DB
	Dialect       Dialect
	Path          string // SQLite file path, empty for MySQL
	IsTemp        bool
	ShouldCleanup bool

	engineURL string
}

// Open connects to the datastore described by cfg and verifies the
// connection. For SQLite an empty DBPath creates a temporary database that is
// removed on Close.
func Open(ctx context.Context, cfg *config.Config) (*DB, error) {
	driver, err := config.ParseDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var db *DB
	switch driver {
	case config.DriverMySQL:
		db, err = openMySQL(cfg)
	default:
		db, err = OpenSQLite(cfg.DBPath)
	}
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", db.Dialect.Name(), err)
	}
	return db, nil
}

// OpenSQLite opens or creates a SQLite database.
// If dbPath is empty, a temporary database is created.
func OpenSQLite(dbPath string) (*DB, error) {
	var path string
	var isTemp bool

	if dbPath == "" {
		tmpFile, err := os.CreateTemp("", "remi-*.db")
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary database: %w", err)
		}
		tmpFile.Close()
		path = tmpFile.Name()
		isTemp = true
	} else {
		path = dbPath
		dbDir := filepath.Dir(path)
		if dbDir != "." && dbDir != "" {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		if isTemp {
			os.Remove(path)
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	engineURL := path
	if abs, err := filepath.Abs(path); err == nil {
		engineURL = abs
	}

	return &DB{
		DB:            sqlDB,
		Dialect:       sqliteDialect{},
		Path:          path,
		IsTemp:        isTemp,
		ShouldCleanup: isTemp,
		engineURL:     "sqlite:///" + engineURL,
	}, nil
}

func openMySQL(cfg *config.Config) (*DB, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = addr
	mc.DBName = cfg.Database

	sqlDB, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &DB{
		DB:      sqlDB,
		Dialect: mysqlDialect{},
		engineURL: (&url.URL{
			Scheme: "mysql+mysqlconnector",
			User:   url.UserPassword(cfg.User, cfg.Password),
			Host:   addr,
			Path:   "/" + cfg.Database,
		}).String(),
	}, nil
}

// EngineURL returns a SQLAlchemy connection URL for the same datastore,
// used by generated chart code.
func (d *DB) EngineURL() string {
	return d.engineURL
}

// Cleanup removes the temporary database file if applicable.
func (d *DB) Cleanup() error {
	if d.ShouldCleanup {
		if err := os.Remove(d.Path); err != nil {
			return fmt.Errorf("failed to remove temporary database %s: %w", d.Path, err)
		}
		d.ShouldCleanup = false
	}
	return nil
}

// Close closes the database connection and cleans up if necessary.
func (d *DB) Close() error {
	if err := d.DB.Close(); err != nil {
		return err
	}
	return d.Cleanup()
}
