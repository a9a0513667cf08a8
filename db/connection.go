package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/Active-Apparel-Group/data-orchestration-sub002/config"
)

type DBType string

const (
	SQLServer  DBType = "sqlserver"
	PostgreSQL DBType = "postgres"
	MySQL      DBType = "mysql"
)

// Connection represents a destination database connection.
type Connection struct {
	db   *sql.DB
	Type DBType
	cfg  *config.Config
}

// Connect establishes a database connection from a URL string. The scheme
// selects the driver: sqlserver (or mssql), postgres, mysql. maxConns bounds
// the connection pool so it matches the worker count feeding it.
func Connect(dbURL string, cfg *config.Config, maxConns int) (*Connection, error) {
	dbType, dsn, err := buildDSN(dbURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(string(dbType), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{db: db, Type: dbType, cfg: cfg}, nil
}

func buildDSN(dbURL string) (DBType, string, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid database URL: %w", err)
	}

	switch u.Scheme {
	case "sqlserver":
		return SQLServer, dbURL, nil

	case "mssql":
		// go-mssqldb's URL parser wants the sqlserver scheme.
		return SQLServer, "sqlserver" + strings.TrimPrefix(dbURL, "mssql"), nil

	case "postgres", "postgresql":
		return PostgreSQL, dbURL, nil

	case "mysql":
		// Convert URL format to the driver's DSN format.
		database := strings.TrimPrefix(u.Path, "/")
		return MySQL, fmt.Sprintf("%s@tcp(%s)/%s", u.User.String(), u.Host, database), nil

	default:
		return "", "", fmt.Errorf("unsupported database type: %s", u.Scheme)
	}
}

// NewConnection wraps an existing *sql.DB. Useful for callers that manage
// the connection themselves and for tests with a mock driver.
func NewConnection(sqlDB *sql.DB, dbType DBType, cfg *config.Config) *Connection {
	return &Connection{db: sqlDB, Type: dbType, cfg: cfg}
}

// Close closes the database connection.
func (c *Connection) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// GetDB returns the underlying *sql.DB instance.
func (c *Connection) GetDB() *sql.DB {
	return c.db
}
