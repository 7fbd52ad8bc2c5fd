package executor

import (
	"fmt"
	"net/url"

	_ "github.com/jackc/pgx/v5/stdlib"  // registers "pgx"
	_ "github.com/lib/pq"               // registers "postgres"
	_ "github.com/microsoft/go-mssqldb" // registers "sqlserver"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
	DriverPgx       = "pgx"
	DriverSQLite    = "sqlite"
)

// sqlServerConnectTimeout is the connection timeout, in seconds, used for SQL Server.
const sqlServerConnectTimeout = 30

// SupportedDrivers lists the drivers DSN knows how to build for.
var SupportedDrivers = []string{DriverSQLServer, DriverPostgres, DriverPgx, DriverSQLite}

// DSN builds a data source name from a server identifier and database name.
// No credentials are embedded: SQL Server uses a trusted connection and
// Postgres falls back to the process user. For SQLite the server identifier
// is the database file path and database is ignored.
func DSN(driver, server, database string) (string, error) {
	if server == "" {
		return "", fmt.Errorf("server is required for driver %q", driver)
	}

	switch driver {
	case DriverSQLServer:
		q := url.Values{}
		if database != "" {
			q.Set("database", database)
		}
		q.Set("connection timeout", fmt.Sprint(sqlServerConnectTimeout))
		u := url.URL{Scheme: "sqlserver", Host: server, RawQuery: q.Encode()}
		return u.String(), nil

	case DriverPostgres, DriverPgx:
		u := url.URL{Scheme: "postgres", Host: server, Path: "/" + database, RawQuery: "sslmode=disable"}
		return u.String(), nil

	case DriverSQLite:
		return server, nil

	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}
