// Package db manages the pgx PostgreSQL connection pool and the
// schema metadata used as AI prompt context.
//
// Design decisions:
//   - Uses pgxpool for connection pooling (safe for concurrent access).
//   - All queries are executed through the Pool interface, keeping the
//     rest of the application unaware of connection details.
//   - SSH tunnel integration is handled transparently: if SSH is enabled,
//     we first establish the tunnel, then connect pgx to the local endpoint.
package db

import (
	"strconv"

	"github.com/DachengChen/pgstudio/ssh"
)

// Config holds the settings needed to open one database connection.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	SSH ssh.Config
}

// DSN builds a pgx-compatible connection string.
// When SSH tunnel is active, Connect overrides Host/Port
// with the local tunnel endpoint before calling this.
func (c Config) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}
