package migrations

import "embed"

// PostgresFS holds the signals table schema.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the snapshot archive schema.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
