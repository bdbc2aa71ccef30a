// Package migrations embeds the SurrealDB schema so the server and the
// test harness apply the same files in the same order.
package migrations

import "embed"

// Files holds every *.surql migration, applied in lexical order.
//
//go:embed *.surql
var Files embed.FS
