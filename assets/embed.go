// assets/embed.go
//
// Files compiled into the binaries:
//   - riddles.yaml: the shipped riddle bank (seeded into SQLite on first start).
//   - sql/*.sql:    schema migrations, applied in lexical order.
//   - web/*:        the browser page served at "/".

package assets

import (
	"embed"
	"io/fs"
)

//go:embed riddles.yaml
var RiddlesYAML []byte

//go:embed sql/*.sql
var migrations embed.FS

//go:embed web/index.html
var IndexHTML []byte

// Migrations returns the embedded migration files rooted at "sql".
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "sql")
	if err != nil {
		// Only fails if the embed pattern above changes.
		panic(err)
	}
	return sub
}
