// Command hogql is the CLI entry point for the HogQL name and type
// resolver: resolve/check a query against the bundled sample catalog,
// or drive the interactive REPL. Grounded on the teacher's
// cmd/leapsql/main.go.
package main

import (
	"os"

	"github.com/lakequery/hogql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
