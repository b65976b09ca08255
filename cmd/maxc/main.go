// Command maxc is the thin entry point delegating to pkg/cli.Run, grounded
// on funvibe-funxy/cmd/funxy/main.go's own minimal main (most of that
// file's bulk is build/embed/ext machinery dropped per DESIGN.md).
package main

import (
	"os"

	"github.com/maxc-lang/maxc/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
