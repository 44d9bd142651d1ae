// Command ifjc compiles IFJ25 source to IFJcode25, mirroring the
// teacher's cmd/dwscript entry point: a thin main that just hands off to
// the Cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/ifj25/ifjc/cmd/ifjc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
