// Command bricks builds native executables and libraries from blueprint
// files.
package main

import (
	"fmt"
	"os"

	"github.com/dehydratedfish/bricks/cmd/bricks/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
