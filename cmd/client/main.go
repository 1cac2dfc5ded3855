// Command securepass is the terminal client of the SecurePass vault service.
package main

import (
	"os"
)

var (
	version   string
	buildDate string
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
