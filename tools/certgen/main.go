// Package main writes a development CA and a server certificate for the
// local vault into a directory, by default "certs".
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/atinyakov/SecurePass/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("certgen", pflag.ContinueOnError)
	dir := fs.StringP("dir", "d", "certs", "output directory")
	hosts := fs.StringSlice("host", []string{"localhost", "127.0.0.1"}, "server names and addresses")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := certgen.EnsureDevCerts(*dir, *hosts)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Certificates written to %s\n", *dir)
	fmt.Fprintf(out, "Point the client at the CA with: securepass --ca-file %s\n", p.CACert)
	return nil
}
