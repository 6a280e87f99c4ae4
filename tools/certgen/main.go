// Package main writes a self-signed server certificate and key for serving
// the users API over HTTPS during development.
//
// Usage:
//
//	go run ./tools/certgen -dir certs -hosts localhost,127.0.0.1
//	go run ./cmd/server -tls-cert certs/server.crt -tls-key certs/server.key
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/usersvc/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs")
	validFor := fs.Duration("valid-for", 365*24*time.Hour, "certificate lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var names []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}

	certPEM, keyPEM, err := certgen.GenerateServerCertificate(names, *validFor)
	if err != nil {
		return err
	}
	certPath, keyPath, err := certgen.WriteFiles(*dir, certPEM, keyPEM)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Certificate: %s\nKey: %s\n", certPath, keyPath)
	return nil
}
