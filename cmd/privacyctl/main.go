// Command privacyctl runs the review personal data exporter or eraser for one
// email address, the way the privacy tooling host would page through it.
//
//	privacyctl -email jane@example.com export
//	privacyctl -email jane@example.com -out report.json erase
//
// Configuration comes from the environment (see internal/platform/config).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "privacyctl:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("privacyctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "email address of the data subject")
	out := fs.String("out", "", "write the JSON report to this file instead of stdout")
	actor := fs.String("actor", os.Getenv("USER"), "operator recorded on audit events")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: privacyctl -email <address> [-out file] [-actor name] export|erase")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected one command, got %d", fs.NArg())
	}
	command := fs.Arg(0)
	if command != commandExport && command != commandErase {
		return fmt.Errorf("unknown command %q", command)
	}

	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runApp(ctx, stderr, job{command: command, email: *email, actor: *actor, out: w})
}
