package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/saylorsolutions/scryptenc/cmd/internal"
)

var version = "dev"

var errUsage = errors.New("usage error")

const usage = `
scryptenc encrypts and decrypts files in the scrypt encrypted data format.
Files are compatible with the reference scrypt utility.

USAGE:  scryptenc COMMAND [FLAGS] ARGS...

COMMANDS:
    enc      Encrypt a file.
    dec      Decrypt a file.
    info     Print the scrypt parameters of an encrypted file.
    version  Print the version of scryptenc.
    help     Print this usage information.

Run 'scryptenc COMMAND --help' for the flags each command accepts.
`

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			internal.Echo(os.Stderr, "Error: %v", err)
			os.Exit(2)
		}
		internal.Fatal("Error: %v", err)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		internal.Echo(a.stdout, "%s", usage)
		return nil
	}
	switch cmd, rest := args[0], args[1:]; cmd {
	case "enc":
		return a.encrypt(ctx, rest)
	case "dec":
		return a.decrypt(ctx, rest)
	case "info":
		return a.info(rest)
	case "version", "--version", "-V":
		internal.Echo(a.stdout, "scryptenc %s", version)
		return nil
	case "help", "--help", "-h":
		internal.Echo(a.stdout, "%s", usage)
		return nil
	default:
		internal.Echo(a.stderr, "%s", usage)
		return fmt.Errorf("%w: unknown command '%s'", errUsage, cmd)
	}
}
