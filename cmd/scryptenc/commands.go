package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/saylorsolutions/scryptenc/cmd/internal"
	"github.com/saylorsolutions/scryptenc/pkg/kdf"
	"github.com/saylorsolutions/scryptenc/pkg/scryptenc"
	"github.com/saylorsolutions/scryptenc/pkg/tune"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

const stdio = "-"

// command is a subcommand's flags, with usage text that goes to out.
type command struct {
	*flag.FlagSet
	help *bool
	out  io.Writer
}

func newCommand(name, synopsis, description string) *command {
	cmd := &command{FlagSet: flag.NewFlagSet(name, flag.ContinueOnError)}
	cmd.help = cmd.BoolP("help", "h", false, "Prints this usage information.")
	cmd.Usage = func() {
		_, _ = fmt.Fprintf(cmd.out, `
%s

USAGE:  scryptenc %s

FLAGS:
%s`, description, synopsis, cmd.FlagUsages())
	}
	return cmd
}

// parse returns false with a nil error when help was requested.
// Help goes to stdout, and usage after a parse error goes to stderr.
func (a *app) parse(cmd *command, args []string) (bool, error) {
	cmd.SetOutput(a.stderr)
	if err := cmd.Parse(args); err != nil {
		cmd.out = a.stderr
		cmd.Usage()
		return false, fmt.Errorf("%w: %v", errUsage, err)
	}
	if *cmd.help {
		cmd.out = a.stdout
		cmd.Usage()
		return false, nil
	}
	return true, nil
}

func (a *app) readInput(name string) ([]byte, error) {
	if name == stdio {
		return io.ReadAll(a.stdin)
	}
	return os.ReadFile(name)
}

func (a *app) writeOutput(args []string, data []byte) error {
	if len(args) < 2 || args[1] == stdio {
		_, err := a.stdout.Write(data)
		return err
	}
	return os.WriteFile(args[1], data, 0600)
}

func fileArgs(cmd *command, maxArgs int) ([]string, error) {
	switch n := cmd.NArg(); {
	case n == 0:
		return nil, fmt.Errorf("%w: missing required INFILE argument", errUsage)
	case n > maxArgs:
		return nil, fmt.Errorf("%w: too many arguments", errUsage)
	}
	return cmd.Args(), nil
}

func (a *app) encrypt(ctx context.Context, args []string) error {
	var (
		resources  resourceFlags
		params     paramFlags
		passphrase passphraseFlags
		verbose    bool
	)
	cmd := newCommand("enc", "enc [FLAGS] INFILE [OUTFILE]",
		"Encrypts INFILE and writes the result to OUTFILE, or stdout if OUTFILE isn't given. Use - as INFILE to read stdin.")
	resources.bind(cmd.FlagSet, tune.EncryptDefaults())
	params.bind(cmd.FlagSet)
	passphrase.bind(cmd.FlagSet)
	cmd.BoolVarP(&verbose, "verbose", "v", false, "Print the parameters used and the resources needed.")
	if ok, err := a.parse(cmd, args); !ok {
		return err
	}
	files, err := fileArgs(cmd, 2)
	if err != nil {
		return err
	}
	if err := passphrase.validate(); err != nil {
		return err
	}
	if err := resources.validate(); err != nil {
		return err
	}
	if files[0] == stdio && passphrase.stdin {
		return fmt.Errorf("%w: can't read both INFILE and the passphrase from stdin", errUsage)
	}
	chosen, explicit, err := params.params()
	if err != nil {
		return err
	}
	if resources.force && !explicit {
		return fmt.Errorf("%w: --force requires --log-n, -r, and -p", errUsage)
	}
	log := internal.NewLogger(a.stderr, verbose)

	b, err := resources.measure(ctx)
	if err != nil {
		return err
	}
	switch {
	case !explicit:
		chosen = b.pick()
	case !resources.force:
		if err := b.check(chosen); err != nil {
			return fmt.Errorf("%w: %w", errResources, err)
		}
	}
	logParams(log, chosen, b.opsPerSec)

	plaintext, err := a.readInput(files[0])
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	pass, err := passphrase.read(a, true)
	if err != nil {
		return err
	}
	defer kdf.Wipe(pass)

	codec, err := scryptenc.NewCodec(scryptenc.WithMaxMemory(0))
	if err != nil {
		return err
	}
	encrypted, err := codec.Encrypt(ctx, plaintext, pass, chosen)
	if err != nil {
		return fmt.Errorf("failed to encrypt: %w", err)
	}
	return a.writeOutput(files, encrypted)
}

func (a *app) decrypt(ctx context.Context, args []string) error {
	var (
		resources  resourceFlags
		passphrase passphraseFlags
		verbose    bool
	)
	cmd := newCommand("dec", "dec [FLAGS] INFILE [OUTFILE]",
		"Decrypts INFILE and writes the result to OUTFILE, or stdout if OUTFILE isn't given. Use - as INFILE to read stdin.")
	resources.bind(cmd.FlagSet, tune.DecryptDefaults())
	passphrase.bind(cmd.FlagSet)
	cmd.BoolVarP(&verbose, "verbose", "v", false, "Print the parameters used and the resources needed.")
	if ok, err := a.parse(cmd, args); !ok {
		return err
	}
	files, err := fileArgs(cmd, 2)
	if err != nil {
		return err
	}
	if err := passphrase.validate(); err != nil {
		return err
	}
	if err := resources.validate(); err != nil {
		return err
	}
	if files[0] == stdio && passphrase.stdin {
		return fmt.Errorf("%w: can't read both INFILE and the passphrase from stdin", errUsage)
	}
	log := internal.NewLogger(a.stderr, verbose)

	ciphertext, err := a.readInput(files[0])
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	params, err := scryptenc.ReadParams(ciphertext)
	if err != nil {
		return describe(err)
	}
	if !resources.force || verbose {
		b, err := resources.measure(ctx)
		if err != nil {
			return err
		}
		logParams(log, params, b.opsPerSec)
		if !resources.force {
			if err := b.check(params); err != nil {
				return fmt.Errorf("%w: %w", errResources, err)
			}
		}
	}

	pass, err := passphrase.read(a, false)
	if err != nil {
		return err
	}
	defer kdf.Wipe(pass)

	codec, err := scryptenc.NewCodec(scryptenc.WithMaxMemory(0))
	if err != nil {
		return err
	}
	plaintext, err := codec.Decrypt(ctx, ciphertext, pass)
	if err != nil {
		return describe(err)
	}
	defer kdf.Wipe(plaintext)
	return a.writeOutput(files, plaintext)
}

type paramsInfo struct {
	N uint64 `json:"N"`
	R uint32 `json:"r"`
	P uint32 `json:"p"`
}

func (a *app) info(args []string) error {
	var asJSON bool
	cmd := newCommand("info", "info [FLAGS] FILE",
		"Prints the scrypt parameters of the encrypted FILE, and the memory needed to decrypt it. Use - as FILE to read stdin.")
	cmd.BoolVarP(&asJSON, "json", "j", false, "Print the parameters as JSON.")
	if ok, err := a.parse(cmd, args); !ok {
		return err
	}
	files, err := fileArgs(cmd, 1)
	if err != nil {
		return err
	}
	data, err := a.readInput(files[0])
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	params, err := scryptenc.ReadParams(data)
	if err != nil {
		return describe(err)
	}

	if asJSON {
		return json.NewEncoder(a.stdout).Encode(paramsInfo{N: params.N(), R: params.R(), P: params.P()})
	}
	internal.Echo(a.stdout, "Parameters used: %s", params)
	internal.Echo(a.stdout, "    Decrypting this file requires at least %s of memory.", tune.FormatBytes(params.Memory()))
	return nil
}

func logParams(log *logrus.Logger, params scryptenc.Params, opsPerSec float64) {
	mem, dur := tune.Estimate(params, opsPerSec)
	log.WithFields(logrus.Fields{
		"memory": tune.FormatBytes(mem),
		"time":   dur.Round(time.Millisecond),
	}).Infof("Parameters used: %s", params)
}

// describe adds context for the errors a user is likely to see.
func describe(err error) error {
	switch {
	case errors.Is(err, scryptenc.ErrHeaderAuthentication):
		return fmt.Errorf("passphrase is incorrect: %w", err)
	case errors.Is(err, scryptenc.ErrPayloadAuthentication):
		return fmt.Errorf("the encrypted data is corrupted: %w", err)
	case errors.Is(err, scryptenc.ErrFormat), errors.Is(err, scryptenc.ErrParams):
		return fmt.Errorf("the header in the encrypted data is invalid: %w", err)
	}
	return err
}
