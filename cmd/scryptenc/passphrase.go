package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/saylorsolutions/scryptenc/pkg/kdf"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

var errPassphraseMismatch = errors.New("passphrases mismatch")

// passphraseFlags select where the passphrase comes from. At most one may be given.
type passphraseFlags struct {
	tty     bool
	ttyOnce bool
	stdin   bool
	env     string
	file    string
}

func (f *passphraseFlags) bind(flags *flag.FlagSet) {
	flags.BoolVar(&f.tty, "passphrase-from-tty", false, "Read the passphrase from the terminal, asking for it twice.")
	flags.BoolVar(&f.ttyOnce, "passphrase-from-tty-once", false, "Read the passphrase from the terminal, asking for it once.")
	flags.BoolVar(&f.stdin, "passphrase-from-stdin", false, "Read the passphrase from the first line of stdin.")
	flags.StringVar(&f.env, "passphrase-from-env", "", "Read the passphrase from the named environment variable.")
	flags.StringVar(&f.file, "passphrase-from-file", "", "Read the passphrase from the first line of the file.")
}

func (f *passphraseFlags) validate() error {
	var set int
	for _, given := range []bool{f.tty, f.ttyOnce, f.stdin, f.env != "", f.file != ""} {
		if given {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("%w: only one --passphrase-from-* flag may be given", errUsage)
	}
	return nil
}

// read gets the passphrase from the selected source. The terminal is used when no source was selected, and confirm
// decides whether a terminal prompt asks twice. The caller should wipe the returned passphrase with kdf.Wipe.
func (f *passphraseFlags) read(a *app, confirm bool) ([]byte, error) {
	switch {
	case f.stdin:
		return readLine(a.stdin)
	case f.env != "":
		val, ok := os.LookupEnv(f.env)
		if !ok {
			return nil, fmt.Errorf("environment variable '%s' isn't set", f.env)
		}
		return []byte(val), nil
	case f.file != "":
		file, err := os.Open(f.file)
		if err != nil {
			return nil, fmt.Errorf("failed to open passphrase file: %w", err)
		}
		defer func() {
			_ = file.Close()
		}()
		return readLine(file)
	case f.tty:
		return a.promptConfirm()
	case f.ttyOnce:
		return a.prompt("Enter passphrase: ")
	}
	if confirm {
		return a.promptConfirm()
	}
	return a.prompt("Enter passphrase: ")
}

// readLine reads up to the first line ending, which isn't included.
func readLine(in io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(in).ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		kdf.Wipe(line)
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	if len(line) == 0 && errors.Is(err, io.EOF) {
		return nil, errors.New("failed to read passphrase: no input")
	}
	trimmed := bytes.TrimRight(line, "\r\n")
	pass := bytes.Clone(trimmed)
	kdf.Wipe(line)
	return pass, nil
}

func (a *app) promptConfirm() ([]byte, error) {
	pass, err := a.prompt("Enter passphrase: ")
	if err != nil {
		return nil, err
	}
	again, err := a.prompt("Confirm passphrase: ")
	if err != nil {
		kdf.Wipe(pass)
		return nil, err
	}
	defer kdf.Wipe(again)
	if !bytes.Equal(pass, again) {
		kdf.Wipe(pass)
		return nil, errPassphraseMismatch
	}
	return pass, nil
}

// prompt reads a passphrase without echo. Stdin is used if it's a terminal, otherwise /dev/tty.
func (a *app) prompt(msg string) ([]byte, error) {
	_, _ = fmt.Fprint(a.stderr, msg)
	defer func() {
		_, _ = fmt.Fprintln(a.stderr)
	}()

	if in, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(in.Fd())) {
		return readPassword(int(in.Fd()))
	}
	tty, err := os.Open("/dev/tty")
	if err != nil {
		return nil, fmt.Errorf("no terminal available to read the passphrase from, use another --passphrase-from-* flag: %w", err)
	}
	defer func() {
		_ = tty.Close()
	}()
	return readPassword(int(tty.Fd()))
}

func readPassword(fd int) ([]byte, error) {
	pass, err := term.ReadPassword(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return pass, nil
}
