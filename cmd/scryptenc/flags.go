package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/saylorsolutions/scryptenc/pkg/scryptenc"
	"github.com/saylorsolutions/scryptenc/pkg/tune"
	flag "github.com/spf13/pflag"
)

// byteSize is a flag value that accepts sizes like "512MiB", and no less than 1 MiB.
type byteSize uint64

func (b *byteSize) Set(s string) error {
	val, err := tune.ParseMemory(s)
	if err != nil {
		return err
	}
	*b = byteSize(val)
	return nil
}

func (b *byteSize) String() string {
	return strconv.FormatUint(uint64(*b), 10)
}

func (b *byteSize) Type() string {
	return "bytes"
}

// fraction is a flag value for a share of memory in (0, 0.5].
type fraction float64

func (f *fraction) Set(s string) error {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	if err := tune.ValidateFraction(val); err != nil {
		return err
	}
	*f = fraction(val)
	return nil
}

func (f *fraction) String() string {
	return strconv.FormatFloat(float64(*f), 'g', -1, 64)
}

func (f *fraction) Type() string {
	return "rate"
}

// resourceFlags bounds the memory and time key derivation may take.
type resourceFlags struct {
	force       bool
	maxMemory   byteSize
	maxFraction fraction
	maxTime     time.Duration
}

func (f *resourceFlags) bind(flags *flag.FlagSet, defaults tune.Limits) {
	f.maxMemory = byteSize(defaults.MaxMemory)
	f.maxFraction = fraction(defaults.MaxMemoryFraction)
	flags.BoolVarP(&f.force, "force", "f", false, "Proceed even if the parameters need more resources than allowed.")
	flags.VarP(&f.maxMemory, "max-memory", "M", "Use at most this many bytes of memory, like 512MiB. At least 1 MiB. Without it, only --max-memory-fraction applies.")
	flags.VarP(&f.maxFraction, "max-memory-fraction", "m", "Use at most this fraction of the available memory, greater than 0 and at most 0.5.")
	flags.DurationVarP(&f.maxTime, "max-time", "t", defaults.MaxTime, "Spend at most this long deriving the key.")
}

func (f *resourceFlags) validate() error {
	if err := f.limits().Validate(); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

func (f *resourceFlags) limits() tune.Limits {
	return tune.Limits{
		MaxMemory:         uint64(f.maxMemory),
		MaxMemoryFraction: float64(f.maxFraction),
		MaxTime:           f.maxTime,
	}
}

// budget is a memory limit and CPU performance measurement that parameters are chosen or checked against.
type budget struct {
	limits    tune.Limits
	memLimit  uint64
	opsPerSec float64
}

func (f *resourceFlags) measure(ctx context.Context) (*budget, error) {
	limits := f.limits()
	perf, err := tune.CPUPerf(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to measure CPU performance: %w", err)
	}
	return &budget{
		limits:    limits,
		memLimit:  limits.MemoryLimit(tune.SystemMemory()),
		opsPerSec: perf,
	}, nil
}

func (b *budget) pick() scryptenc.Params {
	return tune.Pick(b.memLimit, b.opsPerSec, b.limits.MaxTime)
}

func (b *budget) check(params scryptenc.Params) error {
	return tune.Check(params, b.memLimit, b.opsPerSec, b.limits.MaxTime)
}

const (
	minLogN = 10
	maxLogN = 40
	maxR    = 32
	maxP    = 32
)

// paramFlags are explicit scrypt parameters for encryption.
type paramFlags struct {
	flags *flag.FlagSet
	logN  uint8
	r     uint32
	p     uint32
}

func (f *paramFlags) bind(flags *flag.FlagSet) {
	f.flags = flags
	flags.Uint8Var(&f.logN, "log-n", 0, fmt.Sprintf("Set log2(N), the work factor, between %d and %d.", minLogN, maxLogN))
	flags.Uint32VarP(&f.r, "block-size", "r", 0, fmt.Sprintf("Set r, the block size, between 1 and %d.", maxR))
	flags.Uint32VarP(&f.p, "parallelization", "p", 0, fmt.Sprintf("Set p, the parallelization parameter, between 1 and %d.", maxP))
}

// params returns false if no explicit parameters were given.
func (f *paramFlags) params() (scryptenc.Params, bool, error) {
	var set int
	for _, name := range []string{"log-n", "block-size", "parallelization"} {
		if f.flags.Changed(name) {
			set++
		}
	}
	switch {
	case set == 0:
		return scryptenc.Params{}, false, nil
	case set < 3:
		return scryptenc.Params{}, false, fmt.Errorf("%w: --log-n, -r, and -p must be given together", errUsage)
	case f.logN < minLogN || f.logN > maxLogN:
		return scryptenc.Params{}, false, fmt.Errorf("%w: --log-n must be between %d and %d", errUsage, minLogN, maxLogN)
	case f.r < 1 || f.r > maxR:
		return scryptenc.Params{}, false, fmt.Errorf("%w: -r must be between 1 and %d", errUsage, maxR)
	case f.p < 1 || f.p > maxP:
		return scryptenc.Params{}, false, fmt.Errorf("%w: -p must be between 1 and %d", errUsage, maxP)
	}
	params, err := scryptenc.NewParams(f.logN, f.r, f.p)
	if err != nil {
		return scryptenc.Params{}, false, err
	}
	return params, true, nil
}

var errResources = errors.New("the parameters need more resources than allowed, use --force to proceed anyway")
