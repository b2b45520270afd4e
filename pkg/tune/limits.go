package tune

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"time"

	"github.com/saylorsolutions/scryptenc/pkg/scryptenc"
)

const (
	// MinMemory is the least memory a limit will ever allow.
	MinMemory uint64 = 1 << 20
	// FallbackMemory is used as total memory when it can't be determined and no explicit maximum is set.
	FallbackMemory uint64 = 1 << 30

	minOps = 32768
)

var (
	ErrTooMuchMemory = errors.New("decrypting would take too much memory")
	ErrTooMuchTime   = errors.New("decrypting would take too much CPU time")

	ErrInvalidLimits   = errors.New("invalid resource limits")
	ErrMemoryTooSmall  = fmt.Errorf("%w: amount of RAM is less than 1 MiB", ErrInvalidLimits)
	ErrInvalidFraction = fmt.Errorf("%w: memory fraction must be greater than 0 and at most 0.5", ErrInvalidLimits)
	ErrInvalidTime     = fmt.Errorf("%w: time limit must be positive", ErrInvalidLimits)
)

// Limits are the resources that key derivation may use.
type Limits struct {
	// MaxMemory caps memory use in bytes. 0 means no cap beyond MaxMemoryFraction.
	MaxMemory uint64
	// MaxMemoryFraction is the share of total memory that may be used, in (0, 0.5].
	MaxMemoryFraction float64
	// MaxTime is the wall time that key derivation may take.
	MaxTime time.Duration
}

func EncryptDefaults() Limits {
	return Limits{MaxMemoryFraction: 0.125, MaxTime: 5 * time.Second}
}

func DecryptDefaults() Limits {
	return Limits{MaxMemoryFraction: 0.5, MaxTime: 300 * time.Second}
}

// Validate returns an error wrapping ErrInvalidLimits if MaxMemory is non-zero but less than MinMemory,
// MaxMemoryFraction is outside (0, 0.5], or MaxTime isn't positive.
func (l Limits) Validate() error {
	if l.MaxMemory != 0 && l.MaxMemory < MinMemory {
		return fmt.Errorf("%w: got %d bytes", ErrMemoryTooSmall, l.MaxMemory)
	}
	if err := ValidateFraction(l.MaxMemoryFraction); err != nil {
		return err
	}
	if l.MaxTime <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidTime, l.MaxTime)
	}
	return nil
}

// ValidateFraction returns ErrInvalidFraction unless frac is in (0, 0.5].
func ValidateFraction(frac float64) error {
	if !(frac > 0 && frac <= 0.5) {
		return fmt.Errorf("%w: got %v", ErrInvalidFraction, frac)
	}
	return nil
}

// SystemMemory returns TotalMemory, or 0 if it's unknown.
func SystemMemory() uint64 {
	total, ok := TotalMemory()
	if !ok {
		return 0
	}
	return total
}

// MemoryLimit applies the limits to the total memory of the machine, in bytes.
// A total of 0 means the total is unknown. Limits should pass Validate first; the result is never less than MinMemory.
func (l Limits) MemoryLimit(total uint64) uint64 {
	if total == 0 {
		if l.MaxMemory != 0 {
			total = l.MaxMemory
		} else {
			total = FallbackMemory
		}
	}
	frac := l.MaxMemoryFraction
	if ValidateFraction(frac) != nil {
		frac = 0.5
	}
	avail := uint64(frac * float64(total))
	if l.MaxMemory != 0 && avail > l.MaxMemory {
		avail = l.MaxMemory
	}
	if avail < MinMemory {
		avail = MinMemory
	}
	return avail
}

func opsLimit(opsPerSec float64, maxTime time.Duration) uint64 {
	ops := opsPerSec * maxTime.Seconds()
	switch {
	case math.IsNaN(ops) || ops < minOps:
		return minOps
	case ops >= math.MaxUint64:
		return math.MaxUint64
	}
	return uint64(ops)
}

// Pick chooses the costliest parameters that stay within memLimit bytes and maxTime, given a CPU performance from
// CPUPerf. r is always 8. When time is the tighter limit, p is 1 and N is as large as time allows. Otherwise N is as
// large as memory allows, and p soaks up the remaining time.
func Pick(memLimit uint64, opsPerSec float64, maxTime time.Duration) scryptenc.Params {
	const r = 8
	ops := opsLimit(opsPerSec, maxTime)

	var (
		logN uint8
		p    uint64 = 1
	)
	if ops < memLimit/32 {
		logN = pickLogN(ops / (r * 4))
	} else {
		logN = pickLogN(memLimit / (r * 128))
		maxRP := (ops / 4) >> logN
		if maxRP > 0x3fffffff {
			maxRP = 0x3fffffff
		}
		p = max(maxRP/r, 1)
	}

	params, err := scryptenc.NewParams(logN, r, uint32(p))
	for err != nil && logN > 1 {
		// The memory limit is beyond what this platform can address.
		logN--
		params, err = scryptenc.NewParams(logN, r, 1)
	}
	return params
}

// pickLogN returns the smallest logN where 2^logN > maxN/2.
func pickLogN(maxN uint64) uint8 {
	var logN uint8 = 1
	for ; logN < 62; logN++ {
		if uint64(1)<<logN > maxN/2 {
			break
		}
	}
	return logN
}

// Check returns ErrTooMuchMemory or ErrTooMuchTime if deriving a key with params would exceed the limits.
func Check(params scryptenc.Params, memLimit uint64, opsPerSec float64, maxTime time.Duration) error {
	hi, mem := bits.Mul64(128*uint64(params.R()), params.N())
	if hi != 0 || mem > memLimit {
		return fmt.Errorf("%w: %s needs more than %d bytes", ErrTooMuchMemory, params, memLimit)
	}
	if ops := opsLimit(opsPerSec, maxTime); params.Ops() > ops {
		return fmt.Errorf("%w: %s needs more than %s", ErrTooMuchTime, params, maxTime)
	}
	return nil
}

// Estimate returns the memory and time needed to derive a key with params, given a CPU performance from CPUPerf.
func Estimate(params scryptenc.Params, opsPerSec float64) (uint64, time.Duration) {
	if opsPerSec <= 0 {
		return params.Memory(), 0
	}
	secs := float64(params.Ops()) / opsPerSec
	if secs >= math.MaxInt64/float64(time.Second) {
		return params.Memory(), time.Duration(math.MaxInt64)
	}
	return params.Memory(), time.Duration(secs * float64(time.Second))
}
