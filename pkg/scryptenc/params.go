package scryptenc

import (
	"fmt"
	"math/bits"

	"github.com/saylorsolutions/scryptenc/pkg/kdf"
)

const (
	DefaultLogN uint8  = 17
	DefaultR    uint32 = 8
	DefaultP    uint32 = 1

	// DefaultMaxMemory is the default ceiling for 128*r*N and 128*r*p, in bytes.
	DefaultMaxMemory uint64 = 1 << 30
)

// Params are the scrypt cost parameters of a container. The CPU/memory cost is N = 2^LogN.
// A Params value obtained from NewParams, ValidateParams, DefaultParams, or ReadParams is always legal.
type Params struct {
	logN uint8
	r    uint32
	p    uint32
}

// DefaultParams returns the parameters used by Encrypt: log2(N) = 17, r = 8, p = 1.
func DefaultParams() Params {
	return Params{logN: DefaultLogN, r: DefaultR, p: DefaultP}
}

// NewParams checks that the parameters are legal and addressable on this platform, without applying a memory ceiling.
func NewParams(logN uint8, r, p uint32) (Params, error) {
	params := Params{logN: logN, r: r, p: p}
	if err := params.validate(0); err != nil {
		return Params{}, err
	}
	return params, nil
}

// ValidateParams is like NewParams, but also returns ErrParamsTooLarge if either 128*r*N or 128*r*p exceeds maxMemory.
// A maxMemory of 0 disables the ceiling.
func ValidateParams(logN uint8, r, p uint32, maxMemory uint64) (Params, error) {
	params := Params{logN: logN, r: r, p: p}
	if err := params.validate(maxMemory); err != nil {
		return Params{}, err
	}
	return params, nil
}

func (p Params) validate(maxMemory uint64) error {
	if p.logN == 0 || p.logN > kdf.MaxLogN {
		return fmt.Errorf("%w, got %d", ErrInvalidLogN, p.logN)
	}
	if p.r == 0 {
		return ErrInvalidR
	}
	if p.p == 0 {
		return ErrInvalidP
	}
	if uint64(p.r)*uint64(p.p) >= 1<<30 {
		return fmt.Errorf("%w: r * p must be less than 2^30", ErrParamsTooLarge)
	}
	if _, ok := kdf.Scratch(p.logN, p.r, p.p); !ok {
		return fmt.Errorf("%w: scratch space can't be addressed on this platform", ErrParamsTooLarge)
	}
	if maxMemory == 0 {
		return nil
	}
	hi, rn := bits.Mul64(128*uint64(p.r), p.N())
	if hi != 0 || rn > maxMemory {
		return fmt.Errorf("%w: 128 * r * N exceeds the %d byte limit", ErrParamsTooLarge, maxMemory)
	}
	if rp := 128 * uint64(p.r) * uint64(p.p); rp > maxMemory {
		return fmt.Errorf("%w: 128 * r * p exceeds the %d byte limit", ErrParamsTooLarge, maxMemory)
	}
	return nil
}

// LogN returns log2 of N.
func (p Params) LogN() uint8 {
	return p.logN
}

// N returns the CPU/memory cost parameter.
func (p Params) N() uint64 {
	return 1 << p.logN
}

// R returns the block size parameter.
func (p Params) R() uint32 {
	return p.r
}

// P returns the parallelization parameter.
func (p Params) P() uint32 {
	return p.p
}

// Memory returns the number of bytes of scratch space needed to derive a key with these parameters.
func (p Params) Memory() uint64 {
	size, _ := kdf.Scratch(p.logN, p.r, p.p)
	return size
}

// Ops returns the number of Salsa20/8 core operations needed to derive a key with these parameters.
func (p Params) Ops() uint64 {
	return kdf.Ops(p.logN, p.r, p.p)
}

func (p Params) String() string {
	return fmt.Sprintf("N = %d; r = %d; p = %d;", p.N(), p.r, p.p)
}
