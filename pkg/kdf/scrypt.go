package kdf

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"runtime"

	"golang.org/x/crypto/pbkdf2"
)

const (
	maxInt = int(^uint(0) >> 1)

	// MaxLogN is the largest log2(N) that can be expressed in the scrypt encrypted data format.
	MaxLogN uint8 = 63

	// cancelInterval is the number of SMix iterations between context checks. Must be a power of 2.
	cancelInterval = 1 << 10
)

var (
	ErrInvalidParams      = errors.New("invalid scrypt parameters")
	ErrInsufficientMemory = errors.New("insufficient memory for scrypt")
	ErrCanceled           = errors.New("scrypt key derivation canceled")
)

// Key derives a key of keyLen bytes from the passphrase and salt with the cost parameters N = 2^logN, r, and p.
//
// The context is checked between SMix rounds and every 1024 iterations within them.
// If it's done, then the scratch space is wiped and an error wrapping both ErrCanceled and ctx.Err() is returned.
func Key(ctx context.Context, passphrase, salt []byte, logN uint8, r, p uint32, keyLen int) ([]byte, error) {
	if err := checkParams(logN, r, p); err != nil {
		return nil, err
	}
	if keyLen <= 0 {
		return nil, fmt.Errorf("%w: key length must be positive, got %d", ErrInvalidParams, keyLen)
	}
	if size, ok := Scratch(logN, r, p); !ok {
		return nil, fmt.Errorf("%w: %d bytes of scratch space can't be addressed", ErrInsufficientMemory, size)
	}
	if err := canceled(ctx); err != nil {
		return nil, err
	}

	var (
		n  = 1 << logN
		ri = int(r)
		pi = int(p)
	)
	b := pbkdf2.Key(passphrase, salt, 1, pi*128*ri, sha256.New)
	xy := make([]uint32, 64*ri)
	v := make([]uint32, 32*n*ri)
	defer func() {
		clear(v)
		clear(xy)
		Wipe(b)
	}()

	for i := 0; i < pi; i++ {
		if err := smix(ctx, b[i*128*ri:], ri, n, v, xy); err != nil {
			return nil, err
		}
	}
	return pbkdf2.Key(passphrase, b, 1, keyLen, sha256.New), nil
}

// Scratch returns the number of bytes of working memory that Key allocates for the given parameters.
// The boolean result is false if that amount can't be addressed on this platform.
func Scratch(logN uint8, r, p uint32) (uint64, bool) {
	if logN >= MaxLogN {
		return ^uint64(0), false
	}
	hi, vSize := bits.Mul64(128*uint64(r), uint64(1)<<logN)
	if hi != 0 {
		return ^uint64(0), false
	}
	hi, bSize := bits.Mul64(128*uint64(r), uint64(p))
	if hi != 0 {
		return ^uint64(0), false
	}
	total, carry := bits.Add64(vSize, bSize, 0)
	if carry != 0 {
		return ^uint64(0), false
	}
	total, carry = bits.Add64(total, 256*uint64(r), 0)
	if carry != 0 {
		return ^uint64(0), false
	}
	return total, total <= uint64(maxInt)
}

// Ops returns the number of Salsa20/8 core invocations performed by a derivation with the given parameters.
// The result saturates rather than overflowing.
func Ops(logN uint8, r, p uint32) uint64 {
	if logN >= 62 {
		return ^uint64(0)
	}
	hi, lo := bits.Mul64(4<<logN, uint64(r)*uint64(p))
	if hi != 0 {
		return ^uint64(0)
	}
	return lo
}

// Wipe zeroes each buffer.
func Wipe(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
		runtime.KeepAlive(b)
	}
}

func checkParams(logN uint8, r, p uint32) error {
	if logN == 0 || logN > MaxLogN {
		return fmt.Errorf("%w: log2(N) must be between 1 and %d, got %d", ErrInvalidParams, MaxLogN, logN)
	}
	if r == 0 || p == 0 {
		return fmt.Errorf("%w: r and p must be positive", ErrInvalidParams)
	}
	if uint64(r)*uint64(p) >= 1<<30 {
		return fmt.Errorf("%w: r * p must be less than 2^30", ErrInvalidParams)
	}
	return nil
}

func blockCopy(dst, src []uint32, n int) {
	copy(dst, src[:n])
}

func blockXOR(dst, src []uint32, n int) {
	for i, v := range src[:n] {
		dst[i] ^= v
	}
}

// salsaXOR applies Salsa20/8 to the XOR of 16 words from tmp and in, and puts the result into both tmp and out.
func salsaXOR(tmp *[16]uint32, in, out []uint32) {
	w0 := tmp[0] ^ in[0]
	w1 := tmp[1] ^ in[1]
	w2 := tmp[2] ^ in[2]
	w3 := tmp[3] ^ in[3]
	w4 := tmp[4] ^ in[4]
	w5 := tmp[5] ^ in[5]
	w6 := tmp[6] ^ in[6]
	w7 := tmp[7] ^ in[7]
	w8 := tmp[8] ^ in[8]
	w9 := tmp[9] ^ in[9]
	w10 := tmp[10] ^ in[10]
	w11 := tmp[11] ^ in[11]
	w12 := tmp[12] ^ in[12]
	w13 := tmp[13] ^ in[13]
	w14 := tmp[14] ^ in[14]
	w15 := tmp[15] ^ in[15]

	x0, x1, x2, x3, x4, x5, x6, x7, x8 := w0, w1, w2, w3, w4, w5, w6, w7, w8
	x9, x10, x11, x12, x13, x14, x15 := w9, w10, w11, w12, w13, w14, w15

	for i := 0; i < 8; i += 2 {
		// columns
		x4 ^= bits.RotateLeft32(x0+x12, 7)
		x8 ^= bits.RotateLeft32(x4+x0, 9)
		x12 ^= bits.RotateLeft32(x8+x4, 13)
		x0 ^= bits.RotateLeft32(x12+x8, 18)

		x9 ^= bits.RotateLeft32(x5+x1, 7)
		x13 ^= bits.RotateLeft32(x9+x5, 9)
		x1 ^= bits.RotateLeft32(x13+x9, 13)
		x5 ^= bits.RotateLeft32(x1+x13, 18)

		x14 ^= bits.RotateLeft32(x10+x6, 7)
		x2 ^= bits.RotateLeft32(x14+x10, 9)
		x6 ^= bits.RotateLeft32(x2+x14, 13)
		x10 ^= bits.RotateLeft32(x6+x2, 18)

		x3 ^= bits.RotateLeft32(x15+x11, 7)
		x7 ^= bits.RotateLeft32(x3+x15, 9)
		x11 ^= bits.RotateLeft32(x7+x3, 13)
		x15 ^= bits.RotateLeft32(x11+x7, 18)

		// rows
		x1 ^= bits.RotateLeft32(x0+x3, 7)
		x2 ^= bits.RotateLeft32(x1+x0, 9)
		x3 ^= bits.RotateLeft32(x2+x1, 13)
		x0 ^= bits.RotateLeft32(x3+x2, 18)

		x6 ^= bits.RotateLeft32(x5+x4, 7)
		x7 ^= bits.RotateLeft32(x6+x5, 9)
		x4 ^= bits.RotateLeft32(x7+x6, 13)
		x5 ^= bits.RotateLeft32(x4+x7, 18)

		x11 ^= bits.RotateLeft32(x10+x9, 7)
		x8 ^= bits.RotateLeft32(x11+x10, 9)
		x9 ^= bits.RotateLeft32(x8+x11, 13)
		x10 ^= bits.RotateLeft32(x9+x8, 18)

		x12 ^= bits.RotateLeft32(x15+x14, 7)
		x13 ^= bits.RotateLeft32(x12+x15, 9)
		x14 ^= bits.RotateLeft32(x13+x12, 13)
		x15 ^= bits.RotateLeft32(x14+x13, 18)
	}
	x0 += w0
	x1 += w1
	x2 += w2
	x3 += w3
	x4 += w4
	x5 += w5
	x6 += w6
	x7 += w7
	x8 += w8
	x9 += w9
	x10 += w10
	x11 += w11
	x12 += w12
	x13 += w13
	x14 += w14
	x15 += w15

	out[0], tmp[0] = x0, x0
	out[1], tmp[1] = x1, x1
	out[2], tmp[2] = x2, x2
	out[3], tmp[3] = x3, x3
	out[4], tmp[4] = x4, x4
	out[5], tmp[5] = x5, x5
	out[6], tmp[6] = x6, x6
	out[7], tmp[7] = x7, x7
	out[8], tmp[8] = x8, x8
	out[9], tmp[9] = x9, x9
	out[10], tmp[10] = x10, x10
	out[11], tmp[11] = x11, x11
	out[12], tmp[12] = x12, x12
	out[13], tmp[13] = x13, x13
	out[14], tmp[14] = x14, x14
	out[15], tmp[15] = x15, x15
}

// blockMix writes the shuffled BlockMix output of in into out.
func blockMix(tmp *[16]uint32, in, out []uint32, r int) {
	blockCopy(tmp[:], in[(2*r-1)*16:], 16)
	for i := 0; i < 2*r; i += 2 {
		salsaXOR(tmp, in[i*16:], out[i*8:])
		salsaXOR(tmp, in[i*16+16:], out[i*8+r*16:])
	}
}

func integer(b []uint32, r int) uint64 {
	j := (2*r - 1) * 16
	return uint64(b[j]) | uint64(b[j+1])<<32
}

func smix(ctx context.Context, b []byte, r, n int, v, xy []uint32) error {
	var tmp [16]uint32
	defer clear(tmp[:])
	words := 32 * r
	x := xy
	y := xy[words:]

	j := 0
	for i := 0; i < words; i++ {
		x[i] = binary.LittleEndian.Uint32(b[j:])
		j += 4
	}
	for i := 0; i < n; i += 2 {
		if i&(cancelInterval-1) == 0 {
			if err := canceled(ctx); err != nil {
				return err
			}
		}
		blockCopy(v[i*words:], x, words)
		blockMix(&tmp, x, y, r)

		blockCopy(v[(i+1)*words:], y, words)
		blockMix(&tmp, y, x, r)
	}
	for i := 0; i < n; i += 2 {
		if i&(cancelInterval-1) == 0 {
			if err := canceled(ctx); err != nil {
				return err
			}
		}
		j := int(integer(x, r) & uint64(n-1))
		blockXOR(x, v[j*words:], words)
		blockMix(&tmp, x, y, r)

		j = int(integer(y, r) & uint64(n-1))
		blockXOR(y, v[j*words:], words)
		blockMix(&tmp, y, x, r)
	}
	j = 0
	for _, w := range x[:words] {
		binary.LittleEndian.PutUint32(b[j:], w)
		j += 4
	}
	return nil
}

func canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	return nil
}
