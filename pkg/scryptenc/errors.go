package scryptenc

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is returned when the input is not a well-formed scrypt encrypted data container.
	ErrFormat             = errors.New("invalid scrypt encrypted data")
	ErrTooShort           = fmt.Errorf("%w: data is too short", ErrFormat)
	ErrBadMagic           = fmt.Errorf("%w: invalid magic number", ErrFormat)
	ErrUnsupportedVersion = fmt.Errorf("%w: unknown version number", ErrFormat)
	ErrChecksumMismatch   = fmt.Errorf("%w: header checksum mismatch", ErrFormat)

	// ErrParams is returned when the scrypt cost parameters are illegal, or would use too many resources.
	ErrParams         = errors.New("invalid scrypt parameters")
	ErrInvalidLogN    = fmt.Errorf("%w: log2(N) must be between 1 and 63", ErrParams)
	ErrInvalidR       = fmt.Errorf("%w: r must be at least 1", ErrParams)
	ErrInvalidP       = fmt.Errorf("%w: p must be at least 1", ErrParams)
	ErrParamsTooLarge = fmt.Errorf("%w: parameters are too large", ErrParams)

	// ErrKDF is returned when key derivation could not complete.
	// The underlying cause is also wrapped, see kdf.ErrInsufficientMemory and kdf.ErrCanceled.
	ErrKDF = errors.New("failed to derive key")

	// ErrAuthentication is returned when a MAC doesn't match.
	// A wrong passphrase, corruption, and tampering are indistinguishable from each other.
	ErrAuthentication        = errors.New("authentication failed")
	ErrHeaderAuthentication  = fmt.Errorf("%w: invalid header MAC", ErrAuthentication)
	ErrPayloadAuthentication = fmt.Errorf("%w: invalid MAC", ErrAuthentication)
)
