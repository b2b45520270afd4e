package tune

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

var ErrInvalidSize = errors.New("invalid byte size")

// ParseBytes parses a byte size like "1048576", "64KiB", "1.5 GiB", or "128MB".
// Units are case-insensitive. IEC units like KiB are powers of 1024, and SI units like KB are powers of 1000.
func ParseBytes(s string) (uint64, error) {
	size, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w '%s': %v", ErrInvalidSize, s, err)
	}
	return size, nil
}

// ParseMemory is like ParseBytes, but rejects amounts less than MinMemory.
func ParseMemory(s string) (uint64, error) {
	size, err := ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if size < MinMemory {
		return 0, fmt.Errorf("%w: %s", ErrMemoryTooSmall, humanize.IBytes(size))
	}
	return size, nil
}

// FormatBytes formats a byte size with IEC units, like "1.0 MiB".
func FormatBytes(size uint64) string {
	return humanize.IBytes(size)
}
