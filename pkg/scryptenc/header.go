package scryptenc

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	bin "github.com/saylorsolutions/binmap"
)

const (
	// HeaderSize is the size of the header, including its checksum and MAC.
	HeaderSize = 96
	// TagSize is the size of each HMAC-SHA-256 tag.
	TagSize = 32
	// SaltSize is the size of the random salt stored in the header.
	SaltSize = 32
	// Overhead is the number of bytes a container adds to its plaintext.
	Overhead = HeaderSize + TagSize

	magicNumber  = "scrypt"
	version0     = 0
	prefixSize   = 48
	checksumSize = 16
	signedSize   = prefixSize + checksumSize
)

type header struct {
	magic    string
	version  uint8
	logN     uint8
	r        uint32
	p        uint32
	salt     []byte
	checksum [checksumSize]byte
	mac      [TagSize]byte
}

func newHeader(params Params) *header {
	return &header{
		magic:   magicNumber,
		version: version0,
		logN:    params.logN,
		r:       params.r,
		p:       params.p,
		salt:    make([]byte, SaltSize),
	}
}

// mapper describes the first 48 bytes of the header: everything that the checksum covers.
func (h *header) mapper() bin.Mapper {
	return bin.MapSequence(
		bin.FixedString(&h.magic, len(magicNumber)),
		bin.Byte(&h.version),
		bin.Byte(&h.logN),
		bin.Int(&h.r),
		bin.Int(&h.p),
		bin.FixedBytes(&h.salt, uint8(SaltSize)),
	)
}

func (h *header) prefix() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(prefixSize)
	if err := h.mapper().Write(&buf, binary.BigEndian); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return buf.Bytes(), nil
}

// seal computes the checksum and the header MAC.
func (h *header) seal(macKey []byte) error {
	prefix, err := h.prefix()
	if err != nil {
		return err
	}
	sum := sha256.Sum256(prefix)
	copy(h.checksum[:], sum[:checksumSize])
	copy(h.mac[:], computeMAC(macKey, prefix, h.checksum[:]))
	return nil
}

func (h *header) verifyChecksum() (bool, error) {
	prefix, err := h.prefix()
	if err != nil {
		return false, err
	}
	sum := sha256.Sum256(prefix)
	return bytes.Equal(sum[:checksumSize], h.checksum[:]), nil
}

func (h *header) verifyMAC(macKey []byte) (bool, error) {
	prefix, err := h.prefix()
	if err != nil {
		return false, err
	}
	return verifyMAC(macKey, h.mac[:], prefix, h.checksum[:]), nil
}

func (h *header) params() (Params, error) {
	return NewParams(h.logN, h.r, h.p)
}

func (h *header) appendTo(out []byte) ([]byte, error) {
	prefix, err := h.prefix()
	if err != nil {
		return nil, err
	}
	out = append(out, prefix...)
	out = append(out, h.checksum[:]...)
	return append(out, h.mac[:]...), nil
}

// parseHeader decodes the header at the start of data and returns the bytes following it.
// The magic number, version, and checksum are verified. The cost parameters are not.
func parseHeader(data []byte) (*header, []byte, error) {
	if len(data) < HeaderSize {
		return nil, nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrTooShort, len(data), HeaderSize)
	}
	h := new(header)
	if err := h.mapper().Read(bytes.NewReader(data[:prefixSize]), binary.BigEndian); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if h.magic != magicNumber {
		return nil, nil, ErrBadMagic
	}
	if h.version != version0 {
		return nil, nil, fmt.Errorf("%w `%d`", ErrUnsupportedVersion, h.version)
	}
	copy(h.checksum[:], data[prefixSize:signedSize])
	copy(h.mac[:], data[signedSize:HeaderSize])
	ok, err := h.verifyChecksum()
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrChecksumMismatch
	}
	return h, data[HeaderSize:], nil
}
