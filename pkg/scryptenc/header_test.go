package scryptenc

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader(t *testing.T, macKey []byte) *header {
	t.Helper()
	params, err := NewParams(10, 8, 1)
	require.NoError(t, err)
	h := newHeader(params)
	for i := range h.salt {
		h.salt[i] = byte(i)
	}
	require.NoError(t, h.seal(macKey))
	return h
}

func TestHeader_Layout(t *testing.T) {
	macKey := bytes.Repeat([]byte{0x42}, macKeySize)
	h := testHeader(t, macKey)
	data, err := h.appendTo(nil)
	require.NoError(t, err)
	require.Len(t, data, HeaderSize)

	assert.Equal(t, []byte("scrypt"), data[:6])
	assert.Equal(t, byte(0), data[6], "Version")
	assert.Equal(t, byte(10), data[7], "log2(N)")
	assert.Equal(t, uint32(8), binary.BigEndian.Uint32(data[8:12]), "r")
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(data[12:16]), "p")
	assert.Equal(t, h.salt, data[16:48])

	sum := sha256.Sum256(data[:48])
	assert.Equal(t, sum[:16], data[48:64])
	assert.Equal(t, computeMAC(macKey, data[:64]), data[64:96])
}

func TestParseHeader(t *testing.T) {
	macKey := bytes.Repeat([]byte{0x42}, macKeySize)
	h := testHeader(t, macKey)
	data, err := h.appendTo(nil)
	require.NoError(t, err)
	data = append(data, "trailing"...)

	parsed, rest, err := parseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
	assert.Len(t, parsed.salt, SaltSize)
	assert.Equal(t, magicNumber, parsed.magic)
	assert.Equal(t, []byte("trailing"), rest)

	ok, err := parsed.verifyMAC(macKey)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = parsed.verifyMAC(bytes.Repeat([]byte{0x43}, macKeySize))
	require.NoError(t, err)
	assert.False(t, ok)

	params, err := parsed.params()
	require.NoError(t, err)
	assert.Equal(t, "N = 1024; r = 8; p = 1;", params.String())
}

func TestParseHeader_Errors(t *testing.T) {
	h := testHeader(t, make([]byte, macKeySize))
	valid, err := h.appendTo(nil)
	require.NoError(t, err)

	corrupt := func(i int, b byte) []byte {
		data := bytes.Clone(valid)
		data[i] = b
		return data
	}

	tests := map[string]struct {
		data    []byte
		wantErr error
	}{
		"empty":             {nil, ErrTooShort},
		"truncated":         {valid[:HeaderSize-1], ErrTooShort},
		"bad magic":         {corrupt(0, 'S'), ErrBadMagic},
		"zeroed magic byte": {corrupt(5, 0), ErrBadMagic},
		"unknown version":   {corrupt(6, 1), ErrUnsupportedVersion},
		"modified logN":     {corrupt(7, 11), ErrChecksumMismatch},
		"modified salt":     {corrupt(20, 0xff), ErrChecksumMismatch},
		"modified checksum": {corrupt(50, valid[50]^1), ErrChecksumMismatch},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := parseHeader(tc.data)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}

	_, _, err = parseHeader(corrupt(80, valid[80]^1))
	assert.NoError(t, err, "The header MAC isn't checked while parsing")
}
