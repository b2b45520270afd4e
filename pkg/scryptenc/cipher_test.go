package scryptenc

import (
	"bytes"
	"crypto/aes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform(t *testing.T) {
	key := bytes.Repeat([]byte{7}, encryptKeySize)
	plaintext := []byte("How wonderful life is while you're in the world")

	ciphertext := make([]byte, len(plaintext))
	require.NoError(t, transform(key, ciphertext, plaintext))
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted := make([]byte, len(ciphertext))
	require.NoError(t, transform(key, decrypted, ciphertext))
	assert.Equal(t, plaintext, decrypted)
}

func TestTransform_ZeroCounter(t *testing.T) {
	// With an all-zero plaintext, the first keystream block is AES_k(0).
	key := bytes.Repeat([]byte{9}, encryptKeySize)
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	want := make([]byte, aes.BlockSize)
	block.Encrypt(want, make([]byte, aes.BlockSize))

	got := make([]byte, aes.BlockSize)
	require.NoError(t, transform(key, got, make([]byte, aes.BlockSize)))
	assert.Equal(t, want, got)
}

func TestTransform_BadKey(t *testing.T) {
	assert.Error(t, transform(make([]byte, 5), nil, nil))
}

func TestComputeMAC(t *testing.T) {
	// RFC 4231 test case 2.
	want, err := hex.DecodeString("5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843")
	require.NoError(t, err)

	assert.Equal(t, want, computeMAC([]byte("Jefe"), []byte("what do ya want "), []byte("for nothing?")))
	assert.True(t, verifyMAC([]byte("Jefe"), want, []byte("what do ya want for nothing?")))

	want[0] ^= 1
	assert.False(t, verifyMAC([]byte("Jefe"), want, []byte("what do ya want for nothing?")))
	assert.False(t, verifyMAC([]byte("Jefe"), want[:16], []byte("what do ya want for nothing?")))
}

func TestDerivedKey(t *testing.T) {
	dk := make(derivedKey, derivedKeySize)
	for i := range dk {
		dk[i] = byte(i + 1)
	}
	assert.Equal(t, []byte(dk[:32]), dk.encrypt())
	assert.Equal(t, []byte(dk[32:]), dk.mac())

	dk.wipe()
	assert.Equal(t, make([]byte, derivedKeySize), []byte(dk))
}
