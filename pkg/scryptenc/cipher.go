package scryptenc

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"

	"github.com/saylorsolutions/scryptenc/pkg/kdf"
)

const (
	encryptKeySize = 32
	macKeySize     = 32
	derivedKeySize = encryptKeySize + macKeySize
)

// derivedKey is the 64 bytes of scrypt output for a container.
// The first half keys AES-256-CTR, and the second half keys HMAC-SHA-256.
type derivedKey []byte

func (k derivedKey) encrypt() []byte {
	return k[:encryptKeySize]
}

func (k derivedKey) mac() []byte {
	return k[encryptKeySize:derivedKeySize]
}

func (k derivedKey) wipe() {
	kdf.Wipe(k)
}

// transform XORs src with the AES-256-CTR keystream into dst. The counter block starts at zero, so the same call
// encrypts and decrypts. This is only safe because every key is derived with a fresh random salt.
func transform(key, dst, src []byte) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	var iv [aes.BlockSize]byte
	cipher.NewCTR(block, iv[:]).XORKeyStream(dst, src)
	return nil
}

func computeMAC(key []byte, parts ...[]byte) []byte {
	mac := hmac.New(sha256.New, key)
	for _, part := range parts {
		mac.Write(part)
	}
	return mac.Sum(nil)
}

// verifyMAC compares in constant time.
func verifyMAC(key, tag []byte, parts ...[]byte) bool {
	return hmac.Equal(computeMAC(key, parts...), tag)
}
