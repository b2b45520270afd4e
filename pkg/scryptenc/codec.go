package scryptenc

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/saylorsolutions/scryptenc/pkg/kdf"
)

// Codec encrypts and decrypts the scrypt encrypted data format.
// A Codec holds no mutable state, so it's safe for concurrent use.
type Codec struct {
	maxMemory uint64
	random    io.Reader
}

type CodecOpt = func(*Codec) error

// WithMaxMemory sets the ceiling for 128*r*N and 128*r*p, in bytes.
// Parameters over the ceiling are rejected with ErrParamsTooLarge before any key derivation takes place.
// A limit of 0 disables the ceiling, which is only advisable for trusted input.
func WithMaxMemory(limit uint64) CodecOpt {
	return func(c *Codec) error {
		c.maxMemory = limit
		return nil
	}
}

// WithRandom sets the source of salts. Defaults to crypto/rand.Reader.
func WithRandom(source io.Reader) CodecOpt {
	return func(c *Codec) error {
		if source == nil {
			return errors.New("random source cannot be nil")
		}
		c.random = source
		return nil
	}
}

// NewCodec creates a Codec using the options provided as zero or more CodecOpt.
// By default, the Codec uses DefaultMaxMemory as its memory ceiling.
func NewCodec(opts ...CodecOpt) (*Codec, error) {
	c := &Codec{
		maxMemory: DefaultMaxMemory,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MaxMemory returns the Codec's memory ceiling in bytes, or 0 if there isn't one.
func (c *Codec) MaxMemory() uint64 {
	return c.maxMemory
}

func (c *Codec) rand() io.Reader {
	if c.random == nil {
		return rand.Reader
	}
	return c.random
}

// Encrypt encrypts the plaintext with a key derived from the passphrase using params.
// The returned container is always OutLen(len(plaintext)) bytes long.
func (c *Codec) Encrypt(ctx context.Context, plaintext, passphrase []byte, params Params) ([]byte, error) {
	if err := params.validate(c.maxMemory); err != nil {
		return nil, err
	}

	h := newHeader(params)
	if _, err := io.ReadFull(c.rand(), h.salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	dk, err := deriveKey(ctx, passphrase, h.salt, params)
	if err != nil {
		return nil, err
	}
	defer dk.wipe()

	if err := h.seal(dk.mac()); err != nil {
		return nil, err
	}
	out := make([]byte, 0, OutLen(len(plaintext)))
	out, err = h.appendTo(out)
	if err != nil {
		return nil, err
	}
	out = out[:HeaderSize+len(plaintext)]
	if err := transform(dk.encrypt(), out[HeaderSize:], plaintext); err != nil {
		return nil, err
	}
	return append(out, computeMAC(dk.mac(), out)...), nil
}

// Decrypt authenticates the container with a key derived from the passphrase, and returns the plaintext.
//
// The length and header are checked for format errors first, then the embedded parameters are validated against the Codec's
// memory ceiling. Only then is the key derived and both MACs verified, in that order.
// No plaintext is returned unless both MACs match.
func (c *Codec) Decrypt(ctx context.Context, ciphertext, passphrase []byte) ([]byte, error) {
	if _, err := PlaintextLen(len(ciphertext)); err != nil {
		return nil, err
	}
	h, rest, err := parseHeader(ciphertext)
	if err != nil {
		return nil, err
	}
	params, err := h.params()
	if err != nil {
		return nil, err
	}
	if err := params.validate(c.maxMemory); err != nil {
		return nil, err
	}

	dk, err := deriveKey(ctx, passphrase, h.salt, params)
	if err != nil {
		return nil, err
	}
	defer dk.wipe()

	ok, err := h.verifyMAC(dk.mac())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHeaderAuthentication
	}
	signed := ciphertext[:len(ciphertext)-TagSize]
	if !verifyMAC(dk.mac(), ciphertext[len(signed):], signed) {
		return nil, ErrPayloadAuthentication
	}

	body := rest[:len(rest)-TagSize]
	plaintext := make([]byte, len(body))
	if err := transform(dk.encrypt(), plaintext, body); err != nil {
		return nil, err
	}
	return plaintext, nil
}

func deriveKey(ctx context.Context, passphrase, salt []byte, params Params) (derivedKey, error) {
	dk, err := kdf.Key(ctx, passphrase, salt, params.logN, params.r, params.p, derivedKeySize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKDF, err)
	}
	return dk, nil
}

// OutLen returns the size of the container for a plaintext of the given length.
func OutLen(plaintextLen int) int {
	return plaintextLen + Overhead
}

// PlaintextLen returns the size of the plaintext held in a container of the given length.
func PlaintextLen(ciphertextLen int) (int, error) {
	if ciphertextLen < Overhead {
		return 0, fmt.Errorf("%w: got %d bytes, need at least %d", ErrTooShort, ciphertextLen, Overhead)
	}
	return ciphertextLen - Overhead, nil
}

var defaultCodec = &Codec{maxMemory: DefaultMaxMemory}

// Encrypt encrypts the plaintext with DefaultParams, using a fresh random salt.
func Encrypt(plaintext, passphrase []byte) ([]byte, error) {
	return defaultCodec.Encrypt(context.Background(), plaintext, passphrase, DefaultParams())
}

// EncryptWithParams encrypts the plaintext with the given cost parameters, using a fresh random salt.
// The parameters are validated against DefaultMaxMemory.
func EncryptWithParams(plaintext, passphrase []byte, logN uint8, r, p uint32) ([]byte, error) {
	params, err := NewParams(logN, r, p)
	if err != nil {
		return nil, err
	}
	return defaultCodec.Encrypt(context.Background(), plaintext, passphrase, params)
}

// Decrypt decrypts a container, refusing parameters that exceed DefaultMaxMemory.
// Use a Codec created with WithMaxMemory to decrypt containers with larger parameters.
func Decrypt(ciphertext, passphrase []byte) ([]byte, error) {
	return defaultCodec.Decrypt(context.Background(), ciphertext, passphrase)
}

// ReadParams returns the cost parameters recorded in a container's header without deriving a key.
// The magic number, version, and checksum are verified, but the header MAC is not, since that needs the passphrase.
func ReadParams(ciphertext []byte) (Params, error) {
	h, _, err := parseHeader(ciphertext)
	if err != nil {
		return Params{}, err
	}
	return h.params()
}
