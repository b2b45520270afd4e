/*
Package scryptenc implements the scrypt encrypted data format, version 0, as produced and consumed by the Tarsnap scrypt
utility.

# How it works:

A random 32-byte salt is generated, and scrypt is used with the passphrase, salt, and cost parameters to derive 64 bytes
of key material. The first 32 bytes are the AES-256-CTR key, and the last 32 bytes are the HMAC-SHA-256 key.

The output is a self-describing container:

	offset  size  field
	     0     6  magic "scrypt"
	     6     1  version (0)
	     7     1  log2(N)
	     8     4  r, big-endian
	    12     4  p, big-endian
	    16    32  salt
	    48    16  first 16 bytes of SHA-256 over bytes 0..48
	    64    32  HMAC-SHA-256 over bytes 0..64
	    96     L  AES-256-CTR ciphertext, IV of all zeroes
	  96+L    32  HMAC-SHA-256 over bytes 0..96+L

The container is always 128 bytes longer than the plaintext.

Decryption checks the header's magic, version, and checksum before doing anything expensive, validates the embedded
cost parameters against the Codec's memory ceiling, derives the key, and then verifies both the header MAC and the
payload MAC. Plaintext is only produced after both MACs have been verified.

# General guidelines:
  - Use Encrypt with the default parameters unless you have a reason not to. EncryptWithParams is available to tune the
    cost for a given machine.
  - Decrypting data from an untrusted source runs scrypt with parameters that an attacker chose. The default Codec
    refuses parameters needing more than DefaultMaxMemory of scratch space; use NewCodec with WithMaxMemory to change
    that, and pass a context with a deadline to bound the time spent.
  - ReadParams can be used to inspect the cost parameters of a container without knowing the passphrase.
  - Errors can be classified with errors.Is against ErrFormat, ErrParams, ErrKDF, and ErrAuthentication.
*/
package scryptenc
