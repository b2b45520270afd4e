/*
Package kdf implements the scrypt key derivation function as defined in RFC 7914.

The output is bit-for-bit identical to golang.org/x/crypto/scrypt, but this implementation adds two things that the
scrypt encrypted data format needs from its KDF:
  - Cooperative cancellation. The context passed to Key is polled while the memory-hard mixing loops run, so a caller
    can bound the time spent deriving a key from attacker-controlled parameters.
  - Scratch hygiene. The working set (the V array, the XY mixing buffer, and the PBKDF2 expansion) transiently holds
    passphrase-derived material, and is zeroed on every return path, including cancellation.

# General guidelines:
  - Validate parameters before calling Key. Key rejects illegal values, but it can't know how much memory the caller is
    willing to spend, see Scratch.
  - Call Wipe on derived keys once they are no longer needed.
*/
package kdf
