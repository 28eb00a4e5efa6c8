// Package passcode generates cryptographically random one-time passcodes.
//
// Unlike TOTP, these codes are not derived from a shared secret: each code is
// drawn from crypto/rand, persisted by the caller, and valid until consumed
// or expired.
package passcode
