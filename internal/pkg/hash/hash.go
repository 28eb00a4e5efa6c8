package hash

// Hash hashes strings and verifies plaintext against a stored hash.
type Hash interface {
	// Hash returns the hash of str, or an error if hashing fails.
	Hash(str string) ([]byte, error)
	// Verify reports whether str matches the stored hash.
	Verify(hashed, str string) bool
}
