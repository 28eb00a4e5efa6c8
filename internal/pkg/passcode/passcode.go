package passcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Alphabet selects the character set a generated code is drawn from.
type Alphabet string

const (
	// AlphabetNumeric produces digit-only codes, zero-padded to full length.
	AlphabetNumeric Alphabet = "numeric"
	// AlphabetAlphanumeric produces codes over lowercase letters and digits.
	AlphabetAlphanumeric Alphabet = "alphanumeric"
)

// IsValid reports whether the alphabet is a known value.
func (a Alphabet) IsValid() bool {
	return a == AlphabetNumeric || a == AlphabetAlphanumeric
}

// alphanumericChars mirrors lowercase ASCII letters plus digits.
const alphanumericChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// MinLength and MaxLength bound the code lengths this generator accepts.
const (
	MinLength = 1
	MaxLength = 10
)

// Generator defines the contract for passcode generation.
type Generator interface {
	// Generate returns a code of the given length over the given alphabet,
	// or an error if the inputs are out of range or the random source fails.
	Generate(length int, alphabet Alphabet) (string, error)
}

// Random generates passcodes using crypto/rand.
type Random struct{}

// NewRandom returns a crypto/rand backed passcode generator.
func NewRandom() *Random {
	return &Random{}
}

// Generate returns a random code of the requested length.
//
// Numeric codes are produced as a uniform integer in [0, 10^length) and
// zero-padded, so leading zeros are preserved. Alphanumeric codes are built
// from independent uniform draws over lowercase letters and digits.
func (r *Random) Generate(length int, alphabet Alphabet) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", fmt.Errorf("passcode: length %d out of range [%d,%d]", length, MinLength, MaxLength)
	}

	switch alphabet {
	case AlphabetNumeric:
		return r.numeric(length)
	case AlphabetAlphanumeric:
		return r.alphanumeric(length)
	default:
		return "", fmt.Errorf("passcode: unknown alphabet %q", alphabet)
	}
}

func (r *Random) numeric(length int) (string, error) {
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	num, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", length, num), nil
}

func (r *Random) alphanumeric(length int) (string, error) {
	var sb strings.Builder
	sb.Grow(length)

	max := big.NewInt(int64(len(alphanumericChars)))
	for i := 0; i < length; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(alphanumericChars[idx.Int64()])
	}

	return sb.String(), nil
}
