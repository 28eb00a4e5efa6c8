package passcode

import (
	"strings"
	"testing"
)

func TestRandomGenerateNumeric(t *testing.T) {
	gen := NewRandom()

	for _, length := range []int{4, 6, 10} {
		for i := 0; i < 50; i++ {
			code, err := gen.Generate(length, AlphabetNumeric)
			if err != nil {
				t.Fatalf("Generate(%d) error: %v", length, err)
			}
			if len(code) != length {
				t.Fatalf("Generate(%d) = %q, want length %d", length, code, length)
			}
			for _, c := range code {
				if c < '0' || c > '9' {
					t.Fatalf("Generate(%d) = %q, contains non-digit %q", length, code, c)
				}
			}
		}
	}
}

func TestRandomGenerateAlphanumeric(t *testing.T) {
	gen := NewRandom()

	for i := 0; i < 50; i++ {
		code, err := gen.Generate(8, AlphabetAlphanumeric)
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}
		if len(code) != 8 {
			t.Fatalf("Generate = %q, want length 8", code)
		}
		for _, c := range code {
			if !strings.ContainsRune(alphanumericChars, c) {
				t.Fatalf("Generate = %q, character %q outside alphabet", code, c)
			}
		}
	}
}

func TestRandomGenerateOutOfRange(t *testing.T) {
	gen := NewRandom()

	if _, err := gen.Generate(0, AlphabetNumeric); err == nil {
		t.Fatal("Generate(0) expected error")
	}
	if _, err := gen.Generate(11, AlphabetNumeric); err == nil {
		t.Fatal("Generate(11) expected error")
	}
	if _, err := gen.Generate(6, Alphabet("hex")); err == nil {
		t.Fatal("Generate with unknown alphabet expected error")
	}
}

func TestAlphabetIsValid(t *testing.T) {
	if !AlphabetNumeric.IsValid() || !AlphabetAlphanumeric.IsValid() {
		t.Fatal("known alphabets must be valid")
	}
	if Alphabet("base32").IsValid() {
		t.Fatal("unknown alphabet must be invalid")
	}
}
