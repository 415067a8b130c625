// Package pid implements the v3 PID codec: a 128-bit random value encoded
// in a 48-symbol alphabet that omits ambiguous characters and vowels, fixed
// at 23 digits.
package pid

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// alphabet has 48 symbols; ambiguous characters (0, O, 1, l, I, ...) and
// vowels are omitted so generated ids read unambiguously aloud and cannot
// spell words by accident.
const alphabet = "bcdfghjkmnpqrstvwxyzBCDFGHJKLMNPQRSTVWXYZ3456789"

// digits is the fixed encoded length: 48^23 comfortably exceeds 2^128, so
// every 128-bit value encodes into exactly 23 symbols with leading-zero
// padding.
const digits = 23

var base = big.NewInt(int64(len(alphabet)))

// New generates a fresh v3 PID: a random (version 4) UUID's 128 bits,
// encoded with Encode.
func New() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate pid: %w", err)
	}
	return Encode(new(big.Int).SetBytes(u[:])), nil
}

// Encode renders a 128-bit value as a 23-digit string in the v3 alphabet.
// Encoding repeats divmod(value, 48), collecting remainders least-
// significant first, then reverses to produce a big-endian string.
func Encode(value *big.Int) string {
	v := new(big.Int).Set(value)
	out := make([]byte, digits)
	mod := new(big.Int)
	for i := digits - 1; i >= 0; i-- {
		v.DivMod(v, base, mod)
		out[i] = alphabet[mod.Int64()]
	}
	return string(out)
}

// Decode is the inverse of Encode. It returns an error if s is not exactly
// 23 symbols drawn from the v3 alphabet.
func Decode(s string) (*big.Int, error) {
	if len(s) != digits {
		return nil, fmt.Errorf("pid: expected %d symbols, got %d", digits, len(s))
	}
	value := new(big.Int)
	for _, r := range s {
		idx := indexOf(byte(r))
		if idx < 0 {
			return nil, fmt.Errorf("pid: invalid symbol %q", r)
		}
		value.Mul(value, base)
		value.Add(value, big.NewInt(int64(idx)))
	}
	return value, nil
}

func indexOf(b byte) int {
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == b {
			return i
		}
	}
	return -1
}
