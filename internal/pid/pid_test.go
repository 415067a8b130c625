package pid

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(47),
		big.NewInt(48),
		new(big.Int).Lsh(big.NewInt(1), 127),
	}
	maxUint128 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	values = append(values, maxUint128)

	for _, v := range values {
		encoded := Encode(v)
		assert.Len(t, encoded, digits)
		for _, r := range encoded {
			assert.Contains(t, alphabet, string(r))
		}

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, 0, v.Cmp(decoded), "round trip mismatch for %s", v)
	}
}

func TestNew_ProducesValidPID(t *testing.T) {
	id, err := New()
	require.NoError(t, err)
	assert.Len(t, id, digits)

	_, err = Decode(id)
	require.NoError(t, err)
}

func TestDecode_RejectsWrongLength(t *testing.T) {
	_, err := Decode("short")
	assert.Error(t, err)
}

func TestDecode_RejectsUnknownSymbol(t *testing.T) {
	invalid := "0000000000000000000000a" // "0" is not in the alphabet
	_, err := Decode(invalid[:digits])
	assert.Error(t, err)
}

func TestAlphabet_Has48UniqueSymbols(t *testing.T) {
	seen := map[rune]bool{}
	for _, r := range alphabet {
		assert.False(t, seen[r], "duplicate symbol %q", r)
		seen[r] = true
	}
	assert.Len(t, alphabet, 48)
}
