package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashTokenIsStableHex(t *testing.T) {
	h := HashToken("abc")
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h)
	require.Equal(t, h, HashToken("abc"))
}

func TestNewTokenIsRandom(t *testing.T) {
	a, err := NewToken(32)
	require.NoError(t, err)
	b, err := NewToken(32)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.Len(t, a, 43)
}
