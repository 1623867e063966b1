package sealer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	s, err := New(key)
	require.NoError(t, err)

	plaintext := []byte("a secret payload")
	sealed, err := s.Seal(plaintext)
	require.NoError(t, err)
	require.Len(t, sealed, headerLen+len(plaintext))

	got, err := s.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	s, err := New(key)
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("payload"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xFF

	_, err = s.Open(sealed)
	require.Error(t, err)
}

func TestOpenRejectsTruncatedInput(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	s, err := New(key)
	require.NoError(t, err)

	_, err = s.Open([]byte{0x01, 0x02})
	require.Error(t, err)
}

func TestNewRejectsWrongKeySize(t *testing.T) {
	_, err := New(make([]byte, 16))
	require.Error(t, err)
}

func TestBatchRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	s, err := New(key)
	require.NoError(t, err)

	in := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	sealed, err := s.SealBatch(in)
	require.NoError(t, err)

	out, err := s.OpenBatch(sealed)
	require.NoError(t, err)
	require.Equal(t, in, out)
}
