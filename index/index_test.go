package index

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	params, err := NewParametersFromLiteral(DefaultParameters())
	require.NoError(t, err)

	kgen := NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPair()
	rlk := kgen.GenRelinearizationKey(sk)

	eng, err := NewFullEngine(params, sk, pk, rlk, nil)
	require.NoError(t, err)
	return eng
}

func TestEncryptDecryptInt(t *testing.T) {
	eng := newTestEngine(t)

	for _, v := range []uint64{0, 1, 42, 1032192} {
		ct, err := eng.EncryptInt(v)
		require.NoError(t, err)

		got, err := eng.DecryptInt(ct)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestEncryptDecryptString(t *testing.T) {
	eng := newTestEngine(t)

	cts, err := eng.EncryptString("hello")
	require.NoError(t, err)
	require.Len(t, cts, 5)

	got, err := eng.DecryptString(cts)
	require.NoError(t, err)
	require.Equal(t, "hello", got)
}

func TestCompareEncryptedEquality(t *testing.T) {
	eng := newTestEngine(t)

	ct, err := eng.EncryptInt(42)
	require.NoError(t, err)

	match, err := eng.CompareEncrypted(ct, 42)
	require.NoError(t, err)
	require.True(t, match)

	noMatch, err := eng.CompareEncrypted(ct, 43)
	require.NoError(t, err)
	require.False(t, noMatch)
}

func TestCompareLessAndGreaterThan(t *testing.T) {
	eng := newTestEngine(t)
	const bits = 8

	encBits, err := eng.EncryptForRangeQuery(20, bits)
	require.NoError(t, err)

	lt, err := eng.CompareLessThan(encBits, 30, bits)
	require.NoError(t, err)
	require.True(t, lt)

	lt, err = eng.CompareLessThan(encBits, 10, bits)
	require.NoError(t, err)
	require.False(t, lt)

	gt, err := eng.CompareGreaterThan(encBits, 10, bits)
	require.NoError(t, err)
	require.True(t, gt)

	gt, err = eng.CompareGreaterThan(encBits, 30, bits)
	require.NoError(t, err)
	require.False(t, gt)
}

func TestCompareRange(t *testing.T) {
	eng := newTestEngine(t)
	const bits = 8

	encBits, err := eng.EncryptForRangeQuery(20, bits)
	require.NoError(t, err)

	lo, hi := uint64(15), uint64(25)
	inRange, err := eng.CompareRange(encBits, &lo, &hi, bits)
	require.NoError(t, err)
	require.True(t, inRange)

	lo2 := uint64(21)
	outOfRange, err := eng.CompareRange(encBits, &lo2, nil, bits)
	require.NoError(t, err)
	require.False(t, outOfRange)

	// Both bounds nil always matches.
	always, err := eng.CompareRange(encBits, nil, nil, bits)
	require.NoError(t, err)
	require.True(t, always)
}

func TestEncryptForRangeQueryRejectsOutOfRange(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.EncryptForRangeQuery(300, 8)
	require.Error(t, err)
}

func TestEncryptOnlyModeRejectsDecrypt(t *testing.T) {
	params, err := NewParametersFromLiteral(DefaultParameters())
	require.NoError(t, err)
	kgen := NewKeyGenerator(params)
	_, pk := kgen.GenKeyPair()

	eng, err := NewEncryptOnlyEngine(params, pk)
	require.NoError(t, err)

	ct, err := eng.EncryptInt(7)
	require.NoError(t, err)

	_, err = eng.DecryptInt(ct)
	require.Error(t, err)
}
