package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDivModConservesTotal(t *testing.T) {
	share, remainder := New(100).DivMod(3)
	require.True(t, share.Equal(New(33)))
	require.True(t, remainder.Equal(New(1)))
	require.True(t, share.MulInt(3).Add(remainder).Equal(New(100)))
}

func TestDivModEvenSplit(t *testing.T) {
	share, remainder := New(90).DivMod(3)
	require.True(t, share.Equal(New(30)))
	require.True(t, remainder.IsZero())
}

func TestJSONRoundTrip(t *testing.T) {
	a, err := Parse("12.50")
	require.NoError(t, err)
	data, err := a.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `"12.5"`, string(data))

	var b Amount
	require.NoError(t, b.UnmarshalJSON(data))
	require.True(t, a.Equal(b))
}

func TestScanAcceptsDriverTypes(t *testing.T) {
	var a Amount
	require.NoError(t, a.Scan("42.00"))
	require.True(t, a.Equal(New(42)))

	var b Amount
	require.NoError(t, b.Scan([]byte("7")))
	require.True(t, b.Equal(New(7)))

	var c Amount
	require.NoError(t, c.Scan(nil))
	require.True(t, c.IsZero())
}
