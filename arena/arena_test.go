package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_RejectsBadOptions(t *testing.T) {
	_, err := New(Options{InitialPages: 0})
	require.Error(t, err)

	_, err = New(Options{InitialPages: 4, MaxPages: 2})
	require.Error(t, err)
}

func TestAlloc_BumpAndAlign(t *testing.T) {
	a, err := New(Options{InitialPages: 1})
	require.NoError(t, err)

	p1, err := a.Alloc(3, 8)
	require.NoError(t, err)
	require.Equal(t, uint32(0), p1)

	p2, err := a.Alloc(1, 8)
	require.NoError(t, err)
	require.Equal(t, uint32(8), p2, "second allocation should round up to the 8-byte alignment")

	require.Equal(t, uint32(9), a.HeapPointer())
}

func TestAlloc_GrowsWithinMax(t *testing.T) {
	a, err := New(Options{InitialPages: 1, MaxPages: 2})
	require.NoError(t, err)

	_, err = a.Alloc(PageSize+1, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(2*PageSize), a.Size())
}

func TestAlloc_FailsPastMax(t *testing.T) {
	a, err := New(Options{InitialPages: 1, MaxPages: 1})
	require.NoError(t, err)

	_, err = a.Alloc(PageSize+1, 1)
	require.Error(t, err)
}

func TestReadWrite_RoundTrip(t *testing.T) {
	a, err := New(Options{InitialPages: 1})
	require.NoError(t, err)

	require.NoError(t, a.WriteU32(16, 0xdeadbeef))
	v, err := a.ReadU32(16)
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), v)

	require.NoError(t, a.WriteU64(32, 0x0102030405060708))
	v64, err := a.ReadU64(32)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), v64)

	require.NoError(t, a.Write(64, []byte("hello")))
	b, err := a.Read(64, 5)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), b)
}

func TestReadWrite_OutOfBounds(t *testing.T) {
	a, err := New(Options{InitialPages: 1})
	require.NoError(t, err)

	_, err = a.ReadU32(PageSize - 2)
	require.Error(t, err)

	err = a.Write(PageSize-1, []byte("ab"))
	require.Error(t, err)
}

func TestGuardPagesReservedNotCommitted(t *testing.T) {
	a, err := New(Options{InitialPages: 1, GuardPages: true})
	require.NoError(t, err)

	require.Equal(t, uint32(PageSize), a.Size(), "guard pages must not count toward committed size")
	require.GreaterOrEqual(t, cap(a.buf), int(PageSize+guardPages*PageSize))
}
