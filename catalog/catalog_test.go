package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexKind_SupportsKeyType(t *testing.T) {
	require.True(t, IndexArray.SupportsKeyType(KeyBool))
	require.True(t, IndexArray.SupportsKeyType(KeyString))
	require.True(t, IndexArray.SupportsKeyType(KeyI32))

	require.False(t, IndexRecursiveModel.SupportsKeyType(KeyBool))
	require.False(t, IndexRecursiveModel.SupportsKeyType(KeyString))
	require.True(t, IndexRecursiveModel.SupportsKeyType(KeyI32))
	require.True(t, IndexRecursiveModel.SupportsKeyType(KeyF64))
}

func TestKeyType_Suffix(t *testing.T) {
	cases := map[KeyType]string{
		KeyBool:   "b",
		KeyI8:     "i1",
		KeyI16:    "i2",
		KeyI32:    "i4",
		KeyI64:    "i8",
		KeyF32:    "f",
		KeyF64:    "d",
		KeyString: "p",
	}
	for kt, want := range cases {
		require.Equal(t, want, kt.Suffix())
	}
}

func TestIndexKind_Suffix(t *testing.T) {
	require.Equal(t, "array", IndexArray.Suffix())
	require.Equal(t, "rmi", IndexRecursiveModel.Suffix())
}
