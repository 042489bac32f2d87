package sparse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitSet_UnsetReadsZero(t *testing.T) {
	b := NewBitSet()
	require.Equal(t, uint64(0), b.Get(12345))
	require.False(t, b.Contains(12345))
}

func TestBitSet_SetThenGet(t *testing.T) {
	b := NewBitSet()
	b.Set(70000, 1)
	require.Equal(t, uint64(1), b.Get(70000))
	require.True(t, b.Contains(70000))
}

func TestBitSet_SetZeroClears(t *testing.T) {
	b := NewBitSet()
	b.Set(5, 1)
	b.Set(5, 0)
	require.Equal(t, uint64(0), b.Get(5))
}

func TestBitSet_SparseGrowth(t *testing.T) {
	b := NewBitSet()
	b.Set(0, 1)
	b.Set(1<<30, 1)

	require.True(t, b.Contains(0))
	require.True(t, b.Contains(1<<30))
	require.False(t, b.Contains(1))
}

func TestBitSet_Capacity(t *testing.T) {
	require.Equal(t, 31, NewBitSet().Capacity())
}
