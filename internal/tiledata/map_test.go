package tiledata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tilegrid/mapdata/internal/coord"
	"github.com/tilegrid/mapdata/internal/sparse"
)

func TestMap_EmptyReadsZero(t *testing.T) {
	m := New(sparse.NewBitSet(), coord.ContiguousPreset(2))

	set, err := m.IsBitSet(600, 100, 0, 0)
	require.NoError(t, err)
	require.False(t, set)

	all, err := m.GetAllBits(600, 100, 0)
	require.NoError(t, err)
	require.Equal(t, uint8(0), all)
}

func TestMap_SingleTileSet(t *testing.T) {
	m := New(sparse.NewBitSet(), coord.ContiguousPreset(2))

	require.NoError(t, m.SetBit(600, 100, 0, 0))

	all0, err := m.GetAllBits(600, 100, 0)
	require.NoError(t, err)
	require.Equal(t, uint8(1), all0)

	set1, err := m.IsBitSet(600, 100, 0, 1)
	require.NoError(t, err)
	require.False(t, set1)
}

func TestMap_SetAllBitsThenClear(t *testing.T) {
	m := New(sparse.NewBitSet(), coord.ContiguousPreset(2))

	require.NoError(t, m.SetAllBits(600, 100, 0, 0b11))
	all, err := m.GetAllBits(600, 100, 0)
	require.NoError(t, err)
	require.Equal(t, uint8(0b11), all)

	require.NoError(t, m.ClearBit(600, 100, 0, 0))
	all, err = m.GetAllBits(600, 100, 0)
	require.NoError(t, err)
	require.Equal(t, uint8(0b10), all)
}

func TestMap_WordArrayGetAllBitsUsesSingleRead(t *testing.T) {
	words, err := sparse.NewWordArray(1)
	require.NoError(t, err)
	m := New(words, coord.ContiguousPreset(2))

	require.NoError(t, m.SetAllBits(600, 100, 0, 0b01))
	all, err := m.GetAllBits(600, 100, 0)
	require.NoError(t, err)
	require.Equal(t, uint8(0b01), all)
}
