package sparse

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tilegrid/mapdata/internal/mapdataerr"
)

func TestNewWordArray_RejectsBadWidth(t *testing.T) {
	_, err := NewWordArray(3)
	require.ErrorIs(t, err, mapdataerr.ErrInvalidValue)
}

func TestWordArray_SetThenGet4Bit(t *testing.T) {
	w, err := NewWordArray(4)
	require.NoError(t, err)

	w.Set(0, 0xF)
	w.Set(1, 0x5)
	w.Set(16, 0xA)

	require.Equal(t, uint64(0xF), w.Get(0))
	require.Equal(t, uint64(0x5), w.Get(1))
	require.Equal(t, uint64(0xA), w.Get(16))
	require.Equal(t, uint64(0), w.Get(2))
}

func TestWordArray_ValueIsMasked(t *testing.T) {
	w, err := NewWordArray(4)
	require.NoError(t, err)

	w.Set(0, 0xFF)
	require.Equal(t, uint64(0xF), w.Get(0), "set masks v & valueMask")
}

func TestWordArray_GetWindowReturnsWholeLeafWord(t *testing.T) {
	w, err := NewWordArray(8)
	require.NoError(t, err)

	w.Set(0, 0x11)
	w.Set(1, 0x22)

	word := w.GetWindow(0, 8)
	require.Equal(t, uint64(0x2211), word)
}

func TestWordArray_ConcurrentWritesToDistinctSlotsOfSameWord(t *testing.T) {
	w, err := NewWordArray(8)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for slot := uint32(0); slot < 8; slot++ {
		wg.Add(1)
		go func(slot uint32) {
			defer wg.Done()
			w.Set(slot, uint64(slot+1))
		}(slot)
	}
	wg.Wait()

	for slot := uint32(0); slot < 8; slot++ {
		require.Equal(t, uint64(slot+1), w.Get(slot))
	}
}

func TestWordArray_64BitValue(t *testing.T) {
	w, err := NewWordArray(64)
	require.NoError(t, err)

	w.Set(0, ^uint64(0))
	require.Equal(t, ^uint64(0), w.Get(0))
}
