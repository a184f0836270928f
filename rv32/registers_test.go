package rv32

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterZeroHardwired(t *testing.T) {
	var r RegisterFile
	r.Set(0, 0xFFFFFFFF)
	require.Equal(t, uint32(0), r.Get(0))
	r.Set(1, 42)
	require.Equal(t, uint32(42), r.Get(1))
}

func TestRegIndex(t *testing.T) {
	for _, tc := range []struct {
		name string
		idx  uint32
	}{
		{"zero", 0}, {"ra", 1}, {"sp", 2}, {"a0", 10}, {"a7", 17}, {"t6", 31},
		{"x0", 0}, {"x10", 10}, {"x31", 31},
	} {
		idx, ok := RegIndex(tc.name)
		require.True(t, ok, tc.name)
		require.Equal(t, tc.idx, idx, tc.name)
	}
	_, ok := RegIndex("x32")
	require.False(t, ok)
	_, ok = RegIndex("q7")
	require.False(t, ok)
}

func TestRegisterFileDump(t *testing.T) {
	var r RegisterFile
	r.Set(2, 0x02000000)
	s := r.String()
	require.Contains(t, s, "sp=0x02000000")
	require.Contains(t, s, "zero=0x00000000")
}
