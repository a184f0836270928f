package rv32

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryReadWrite(t *testing.T) {
	t.Run("word round-trip aligned", func(t *testing.T) {
		m := NewMemory(64)
		require.NoError(t, m.Write(8, 4, 0x00FF0FF0))
		v, err := m.Read(8, 4, false)
		require.NoError(t, err)
		require.Equal(t, uint32(0x00FF0FF0), v)
	})

	t.Run("word round-trip unaligned", func(t *testing.T) {
		m := NewMemory(64)
		require.NoError(t, m.Write(13, 4, 0xDEADBEEF))
		v, err := m.Read(13, 4, false)
		require.NoError(t, err)
		require.Equal(t, uint32(0xDEADBEEF), v)
	})

	t.Run("little-endian byte order", func(t *testing.T) {
		m := NewMemory(8)
		require.NoError(t, m.Write(0, 4, 0x00FF0FF0))
		for i, want := range []uint32{0xF0, 0x0F, 0xFF, 0x00} {
			v, err := m.Read(uint32(i), 1, false)
			require.NoError(t, err)
			require.Equal(t, want, v)
		}
	})

	t.Run("sign extension", func(t *testing.T) {
		m := NewMemory(8)
		require.NoError(t, m.Write(0, 1, 0x80))
		v, err := m.Read(0, 1, true)
		require.NoError(t, err)
		require.Equal(t, uint32(0xFFFFFF80), v, "lb of a high-bit byte is negative")
		v, err = m.Read(0, 1, false)
		require.NoError(t, err)
		require.Equal(t, uint32(0x80), v, "lbu never sign-extends")

		require.NoError(t, m.Write(2, 2, 0x8001))
		v, err = m.Read(2, 2, true)
		require.NoError(t, err)
		require.Equal(t, uint32(0xFFFF8001), v)
		v, err = m.Read(2, 2, false)
		require.NoError(t, err)
		require.Equal(t, uint32(0x8001), v)
	})
}

func TestMemoryFaults(t *testing.T) {
	t.Run("read one past the end", func(t *testing.T) {
		m := NewMemory(16)
		_, err := m.Read(16, 1, false)
		var fault *MemoryFaultError
		require.ErrorAs(t, err, &fault)
		require.Equal(t, uint32(16), fault.Addr)
		require.False(t, fault.Write)
	})

	t.Run("word crossing the end", func(t *testing.T) {
		m := NewMemory(16)
		_, err := m.Read(14, 4, false)
		require.Error(t, err)
	})

	t.Run("write fault reports kind", func(t *testing.T) {
		m := NewMemory(16)
		err := m.Write(20, 2, 0xBEEF)
		var fault *MemoryFaultError
		require.ErrorAs(t, err, &fault)
		require.True(t, fault.Write)
		require.Equal(t, uint32(2), fault.Width)
	})

	t.Run("no wraparound near the top of the address space", func(t *testing.T) {
		m := NewMemory(16)
		_, err := m.Read(0xFFFFFFFE, 4, false)
		require.Error(t, err)
	})

	t.Run("strict alignment policy", func(t *testing.T) {
		m := NewMemory(16)
		m.StrictAlign = true
		_, err := m.Read(2, 4, false)
		var fault *MemoryFaultError
		require.ErrorAs(t, err, &fault)
		require.True(t, fault.Misaligned)
		require.NoError(t, m.Write(4, 4, 1), "aligned access still fine")
	})
}

func TestMemoryRanges(t *testing.T) {
	t.Run("set and read back", func(t *testing.T) {
		m := NewMemory(64)
		require.NoError(t, m.SetRange(10, bytes.NewReader([]byte("hello riscv"))))
		out, err := io.ReadAll(m.ReadRange(10, 11))
		require.NoError(t, err)
		require.Equal(t, "hello riscv", string(out))
	})

	t.Run("set range overflowing memory", func(t *testing.T) {
		m := NewMemory(8)
		err := m.SetRange(4, bytes.NewReader(make([]byte, 8)))
		require.Error(t, err)
	})

	t.Run("read range past the end faults", func(t *testing.T) {
		m := NewMemory(8)
		_, err := io.ReadAll(m.ReadRange(4, 8))
		var fault *MemoryFaultError
		require.ErrorAs(t, err, &fault)
	})
}
