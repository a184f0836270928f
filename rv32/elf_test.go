package rv32

import (
	"bytes"
	"context"
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildELF assembles a minimal ELF32 RISC-V executable image: one
// PT_LOAD segment at vaddr holding code, entry at vaddr, memsz padded
// past the file contents to cover a bss tail.
func buildELF(t *testing.T, class elf.Class, machine elf.Machine, typ elf.Type, vaddr uint32, code []uint32, bss uint32) *elf.File {
	t.Helper()

	var codeBuf bytes.Buffer
	for _, w := range code {
		require.NoError(t, binary.Write(&codeBuf, binary.LittleEndian, w))
	}

	const ehSize, phSize = 52, 32
	var buf bytes.Buffer
	buf.Write([]byte{0x7F, 'E', 'L', 'F', byte(class), byte(elf.ELFDATA2LSB), 1, 0})
	buf.Write(make([]byte, 8))
	eh := struct {
		Type, Machine                      uint16
		Version, Entry, Phoff, Shoff, Flags uint32
		Ehsize, Phentsize, Phnum           uint16
		Shentsize, Shnum, Shstrndx         uint16
	}{
		Type: uint16(typ), Machine: uint16(machine), Version: 1,
		Entry: vaddr, Phoff: ehSize,
		Ehsize: ehSize, Phentsize: phSize, Phnum: 1,
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, eh))
	ph := struct {
		Type, Off, Vaddr, Paddr, Filesz, Memsz, Flags, Align uint32
	}{
		Type: uint32(elf.PT_LOAD), Off: ehSize + phSize, Vaddr: vaddr,
		Filesz: uint32(codeBuf.Len()), Memsz: uint32(codeBuf.Len()) + bss,
		Flags: uint32(elf.PF_R | elf.PF_X), Align: 4,
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, ph))
	buf.Write(codeBuf.Bytes())

	f, err := elf.NewFile(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	return f
}

func rv32ELF(t *testing.T, vaddr uint32, code []uint32, bss uint32) *elf.File {
	return buildELF(t, elf.ELFCLASS32, elf.EM_RISCV, elf.ET_EXEC, vaddr, code, bss)
}

func TestLoadELF(t *testing.T) {
	code := []uint32{
		encodeI(9, 0, 0, 10, 0x13),  // addi a0, zero, 9
		encodeI(93, 0, 0, 17, 0x13), // addi a7, zero, 93
		0x00000073,                  // ecall
	}
	f := rv32ELF(t, 0x1000, code, 16)

	mem := NewMemory(1 << 16)
	entry, err := LoadELF(f, mem)
	require.NoError(t, err)
	require.Equal(t, uint32(0x1000), entry)

	w, err := mem.Read(0x1000, 4, false)
	require.NoError(t, err)
	require.Equal(t, code[0], w)

	// bss tail is zero-filled
	z, err := mem.Read(0x1000+uint32(4*len(code)), 4, false)
	require.NoError(t, err)
	require.Equal(t, uint32(0), z)

	m := NewMachine(mem, nil, nil)
	m.PC = entry
	require.NoError(t, m.Run(context.Background()))
	require.Equal(t, StatusHalted, m.Status)
	require.Equal(t, uint8(9), m.ExitCode)
}

func TestLoadELFRejects(t *testing.T) {
	code := []uint32{0x00000073}

	t.Run("wrong machine", func(t *testing.T) {
		f := buildELF(t, elf.ELFCLASS32, elf.EM_386, elf.ET_EXEC, 0x1000, code, 0)
		_, err := LoadELF(f, NewMemory(1<<16))
		require.ErrorContains(t, err, "not RISC-V")
	})

	t.Run("not an executable", func(t *testing.T) {
		f := buildELF(t, elf.ELFCLASS32, elf.EM_RISCV, elf.ET_DYN, 0x1000, code, 0)
		_, err := LoadELF(f, NewMemory(1<<16))
		require.ErrorContains(t, err, "not a static executable")
	})

	t.Run("segment does not fit", func(t *testing.T) {
		f := rv32ELF(t, 0x1000, code, 0)
		_, err := LoadELF(f, NewMemory(0x1000))
		require.ErrorContains(t, err, "does not fit")
	})
}
