package rv32

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Memory is the flat little-endian byte store backing the simulated
// address space. Addresses run from 0 to Size()-1; any access that
// crosses the upper bound is a MemoryFaultError, never a wrap.
type Memory struct {
	data []byte

	// StrictAlign makes halfword/word accesses fault unless naturally
	// aligned. The base ISA permits unaligned access, so this is off
	// unless the profile under test requires otherwise.
	StrictAlign bool
}

// MemoryFaultError reports an access outside the simulated address
// space, or a misaligned access under the strict alignment policy.
type MemoryFaultError struct {
	Addr       uint32
	Width      uint32
	Write      bool
	Misaligned bool
}

func (e *MemoryFaultError) Error() string {
	kind := "read"
	if e.Write {
		kind = "write"
	}
	if e.Misaligned {
		return fmt.Sprintf("misaligned %d-byte %s at 0x%08x", e.Width, kind, e.Addr)
	}
	return fmt.Sprintf("out-of-range %d-byte %s at 0x%08x", e.Width, kind, e.Addr)
}

func NewMemory(size uint32) *Memory {
	return &Memory{data: make([]byte, size)}
}

func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

func (m *Memory) check(addr, width uint32, write bool) error {
	// addr+width may wrap around uint32; compare in uint64 space.
	if uint64(addr)+uint64(width) > uint64(len(m.data)) {
		return &MemoryFaultError{Addr: addr, Width: width, Write: write}
	}
	if m.StrictAlign && addr%width != 0 {
		return &MemoryFaultError{Addr: addr, Width: width, Write: write, Misaligned: true}
	}
	return nil
}

// Read returns width (1, 2 or 4) bytes at addr assembled little-endian.
// With signed set the value is sign-extended to 32 bits, otherwise
// zero-extended.
func (m *Memory) Read(addr, width uint32, signed bool) (uint32, error) {
	if err := m.check(addr, width, false); err != nil {
		return 0, err
	}
	var v uint32
	switch width {
	case 1:
		v = uint32(m.data[addr])
		if signed {
			v = uint32(int32(int8(v)))
		}
	case 2:
		v = uint32(binary.LittleEndian.Uint16(m.data[addr:]))
		if signed {
			v = uint32(int32(int16(v)))
		}
	case 4:
		v = binary.LittleEndian.Uint32(m.data[addr:])
	default:
		panic(fmt.Errorf("bad memory read width: %d", width))
	}
	return v, nil
}

// Write stores the low width bytes of value at addr, little-endian.
func (m *Memory) Write(addr, width, value uint32) error {
	if err := m.check(addr, width, true); err != nil {
		return err
	}
	switch width {
	case 1:
		m.data[addr] = byte(value)
	case 2:
		binary.LittleEndian.PutUint16(m.data[addr:], uint16(value))
	case 4:
		binary.LittleEndian.PutUint32(m.data[addr:], value)
	default:
		panic(fmt.Errorf("bad memory write width: %d", width))
	}
	return nil
}

// SetRange copies the reader's contents into memory starting at addr,
// until EOF. Used by the ELF loader and the debugger.
func (m *Memory) SetRange(addr uint32, r io.Reader) error {
	if uint64(addr) > uint64(len(m.data)) {
		return &MemoryFaultError{Addr: addr, Width: 1, Write: true}
	}
	n, err := io.ReadFull(r, m.data[addr:])
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	// The reader still has data but memory ran out.
	if _, err := r.Read(make([]byte, 1)); err != io.EOF {
		return &MemoryFaultError{Addr: addr + uint32(n), Width: 1, Write: true}
	}
	return nil
}

type rangeReader struct {
	m     *Memory
	addr  uint32
	count uint32
}

func (r *rangeReader) Read(dest []byte) (int, error) {
	if r.count == 0 {
		return 0, io.EOF
	}
	if uint64(r.addr) >= uint64(len(r.m.data)) {
		return 0, &MemoryFaultError{Addr: r.addr, Width: 1}
	}
	end := uint64(r.addr) + uint64(r.count)
	if end > uint64(len(r.m.data)) {
		end = uint64(len(r.m.data))
	}
	n := copy(dest, r.m.data[r.addr:end])
	r.addr += uint32(n)
	r.count -= uint32(n)
	return n, nil
}

// ReadRange exposes [addr, addr+count) as an io.Reader. A range that
// extends past the end of memory yields a MemoryFaultError once the
// valid prefix is consumed.
func (m *Memory) ReadRange(addr, count uint32) io.Reader {
	return &rangeReader{m: m, addr: addr, count: count}
}
