package rv32

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
)

// LoadELF copies the PT_LOAD segments of a statically linked RV32
// executable into mem and returns the entry program counter. Only the
// program headers are interpreted; sections, relocations and dynamic
// linking metadata are ignored.
func LoadELF(f *elf.File, mem *Memory) (uint32, error) {
	if f.Class != elf.ELFCLASS32 {
		return 0, fmt.Errorf("ELF is not 32-bit, but got %q", f.Class.String())
	}
	if f.Machine != elf.EM_RISCV {
		return 0, fmt.Errorf("ELF is not RISC-V, but got %q", f.Machine.String())
	}
	if f.Type != elf.ET_EXEC {
		return 0, fmt.Errorf("ELF is not a static executable, but got %q", f.Type.String())
	}

	for i, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		if prog.Filesz > prog.Memsz {
			return 0, fmt.Errorf("invalid PT_LOAD program segment %d, file size (%d) > mem size (%d)", i, prog.Filesz, prog.Memsz)
		}
		if prog.Vaddr+prog.Memsz > uint64(mem.Size()) {
			return 0, fmt.Errorf("program segment %d [0x%x, 0x%x) does not fit in %d bytes of memory", i, prog.Vaddr, prog.Vaddr+prog.Memsz, mem.Size())
		}

		r := io.Reader(io.NewSectionReader(prog, 0, int64(prog.Filesz)))
		if prog.Filesz < prog.Memsz {
			// zero-fill .bss style tail
			r = io.MultiReader(r, bytes.NewReader(make([]byte, prog.Memsz-prog.Filesz)))
		}
		if err := mem.SetRange(uint32(prog.Vaddr), r); err != nil {
			return 0, fmt.Errorf("failed to load program segment %d: %w", i, err)
		}
	}
	return uint32(f.Entry), nil
}
