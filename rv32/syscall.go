package rv32

import (
	"fmt"
	"io"
)

// Linux riscv32 syscall numbers honored by the environment-call
// handler. Everything else is an UnknownSyscallError.
const (
	sysRead      = 63
	sysWrite     = 64
	sysExit      = 93
	sysExitGroup = 94
)

const errnoEBADF = 9

// UnknownSyscallError reports an ECALL with an unsupported call number.
type UnknownSyscallError struct {
	Num uint32
	PC  uint32
}

func (e *UnknownSyscallError) Error() string {
	return fmt.Sprintf("unknown system call %d at pc 0x%08x", e.Num, e.PC)
}

// ecall resolves an environment call. The call number is taken from a7
// and arguments from a0-a2 by convention; results go back into a0 (and
// an errno into a1). Exit calls halt the machine.
func (m *Machine) ecall(pc uint32) error {
	switch num := m.Regs.Get(RegA7); num {
	case sysExit, sysExitGroup:
		m.ExitCode = uint8(m.Regs.Get(RegA0))
		m.Status = StatusHalted

	case sysWrite:
		fd := m.Regs.Get(RegA0)
		addr := m.Regs.Get(RegA1)
		count := m.Regs.Get(RegA2)
		var w io.Writer
		switch fd {
		case 1:
			w = m.stdOut
		case 2:
			w = m.stdErr
		default:
			m.Regs.Set(RegA0, ^uint32(0))
			m.Regs.Set(RegA1, errnoEBADF)
			return nil
		}
		if _, err := io.Copy(w, m.Mem.ReadRange(addr, count)); err != nil {
			return err
		}
		m.Regs.Set(RegA0, count)
		m.Regs.Set(RegA1, 0)

	case sysRead:
		if fd := m.Regs.Get(RegA0); fd == 0 {
			m.Regs.Set(RegA0, 0) // stdin always at EOF
			m.Regs.Set(RegA1, 0)
		} else {
			m.Regs.Set(RegA0, ^uint32(0))
			m.Regs.Set(RegA1, errnoEBADF)
		}

	default:
		return &UnknownSyscallError{Num: num, PC: pc}
	}
	return nil
}
