package rv32

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/log"
)

// Status is the execution loop state.
type Status uint8

const (
	StatusRunning Status = iota
	StatusPaused
	StatusHalted
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusHalted:
		return "halted"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// MisalignedFetchError reports an instruction fetch at a PC that is
// not a multiple of 4.
type MisalignedFetchError struct {
	PC uint32
}

func (e *MisalignedFetchError) Error() string {
	return fmt.Sprintf("misaligned instruction fetch at pc 0x%08x", e.PC)
}

// Machine is one simulated hart: register file, memory, program
// counter and the debugger-facing run state. It is not safe for
// concurrent use; the execution loop is the sole driver.
type Machine struct {
	Regs RegisterFile
	Mem  *Memory
	PC   uint32

	Status   Status
	ExitCode uint8
	Steps    uint64

	breakpoints map[uint32]struct{}

	stdOut io.Writer
	stdErr io.Writer
	trace  log.Logger
}

// NewMachine builds a machine over mem with the stack pointer at the
// top of memory. The writers receive the simulated program's stdout
// and stderr.
func NewMachine(mem *Memory, stdOut, stdErr io.Writer) *Machine {
	m := &Machine{
		Mem:         mem,
		stdOut:      stdOut,
		stdErr:      stdErr,
		breakpoints: make(map[uint32]struct{}),
	}
	m.Regs.Set(RegSP, mem.Size())
	return m
}

// SetTrace enables per-instruction logging to l. A nil logger disables
// tracing.
func (m *Machine) SetTrace(l log.Logger) {
	m.trace = l
}

func (m *Machine) SetBreakpoint(addr uint32) {
	m.breakpoints[addr] = struct{}{}
}

func (m *Machine) ClearBreakpoint(addr uint32) {
	delete(m.breakpoints, addr)
}

func (m *Machine) Breakpoints() []uint32 {
	out := make([]uint32, 0, len(m.breakpoints))
	for addr := range m.breakpoints {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// step runs one fetch-decode-execute cycle. Fatal conditions come back
// as typed errors; ECALL-exit and EBREAK land in the Status field.
func (m *Machine) step() error {
	if m.Status == StatusHalted {
		return nil
	}
	m.Status = StatusRunning

	pc := m.PC
	if pc&3 != 0 {
		return &MisalignedFetchError{PC: pc}
	}
	word, err := m.Mem.Read(pc, 4, false)
	if err != nil {
		return fmt.Errorf("instruction fetch: %w", err)
	}
	inst, err := Decode(word)
	if err != nil {
		return &IllegalInstructionError{PC: pc, Word: word}
	}

	nextPC, err := m.execute(pc, inst)
	if err != nil {
		return err
	}
	m.PC = nextPC
	m.Steps++

	if m.trace != nil {
		m.trace.Info(inst.String(),
			"pc", hexU32(pc),
			"insn", hexU32(word),
			"rd", regAttr{&m.Regs, inst.Rd},
			"rs1", regAttr{&m.Regs, inst.Rs1},
			"rs2", regAttr{&m.Regs, inst.Rs2},
		)
	}
	return nil
}

// Step executes exactly one instruction and leaves the machine paused
// unless the instruction halted it. This is the single-step entry
// point for the interactive front end.
func (m *Machine) Step() error {
	if err := m.step(); err != nil {
		m.Status = StatusHalted
		return err
	}
	if m.Status == StatusRunning {
		m.Status = StatusPaused
	}
	return nil
}

// Run executes instructions until the machine halts, pauses on an
// EBREAK or a breakpoint, or ctx is cancelled. Cancellation is only
// observed at instruction boundaries. A breakpoint pauses before the
// instruction at that address executes.
func (m *Machine) Run(ctx context.Context) error {
	for {
		if m.Steps%100 == 0 { // don't do the ctx err check (includes lock) too often
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := m.step(); err != nil {
			m.Status = StatusHalted
			return err
		}
		if m.Status != StatusRunning {
			return nil
		}
		if _, ok := m.breakpoints[m.PC]; ok {
			m.Status = StatusPaused
			return nil
		}
	}
}

// hexU32 lazy-formats a register-width value for log attributes.
type hexU32 uint32

func (v hexU32) String() string {
	return fmt.Sprintf("0x%08x", uint32(v))
}

// regAttr lazy-formats a register name/value pair for trace records.
type regAttr struct {
	regs  *RegisterFile
	index uint32
}

func (a regAttr) String() string {
	return fmt.Sprintf("%s=0x%08x", RegName(a.index), a.regs.Get(a.index))
}
