package rv32

import (
	"fmt"
	"math"
)

// execute applies one decoded instruction against the register file
// and memory, returning the next PC. It holds no state of its own;
// traps surface as status transitions (ECALL/EBREAK) or typed errors
// (memory faults). The decoder guarantees every Op here is defined.
func (m *Machine) execute(pc uint32, inst Instruction) (uint32, error) {
	regs := &m.Regs
	nextPC := pc + 4

	switch inst.Op {
	case OpLUI:
		regs.Set(inst.Rd, uint32(inst.Imm)<<12)
	case OpAUIPC:
		regs.Set(inst.Rd, pc+(uint32(inst.Imm)<<12))

	case OpJAL:
		regs.Set(inst.Rd, pc+4)
		nextPC = pc + uint32(inst.Imm)
	case OpJALR:
		target := (regs.Get(inst.Rs1) + uint32(inst.Imm)) &^ 1
		regs.Set(inst.Rd, pc+4)
		nextPC = target

	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		a, b := regs.Get(inst.Rs1), regs.Get(inst.Rs2)
		var taken bool
		switch inst.Op {
		case OpBEQ:
			taken = a == b
		case OpBNE:
			taken = a != b
		case OpBLT:
			taken = int32(a) < int32(b)
		case OpBGE:
			taken = int32(a) >= int32(b)
		case OpBLTU:
			taken = a < b
		case OpBGEU:
			taken = a >= b
		}
		if taken {
			nextPC = pc + uint32(inst.Imm)
		}

	case OpLB, OpLH, OpLW, OpLBU, OpLHU:
		addr := regs.Get(inst.Rs1) + uint32(inst.Imm)
		var width uint32
		var signed bool
		switch inst.Op {
		case OpLB:
			width, signed = 1, true
		case OpLH:
			width, signed = 2, true
		case OpLW:
			width, signed = 4, false
		case OpLBU:
			width, signed = 1, false
		case OpLHU:
			width, signed = 2, false
		}
		v, err := m.Mem.Read(addr, width, signed)
		if err != nil {
			return 0, err
		}
		regs.Set(inst.Rd, v)

	case OpSB, OpSH, OpSW:
		addr := regs.Get(inst.Rs1) + uint32(inst.Imm)
		width := uint32(1)
		switch inst.Op {
		case OpSH:
			width = 2
		case OpSW:
			width = 4
		}
		if err := m.Mem.Write(addr, width, regs.Get(inst.Rs2)); err != nil {
			return 0, err
		}

	case OpADDI:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)+uint32(inst.Imm))
	case OpSLTI:
		regs.Set(inst.Rd, boolToReg(int32(regs.Get(inst.Rs1)) < inst.Imm))
	case OpSLTIU:
		regs.Set(inst.Rd, boolToReg(regs.Get(inst.Rs1) < uint32(inst.Imm)))
	case OpXORI:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)^uint32(inst.Imm))
	case OpORI:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)|uint32(inst.Imm))
	case OpANDI:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)&uint32(inst.Imm))
	case OpSLLI:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)<<uint32(inst.Imm))
	case OpSRLI:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)>>uint32(inst.Imm))
	case OpSRAI:
		regs.Set(inst.Rd, uint32(int32(regs.Get(inst.Rs1))>>uint32(inst.Imm)))

	case OpADD:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)+regs.Get(inst.Rs2))
	case OpSUB:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)-regs.Get(inst.Rs2))
	case OpSLL:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)<<(regs.Get(inst.Rs2)&0x1F))
	case OpSLT:
		regs.Set(inst.Rd, boolToReg(int32(regs.Get(inst.Rs1)) < int32(regs.Get(inst.Rs2))))
	case OpSLTU:
		regs.Set(inst.Rd, boolToReg(regs.Get(inst.Rs1) < regs.Get(inst.Rs2)))
	case OpXOR:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)^regs.Get(inst.Rs2))
	case OpSRL:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)>>(regs.Get(inst.Rs2)&0x1F))
	case OpSRA:
		regs.Set(inst.Rd, uint32(int32(regs.Get(inst.Rs1))>>(regs.Get(inst.Rs2)&0x1F)))
	case OpOR:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)|regs.Get(inst.Rs2))
	case OpAND:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)&regs.Get(inst.Rs2))

	case OpFENCE, OpFENCETSO:
		// Single hart, no memory pipeline: nothing to order.

	case OpECALL:
		if err := m.ecall(pc); err != nil {
			return 0, err
		}
	case OpEBREAK:
		m.Status = StatusPaused

	case OpMUL:
		regs.Set(inst.Rd, regs.Get(inst.Rs1)*regs.Get(inst.Rs2))
	case OpMULH:
		p := int64(int32(regs.Get(inst.Rs1))) * int64(int32(regs.Get(inst.Rs2)))
		regs.Set(inst.Rd, uint32(uint64(p)>>32))
	case OpMULHSU:
		p := int64(int32(regs.Get(inst.Rs1))) * int64(regs.Get(inst.Rs2))
		regs.Set(inst.Rd, uint32(uint64(p)>>32))
	case OpMULHU:
		p := uint64(regs.Get(inst.Rs1)) * uint64(regs.Get(inst.Rs2))
		regs.Set(inst.Rd, uint32(p>>32))

	case OpDIV:
		a, b := int32(regs.Get(inst.Rs1)), int32(regs.Get(inst.Rs2))
		switch {
		case b == 0:
			regs.Set(inst.Rd, math.MaxUint32)
		case a == math.MinInt32 && b == -1:
			regs.Set(inst.Rd, uint32(a))
		default:
			regs.Set(inst.Rd, uint32(a/b))
		}
	case OpDIVU:
		a, b := regs.Get(inst.Rs1), regs.Get(inst.Rs2)
		if b == 0 {
			regs.Set(inst.Rd, math.MaxUint32)
		} else {
			regs.Set(inst.Rd, a/b)
		}
	case OpREM:
		a, b := int32(regs.Get(inst.Rs1)), int32(regs.Get(inst.Rs2))
		switch {
		case b == 0:
			regs.Set(inst.Rd, uint32(a))
		case a == math.MinInt32 && b == -1:
			regs.Set(inst.Rd, 0)
		default:
			regs.Set(inst.Rd, uint32(a%b))
		}
	case OpREMU:
		a, b := regs.Get(inst.Rs1), regs.Get(inst.Rs2)
		if b == 0 {
			regs.Set(inst.Rd, a)
		} else {
			regs.Set(inst.Rd, a%b)
		}

	default:
		panic(fmt.Errorf("unhandled instruction: %v", inst.Op))
	}

	return nextPC, nil
}

func boolToReg(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
