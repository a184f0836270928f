package rv32

import "fmt"

// Format identifies the RV32 encoding family an instruction word uses.
type Format uint8

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

// Op is the decoded operation. Every defined RV32IM instruction has
// exactly one Op value; the execution unit dispatches on it with an
// exhaustive switch.
type Op uint8

const (
	opInvalid Op = iota

	// RV32I
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpFENCE
	OpFENCETSO
	OpECALL
	OpEBREAK

	// RV32M
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU
)

var opNames = map[Op]string{
	OpLUI: "lui", OpAUIPC: "auipc", OpJAL: "jal", OpJALR: "jalr",
	OpBEQ: "beq", OpBNE: "bne", OpBLT: "blt", OpBGE: "bge",
	OpBLTU: "bltu", OpBGEU: "bgeu",
	OpLB: "lb", OpLH: "lh", OpLW: "lw", OpLBU: "lbu", OpLHU: "lhu",
	OpSB: "sb", OpSH: "sh", OpSW: "sw",
	OpADDI: "addi", OpSLTI: "slti", OpSLTIU: "sltiu",
	OpXORI: "xori", OpORI: "ori", OpANDI: "andi",
	OpSLLI: "slli", OpSRLI: "srli", OpSRAI: "srai",
	OpADD: "add", OpSUB: "sub", OpSLL: "sll", OpSLT: "slt",
	OpSLTU: "sltu", OpXOR: "xor", OpSRL: "srl", OpSRA: "sra",
	OpOR: "or", OpAND: "and",
	OpFENCE: "fence", OpFENCETSO: "fence.tso",
	OpECALL: "ecall", OpEBREAK: "ebreak",
	OpMUL: "mul", OpMULH: "mulh", OpMULHSU: "mulhsu", OpMULHU: "mulhu",
	OpDIV: "div", OpDIVU: "divu", OpREM: "rem", OpREMU: "remu",
}

func (op Op) String() string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Instruction is the decoded form of one 32-bit instruction word.
// Register indices and the immediate are only meaningful for the
// formats that encode them; Imm is already sign-extended, except for
// shift-immediate operations where it holds the 5-bit shift amount.
type Instruction struct {
	Op     Op
	Format Format
	Rd     uint32
	Rs1    uint32
	Rs2    uint32
	Imm    int32
}

// String renders the instruction as assembler text with ABI register
// names, in the usual operand order for its format.
func (i Instruction) String() string {
	op := i.Op.String()
	switch i.Op {
	case OpLUI, OpAUIPC:
		return fmt.Sprintf("%s %s, %d", op, RegName(i.Rd), i.Imm)
	case OpJAL:
		return fmt.Sprintf("%s %s, pc%+d", op, RegName(i.Rd), i.Imm)
	case OpJALR:
		return fmt.Sprintf("%s %s, %d(%s)", op, RegName(i.Rd), i.Imm, RegName(i.Rs1))
	case OpLB, OpLH, OpLW, OpLBU, OpLHU:
		return fmt.Sprintf("%s %s, %d(%s)", op, RegName(i.Rd), i.Imm, RegName(i.Rs1))
	case OpSB, OpSH, OpSW:
		return fmt.Sprintf("%s %s, %d(%s)", op, RegName(i.Rs2), i.Imm, RegName(i.Rs1))
	case OpBEQ, OpBNE, OpBLT, OpBGE, OpBLTU, OpBGEU:
		return fmt.Sprintf("%s %s, %s, pc%+d", op, RegName(i.Rs1), RegName(i.Rs2), i.Imm)
	case OpADDI, OpSLTI, OpSLTIU, OpXORI, OpORI, OpANDI, OpSLLI, OpSRLI, OpSRAI:
		return fmt.Sprintf("%s %s, %s, %d", op, RegName(i.Rd), RegName(i.Rs1), i.Imm)
	case OpFENCE, OpFENCETSO, OpECALL, OpEBREAK:
		return op
	default: // R-type
		return fmt.Sprintf("%s %s, %s, %s", op, RegName(i.Rd), RegName(i.Rs1), RegName(i.Rs2))
	}
}
