package rv32

import (
	"errors"
	"fmt"
)

// ErrIllegalInstruction is returned by Decode for any word that does
// not match a defined RV32IM encoding.
var ErrIllegalInstruction = errors.New("illegal instruction")

// IllegalInstructionError is the fatal form of a decode failure,
// carrying the faulting PC and the raw word.
type IllegalInstructionError struct {
	PC   uint32
	Word uint32
}

func (e *IllegalInstructionError) Error() string {
	return fmt.Sprintf("illegal instruction 0x%08x at pc 0x%08x", e.Word, e.PC)
}

// Encoding format per opcode[6:2], for words with opcode[1:0] == 11.
// Rows not covered by RV32IM are left invalid.
var instFormats = [32]struct {
	format Format
	valid  bool
}{
	0x00: {FormatI, true}, // LOAD
	0x03: {FormatI, true}, // MISC-MEM (FENCE)
	0x04: {FormatI, true}, // OP-IMM
	0x05: {FormatU, true}, // AUIPC
	0x08: {FormatS, true}, // STORE
	0x0C: {FormatR, true}, // OP
	0x0D: {FormatU, true}, // LUI
	0x18: {FormatB, true}, // BRANCH
	0x19: {FormatI, true}, // JALR
	0x1B: {FormatJ, true}, // JAL
	0x1C: {FormatI, true}, // SYSTEM
}

func immTypeI(word uint32) int32 {
	return int32(word) >> 20
}

func immTypeS(word uint32) int32 {
	return int32(word&0xFE000000)>>20 | int32((word>>7)&0x1F)
}

func immTypeB(word uint32) int32 {
	imm := ((word>>31)&0x1)<<12 |
		((word>>7)&0x1)<<11 |
		((word>>25)&0x3F)<<5 |
		((word>>8)&0xF)<<1
	return int32(imm<<19) >> 19
}

func immTypeU(word uint32) int32 {
	return int32(word) >> 12
}

func immTypeJ(word uint32) int32 {
	imm := ((word>>31)&0x1)<<20 |
		((word>>12)&0xFF)<<12 |
		((word>>20)&0x1)<<11 |
		((word>>21)&0x3FF)<<1
	return int32(imm<<11) >> 11
}

// Decode turns one fetched word into its structured form, or fails
// with ErrIllegalInstruction when the opcode/funct3/funct7 combination
// is not part of RV32IM.
func Decode(word uint32) (Instruction, error) {
	if word&3 != 3 {
		return Instruction{}, ErrIllegalInstruction
	}
	entry := instFormats[(word>>2)&0x1F]
	if !entry.valid {
		return Instruction{}, ErrIllegalInstruction
	}

	opcode := word & 0x7F
	rd := (word >> 7) & 0x1F
	funct3 := (word >> 12) & 0x7
	rs1 := (word >> 15) & 0x1F
	rs2 := (word >> 20) & 0x1F
	funct7 := word >> 25

	// Only the fields the format encodes are populated; the rd bits of
	// an S or B word are immediate bits, not a register index.
	inst := Instruction{Format: entry.format}

	switch entry.format {
	case FormatR:
		inst.Rd, inst.Rs1, inst.Rs2 = rd, rs1, rs2
		switch funct7 {
		case 0x00:
			switch funct3 {
			case 0:
				inst.Op = OpADD
			case 1:
				inst.Op = OpSLL
			case 2:
				inst.Op = OpSLT
			case 3:
				inst.Op = OpSLTU
			case 4:
				inst.Op = OpXOR
			case 5:
				inst.Op = OpSRL
			case 6:
				inst.Op = OpOR
			case 7:
				inst.Op = OpAND
			}
		case 0x01: // M extension
			switch funct3 {
			case 0:
				inst.Op = OpMUL
			case 1:
				inst.Op = OpMULH
			case 2:
				inst.Op = OpMULHSU
			case 3:
				inst.Op = OpMULHU
			case 4:
				inst.Op = OpDIV
			case 5:
				inst.Op = OpDIVU
			case 6:
				inst.Op = OpREM
			case 7:
				inst.Op = OpREMU
			}
		case 0x20:
			switch funct3 {
			case 0:
				inst.Op = OpSUB
			case 5:
				inst.Op = OpSRA
			}
		}

	case FormatI:
		imm := immTypeI(word)
		inst.Rd, inst.Rs1, inst.Imm = rd, rs1, imm
		switch opcode {
		case 0x03: // loads
			switch funct3 {
			case 0:
				inst.Op = OpLB
			case 1:
				inst.Op = OpLH
			case 2:
				inst.Op = OpLW
			case 4:
				inst.Op = OpLBU
			case 5:
				inst.Op = OpLHU
			}
		case 0x13: // immediate arithmetic and logic
			switch funct3 {
			case 0:
				inst.Op = OpADDI
			case 1:
				if funct7 == 0x00 {
					inst.Op = OpSLLI
					inst.Imm = imm & 0x1F
				}
			case 2:
				inst.Op = OpSLTI
			case 3:
				inst.Op = OpSLTIU
			case 4:
				inst.Op = OpXORI
			case 5:
				switch funct7 {
				case 0x00:
					inst.Op = OpSRLI
					inst.Imm = imm & 0x1F
				case 0x20:
					inst.Op = OpSRAI
					inst.Imm = imm & 0x1F
				}
			case 6:
				inst.Op = OpORI
			case 7:
				inst.Op = OpANDI
			}
		case 0x0F: // FENCE
			if funct3 == 0 {
				fm := (word >> 28) & 0xF
				pred := (word >> 24) & 0xF
				succ := (word >> 20) & 0xF
				switch {
				case fm == 0x8 && pred == 0x3 && succ == 0x3:
					inst.Op = OpFENCETSO
				case fm == 0x0 && pred >= 1 && pred <= 3 && succ >= 1 && succ <= 3:
					inst.Op = OpFENCE
				}
			}
		case 0x67: // JALR
			if funct3 == 0 {
				inst.Op = OpJALR
			}
		case 0x73: // SYSTEM
			if funct3 == 0 && rd == 0 && rs1 == 0 {
				switch word >> 20 {
				case 0:
					inst.Op = OpECALL
				case 1:
					inst.Op = OpEBREAK
				}
			}
		}

	case FormatS:
		inst.Rs1, inst.Rs2 = rs1, rs2
		inst.Imm = immTypeS(word)
		switch funct3 {
		case 0:
			inst.Op = OpSB
		case 1:
			inst.Op = OpSH
		case 2:
			inst.Op = OpSW
		}

	case FormatB:
		inst.Rs1, inst.Rs2 = rs1, rs2
		inst.Imm = immTypeB(word)
		switch funct3 {
		case 0:
			inst.Op = OpBEQ
		case 1:
			inst.Op = OpBNE
		case 4:
			inst.Op = OpBLT
		case 5:
			inst.Op = OpBGE
		case 6:
			inst.Op = OpBLTU
		case 7:
			inst.Op = OpBGEU
		}

	case FormatU:
		inst.Rd = rd
		inst.Imm = immTypeU(word)
		switch opcode {
		case 0x37:
			inst.Op = OpLUI
		case 0x17:
			inst.Op = OpAUIPC
		}

	case FormatJ:
		inst.Rd = rd
		inst.Imm = immTypeJ(word)
		inst.Op = OpJAL
	}

	if inst.Op == opInvalid {
		return Instruction{}, ErrIllegalInstruction
	}
	return inst, nil
}
