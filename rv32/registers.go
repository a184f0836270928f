package rv32

import (
	"fmt"
	"strconv"
	"strings"
)

// ABI register indices used by the syscall convention and the console.
const (
	RegZero = 0
	RegRA   = 1
	RegSP   = 2
	RegA0   = 10
	RegA1   = 11
	RegA2   = 12
	RegA7   = 17
)

var regNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// RegName returns the ABI name for a register index.
func RegName(i uint32) string {
	return regNames[i&31]
}

// RegIndex resolves an ABI name or xN form to a register index.
func RegIndex(name string) (uint32, bool) {
	for i, n := range regNames {
		if n == name {
			return uint32(i), true
		}
	}
	if strings.HasPrefix(name, "x") {
		if i, err := strconv.ParseUint(name[1:], 10, 5); err == nil {
			return uint32(i), true
		}
	}
	return 0, false
}

// RegisterFile holds the 32 general-purpose integer registers.
// x0 is hard-wired to zero: writes to it are discarded.
type RegisterFile struct {
	x [32]uint32
}

func (r *RegisterFile) Get(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return r.x[i&31]
}

func (r *RegisterFile) Set(i, v uint32) {
	if i != 0 {
		r.x[i&31] = v
	}
}

// String renders the full register file, four registers per line.
func (r *RegisterFile) String() string {
	var b strings.Builder
	for i := 0; i < 32; i += 4 {
		fmt.Fprintf(&b, "%4s=0x%08X %4s=0x%08X %4s=0x%08X %4s=0x%08X\n",
			regNames[i], r.x[i], regNames[i+1], r.x[i+1],
			regNames[i+2], r.x[i+2], regNames[i+3], r.x[i+3])
	}
	return b.String()
}
