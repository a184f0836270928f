package cmd

import (
	"debug/elf"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"

	"github.com/yars-sim/yars/rv32"
)

func Run(ctx *cli.Context) error {
	if ctx.Bool(PProfCPUFlag.Name) {
		defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
	}

	if ctx.NArg() != 1 {
		return errors.New("expected exactly one argument: the RISC-V program to simulate")
	}
	elfPath := ctx.Args().First()
	elfProgram, err := elf.Open(elfPath)
	if err != nil {
		return fmt.Errorf("failed to open ELF file %q: %w", elfPath, err)
	}
	defer elfProgram.Close()

	l := Logger(os.Stderr, log.LevelInfo)

	mem := rv32.NewMemory(uint32(ctx.Uint(MemoryFlag.Name)) << 20)
	mem.StrictAlign = ctx.Bool(StrictAlignFlag.Name)

	entry, err := rv32.LoadELF(elfProgram, mem)
	if err != nil {
		return fmt.Errorf("failed to load ELF program: %w", err)
	}

	m := rv32.NewMachine(mem,
		&LoggingWriter{Name: "program std-out", Log: l},
		&LoggingWriter{Name: "program std-err", Log: l})
	m.PC = entry
	if ctx.IsSet(PCFlag.Name) {
		m.PC = uint32(ctx.Uint64(PCFlag.Name))
	}
	if ctx.Bool(TraceFlag.Name) {
		m.SetTrace(l)
	}

	l.Info("loaded program", "path", elfPath, "entry", HexU32(m.PC), "mem", mem.Size())

	if ctx.Bool(InteractiveFlag.Name) {
		if err := NewConsole(m, l).Loop(ctx.Context); err != nil {
			return err
		}
	} else {
		start := time.Now()
		if err := m.Run(ctx.Context); err != nil {
			return fmt.Errorf("simulation failed at step %d (PC: %08x): %w", m.Steps, m.PC, err)
		}
		delta := time.Since(start)
		l.Info("simulation done",
			"status", m.Status,
			"steps", m.Steps,
			"exit", m.ExitCode,
			"ips", float64(m.Steps)/(float64(delta)/float64(time.Second)),
		)
	}

	if m.Status == rv32.StatusHalted && m.ExitCode != 0 {
		// relay the simulated program's exit code unchanged
		return cli.Exit("", int(m.ExitCode))
	}
	return nil
}

var RunCommand = &cli.Command{
	Name:        "run",
	Usage:       "Run a statically linked RV32IM program to completion",
	Description: "Run a statically linked RV32IM program to completion, or under the interactive debugger with --interactive.",
	ArgsUsage:   "<program>",
	Action:      Run,
	Flags: []cli.Flag{
		MemoryFlag,
		PCFlag,
		InteractiveFlag,
		TraceFlag,
		StrictAlignFlag,
		PProfCPUFlag,
	},
}
