package cmd

import "github.com/urfave/cli/v2"

var (
	MemoryFlag = &cli.UintFlag{
		Name:    "memory",
		Aliases: []string{"m"},
		Usage:   "Allocate `size` MiB of simulated memory",
		Value:   32,
	}
	PCFlag = &cli.Uint64Flag{
		Name:  "pc",
		Usage: "Override the program entry point with `address`",
	}
	InteractiveFlag = &cli.BoolFlag{
		Name:    "interactive",
		Aliases: []string{"i"},
		Usage:   "Drop into the interactive debugger instead of running to completion",
	}
	TraceFlag = &cli.BoolFlag{
		Name:    "trace",
		Aliases: []string{"t"},
		Usage:   "Log every executed instruction",
	}
	StrictAlignFlag = &cli.BoolFlag{
		Name:  "strict-align",
		Usage: "Fault on unaligned data access instead of handling it byte-wise",
	}
	PProfCPUFlag = &cli.BoolFlag{
		Name:  "pprof.cpu",
		Usage: "Write a CPU profile to the current directory",
	}
)
