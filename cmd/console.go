package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/term"

	"github.com/yars-sim/yars/rv32"
)

// Console is the interactive debugger front end. It owns the input
// loop and drives the machine strictly through its step/run/inspect
// surface; the machine never calls back into the console.
type Console struct {
	m   *rv32.Machine
	log log.Logger
	out io.Writer
}

func NewConsole(m *rv32.Machine, l log.Logger) *Console {
	return &Console{m: m, log: l, out: os.Stderr}
}

type stdinTerminal struct {
	io.Reader
	io.Writer
}

// Loop reads and executes debugger commands until quit or EOF. With a
// TTY on stdin the terminal is switched to raw mode for line editing.
func (c *Console) Loop(ctx context.Context) error {
	fd := int(os.Stdin.Fd())
	var readLine func() (string, error)
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to switch terminal to raw mode: %w", err)
		}
		defer func() {
			_ = term.Restore(fd, oldState)
		}()
		t := term.NewTerminal(stdinTerminal{os.Stdin, os.Stderr}, "(yars) ")
		c.out = t
		readLine = t.ReadLine
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		readLine = func() (string, error) {
			fmt.Fprint(os.Stderr, "(yars) ")
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return "", err
				}
				return "", io.EOF
			}
			return scanner.Text(), nil
		}
	}

	c.log.Info("interactive debugger ready", "pc", HexU32(c.m.PC))
	c.printLocation()
	for {
		line, err := readLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		done, err := c.dispatch(ctx, strings.Fields(line))
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (c *Console) dispatch(ctx context.Context, args []string) (done bool, err error) {
	if len(args) == 0 {
		return false, nil
	}
	switch args[0] {
	case "help", "h":
		c.printHelp()
	case "step", "s":
		c.step()
	case "continue", "c":
		return false, c.cont(ctx)
	case "break", "b":
		if addr, ok := c.parseAddr(args, 1); ok {
			c.m.SetBreakpoint(addr)
		}
	case "delete", "d":
		if addr, ok := c.parseAddr(args, 1); ok {
			c.m.ClearBreakpoint(addr)
		}
	case "breakpoints":
		for _, addr := range c.m.Breakpoints() {
			fmt.Fprintf(c.out, "0x%08x\n", addr)
		}
	case "regs":
		fmt.Fprint(c.out, c.m.Regs.String())
		fmt.Fprintf(c.out, "  pc=0x%08X\n", c.m.PC)
	case "reg":
		c.reg(args[1:])
	case "mem", "x":
		c.memDump(args[1:])
	case "set":
		c.memSet(args[1:])
	case "quit", "q":
		return true, nil
	default:
		fmt.Fprintf(c.out, "unknown command %q, try \"help\"\n", args[0])
	}
	return false, nil
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, ""+
		"step|s              execute one instruction\n"+
		"continue|c          run until breakpoint, ebreak or exit\n"+
		"break|b <addr>      set breakpoint\n"+
		"delete|d <addr>     clear breakpoint\n"+
		"breakpoints         list breakpoints\n"+
		"regs                dump register file\n"+
		"reg <name> [value]  read or write one register (or pc)\n"+
		"mem|x <addr> [n]    dump n bytes of memory (default 64)\n"+
		"set <addr> <b>...   write bytes to memory\n"+
		"quit|q              leave the debugger\n")
}

// printLocation shows the PC and, when it decodes, the instruction
// about to execute.
func (c *Console) printLocation() {
	word, err := c.m.Mem.Read(c.m.PC, 4, false)
	if err != nil {
		fmt.Fprintf(c.out, "pc=0x%08x <fetch fault>\n", c.m.PC)
		return
	}
	inst, err := rv32.Decode(word)
	if err != nil {
		fmt.Fprintf(c.out, "pc=0x%08x [%08x] <illegal>\n", c.m.PC, word)
		return
	}
	fmt.Fprintf(c.out, "pc=0x%08x [%08x] %s\n", c.m.PC, word, inst)
}

func (c *Console) step() {
	if c.m.Status == rv32.StatusHalted {
		fmt.Fprintf(c.out, "machine halted (exit code %d)\n", c.m.ExitCode)
		return
	}
	if err := c.m.Step(); err != nil {
		fmt.Fprintf(c.out, "fault: %v\n", err)
		return
	}
	if c.m.Status == rv32.StatusHalted {
		fmt.Fprintf(c.out, "program exited with code %d after %d steps\n", c.m.ExitCode, c.m.Steps)
		return
	}
	c.printLocation()
}

func (c *Console) cont(ctx context.Context) error {
	if c.m.Status == rv32.StatusHalted {
		fmt.Fprintf(c.out, "machine halted (exit code %d)\n", c.m.ExitCode)
		return nil
	}
	if err := c.m.Run(ctx); err != nil {
		if errors.Is(err, ctx.Err()) && ctx.Err() != nil {
			return err
		}
		fmt.Fprintf(c.out, "fault: %v\n", err)
		return nil
	}
	switch c.m.Status {
	case rv32.StatusHalted:
		fmt.Fprintf(c.out, "program exited with code %d after %d steps\n", c.m.ExitCode, c.m.Steps)
	case rv32.StatusPaused:
		c.printLocation()
	}
	return nil
}

func (c *Console) reg(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "usage: reg <name> [value]")
		return
	}
	name := args[0]
	if name == "pc" {
		if len(args) > 1 {
			if v, ok := c.parseAddr(args, 1); ok {
				c.m.PC = v
			}
			return
		}
		fmt.Fprintf(c.out, "pc=0x%08x\n", c.m.PC)
		return
	}
	idx, ok := rv32.RegIndex(name)
	if !ok {
		fmt.Fprintf(c.out, "unknown register %q\n", name)
		return
	}
	if len(args) > 1 {
		if v, ok := c.parseAddr(args, 1); ok {
			c.m.Regs.Set(idx, v)
		}
		return
	}
	fmt.Fprintf(c.out, "%s=0x%08x\n", rv32.RegName(idx), c.m.Regs.Get(idx))
}

func (c *Console) memDump(args []string) {
	addr, ok := c.parseAddr(args, 0)
	if !ok {
		return
	}
	count := uint32(64)
	if len(args) > 1 {
		n, ok := c.parseAddr(args, 1)
		if !ok {
			return
		}
		count = n
	}
	buf, err := io.ReadAll(c.m.Mem.ReadRange(addr, count))
	if err != nil {
		fmt.Fprintf(c.out, "fault: %v\n", err)
		return
	}
	for i := 0; i < len(buf); i += 16 {
		end := i + 16
		if end > len(buf) {
			end = len(buf)
		}
		fmt.Fprintf(c.out, "0x%08x:", addr+uint32(i))
		for _, b := range buf[i:end] {
			fmt.Fprintf(c.out, " %02x", b)
		}
		fmt.Fprintln(c.out)
	}
}

func (c *Console) memSet(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "usage: set <addr> <byte>...")
		return
	}
	addr, ok := c.parseAddr(args, 0)
	if !ok {
		return
	}
	for i, tok := range args[1:] {
		b, err := strconv.ParseUint(tok, 0, 8)
		if err != nil {
			fmt.Fprintf(c.out, "bad byte %q: %v\n", tok, err)
			return
		}
		if err := c.m.Mem.Write(addr+uint32(i), 1, uint32(b)); err != nil {
			fmt.Fprintf(c.out, "fault: %v\n", err)
			return
		}
	}
}

func (c *Console) parseAddr(args []string, i int) (uint32, bool) {
	if len(args) <= i {
		fmt.Fprintln(c.out, "missing address argument")
		return 0, false
	}
	v, err := strconv.ParseUint(args[i], 0, 32)
	if err != nil {
		fmt.Fprintf(c.out, "bad address %q: %v\n", args[i], err)
		return 0, false
	}
	return uint32(v), true
}
