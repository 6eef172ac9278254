package ocdsh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/blinky.go/pkg/extract"
	"github.com/robotalks/blinky.go/pkg/openocd"
)

var (
	// ErrUsage indicates wrong command arguments.
	ErrUsage = errors.New("invalid arguments")
)

// defaultBreakpointLen is the size of a Thumb instruction.
const defaultBreakpointLen = 2

// wordsPerLine of mdw output.
const wordsPerLine = 4

// cmdFunc executes a command and returns the output to print.
type cmdFunc func(s *Shell, args []string) (string, error)

func connected(fn cmdFunc) cmdFunc {
	return func(s *Shell, args []string) (string, error) {
		if s.Debugger == nil {
			return "", openocd.ErrNotConnected
		}
		return fn(s, args)
	}
}

func newCmd(name, help string, aliases []string, fn cmdFunc) *ishell.Cmd {
	return &ishell.Cmd{
		Name:    name,
		Aliases: aliases,
		Help:    help,
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			out, err := fn(s, c.Args)
			s.lastErr = err
			if err != nil {
				c.Err(err)
				return
			}
			if out != "" {
				c.Println(out)
			}
		},
	}
}

func parseUint32(str string) (uint32, error) {
	v, err := strconv.ParseUint(str, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", str)
	}
	return uint32(v), nil
}

func parseCount(args []string, n int, def int) (int, error) {
	if len(args) <= n {
		return def, nil
	}
	v, err := strconv.ParseUint(args[n], 0, 31)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid count %q", args[n])
	}
	return int(v), nil
}

func (s *Shell) jsonOutput(v interface{}) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func cmdConnect(s *Shell, args []string) (string, error) {
	var addr string
	if len(args) > 0 {
		addr = args[0]
	}
	return "", s.Connect(addr)
}

func cmdDisconnect(s *Shell, args []string) (string, error) {
	s.Disconnect()
	return "", nil
}

func cmdHalt(s *Shell, args []string) (string, error) {
	return "", s.Debugger.Halt()
}

func cmdStep(s *Shell, args []string) (string, error) {
	return "", s.Debugger.Step()
}

func cmdResume(s *Shell, args []string) (string, error) {
	if len(args) == 0 {
		return "", s.Debugger.Resume()
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	return "", s.Debugger.ResumeAt(addr)
}

func cmdReg(s *Shell, args []string) (string, error) {
	if len(args) == 0 || len(args) > 2 {
		return "", ErrUsage
	}
	name := strings.ToLower(args[0])
	if len(args) == 2 {
		value, err := parseUint32(args[1])
		if err != nil {
			return "", err
		}
		return "", s.Debugger.WriteRegister(name, value)
	}
	value, err := s.Debugger.ReadRegister(name)
	if err != nil {
		return "", err
	}
	if s.OutputJSON {
		return s.jsonOutput(map[string]uint32{name: value})
	}
	return fmt.Sprintf("%s: 0x%08x", name, value), nil
}

func cmdMdw(s *Shell, args []string) (string, error) {
	if len(args) == 0 || len(args) > 2 {
		return "", ErrUsage
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	count, err := parseCount(args, 1, 1)
	if err != nil {
		return "", err
	}
	words, err := s.Debugger.ReadMemory(addr, count, 32)
	if err != nil {
		return "", err
	}
	if s.OutputJSON {
		return s.jsonOutput(words)
	}
	return formatWords(addr, words), nil
}

// formatWords prints words like the OpenOCD mdw command.
func formatWords(addr uint32, words []uint32) string {
	var w bytes.Buffer
	for i, v := range words {
		switch {
		case i%wordsPerLine == 0:
			if i > 0 {
				w.WriteByte('\n')
			}
			fmt.Fprintf(&w, "0x%08x: %08x", addr+uint32(i)*4, v)
		default:
			fmt.Fprintf(&w, " %08x", v)
		}
	}
	return w.String()
}

func cmdMww(s *Shell, args []string) (string, error) {
	if len(args) < 2 {
		return "", ErrUsage
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	words := make([]uint32, len(args)-1)
	for i, arg := range args[1:] {
		if words[i], err = parseUint32(arg); err != nil {
			return "", err
		}
	}
	return "", s.Debugger.WriteMemory(addr, words, 32)
}

func cmdBp(s *Shell, args []string) (string, error) {
	if len(args) == 0 || len(args) > 3 {
		return "", ErrUsage
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	hardware := true
	if n := len(args); n > 1 && args[n-1] == "sw" {
		hardware = false
		args = args[:n-1]
	}
	length, err := parseCount(args, 1, defaultBreakpointLen)
	if err != nil {
		return "", err
	}
	return "", s.Debugger.SetBreakpoint(addr, length, hardware)
}

func cmdRbp(s *Shell, args []string) (string, error) {
	if len(args) != 1 {
		return "", ErrUsage
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	return "", s.Debugger.RemoveBreakpoint(addr)
}

func cmdExtract(s *Shell, args []string) (string, error) {
	if len(args) != 2 {
		return "", ErrUsage
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	length, err := parseCount(args, 1, 0)
	if err != nil {
		return "", err
	}
	if s.extractor == nil {
		e := extract.New(s.Debugger)
		if err := e.Prepare(context.Background()); err != nil {
			return "", err
		}
		s.extractor = e
	}
	var lines []string
	err = s.extractor.Extract(context.Background(), addr, length, func(w extract.Word) error {
		if w.OK {
			lines = append(lines, fmt.Sprintf("%08x: %08x", w.Addr, w.Value))
		} else {
			lines = append(lines, fmt.Sprintf("%08x: --------", w.Addr))
		}
		return nil
	})
	return strings.Join(lines, "\n"), err
}

func cmdRaw(s *Shell, args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrUsage
	}
	return s.Debugger.Send(strings.Join(args, " "))
}

var (
	// ConnectCmd connects OpenOCD.
	ConnectCmd = newCmd("connect", "[HOST:PORT]", []string{"c"}, cmdConnect)
	// DisconnectCmd closes the connection.
	DisconnectCmd = newCmd("disconnect", "", []string{"d"}, cmdDisconnect)
	// HaltCmd halts the target.
	HaltCmd = newCmd("halt", "", nil, connected(cmdHalt))
	// ResumeCmd resumes the target.
	ResumeCmd = newCmd("resume", "[ADDR]", nil, connected(cmdResume))
	// StepCmd single-steps the target.
	StepCmd = newCmd("step", "", []string{"s"}, connected(cmdStep))
	// RegCmd reads or writes a register.
	RegCmd = newCmd("reg", "NAME|NUM [VALUE]", []string{"r"}, connected(cmdReg))
	// MdwCmd reads memory words.
	MdwCmd = newCmd("mdw", "ADDR [COUNT]", nil, connected(cmdMdw))
	// MwwCmd writes memory words.
	MwwCmd = newCmd("mww", "ADDR VALUE...", nil, connected(cmdMww))
	// BpCmd sets a breakpoint.
	BpCmd = newCmd("bp", "ADDR [LEN] [sw]", nil, connected(cmdBp))
	// RbpCmd removes a breakpoint.
	RbpCmd = newCmd("rbp", "ADDR", nil, connected(cmdRbp))
	// ExtractCmd extracts words of protected flash.
	ExtractCmd = newCmd("extract", "ADDR LEN", []string{"x"}, connected(cmdExtract))
	// RawCmd sends a Tcl command as is.
	RawCmd = newCmd("raw", "CMD...", nil, connected(cmdRaw))
)

func init() {
	AddCmds(
		ConnectCmd,
		DisconnectCmd,
		HaltCmd,
		ResumeCmd,
		StepCmd,
		RegCmd,
		MdwCmd,
		MwwCmd,
		BpCmd,
		RbpCmd,
		ExtractCmd,
		RawCmd,
	)
}
