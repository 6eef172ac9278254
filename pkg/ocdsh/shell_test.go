package ocdsh

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/blinky.go/pkg/openocd"
)

type fakeDebugger struct {
	resetSP uint32
	calls   []string
	regs    map[string]uint32
	mem     map[uint32]uint32
}

func newFakeDebugger() *fakeDebugger {
	return &fakeDebugger{regs: make(map[string]uint32), mem: make(map[uint32]uint32)}
}

func (d *fakeDebugger) call(format string, args ...interface{}) error {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
	return nil
}

func (d *fakeDebugger) Send(cmd string) (string, error) {
	return "ok", d.call("send %s", cmd)
}

func (d *fakeDebugger) Halt() error      { return d.call("halt") }
func (d *fakeDebugger) Step() error      { return d.call("step") }
func (d *fakeDebugger) Resume() error    { return d.call("resume") }
func (d *fakeDebugger) ResetInit() error { return d.call("reset init") }
func (d *fakeDebugger) Close() error     { return d.call("close") }

func (d *fakeDebugger) ResetHalt() error {
	d.regs["13"] = d.resetSP
	return d.call("reset halt")
}

func (d *fakeDebugger) ResumeAt(addr uint32) error {
	return d.call("resume 0x%x", addr)
}

func (d *fakeDebugger) WriteMemory(addr uint32, words []uint32, width int) error {
	for i, v := range words {
		d.mem[addr+uint32(i*width/8)] = v
	}
	return d.call("write 0x%x %v %d", addr, words, width)
}

func (d *fakeDebugger) ReadMemory(addr uint32, count, width int) ([]uint32, error) {
	words := make([]uint32, count)
	for i := range words {
		words[i] = d.mem[addr+uint32(i*width/8)]
	}
	return words, d.call("read 0x%x %d %d", addr, count, width)
}

func (d *fakeDebugger) WriteRegister(reg string, value uint32) error {
	d.regs[reg] = value
	return nil
}

func (d *fakeDebugger) ReadRegister(reg string) (uint32, error) {
	return d.regs[reg], nil
}

func (d *fakeDebugger) ReadRegisterList(regs ...string) ([]uint32, error) {
	values := make([]uint32, len(regs))
	for i, reg := range regs {
		values[i] = d.regs[reg]
	}
	return values, nil
}

func (d *fakeDebugger) SetBreakpoint(addr uint32, length int, hardware bool) error {
	return d.call("bp 0x%x %d %v", addr, length, hardware)
}

func (d *fakeDebugger) RemoveBreakpoint(addr uint32) error {
	return d.call("rbp 0x%x", addr)
}

func TestNotConnected(t *testing.T) {
	_, err := connected(cmdHalt)(&Shell{}, nil)
	require.Equal(t, openocd.ErrNotConnected, err)
}

func TestCommands(t *testing.T) {
	d := newFakeDebugger()
	s := &Shell{Debugger: d}
	testCases := []struct {
		name  string
		fn    cmdFunc
		args  []string
		out   string
		calls []string
	}{
		{name: "halt", fn: cmdHalt, calls: []string{"halt"}},
		{name: "resume", fn: cmdResume, calls: []string{"resume"}},
		{name: "resume at", fn: cmdResume, args: []string{"0x08000100"}, calls: []string{"resume 0x8000100"}},
		{name: "bp default", fn: cmdBp, args: []string{"0x100"}, calls: []string{"bp 0x100 2 true"}},
		{name: "bp sw", fn: cmdBp, args: []string{"0x100", "sw"}, calls: []string{"bp 0x100 2 false"}},
		{name: "bp len sw", fn: cmdBp, args: []string{"0x100", "4", "sw"}, calls: []string{"bp 0x100 4 false"}},
		{name: "rbp", fn: cmdRbp, args: []string{"0x100"}, calls: []string{"rbp 0x100"}},
		{name: "raw", fn: cmdRaw, args: []string{"targets", "stm32f1x.cpu"}, out: "ok", calls: []string{"send targets stm32f1x.cpu"}},
		{
			name:  "mww",
			fn:    cmdMww,
			args:  []string{"0x20000000", "1", "0x2"},
			calls: []string{"write 0x20000000 [1 2] 32"},
		},
		{
			name:  "mdw",
			fn:    cmdMdw,
			args:  []string{"0x20000000", "5"},
			out:   "0x20000000: 00000001 00000002 00000000 00000000\n0x20000010: 00000000",
			calls: []string{"read 0x20000000 5 32"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d.calls = nil
			out, err := tc.fn(s, tc.args)
			require.NoError(t, err)
			require.Equal(t, tc.out, out)
			require.Equal(t, tc.calls, d.calls)
		})
	}
}

func TestUsageErrors(t *testing.T) {
	s := &Shell{Debugger: newFakeDebugger()}
	testCases := []struct {
		name string
		fn   cmdFunc
		args []string
	}{
		{name: "reg no args", fn: cmdReg},
		{name: "mdw bad addr", fn: cmdMdw, args: []string{"flash"}},
		{name: "mdw zero count", fn: cmdMdw, args: []string{"0", "0"}},
		{name: "mww no value", fn: cmdMww, args: []string{"0"}},
		{name: "rbp no addr", fn: cmdRbp},
		{name: "extract no len", fn: cmdExtract, args: []string{"0"}},
		{name: "raw empty", fn: cmdRaw},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.fn(s, tc.args)
			require.Error(t, err)
		})
	}
}

func TestReg(t *testing.T) {
	d := newFakeDebugger()
	s := &Shell{Debugger: d}
	_, err := cmdReg(s, []string{"PC", "0x08000131"})
	require.NoError(t, err)
	require.Equal(t, uint32(0x08000131), d.regs["pc"])

	out, err := cmdReg(s, []string{"pc"})
	require.NoError(t, err)
	require.Equal(t, "pc: 0x08000131", out)

	s.OutputJSON = true
	out, err = cmdReg(s, []string{"pc"})
	require.NoError(t, err)
	require.Equal(t, `{"pc":134218033}`, out)
}

func TestExtract(t *testing.T) {
	d := newFakeDebugger()
	d.resetSP = 0x20005000
	s := &Shell{Debugger: d}
	out, err := cmdExtract(s, []string{"0", "1"})
	require.NoError(t, err)
	require.Equal(t, "00000000: 20005000", out)
	require.Equal(t, 16, s.extractor.NumExceptions)
	require.Equal(t, uint32(0xbf00), d.mem[0x20000002])

	out, err = cmdExtract(s, []string{"0x1c", "1"})
	require.NoError(t, err)
	require.Equal(t, "0000001c: --------", out)
}
