// Package openocd is a client of the OpenOCD Tcl RPC server.
//
// Every command is a Tcl script terminated by the 0x1a byte; the
// server answers with the script result terminated the same way.
package openocd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
)

// CommandToken terminates commands and responses.
const CommandToken byte = 0x1a

// DefaultAddr is the default Tcl RPC listen address of OpenOCD.
const DefaultAddr = "localhost:6666"

// tclVariable is the Tcl array used to move memory words.
const tclVariable = "blinky_tcl"

var (
	// ErrNotConnected indicates Connect has not succeeded.
	ErrNotConnected = errors.New("not connected")
)

// ResponseError indicates a response which can't be parsed.
type ResponseError struct {
	Cmd      string
	Response string
}

// Error implements error.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("unexpected response to %q: %q", e.Cmd, e.Response)
}

// Client talks to one OpenOCD instance. It is safe for concurrent use;
// commands are serialized.
//
// A failed round trip leaves unread bytes on the stream, so the
// connection is closed and later commands fail with ErrNotConnected
// until Connect is called again.
type Client struct {
	Addr string
	// Timeout bounds each command round trip, 0 for none.
	Timeout time.Duration
	// Context cancels commands issued by Send, nil for none.
	Context context.Context

	lock sync.Mutex
	conn net.Conn
	r    *bufio.Reader
}

// New creates a Client for addr (host:port).
func New(addr string) *Client {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Client{Addr: addr}
}

// Connect dials the server.
func (c *Client) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		return err
	}
	c.lock.Lock()
	c.conn, c.r = conn, bufio.NewReader(conn)
	c.lock.Unlock()
	glog.V(1).Infof("connected to OpenOCD %s", c.Addr)
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.r = nil, nil
	return err
}

// Send runs a Tcl command and returns its result with surrounding
// whitespace removed.
func (c *Client) Send(cmd string) (string, error) {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return c.SendContext(ctx, cmd)
}

// SendContext is Send which gives up when ctx is done.
func (c *Client) SendContext(ctx context.Context, cmd string) (string, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.conn == nil {
		return "", ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var deadline time.Time
	if c.Timeout > 0 {
		deadline = time.Now().Add(c.Timeout)
	}
	c.conn.SetDeadline(deadline)
	if ctx.Done() != nil {
		stop := make(chan struct{})
		defer close(stop)
		go func(conn net.Conn) {
			select {
			case <-ctx.Done():
				// unblocks the pending read or write
				conn.SetDeadline(time.Now())
			case <-stop:
			}
		}(c.conn)
	}
	glog.V(2).Infof("OCD> %s", cmd)
	res, err := c.roundTrip(cmd)
	if err != nil {
		c.reset(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	glog.V(2).Infof("OCD< %s", res)
	return res, nil
}

func (c *Client) roundTrip(cmd string) (string, error) {
	if _, err := c.conn.Write(append([]byte(cmd), CommandToken)); err != nil {
		return "", err
	}
	data, err := c.r.ReadString(CommandToken)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(data[:len(data)-1]), nil
}

// reset drops the connection after a failed round trip, must be
// called with lock held.
func (c *Client) reset(err error) {
	glog.Warningf("OpenOCD %s: %v, disconnecting", c.Addr, err)
	c.conn.Close()
	c.conn, c.r = nil, nil
}

// Sendf formats and runs a command.
func (c *Client) Sendf(format string, args ...interface{}) (string, error) {
	return c.Send(fmt.Sprintf(format, args...))
}

// Exit ends the server side session.
func (c *Client) Exit() error {
	_, err := c.Send("exit")
	return err
}

// Halt halts the target.
func (c *Client) Halt() error {
	_, err := c.Send("halt")
	return err
}

// Step single-steps the target.
func (c *Client) Step() error {
	_, err := c.Send("step")
	return err
}

// Resume resumes the target at the current PC.
func (c *Client) Resume() error {
	_, err := c.Send("resume")
	return err
}

// ResumeAt resumes the target at addr.
func (c *Client) ResumeAt(addr uint32) error {
	_, err := c.Sendf("resume 0x%x", addr)
	return err
}

// ResetHalt resets the target and halts it at the reset vector.
func (c *Client) ResetHalt() error {
	_, err := c.Send("reset halt")
	return err
}

// ResetInit resets the target and runs the board init scripts.
func (c *Client) ResetInit() error {
	_, err := c.Send("reset init")
	return err
}

// WaitHalt waits for the target to halt.
func (c *Client) WaitHalt(timeout time.Duration) error {
	_, err := c.Sendf("wait_halt %d", timeout/time.Millisecond)
	return err
}

// WriteMemory writes words of width bits (8, 16 or 32) starting at addr.
func (c *Client) WriteMemory(addr uint32, words []uint32, width int) error {
	items := make([]string, len(words))
	for i, v := range words {
		items[i] = fmt.Sprintf("%d 0x%x", i, v)
	}
	if _, err := c.Send("array unset " + tclVariable); err != nil {
		return err
	}
	if _, err := c.Sendf("array set %s { %s }", tclVariable, strings.Join(items, " ")); err != nil {
		return err
	}
	_, err := c.Sendf("array2mem %s %d 0x%x %d", tclVariable, width, addr, len(words))
	return err
}

// ReadMemory reads count words of width bits starting at addr.
func (c *Client) ReadMemory(addr uint32, count, width int) ([]uint32, error) {
	if _, err := c.Send("array unset " + tclVariable); err != nil {
		return nil, err
	}
	if _, err := c.Sendf("mem2array %s %d 0x%x %d", tclVariable, width, addr, count); err != nil {
		return nil, err
	}
	cmd := "return $" + tclVariable
	res, err := c.Send(cmd)
	if err != nil {
		return nil, err
	}
	return parseArray(cmd, res, count)
}

// parseArray decodes "index value index value ..." into a slice
// ordered by index; the Tcl array order is unspecified.
func parseArray(cmd, res string, count int) ([]uint32, error) {
	fields := strings.Fields(res)
	if len(fields)%2 != 0 || len(fields)/2 != count {
		return nil, &ResponseError{Cmd: cmd, Response: res}
	}
	type item struct {
		index int
		value uint32
	}
	items := make([]item, 0, count)
	for i := 0; i < len(fields); i += 2 {
		index, err := strconv.Atoi(fields[i])
		if err != nil || index < 0 || index >= count {
			return nil, &ResponseError{Cmd: cmd, Response: res}
		}
		value, err := strconv.ParseUint(fields[i+1], 0, 32)
		if err != nil {
			return nil, &ResponseError{Cmd: cmd, Response: res}
		}
		items = append(items, item{index: index, value: uint32(value)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].index < items[j].index })
	words := make([]uint32, count)
	for i, it := range items {
		if it.index != i {
			return nil, &ResponseError{Cmd: cmd, Response: res}
		}
		words[i] = it.value
	}
	return words, nil
}

// RegNum names a register by its number.
func RegNum(n int) string {
	return strconv.Itoa(n)
}

// ReadRegister reads a register by name or number (see RegNum).
func (c *Client) ReadRegister(reg string) (uint32, error) {
	cmd := "reg " + reg
	res, err := c.Send(cmd)
	if err != nil {
		return 0, err
	}
	// e.g. "pc (/32): 0x08000131"
	parts := strings.SplitN(res, ": ", 2)
	if len(parts) < 2 {
		return 0, &ResponseError{Cmd: cmd, Response: res}
	}
	fields := strings.Fields(parts[1])
	if len(fields) == 0 {
		return 0, &ResponseError{Cmd: cmd, Response: res}
	}
	hex := strings.TrimPrefix(strings.ToLower(fields[0]), "0x")
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, &ResponseError{Cmd: cmd, Response: res}
	}
	return uint32(value), nil
}

// ReadRegisters reads registers into a map.
func (c *Client) ReadRegisters(regs ...string) (map[string]uint32, error) {
	result := make(map[string]uint32, len(regs))
	for _, reg := range regs {
		value, err := c.ReadRegister(reg)
		if err != nil {
			return nil, err
		}
		result[reg] = value
	}
	return result, nil
}

// ReadRegisterList reads registers keeping the order of regs.
func (c *Client) ReadRegisterList(regs ...string) ([]uint32, error) {
	values := make([]uint32, len(regs))
	for i, reg := range regs {
		value, err := c.ReadRegister(reg)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}

// WriteRegister writes a register by name or number.
func (c *Client) WriteRegister(reg string, value uint32) error {
	_, err := c.Sendf("reg %s 0x%x", reg, value)
	return err
}

// RegValue is a register assignment.
type RegValue struct {
	Name  string
	Value uint32
}

// WriteRegisterList writes registers in the order given.
func (c *Client) WriteRegisterList(regs ...RegValue) error {
	for _, reg := range regs {
		if err := c.WriteRegister(reg.Name, reg.Value); err != nil {
			return err
		}
	}
	return nil
}

// WriteRegisters writes registers sorted by name. Use WriteRegisterList
// when the order matters, e.g. xPSR before pc.
func (c *Client) WriteRegisters(regs map[string]uint32) error {
	names := make([]string, 0, len(regs))
	for name := range regs {
		names = append(names, name)
	}
	sort.Strings(names)
	list := make([]RegValue, len(names))
	for i, name := range names {
		list[i] = RegValue{Name: name, Value: regs[name]}
	}
	return c.WriteRegisterList(list...)
}

// SetBreakpoint sets a breakpoint of length bytes at addr.
func (c *Client) SetBreakpoint(addr uint32, length int, hardware bool) error {
	cmd := fmt.Sprintf("bp 0x%x %d", addr, length)
	if hardware {
		cmd += " hw"
	}
	_, err := c.Send(cmd)
	return err
}

// RemoveBreakpoint removes the breakpoint at addr.
func (c *Client) RemoveBreakpoint(addr uint32) error {
	_, err := c.Sendf("rbp 0x%x", addr)
	return err
}
