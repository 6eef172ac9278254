package extract

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeTarget emulates exception entry of a Cortex-M core whose flash,
// aliased at 0, holds image. The vector address is formed by OR-ing the
// exception offset into VTOR.
type fakeTarget struct {
	image  map[uint32]uint32
	numIRQ int

	mem     map[uint32]uint32
	regs    map[Register]uint32
	maskisr bool
	steps   int
}

func newFakeTarget(image map[uint32]uint32, numIRQ int) *fakeTarget {
	t := &fakeTarget{image: image, numIRQ: numIRQ, mem: make(map[uint32]uint32)}
	t.reset()
	return t
}

func (t *fakeTarget) reset() {
	for addr := range t.mem {
		if addr >= 0xe0000000 {
			delete(t.mem, addr)
		}
	}
	reset := t.image[4]
	t.regs = map[Register]uint32{
		SP:  t.image[0],
		PC:  reset &^ 1,
		PSR: (reset & 1) << 24,
	}
}

func (t *fakeTarget) Send(cmd string) (string, error) {
	if cmd == "cortex_m maskisr off" {
		t.maskisr = false
	}
	return "", nil
}

func (t *fakeTarget) Halt() error {
	t.maskisr = true
	return nil
}

func (t *fakeTarget) ResetHalt() error {
	t.reset()
	return nil
}

func (t *fakeTarget) ResetInit() error {
	t.reset()
	return nil
}

func (t *fakeTarget) WriteMemory(addr uint32, words []uint32, width int) error {
	for i, v := range words {
		t.mem[addr+uint32(i*width/8)] = v
	}
	return nil
}

func (t *fakeTarget) reg(name string) Register {
	n, err := strconv.Atoi(name)
	if err != nil {
		panic(err)
	}
	return Register(n)
}

func (t *fakeTarget) WriteRegister(reg string, value uint32) error {
	t.regs[t.reg(reg)] = value
	return nil
}

func (t *fakeTarget) ReadRegister(reg string) (uint32, error) {
	return t.regs[t.reg(reg)], nil
}

func (t *fakeTarget) ReadRegisterList(regs ...string) ([]uint32, error) {
	values := make([]uint32, len(regs))
	for i, reg := range regs {
		values[i], _ = t.ReadRegister(reg)
	}
	return values, nil
}

func (t *fakeTarget) pendingIRQ() int {
	for i := 0; i < t.numIRQ; i++ {
		offset, bit := nvicBit(i)
		if t.mem[NVICISER0Addr+offset]&t.mem[NVICISPR0Addr+offset]&bit != 0 {
			return i
		}
	}
	return -1
}

func (t *fakeTarget) Step() error {
	t.steps++
	if t.maskisr {
		t.regs[PC] += 2
		return nil
	}
	pc, icsr, shcsr := t.regs[PC], t.mem[ICSRAddr], t.mem[SHCSRAddr]
	exc := 0
	switch {
	case icsr&(1<<31) != 0:
		exc = 2
	case t.pendingIRQ() >= 0:
		exc = 16 + t.pendingIRQ()
	case icsr&(1<<28) != 0:
		exc = 14
	case icsr&(1<<26) != 0:
		exc = 15
	case t.mem[DEMCRAddr]&(1<<17) != 0:
		exc = 12
	case pc == MemXNAddr:
		exc = 3
		if shcsr&0x10000 != 0 {
			exc = 4
		}
	default:
		switch t.mem[pc] {
		case 0xdf00:
			exc = 11
		case 0xffff:
			exc = 3
			if shcsr&0x40000 != 0 {
				exc = 6
			}
		case 0x7b75:
			if t.regs[R6] < 0xe0000000 {
				break
			}
			exc = 3
			if shcsr&0x20000 != 0 {
				exc = 5
			}
		case 0xbf00:
		default:
			exc = 3
		}
	}
	if exc == 0 {
		t.regs[PC] = pc + 2
		t.regs[PSR] &^= 0x1ff
		return nil
	}
	vector := t.image[t.mem[VTORAddr]|uint32(exc)*WordSize]
	t.regs[SP] -= 32
	t.regs[LR] = 0xfffffff9
	t.regs[PC] = vector &^ 1
	t.regs[PSR] = (vector&1)<<24 | uint32(exc)
	return nil
}

func testImage() map[uint32]uint32 {
	image := map[uint32]uint32{0: 0x20005000}
	for addr := uint32(4); addr < 0x200; addr += WordSize {
		v := 0x08000000 + addr*0x10
		if addr%3 != 0 {
			v |= 1
		}
		image[addr] = v
	}
	return image
}

func TestCalculateVTORExc(t *testing.T) {
	testCases := []struct {
		addr uint32
		num  int
		vtor uint32
		exc  int
	}{
		{addr: 0x08, num: 76, vtor: 0, exc: 2},
		{addr: 0xfc, num: 76, vtor: 0, exc: 63},
		{addr: 0x100, num: 76, vtor: 0x100, exc: 64},
		{addr: 0x11c, num: 76, vtor: 0x100, exc: 71},
		{addr: 0x134, num: 76, vtor: 0x100, exc: 13},
		{addr: 0x208, num: 76, vtor: 0x200, exc: 2},
		{addr: 0x21c, num: 76, vtor: 0x200, exc: 7},
		{addr: 0x08000010, num: 16, vtor: 0x08000000, exc: 4},
		{addr: 0x08000044, num: 16, vtor: 0x08000040, exc: 1},
		{addr: 0x08000030, num: 32, vtor: 0x08000000, exc: 12},
	}
	for _, tc := range testCases {
		vtor, exc := CalculateVTORExc(tc.addr, tc.num)
		require.Equal(t, tc.vtor, vtor, "addr %08x", tc.addr)
		require.Equal(t, tc.exc, exc, "addr %08x", tc.addr)
	}
}

func TestGenerateExceptionUnhandled(t *testing.T) {
	target := newFakeTarget(testImage(), 60)
	err := GenerateException(target, 0, 7)
	require.Equal(t, &UnhandledExceptionError{Number: 7}, err)
	require.Zero(t, target.steps)
}

func TestPrepare(t *testing.T) {
	target := newFakeTarget(testImage(), 60)
	e := New(target)
	require.NoError(t, e.Prepare(context.Background()))
	require.False(t, target.maskisr)
	require.Equal(t, 76, e.NumExceptions)
	require.Equal(t, uint32(0xdf00), target.mem[SVCInstAddr])
	require.Equal(t, uint32(0xbf00), target.mem[NOPInstAddr])
	require.Equal(t, uint32(0x7b75), target.mem[LDRInstAddr])
	require.Equal(t, uint32(0xffff), target.mem[UndefInstAddr])
}

func TestExtract(t *testing.T) {
	image := testImage()
	target := newFakeTarget(image, 60)
	e := New(target)
	require.NoError(t, e.Prepare(context.Background()))

	var words []Word
	err := e.Extract(context.Background(), 0, 0x200/WordSize, func(w Word) error {
		words = append(words, w)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, words, 0x80)

	missing := map[uint32]bool{
		0x1c: true, 0x20: true, 0x24: true, 0x28: true, 0x34: true,
		0x134: true,
	}
	for _, w := range words {
		if missing[w.Addr] {
			require.False(t, w.OK, "word %08x", w.Addr)
			continue
		}
		require.True(t, w.OK, "word %08x", w.Addr)
		require.Equal(t, image[w.Addr], w.Value, "word %08x", w.Addr)
	}
}

func TestExtractStopsOnCancel(t *testing.T) {
	e := &Extractor{Target: newFakeTarget(testImage(), 60), NumExceptions: 76}
	ctx, cancel := context.WithCancel(context.Background())
	var n int
	err := e.Extract(ctx, 0x100, 8, func(Word) error {
		n++
		if n == 2 {
			cancel()
		}
		return nil
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 2, n)
}

func TestPrepareStopsOnCancel(t *testing.T) {
	target := newFakeTarget(testImage(), 60)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := New(target)
	require.Equal(t, context.Canceled, e.Prepare(ctx))
	require.Zero(t, e.NumExceptions)
	require.Zero(t, target.steps)
}

func TestExtractRange(t *testing.T) {
	testCases := []struct {
		start  uint32
		length int
		ok     bool
	}{
		{start: 0, length: 1 << 30, ok: true},
		{start: 0xfffffffc, length: 1, ok: true},
		{start: 0xfffffffc, length: 2},
		{start: 0x08000000, length: 1 << 30},
		{start: 0, length: -1},
	}
	for _, tc := range testCases {
		err := CheckRange(tc.start, tc.length)
		if tc.ok {
			require.NoError(t, err, "%08x+%d", tc.start, tc.length)
		} else {
			require.Equal(t, ErrAddressRange, err, "%08x+%d", tc.start, tc.length)
		}
	}

	e := &Extractor{Target: newFakeTarget(testImage(), 60), NumExceptions: 76}
	err := e.Extract(context.Background(), 0xfffffffc, 2, func(Word) error {
		t.Fatal("no word expected")
		return nil
	})
	require.Equal(t, ErrAddressRange, err)
}
