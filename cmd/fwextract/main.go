package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/golang/glog"

	"github.com/robotalks/blinky.go/pkg/extract"
	fx "github.com/robotalks/blinky.go/pkg/framework"
	"github.com/robotalks/blinky.go/pkg/openocd"
)

const usage = `Usage: fwextract [flags] ADDRESS LENGTH

Extracts LENGTH words from ADDRESS of a read-protected Cortex-M through
OpenOCD.

Flags:
`

var (
	fillValue = "0xffffffff"
	binaryOut bool
	host      = "localhost"
	port      = 6666
)

func init() {
	flag.StringVar(&fillValue, "value", fillValue, `Value for words which can't be extracted, "skip" to omit them`)
	flag.BoolVar(&binaryOut, "binary", binaryOut, "Output little-endian binary words")
	flag.StringVar(&host, "host", host, "OpenOCD Tcl interface host")
	flag.IntVar(&port, "port", port, "OpenOCD Tcl interface port")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
}

// output writes extracted words in text or binary form.
type output struct {
	w      *bufio.Writer
	binary bool
	skip   bool
	fill   uint32
}

func newOutput(w io.Writer, binary bool, value string) (*output, error) {
	o := &output{w: bufio.NewWriter(w), binary: binary}
	if value == "skip" {
		o.skip = true
		return o, nil
	}
	fill, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid value %q: %v", value, err)
	}
	o.fill = uint32(fill)
	return o, nil
}

func (o *output) emit(w extract.Word) error {
	value := w.Value
	if !w.OK {
		if o.skip {
			return nil
		}
		value = o.fill
	}
	if o.binary {
		var buf [extract.WordSize]byte
		binary.LittleEndian.PutUint32(buf[:], value)
		if _, err := o.w.Write(buf[:]); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintf(o.w, "%08x: %08x\n", w.Addr, value); err != nil {
		return err
	}
	return o.w.Flush()
}

func parseArgs(args []string) (uint32, int, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("ADDRESS and LENGTH are required")
	}
	addr, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid address %q: %v", args[0], err)
	}
	length, err := strconv.ParseUint(args[1], 0, 31)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid length %q: %v", args[1], err)
	}
	if err := extract.CheckRange(uint32(addr), int(length)); err != nil {
		return 0, 0, fmt.Errorf("invalid range %s+%s words: %v", args[0], args[1], err)
	}
	return uint32(addr), int(length), nil
}

// job extracts one range through an OpenOCD client.
type job struct {
	client *openocd.Client
	addr   uint32
	length int
	out    *output
}

// Run implements fx.Runnable. Pending OpenOCD commands are abandoned
// when ctx is done.
func (j *job) Run(ctx context.Context) error {
	j.client.Context = ctx
	if err := j.client.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to connect to OpenOCD: %v", err)
	}
	defer j.client.Close()

	e := extract.New(j.client)
	err := e.Prepare(ctx)
	if err == nil {
		err = e.Extract(ctx, j.addr, j.length, j.out.emit)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func main() {
	flag.Parse()
	defer glog.Flush()
	addr, length, err := parseArgs(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}
	out, err := newOutput(os.Stdout, binaryOut, fillValue)
	if err != nil {
		glog.Exit(err)
	}

	fx.RunOrFail(fx.NamedRun("extract", &job{
		client: openocd.New(net.JoinHostPort(host, strconv.Itoa(port))),
		addr:   addr,
		length: length,
		out:    out,
	}))
}
