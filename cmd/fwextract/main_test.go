package main

import (
	"bytes"
	"context"
	"io/ioutil"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/blinky.go/pkg/extract"
	"github.com/robotalks/blinky.go/pkg/openocd"
)

func TestOutput(t *testing.T) {
	words := []extract.Word{
		{Addr: 0x08000000, Value: 0x20005000, OK: true},
		{Addr: 0x08000004, OK: false},
		{Addr: 0x08000008, Value: 0x08000131, OK: true},
	}
	testCases := []struct {
		name   string
		binary bool
		value  string
		expect []byte
	}{
		{
			name:   "text fill",
			value:  "0xffffffff",
			expect: []byte("08000000: 20005000\n08000004: ffffffff\n08000008: 08000131\n"),
		},
		{
			name:   "text skip",
			value:  "skip",
			expect: []byte("08000000: 20005000\n08000008: 08000131\n"),
		},
		{
			name:   "binary fill",
			binary: true,
			value:  "0",
			expect: []byte{0x00, 0x50, 0x00, 0x20, 0, 0, 0, 0, 0x31, 0x01, 0x00, 0x08},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			out, err := newOutput(&buf, tc.binary, tc.value)
			require.NoError(t, err)
			for _, w := range words {
				require.NoError(t, out.emit(w))
			}
			require.Equal(t, tc.expect, buf.Bytes())
		})
	}
}

func TestParseArgs(t *testing.T) {
	addr, length, err := parseArgs([]string{"0x08000000", "16"})
	require.NoError(t, err)
	require.Equal(t, uint32(0x08000000), addr)
	require.Equal(t, 16, length)

	_, _, err = parseArgs([]string{"0x08000000"})
	require.Error(t, err)
	_, _, err = parseArgs([]string{"flash", "1"})
	require.Error(t, err)

	_, length, err = parseArgs([]string{"0xfffffff0", "4"})
	require.NoError(t, err)
	require.Equal(t, 4, length)
	_, _, err = parseArgs([]string{"0xfffffff0", "5"})
	require.Error(t, err)
	_, _, err = parseArgs([]string{"0x08000000", "0x40000000"})
	require.Error(t, err)

	_, err = newOutput(nil, false, "none")
	require.Error(t, err)
}

func TestJobStopsOnCancel(t *testing.T) {
	// accepts and reads commands without ever answering
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	received := make(chan struct{}, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 64)
		if _, err := conn.Read(buf); err == nil {
			received <- struct{}{}
		}
		ioutil.ReadAll(conn)
	}()

	out, err := newOutput(ioutil.Discard, false, "0")
	require.NoError(t, err)
	j := &job{client: openocd.New(l.Addr().String()), addr: 0x08000000, length: 1, out: out}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- j.Run(ctx) }()

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("no command received")
	}
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("job did not stop")
	}
}
