package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/blinky.go/pkg/blink"
	"github.com/robotalks/blinky.go/pkg/comm/stream"
	fx "github.com/robotalks/blinky.go/pkg/framework"
	"github.com/robotalks/blinky.go/pkg/hal/sim"
	"github.com/robotalks/blinky.go/pkg/telemetry"
)

type messages []fx.Message

func (m *messages) PostMessage(msg fx.Message) {
	*m = append(*m, msg)
}

func TestPostPacket(t *testing.T) {
	var posted messages
	postPacket(&posted, "b1", nil)
	postPacket(&posted, "", nil)
	postPacket(&posted, "b1", []byte{0xff})
	pkt, err := telemetry.Encode(telemetry.NewBoardMeta("b1", "sim", 1000, blink.DefaultConfig))
	require.NoError(t, err)
	postPacket(&posted, "b1", pkt)

	require.Len(t, posted, 2)
	require.Equal(t, &telemetry.BoardGone{BoardID: "b1"}, posted[0])
	require.IsType(t, &telemetry.BoardMeta{}, posted[1])
}

func TestReplay(t *testing.T) {
	dir, err := ioutil.TempDir("", "ledmon")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	fn := filepath.Join(dir, "record")

	f, err := os.Create(fn)
	require.NoError(t, err)
	rec := stream.New(f)
	board := sim.NewBoard()
	board.Subscribe(sim.PinChangedFunc(func(ev sim.PinEvent) {
		pkt, err := telemetry.Encode(telemetry.NewPinEvent("b1", ev, time.Now()))
		require.NoError(t, err)
		require.NoError(t, rec.WritePacket(pkt))
	}))
	l := blink.New(board, board, blink.DefaultConfig)
	l.Start()
	l.RunN(5)
	require.NoError(t, f.Close())

	tracker := telemetry.NewTracker()
	require.NoError(t, replay(fn, tracker))
	s := tracker.Board("b1")
	require.NotNil(t, s)
	require.Equal(t, uint64(6), s.Events)
	require.Equal(t, uint64(5), s.Toggles)
	require.Zero(t, s.ParityErrors)
	require.Zero(t, s.Missed)
}
