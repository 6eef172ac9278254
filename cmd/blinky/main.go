//go:build !stm32f103
// +build !stm32f103

package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/blinky.go/pkg/blink"
	"github.com/robotalks/blinky.go/pkg/comm"
	"github.com/robotalks/blinky.go/pkg/comm/stream"
	"github.com/robotalks/blinky.go/pkg/comm/websocket"
	"github.com/robotalks/blinky.go/pkg/config"
	fx "github.com/robotalks/blinky.go/pkg/framework"
	"github.com/robotalks/blinky.go/pkg/hal/sim"
	"github.com/robotalks/blinky.go/pkg/telemetry"
)

const mcu = "STM32F103RB (simulated)"

var (
	clockHz     = sim.DefaultClockHz
	speed       = 1.0
	delayCycles = uint(blink.DefaultDelayCycles)
	wsAddr      string
	recordFile  string
	garble      bool
)

func init() {
	config.SetupFlags()
	flag.Uint64Var(&clockHz, "clock", clockHz, "Simulated core clock in Hz")
	flag.Float64Var(&speed, "speed", speed, "Simulation speed factor, 0 runs unpaced")
	flag.UintVar(&delayCycles, "delay", delayCycles, "Busy-wait cycles between toggles")
	flag.StringVar(&wsAddr, "ws", wsAddr, "Serve events over websocket on this address")
	flag.StringVar(&recordFile, "record", recordFile, "Record events to this file")
	flag.BoolVar(&garble, "garble", garble, "Start with random register contents")
}

func newLoopConfig(delayCycles uint) (blink.Config, error) {
	conf := blink.DefaultConfig
	if uint64(delayCycles) > math.MaxUint32 {
		return conf, fmt.Errorf("-delay %d exceeds %d cycles", delayCycles, uint32(math.MaxUint32))
	}
	conf.DelayCycles = uint32(delayCycles)
	return conf, nil
}

func main() {
	flag.Parse()
	defer glog.Flush()
	conf := config.Default()
	if clockHz == 0 {
		glog.Exit("-clock must be positive")
	}

	board := sim.NewBoard()
	board.ClockHz = clockHz
	board.Record = false
	if garble {
		board.Garble(rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	loopConf, err := newLoopConfig(delayCycles)
	if err != nil {
		glog.Exit(err)
	}
	meta, err := telemetry.Encode(telemetry.NewBoardMeta(conf.BoardID, mcu, clockHz, loopConf))
	if err != nil {
		glog.Exit(err)
	}

	var writers comm.MultiWriter
	var runnables []fx.Runnable

	link, err := conf.NewBoardLink(meta)
	if err != nil {
		glog.Exitf("MQTT: %v", err)
	}
	if link != nil {
		writers.Add(link)
		runnables = append(runnables, fx.NamedRun("mqtt", link))
	}

	if wsAddr != "" {
		hub := websocket.NewHub()
		writers.Add(hub)
		runnables = append(runnables, fx.NamedRun("websocket", &websocket.Server{Addr: wsAddr, Hub: hub}))
	}

	if recordFile != "" {
		f, err := os.Create(recordFile)
		if err != nil {
			glog.Exit(err)
		}
		defer f.Close()
		rec := stream.New(f)
		if err := rec.WritePacket(meta); err != nil {
			glog.Exit(err)
		}
		writers.Add(rec)
	}

	pub := telemetry.NewPublisher(conf.BoardID, &writers)
	board.Subscribe(pub)
	board.Subscribe(sim.PinChangedFunc(func(ev sim.PinEvent) {
		glog.V(1).Infof("%s pin %d %s toggles=%d t=%s", ev.Port, ev.Pin, ev.Level, ev.Toggles, ev.Elapsed)
	}))

	firmware := blink.New(board, newPacer(board, speed), loopConf)
	runnables = append(runnables, pub, fx.NamedRun("firmware", fx.RunFunc(func(ctx context.Context) error {
		return fx.RunWithContext(ctx, func() error {
			firmware.Main()
			return nil
		})
	})))

	glog.Infof("board %s blinking %s %s every %s", conf.BoardID, loopConf.Port, loopConf.Pins,
		time.Duration(uint64(loopConf.DelayCycles)*uint64(time.Second)/clockHz))
	if err := fx.NewRunner().HandleSignals().Go(runnables...).Wait(); err != nil {
		glog.Error(err)
		glog.Flush()
		os.Exit(1)
	}
}
