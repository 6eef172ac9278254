package main

import (
	"flag"
	"log"

	"github.com/robotalks/blinky.go/pkg/config"
	fx "github.com/robotalks/blinky.go/pkg/framework"
	"github.com/robotalks/blinky.go/pkg/telemetry"
)

var (
	mqttURL    = "mqtt://localhost:1883/blinky/"
	replayFile string
	wsURL      string
)

func init() {
	if val := config.Default().MQTTBrokerURL; val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&replayFile, "replay", replayFile, "Replay a recorded file instead of subscribing.")
	flag.StringVar(&wsURL, "ws", wsURL, "Read events from a websocket URL instead of MQTT.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	tracker := telemetry.NewTracker()
	tracker.OnEvent = printEvent

	if replayFile != "" {
		if err := replay(replayFile, tracker); err != nil {
			log.Fatalln(err)
		}
		for _, id := range tracker.Boards() {
			printSummary(tracker.Board(id))
		}
		return
	}

	loop := fx.NewLoop()
	loop.AddController(fx.ControlFunc(printMessages), tracker)
	if wsURL != "" {
		loop.AddRunnable(websocketSource(wsURL, loop))
	} else {
		src, err := mqttSource(mqttURL, loop)
		if err != nil {
			log.Fatalln(err)
		}
		loop.AddRunnable(src)
	}
	fx.RunOrFail(loop)
}
