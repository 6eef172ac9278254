// Package config provides the common options of the blinky commands.
package config

import (
	"flag"
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/robotalks/blinky.go/pkg/comm/mqtt"
	"github.com/robotalks/blinky.go/pkg/openocd"
)

// Config provides common options shared by commands.
type Config struct {
	// BoardID identifies the board in telemetry topics.
	BoardID string

	// MQTTBrokerURL specifies the MQTT broker to use, empty to disable.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string

	// OCDAddr is the OpenOCD Tcl RPC address.
	OCDAddr string
}

var defaultConfig = Config{
	OCDAddr: openocd.DefaultAddr,
}

func init() {
	if val := os.Getenv("BLINKY_BOARD_ID"); val != "" {
		defaultConfig.BoardID = val
	} else {
		defaultConfig.BoardID = MachineID()
	}
	if val := os.Getenv("BLINKY_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("BLINKY_OCD_ADDR"); val != "" {
		defaultConfig.OCDAddr = val
	}
}

// MachineID retrieves the unique ID identifying the machine, or
// "blinky" when it is not available.
func MachineID() string {
	id, err := machineid.ID()
	if err != nil {
		glog.Warningf("machine id: %v", err)
		return "blinky"
	}
	return id
}

// SetupFlags sets command line flags for board telemetry.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BoardID, "id", defaultConfig.BoardID, "Board ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
}

// SetupOCDFlags sets command line flags for the OpenOCD connection.
func SetupOCDFlags() {
	flag.StringVar(&defaultConfig.OCDAddr, "ocd", defaultConfig.OCDAddr, "OpenOCD Tcl RPC address")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewBoardLink creates the MQTT link of the board, nil if no broker is
// configured.
func (c *Config) NewBoardLink(meta []byte) (*mqtt.BoardLink, error) {
	if c.MQTTBrokerURL == "" {
		return nil, nil
	}
	return mqtt.NewBoardLink(c.MQTTBrokerURL, c.BoardID, meta)
}

// NewOCDClient creates an OpenOCD client, not yet connected.
func (c *Config) NewOCDClient() *openocd.Client {
	return openocd.New(c.OCDAddr)
}
