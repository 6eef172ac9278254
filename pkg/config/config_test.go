package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/blinky.go/pkg/openocd"
)

func TestNewConfigCopiesDefault(t *testing.T) {
	conf := NewConfig()
	require.NotEmpty(t, conf.BoardID)
	conf.BoardID = "changed"
	require.NotEqual(t, "changed", Default().BoardID)
}

func TestNewBoardLink(t *testing.T) {
	conf := &Config{BoardID: "b1"}
	link, err := conf.NewBoardLink(nil)
	require.NoError(t, err)
	require.Nil(t, link)

	conf.MQTTBrokerURL = "mqtt://localhost:1883/blinky/"
	link, err = conf.NewBoardLink([]byte("meta"))
	require.NoError(t, err)
	require.Equal(t, "b1", link.BoardID)
	require.Equal(t, "blinky/", link.Queue.TopicPrefix)
}

func TestNewOCDClient(t *testing.T) {
	require.Equal(t, openocd.DefaultAddr, (&Config{}).NewOCDClient().Addr)
	require.Equal(t, "target:4444", (&Config{OCDAddr: "target:4444"}).NewOCDClient().Addr)
}
