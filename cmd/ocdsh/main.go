package main

import (
	"github.com/robotalks/blinky.go/pkg/config"
	"github.com/robotalks/blinky.go/pkg/ocdsh"
)

//go-build: CGO_ENABLED=0

func init() {
	config.SetupOCDFlags()
}

func main() {
	ocdsh.Main()
}
