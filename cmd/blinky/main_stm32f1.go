//go:build stm32f103
// +build stm32f103

package main

import (
	"reflect"
	"runtime/volatile"
	"unsafe"

	"github.com/robotalks/blinky.go/pkg/blink"
	"github.com/robotalks/blinky.go/pkg/hal/stm32f1"
)

// tinygo flash -target=nucleo-f103rb -tags stm32f103 ./cmd/blinky

var flashText = blink.FlashText

// keepFlashText reads the first byte of FlashText through a volatile
// load, so the linker can't drop the string from the image.
func keepFlashText() uint8 {
	hdr := (*reflect.StringHeader)(unsafe.Pointer(&flashText))
	return volatile.LoadUint8((*uint8)(unsafe.Pointer(hdr.Data)))
}

func main() {
	keepFlashText()
	blink.New(stm32f1.New(), stm32f1.BusyWait{}, blink.DefaultConfig).Main()
}
