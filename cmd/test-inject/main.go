// Command test-inject feeds synthetic relative pointer motion straight
// into the tty-udev backend's uinput device, bypassing the test channel
// entirely. It exists for exercising the virtual pointer device itself
// (e.g. confirming /dev/uinput access and kernel input delivery) the way
// the teacher kept a handful of standalone cmd/test-* probes alongside
// its cobra tree for driving individual subsystems in isolation.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bnema/stilch/internal/backend"
	"github.com/bnema/stilch/internal/coordinator"
	"github.com/bnema/stilch/internal/eventbus"
	"github.com/bnema/stilch/internal/registry"
	"github.com/bnema/stilch/internal/voutput"
	"github.com/bnema/stilch/internal/workspace"
)

func main() {
	dx := flag.Int("dx", 10, "relative x motion per step")
	dy := flag.Int("dy", 0, "relative y motion per step")
	steps := flag.Int("steps", 20, "number of motion events to send")
	interval := flag.Duration("interval", 50*time.Millisecond, "delay between events")
	flag.Parse()

	coord := coordinator.New(registry.New(), workspace.New(), voutput.New(), eventbus.New())
	b, err := backend.New(backend.TTYUDev, coord)
	if err != nil {
		fmt.Fprintf(os.Stderr, "test-inject: %v\n", err)
		os.Exit(1)
	}
	defer b.Close()

	injector, ok := b.(backend.Injector)
	if !ok {
		fmt.Fprintln(os.Stderr, "test-inject: backend does not accept injected motion")
		os.Exit(1)
	}

	for i := 0; i < *steps; i++ {
		if err := injector.InjectRelativeMotion(int32(*dx), int32(*dy)); err != nil {
			fmt.Fprintf(os.Stderr, "test-inject: step %d: %v\n", i, err)
			os.Exit(1)
		}
		time.Sleep(*interval)
	}
}
