// Package main provides the Axon CLI.
package main

import (
	"fmt"
	"os"

	"github.com/axon-gpu/axon/driver"
	"github.com/axon-gpu/axon/driver/hostsim"
	"github.com/axon-gpu/axon/memory"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Axon %s\n", version)
			return
		case "selfcheck":
			if err := selfcheck(); err != nil {
				fmt.Fprintf(os.Stderr, "selfcheck failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("selfcheck ok")
			return
		}
	}

	fmt.Println("Axon - Owned Accelerator Memory for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version      Show version")
	fmt.Println("  selfcheck    Run a host->device->host transfer round trip")
}

// selfcheck pushes a small buffer host -> device -> host through the
// host-simulated driver and verifies the round trip.
func selfcheck() error {
	rt := hostsim.New()
	defer rt.Close()
	ctx := memory.NewContext(rt)

	data := []float32{1, 2, 3, 4, 5}

	host, err := memory.NewBufferFromSlice[float32, memory.Locked](ctx, data)
	if err != nil {
		return err
	}
	defer host.Free()

	dev, err := memory.NewBufferUninitialized[float32, memory.Device](ctx, host.Len())
	if err != nil {
		return err
	}
	defer dev.Free()

	if err := memory.CopyBuffer(dev, host); err != nil {
		return err
	}

	back := make([]float32, dev.Len())
	if err := memory.CopyOut(back, dev); err != nil {
		return err
	}
	for i := range data {
		if back[i] != data[i] {
			return fmt.Errorf("round trip mismatch at %d: got %v, want %v", i, back[i], data[i])
		}
	}

	used, peak := rt.Stats(driver.Device)
	fmt.Printf("device region: %d bytes live, %d peak\n", used, peak)
	return nil
}
