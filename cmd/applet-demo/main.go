// applet-demo claims three applet slots and pushes test patterns, mirroring
// what a real applet author does: mutate local buffers, then write them.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sigroot/FW-LED-Applet-Interface/applet"
)

func gradient(offset int) applet.Grid {
	var g applet.Grid
	for y := range g {
		for x := range g[y] {
			v := y*len(g[y]) + x + 1 + offset
			if v > 255 {
				v = 255
			}
			g[y][x] = uint8(v)
		}
	}
	return g
}

func run(port uint16) error {
	// Slot 0 only has a separator bar; claim it in Variable mode so the bar
	// is ours to drive.
	status, err := applet.Dial(port, 0, applet.SeparatorVariable)
	if err != nil {
		return fmt.Errorf("claim slot 0: %w", err)
	}
	defer status.Close()

	status.SetBar(applet.Bar{255, 150, 50, 10, 0, 10, 50, 150, 255})
	if err := status.WriteBar(); err != nil {
		return fmt.Errorf("write slot 0 bar: %w", err)
	}

	for slot := uint8(1); slot <= 3; slot++ {
		mode := applet.SeparatorSolid
		if slot == 3 {
			mode = applet.SeparatorDotted
		}
		h, err := applet.Dial(port, slot, mode)
		if err != nil {
			return fmt.Errorf("claim slot %d: %w", slot, err)
		}
		defer h.Close()

		h.SetGrid(gradient(int(slot-1) * 100))
		if err := h.WriteGrid(); err != nil {
			return fmt.Errorf("write slot %d grid: %w", slot, err)
		}
	}

	// Keep the connections open so the slots stay claimed until interrupted.
	fmt.Println("patterns pushed; press enter to release the slots")
	_, _ = fmt.Scanln()
	return nil
}

func main() {
	port := flag.Uint("port", 27072, "Display server port")
	flag.Parse()

	if err := run(uint16(*port)); err != nil {
		fmt.Fprintf(os.Stderr, "applet-demo: %v\n", err)
		os.Exit(1)
	}
}
