// applet-sim runs the display server with a terminal rendering of the 9x34
// LED panel, for developing applets without the physical matrix. Each LED is
// drawn as a block whose brightness follows the pushed intensity.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/sigroot/FW-LED-Applet-Interface/config"
	"github.com/sigroot/FW-LED-Applet-Interface/server"
	"github.com/sigroot/FW-LED-Applet-Interface/server/store"
)

const (
	ledGlyph = '█'
	// Two terminal cells per LED keeps the aspect ratio close to the panel.
	cellsPerLED = 2
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config file")
	port := flag.Uint("port", 0, "Listen port (overrides config)")
	dbPath := flag.String("db", "", "SQLite path for frame persistence (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = uint16(*port)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	panel := server.NewPanel()
	srv := server.NewServer(cfg.Addr(), panel)
	if cfg.DBPath != "" {
		frames, err := store.Open(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open frame store: %v\n", err)
			os.Exit(1)
		}
		defer frames.Close()
		srv.SetFrameStore(frames)
	}
	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		os.Exit(1)
	}

	if err := runUI(panel, srv, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "simulator failed: %v\n", err)
		os.Exit(1)
	}
}

func runUI(panel *server.Panel, srv *server.Server, cfg config.Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault)

	// Silence the server's stderr logging while tcell owns the terminal.
	log.SetOutput(io.Discard)

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	refresh := time.Duration(cfg.Refresh)
	if refresh <= 0 {
		refresh = time.Second
	}
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	title := fmt.Sprintf("LED panel on %s", srv.Addr())
	for {
		draw(screen, panel.Snapshot(), title)

		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-panel.Changed():
		case <-ticker.C:
		}
	}
}

func draw(screen tcell.Screen, frame server.Frame, title string) {
	screen.Clear()

	panelWidth := server.PanelCols * cellsPerLED
	titleCol := (panelWidth - runewidth.StringWidth(title)) / 2
	if titleCol < 0 {
		titleCol = 0
	}
	drawText(screen, titleCol, 0, title, tcell.StyleDefault.Foreground(tcell.ColorGray))

	for y, row := range frame {
		for x, v := range row {
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(v), int32(v), int32(v)))
			for i := 0; i < cellsPerLED; i++ {
				screen.SetContent(x*cellsPerLED+i, y+1, ledGlyph, nil, style)
			}
		}
	}

	footer := "q to quit"
	drawText(screen, 0, server.PanelRows+2, footer, tcell.StyleDefault.Foreground(tcell.ColorGray))
	screen.Show()
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		screen.SetContent(col, y, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
}
