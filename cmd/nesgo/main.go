// Package main implements the nesgo NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nesgo/internal/input"
	"nesgo/internal/presenter"
	"nesgo/internal/system"
	"nesgo/internal/version"
)

func main() {
	var (
		romFile  = flag.String("rom", "", "Path to an iNES ROM file")
		headless = flag.Bool("headless", false, "Run without a window")
		frames   = flag.Uint64("frames", 0, "Stop after this many frames (0 = run until the window closes)")
		strict   = flag.Bool("strict", false, "Return IllegalOpcodeError on an undecoded opcode instead of treating it as a 2-cycle NOP")
		dumpDir  = flag.String("dump-dir", "", "Directory for headless PPM frame dumps (this command selects no frames to dump)")
		showVer  = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVer {
		version.PrintBuildInfo()
		return
	}

	if *romFile == "" {
		fmt.Fprintln(os.Stderr, "nesgo: -rom is required")
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*romFile)
	if err != nil {
		log.Fatalf("reading ROM: %v", err)
	}

	sys := system.New()
	sys.SetStrictOpcodes(*strict)
	if err := sys.LoadROM(data, system.ResetMode); err != nil {
		log.Fatalf("loading ROM: %v", err)
	}
	if *frames > 0 {
		sys.SetFrameLimit(*frames)
	}

	setupGracefulShutdown(sys)

	backendKind := presenter.BackendGUI
	if *headless {
		backendKind = presenter.BackendHeadless
	}
	backend := presenter.CreateBackend(backendKind)
	if err := backend.Initialize(presenter.Config{
		Title:    "nesgo",
		Width:    512,
		Height:   480,
		Headless: *headless,
		VSync:    true,
		DumpDir:  *dumpDir,
	}); err != nil {
		log.Fatalf("initializing %s backend: %v", backend.Name(), err)
	}
	defer backend.Cleanup()

	window, err := backend.CreateWindow("nesgo", 512, 480)
	if err != nil {
		log.Fatalf("creating window: %v", err)
	}
	defer window.Cleanup()

	sys.PPU.SetFrameCallback(func() {
		rgb := presenter.IndexedToRGB(sys.FrameBuffer())
		if err := window.RenderFrame(rgb); err != nil {
			log.Printf("render frame: %v", err)
		}
		for _, ev := range window.PollEvents() {
			applyInputEvent(sys, ev)
		}
	})

	// A GUI window owns the OS event loop and must run on the main
	// goroutine; the emulator steps on its own goroutine feeding it
	// frames. Headless mode has no event loop, so it runs inline.
	if runner, ok := window.(interface{ Run() error }); ok {
		go func() {
			if err := sys.RunROM(); err != nil {
				log.Printf("emulation stopped: %v", err)
			}
			window.Cleanup()
		}()
		if err := runner.Run(); err != nil {
			log.Fatalf("window run: %v", err)
		}
		return
	}

	if err := sys.RunROM(); err != nil {
		log.Fatalf("emulation stopped: %v", err)
	}
}

func applyInputEvent(sys *system.System, ev presenter.InputEvent) {
	if ev.Type == presenter.EventQuit {
		sys.Stop()
		return
	}
	controller := sys.Input.Controller1
	if ev.Player == presenter.Player2 {
		controller = sys.Input.Controller2
	}
	controller.SetButton(input.Button(ev.Button), ev.Pressed)
}

func setupGracefulShutdown(sys *system.System) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		sys.Stop()
	}()
}
