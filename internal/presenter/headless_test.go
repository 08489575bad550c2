package presenter

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHeadlessBackendDumpsRequestedFrames(t *testing.T) {
	dir := t.TempDir()
	b := NewHeadlessBackend()
	if err := b.Initialize(Config{Headless: true, DumpFrames: []int{2}, DumpDir: dir}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	win, err := b.CreateWindow("test", 256, 240)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	var frame [256 * 240]uint32
	if err := win.RenderFrame(frame); err != nil {
		t.Fatalf("RenderFrame 1: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "frame_001.ppm")); err == nil {
		t.Fatalf("frame 1 should not have been dumped")
	}
	if err := win.RenderFrame(frame); err != nil {
		t.Fatalf("RenderFrame 2: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "frame_002.ppm")); err != nil {
		t.Fatalf("frame 2 should have been dumped: %v", err)
	}
}

func TestHeadlessWindowNeverRequestsClose(t *testing.T) {
	b := NewHeadlessBackend()
	_ = b.Initialize(Config{Headless: true})
	win, _ := b.CreateWindow("test", 256, 240)
	if win.ShouldClose() {
		t.Fatalf("headless window should never request close on its own")
	}
}
