package presenter

import (
	"fmt"
	"os"
	"path/filepath"
)

// HeadlessBackend drives runs with no window: used by -headless and
// by system-level tests that need a Backend without a display.
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow tracks a frame counter and optionally dumps selected
// frames to PPM files for visual regression checks.
type HeadlessWindow struct {
	frameCount int
	dumpSet    map[int]bool
	dumpDir    string
}

// NewHeadlessBackend constructs a HeadlessBackend.
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

func (b *HeadlessBackend) Initialize(cfg Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}
	b.config = cfg
	b.initialized = true
	return nil
}

func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("headless backend not initialized")
	}
	dumpSet := make(map[int]bool, len(b.config.DumpFrames))
	for _, f := range b.config.DumpFrames {
		dumpSet[f] = true
	}
	return &HeadlessWindow{dumpSet: dumpSet, dumpDir: b.config.DumpDir}, nil
}

func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

func (b *HeadlessBackend) IsHeadless() bool { return true }
func (b *HeadlessBackend) Name() string     { return "headless" }

func (w *HeadlessWindow) ShouldClose() bool { return false }

func (w *HeadlessWindow) RenderFrame(frame [256 * 240]uint32) error {
	w.frameCount++
	if !w.dumpSet[w.frameCount] {
		return nil
	}
	path := fmt.Sprintf("frame_%03d.ppm", w.frameCount)
	if w.dumpDir != "" {
		path = filepath.Join(w.dumpDir, path)
	}
	return writePPM(path, frame)
}

func (w *HeadlessWindow) PollEvents() []InputEvent { return nil }
func (w *HeadlessWindow) Cleanup() error            { return nil }

func writePPM(path string, frame [256 * 240]uint32) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	fmt.Fprintf(file, "P3\n256 240\n255\n")
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			pixel := frame[y*256+x]
			r := (pixel >> 16) & 0xFF
			g := (pixel >> 8) & 0xFF
			b := pixel & 0xFF
			fmt.Fprintf(file, "%d %d %d ", r, g, b)
		}
		fmt.Fprintln(file)
	}
	return nil
}
