//go:build !headless

package presenter

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"nesgo/internal/input"
)

// guiBackend drives an ebiten window. Its window scales the NES's
// fixed 256x240 output to fit whatever size the host window grows to.
type guiBackend struct {
	initialized bool
	config      Config
}

func newGUIBackend() Backend { return &guiBackend{} }

func (b *guiBackend) Initialize(cfg Config) error {
	if b.initialized {
		return fmt.Errorf("gui backend already initialized")
	}
	b.config = cfg
	b.initialized = true
	return nil
}

func (b *guiBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("gui backend not initialized")
	}
	w := &guiWindow{
		width:       width,
		height:      height,
		running:     true,
		frameImage:  ebiten.NewImage(256, 240),
		pixelBuffer: image.NewRGBA(image.Rect(0, 0, 256, 240)),
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(b.config.VSync)
	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}
	return w, nil
}

func (b *guiBackend) Cleanup() error     { b.initialized = false; return nil }
func (b *guiBackend) IsHeadless() bool   { return false }
func (b *guiBackend) Name() string       { return "ebiten" }

// guiWindow implements both presenter.Window and ebiten.Game: the
// emulator side calls RenderFrame/PollEvents, ebiten drives
// Update/Draw/Layout on its own loop.
type guiWindow struct {
	width, height int
	running       bool
	frameImage    *ebiten.Image
	pixelBuffer   *image.RGBA
	events        []InputEvent
}

var keyToButton = map[ebiten.Key]struct {
	player Player
	button input.Button
}{
	ebiten.KeyArrowUp:    {Player1, input.ButtonUp},
	ebiten.KeyArrowDown:  {Player1, input.ButtonDown},
	ebiten.KeyArrowLeft:  {Player1, input.ButtonLeft},
	ebiten.KeyArrowRight: {Player1, input.ButtonRight},
	ebiten.KeyJ:          {Player1, input.ButtonA},
	ebiten.KeyK:          {Player1, input.ButtonB},
	ebiten.KeyEnter:      {Player1, input.ButtonStart},
	ebiten.KeySpace:      {Player1, input.ButtonSelect},
}

func (w *guiWindow) ShouldClose() bool { return !w.running }

func (w *guiWindow) RenderFrame(frame [256 * 240]uint32) error {
	img := w.pixelBuffer
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			pixel := frame[y*256+x]
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(pixel >> 16),
				G: uint8(pixel >> 8),
				B: uint8(pixel),
				A: 255,
			})
		}
	}
	w.frameImage.ReplacePixels(img.Pix)
	return nil
}

func (w *guiWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

func (w *guiWindow) Cleanup() error { w.running = false; return nil }

// Update implements ebiten.Game: it samples the keyboard and queues
// InputEvents for the emulator loop to drain on its next PollEvents.
func (w *guiWindow) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		w.events = append(w.events, InputEvent{Type: EventQuit, Pressed: true})
	}
	for key, mapping := range keyToButton {
		if inpututil.IsKeyJustPressed(key) {
			w.events = append(w.events, InputEvent{Type: EventButton, Player: mapping.player, Button: uint8(mapping.button), Pressed: true})
		} else if inpututil.IsKeyJustReleased(key) {
			w.events = append(w.events, InputEvent{Type: EventButton, Player: mapping.player, Button: uint8(mapping.button), Pressed: false})
		}
	}
	return nil
}

// Draw implements ebiten.Game: it scales the fixed NES framebuffer to
// fit the current window size, preserving aspect ratio.
func (w *guiWindow) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{A: 255})
	bounds := screen.Bounds()
	scaleX := float64(bounds.Dx()) / 256
	scaleY := float64(bounds.Dy()) / 240
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	offsetX := (float64(bounds.Dx()) - 256*scale) / 2
	offsetY := (float64(bounds.Dy()) - 240*scale) / 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(w.frameImage, op)
}

// Layout implements ebiten.Game.
func (w *guiWindow) Layout(outsideWidth, outsideHeight int) (int, int) {
	w.width, w.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Run starts ebiten's blocking game loop, marking the window running
// for the duration.
func (w *guiWindow) Run() error {
	w.running = true
	return ebiten.RunGame(w)
}
