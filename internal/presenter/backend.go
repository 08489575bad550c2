package presenter

// Backend is a rendering target: the ebiten-backed GUI window or the
// headless backend used by tests and -headless runs.
type Backend interface {
	Initialize(cfg Config) error
	CreateWindow(title string, width, height int) (Window, error)
	Cleanup() error
	IsHeadless() bool
	Name() string
}

// Window receives one NES frame at a time and reports host events
// back to the caller.
type Window interface {
	ShouldClose() bool
	RenderFrame(frame [256 * 240]uint32) error
	PollEvents() []InputEvent
	Cleanup() error
}

// Config configures a Backend's window.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	Headless   bool
	// DumpFrames, when non-empty, writes these 1-based frame numbers
	// as PPM images under DumpDir (headless backend only).
	DumpFrames []int
	DumpDir    string
}

// InputEventType distinguishes button events from a window-close
// request.
type InputEventType int

const (
	EventButton InputEventType = iota
	EventQuit
)

// Player identifies which controller port an InputEvent targets.
type Player int

const (
	Player1 Player = iota
	Player2
)

// InputEvent reports one edge-triggered button transition or a quit
// request, collected by a Window and drained via PollEvents.
type InputEvent struct {
	Type    InputEventType
	Player  Player
	Button  uint8 // input.Button bit mask value
	Pressed bool
}

// BackendKind selects which concrete Backend CreateBackend returns.
type BackendKind string

const (
	BackendGUI      BackendKind = "gui"
	BackendHeadless BackendKind = "headless"
)

// CreateBackend constructs the requested backend. BackendGUI requires
// the ebiten-backed build (the default; see gui_stub.go for the
// headless-only build tag).
func CreateBackend(kind BackendKind) Backend {
	switch kind {
	case BackendHeadless:
		return NewHeadlessBackend()
	default:
		return newGUIBackend()
	}
}
