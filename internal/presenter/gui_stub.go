//go:build headless

package presenter

import "fmt"

// guiBackend is unavailable in headless builds; its Initialize and
// CreateWindow always return an error so callers fail fast instead of
// silently falling back to headless behavior.
type guiBackend struct{}

func newGUIBackend() Backend { return &guiBackend{} }

func (b *guiBackend) Initialize(cfg Config) error {
	return fmt.Errorf("gui backend not available in a headless build")
}

func (b *guiBackend) CreateWindow(title string, width, height int) (Window, error) {
	return nil, fmt.Errorf("gui backend not available in a headless build")
}

func (b *guiBackend) Cleanup() error   { return nil }
func (b *guiBackend) IsHeadless() bool { return true }
func (b *guiBackend) Name() string     { return "gui-stub" }
