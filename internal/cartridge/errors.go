package cartridge

import "fmt"

// InvalidHeaderError is returned when the iNES magic bytes don't match
// or the header declares zero PRG-ROM banks.
type InvalidHeaderError struct{}

func (e *InvalidHeaderError) Error() string { return "invalid iNES header" }

// IoTooShortError is returned when the ROM byte range is smaller than
// the sizes the header claims.
type IoTooShortError struct{}

func (e *IoTooShortError) Error() string { return "ROM data shorter than header declares" }

// UnsupportedMapperError is returned for any mapper ID outside {0, 1, 4}.
type UnsupportedMapperError struct {
	ID uint8
}

func (e *UnsupportedMapperError) Error() string {
	return fmt.Sprintf("unsupported mapper %d", e.ID)
}
