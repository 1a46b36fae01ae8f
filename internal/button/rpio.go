package button

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPIOReader reads a Raspberry Pi GPIO pin through /dev/gpiomem.
type RPIOReader struct {
	pin rpio.Pin
}

// OpenRPIO maps the GPIO memory and configures pin as an input with the
// internal pull-up enabled. Call Close when done.
func OpenRPIO(pin int) (*RPIOReader, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open gpio: %w", err)
	}

	p := rpio.Pin(pin)
	p.Input()
	p.PullUp()

	return &RPIOReader{pin: p}, nil
}

// Read implements Reader.
func (r *RPIOReader) Read() (Level, error) {
	if r.pin.Read() == rpio.Low {
		return Low, nil
	}
	return High, nil
}

// Close releases the GPIO memory mapping.
func (r *RPIOReader) Close() error {
	return rpio.Close()
}
