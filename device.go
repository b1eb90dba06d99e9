package bmcapture

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/jd-boyd/bmcapture/internal/driver"
)

// Device is one capture device. Channels opened from it capture independent
// streams; the device-level capture methods operate on an implicit channel
// bound to the currently selected port, for callers that only ever need one
// stream.
type Device struct {
	mu       sync.Mutex
	drv      driver.Device
	closed   bool
	channels []*Channel

	selectedPort int

	// def is the implicit channel backing the device-level capture
	// methods, created on first StartCapture.
	def *Channel
}

func newDevice(drv driver.Device) *Device {
	return &Device{drv: drv}
}

// Name returns the device's display name.
func (d *Device) Name() string {
	return d.drv.Name()
}

// Ports lists the device's physical input connectors.
func (d *Device) Ports() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errDeviceClosed
	}
	return d.drv.Connectors()
}

// SelectPort routes the given connector to the device input and makes it the
// target of the device-level capture methods.
func (d *Device) SelectPort(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errDeviceClosed
	}
	if err := d.drv.SelectConnector(index); err != nil {
		return errors.Wrapf(err, "select port %d", index)
	}
	d.selectedPort = index
	return nil
}

// MaxChannels reports how many simultaneous capture channels the device
// supports.
func (d *Device) MaxChannels() int {
	return d.drv.MaxChannels()
}

// NewChannel opens a capture channel on the given port. The channel is
// inert until StartCapture.
func (d *Device) NewChannel(port int) (*Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errDeviceClosed
	}
	if max := d.drv.MaxChannels(); len(d.channels) >= max {
		return nil, errors.Errorf("device supports at most %d channel(s)", max)
	}
	c := newChannel(d, port)
	d.channels = append(d.channels, c)
	return c, nil
}

// Close stops all channels and releases the device.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	channels := d.channels
	d.channels = nil
	d.def = nil
	d.mu.Unlock()

	for _, c := range channels {
		c.StopCapture()
	}
	return d.drv.Close()
}

// openInput implements deviceHost.
func (d *Device) openInput(port, width, height int, frameRate float64) (driver.Input, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errDeviceClosed
	}
	return d.drv.OpenInput(port, driver.Mode{
		Width:     width,
		Height:    height,
		FrameRate: frameRate,
	})
}

// forgetChannel implements deviceHost.
func (d *Device) forgetChannel(c *Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, ch := range d.channels {
		if ch == c {
			d.channels = append(d.channels[:i], d.channels[i+1:]...)
			break
		}
	}
	if d.def == c {
		d.def = nil
	}
}

// defaultChannel returns the implicit channel for the selected port, creating
// it if needed. Caller holds d.mu.
func (d *Device) defaultChannel() (*Channel, error) {
	if d.closed {
		return nil, errDeviceClosed
	}
	if d.def == nil {
		if max := d.drv.MaxChannels(); len(d.channels) >= max {
			return nil, errors.Errorf("device supports at most %d channel(s)", max)
		}
		d.def = newChannel(d, d.selectedPort)
		d.channels = append(d.channels, d.def)
	}
	return d.def, nil
}

// StartCapture begins capturing on the selected port through the device's
// implicit channel.
func (d *Device) StartCapture(width, height int, frameRate float64, mode CaptureMode) error {
	d.mu.Lock()
	c, err := d.defaultChannel()
	d.mu.Unlock()
	if err != nil {
		return err
	}
	return c.StartCapture(width, height, frameRate, mode)
}

// StopCapture stops the implicit channel.
func (d *Device) StopCapture() {
	d.mu.Lock()
	c := d.def
	d.mu.Unlock()
	if c != nil {
		c.StopCapture()
	}
}

// Update promotes the freshest frame on the implicit channel.
func (d *Device) Update() bool {
	d.mu.Lock()
	c := d.def
	d.mu.Unlock()
	if c == nil {
		return false
	}
	return c.Update()
}

// ReadFrame reads from the implicit channel.
func (d *Device) ReadFrame(format PixelFormat, dst []byte) (Geometry, bool) {
	d.mu.Lock()
	c := d.def
	d.mu.Unlock()
	if c == nil {
		return Geometry{}, false
	}
	return c.ReadFrame(format, dst)
}

// FrameSize returns the implicit channel's frame size in bytes for the
// given format, or 0 when not capturing.
func (d *Device) FrameSize(format PixelFormat) int {
	d.mu.Lock()
	c := d.def
	d.mu.Unlock()
	if c == nil {
		return 0
	}
	return c.FrameSize(format)
}

// HasValidSignal reports the implicit channel's signal lock.
func (d *Device) HasValidSignal() bool {
	d.mu.Lock()
	c := d.def
	d.mu.Unlock()
	return c != nil && c.HasValidSignal()
}

// HasStableFrameRate reports the implicit channel's frame-rate stability.
func (d *Device) HasStableFrameRate() bool {
	d.mu.Lock()
	c := d.def
	d.mu.Unlock()
	return c != nil && c.HasStableFrameRate()
}

// WaitForSignal waits for the implicit channel to acquire a signal lock.
func (d *Device) WaitForSignal(timeout time.Duration) bool {
	d.mu.Lock()
	c := d.def
	d.mu.Unlock()
	return c != nil && c.WaitForSignal(timeout)
}
