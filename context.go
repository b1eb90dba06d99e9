package bmcapture

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/jd-boyd/bmcapture/internal/driver"

	// Link the built-in capture backends into the registry.
	_ "github.com/jd-boyd/bmcapture/internal/driver/fake"
	_ "github.com/jd-boyd/bmcapture/internal/driver/v4l2"
)

// Context owns a capture backend and the devices opened from it. One Context
// per process is typical.
type Context struct {
	mu      sync.Mutex
	backend driver.Backend
	devices []*Device
	closed  bool
}

// NewContext opens the highest-priority backend that reports at least one
// capture device.
func NewContext() (*Context, error) {
	b, err := driver.OpenDefault()
	if err != nil {
		return nil, errors.Wrap(err, "open capture backend")
	}
	log.Info("using capture backend %q", b.Name())
	return &Context{backend: b}, nil
}

// NewContextWithBackend opens the named backend regardless of priority.
// Backend names are listed by Backends.
func NewContextWithBackend(name string) (*Context, error) {
	b, err := driver.Open(name)
	if err != nil {
		return nil, err
	}
	return &Context{backend: b}, nil
}

// Backends lists the available backend names in priority order.
func Backends() []string {
	return driver.Backends()
}

// NumDevices returns how many capture devices the backend reports.
func (ctx *Context) NumDevices() (int, error) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.closed {
		return 0, errDeviceClosed
	}
	devs, err := ctx.backend.Devices()
	if err != nil {
		return 0, err
	}
	return len(devs), nil
}

// DeviceNames lists the display names of the backend's capture devices.
func (ctx *Context) DeviceNames() ([]string, error) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.closed {
		return nil, errDeviceClosed
	}
	devs, err := ctx.backend.Devices()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(devs))
	for i, d := range devs {
		names[i] = d.Name()
	}
	return names, nil
}

// OpenDevice opens the capture device at the given index.
func (ctx *Context) OpenDevice(index int) (*Device, error) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.closed {
		return nil, errDeviceClosed
	}
	devs, err := ctx.backend.Devices()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate devices")
	}
	if index < 0 || index >= len(devs) {
		return nil, errors.Errorf("device index %d out of range (have %d)", index, len(devs))
	}
	d := newDevice(devs[index])
	ctx.devices = append(ctx.devices, d)
	return d, nil
}

// Close closes all opened devices and releases the backend.
func (ctx *Context) Close() error {
	ctx.mu.Lock()
	if ctx.closed {
		ctx.mu.Unlock()
		return nil
	}
	ctx.closed = true
	devices := ctx.devices
	ctx.devices = nil
	ctx.mu.Unlock()

	for _, d := range devices {
		d.Close()
	}
	return ctx.backend.Close()
}
