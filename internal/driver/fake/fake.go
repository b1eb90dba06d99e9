/*
Package fake provides a synthetic capture backend that generates UYVY color
bars at a configurable frame rate. It stands in for real hardware in tests,
examples, and the daemon's demo mode, and can simulate signal loss.

It registers itself as backend "fake" with the lowest priority, so it is only
selected by default when no hardware backend is usable.
*/
package fake

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/jd-boyd/bmcapture/internal/driver"
)

func init() {
	driver.Register("fake", 0, func() (driver.Backend, error) {
		return NewBackend(1), nil
	})
}

// DefaultModes are the modes a fake device advertises.
var DefaultModes = []driver.Mode{
	{Width: 1920, Height: 1080, FrameRate: 29.97},
	{Width: 1920, Height: 1080, FrameRate: 59.94},
	{Width: 1280, Height: 720, FrameRate: 59.94},
	{Width: 640, Height: 480, FrameRate: 30},
}

type Backend struct {
	devices []driver.Device
}

// NewBackend creates a fake backend with n synthetic devices.
func NewBackend(n int) *Backend {
	b := &Backend{}
	for i := 0; i < n; i++ {
		b.devices = append(b.devices, NewDevice("Fake Capture "+string(rune('A'+i))))
	}
	return b
}

func (b *Backend) Name() string { return "fake" }

func (b *Backend) Devices() ([]driver.Device, error) {
	return b.devices, nil
}

func (b *Backend) Close() error {
	for _, d := range b.devices {
		d.Close()
	}
	return nil
}

// Device is a synthetic capture device with two connectors.
type Device struct {
	name string

	// Modes the device pretends to support. Defaults to DefaultModes.
	Modes []driver.Mode

	// SignalAfter, when positive, makes the first n frames report no input
	// source, simulating a source that takes time to sync.
	SignalAfter int

	// DropSignalAt, when positive, makes every frame starting at the nth
	// report no input source, simulating a cable pull.
	DropSignalAt int

	// Interval overrides the tick interval derived from the mode's frame
	// rate. Tests use this to run fast.
	Interval time.Duration
}

func NewDevice(name string) *Device {
	return &Device{name: name, Modes: DefaultModes}
}

func (d *Device) Name() string { return d.name }

func (d *Device) Connectors() ([]string, error) {
	return []string{"SDI", "HDMI"}, nil
}

func (d *Device) SelectConnector(index int) error {
	if index < 0 || index > 1 {
		return errors.Errorf("fake: no connector %d", index)
	}
	return nil
}

func (d *Device) MaxChannels() int { return 2 }

func (d *Device) OpenInput(connector int, mode driver.Mode) (driver.Input, error) {
	if err := d.SelectConnector(connector); err != nil {
		return nil, err
	}
	m, ok := driver.Match(d.Modes, mode)
	if !ok {
		return nil, errors.Errorf("fake: no mode matching %dx%d @ %.2f fps",
			mode.Width, mode.Height, mode.FrameRate)
	}

	interval := d.Interval
	if interval <= 0 {
		interval = time.Duration(float64(time.Second) / m.FrameRate)
	}
	return &input{dev: d, mode: m, interval: interval}, nil
}

func (d *Device) Close() error { return nil }

type input struct {
	dev      *Device
	mode     driver.Mode
	interval time.Duration

	mu   sync.Mutex
	quit chan struct{}
	done chan struct{}
}

func (in *input) Start(h driver.HandlerFunc) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.quit != nil {
		return errors.New("fake: input already started")
	}
	in.quit = make(chan struct{})
	in.done = make(chan struct{})

	frame := makeBars(in.mode.Width, in.mode.Height)

	go func(quit, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(in.interval)
		defer ticker.Stop()

		n := 0
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				n++
				noInput := false
				if in.dev.SignalAfter > 0 && n <= in.dev.SignalAfter {
					noInput = true
				}
				if in.dev.DropSignalAt > 0 && n >= in.dev.DropSignalAt {
					noInput = true
				}
				h(driver.Frame{
					Width:    in.mode.Width,
					Height:   in.mode.Height,
					RowBytes: in.mode.Width * 2,
					Data:     frame,
					NoInput:  noInput,
				})
			}
		}
	}(in.quit, in.done)

	return nil
}

func (in *input) Stop() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.quit == nil {
		return nil
	}
	close(in.quit)
	<-in.done
	in.quit = nil
	in.done = nil
	return nil
}

// Eight-bar UYVY test pattern, roughly SMPTE colors.
var barColors = [8][3]byte{ // Y, U, V
	{235, 128, 128}, // white
	{210, 16, 146},  // yellow
	{170, 166, 16},  // cyan
	{145, 54, 34},   // green
	{106, 202, 222}, // magenta
	{81, 90, 240},   // red
	{41, 240, 110},  // blue
	{16, 128, 128},  // black
}

func makeBars(width, height int) []byte {
	row := make([]byte, width*2)
	for x := 0; x < width; x += 2 {
		c := barColors[x*8/width]
		row[2*x] = c[1]   // U
		row[2*x+1] = c[0] // Y0
		row[2*x+2] = c[2] // V
		row[2*x+3] = c[0] // Y1
	}
	data := make([]byte, 0, len(row)*height)
	for y := 0; y < height; y++ {
		data = append(data, row...)
	}
	return data
}
