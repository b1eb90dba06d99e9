//go:build linux && (amd64 || arm64)

package v4l2

import (
	"errors"
	"path/filepath"
	"sync"
	"syscall"

	"golang.org/x/xerrors"

	"github.com/jd-boyd/bmcapture/internal/driver"
	"github.com/jd-boyd/bmcapture/internal/logging"
)

var log = logging.DefaultLogger.WithTag("v4l2")

var errFormatUnsupported = errors.New("v4l2: device does not support packed UYVY")

// How long the read loop waits for a frame before synthesizing a
// no-input-source frame for the handler.
const noSignalTimeoutMs = 250

func init() {
	driver.Register("v4l2", 10, func() (driver.Backend, error) {
		return newBackend()
	})
}

type backend struct {
	devices []driver.Device
}

func newBackend() (driver.Backend, error) {
	paths, err := filepath.Glob("/dev/video*")
	if err != nil {
		return nil, err
	}

	b := &backend{}
	for _, path := range paths {
		dev, err := openDevice(path)
		if err != nil {
			log.Debug("skipping %s: %v", path, err)
			continue
		}
		if !dev.isCaptureDevice() {
			dev.close()
			continue
		}
		name, err := dev.card()
		if err != nil {
			name = path
		}
		b.devices = append(b.devices, &captureDevice{dev: dev, path: path, name: name})
	}
	return b, nil
}

func (b *backend) Name() string { return "v4l2" }

func (b *backend) Devices() ([]driver.Device, error) {
	return b.devices, nil
}

func (b *backend) Close() error {
	var firstErr error
	for _, d := range b.devices {
		if err := d.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type captureDevice struct {
	dev  *device
	path string
	name string

	mu   sync.Mutex
	open bool
}

func (d *captureDevice) Name() string { return d.name }

func (d *captureDevice) Connectors() ([]string, error) {
	return d.dev.enumInputs()
}

func (d *captureDevice) SelectConnector(index int) error {
	return d.dev.selectInput(index)
}

// V4L2 devices stream one input at a time.
func (d *captureDevice) MaxChannels() int { return 1 }

func (d *captureDevice) OpenInput(connector int, mode driver.Mode) (driver.Input, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return nil, errors.New("v4l2: input already open")
	}

	if connector > 0 {
		if err := d.dev.selectInput(connector); err != nil {
			return nil, xerrors.Errorf("select input %d on %s: %w", connector, d.path, err)
		}
	}

	w, h, rowBytes, imageSize, err := d.dev.setFormat(mode.Width, mode.Height)
	if err != nil {
		return nil, xerrors.Errorf("set format on %s: %w", d.path, err)
	}
	if w != mode.Width || h != mode.Height {
		return nil, xerrors.Errorf("%s: no mode matching %dx%d (driver offers %dx%d)",
			d.path, mode.Width, mode.Height, w, h)
	}
	if rowBytes == 0 {
		rowBytes = w * 2
	}
	if imageSize == 0 {
		imageSize = rowBytes * h
	}

	// Best effort; many drivers fix the rate to the incoming signal.
	if mode.FrameRate > 0 {
		if err := d.dev.setFrameRate(mode.FrameRate); err != nil {
			log.Debug("set frame rate on %s: %v", d.path, err)
		}
	}

	d.open = true
	return &input{
		owner:     d,
		mode:      driver.Mode{Width: w, Height: h, FrameRate: mode.FrameRate},
		rowBytes:  rowBytes,
		imageSize: imageSize,
	}, nil
}

func (d *captureDevice) Close() error {
	return d.dev.close()
}

type input struct {
	owner     *captureDevice
	mode      driver.Mode
	rowBytes  int
	imageSize int

	mu   sync.Mutex
	quit chan struct{}
	done chan struct{}
}

func (in *input) Start(h driver.HandlerFunc) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.quit != nil {
		return errors.New("v4l2: input already started")
	}

	if err := in.owner.dev.startStreaming(); err != nil {
		return xerrors.Errorf("start streaming on %s: %w", in.owner.path, err)
	}

	in.quit = make(chan struct{})
	in.done = make(chan struct{})
	go in.readLoop(h, in.quit, in.done)
	return nil
}

// readLoop pumps frames from the kernel to the handler. When the device
// stalls (source unplugged), it synthesizes frames flagged as having no
// input source so the signal monitor can track the loss.
func (in *input) readLoop(h driver.HandlerFunc, quit, done chan struct{}) {
	defer close(done)

	dev := in.owner.dev
	buf := make([]byte, in.imageSize)
	for {
		select {
		case <-quit:
			return
		default:
		}

		ready, err := dev.waitFrame(noSignalTimeoutMs)
		if err != nil {
			log.Error("wait for frame on %s: %v", in.owner.path, err)
			return
		}

		frame := driver.Frame{
			Width:    in.mode.Width,
			Height:   in.mode.Height,
			RowBytes: in.rowBytes,
		}

		if !ready {
			frame.NoInput = true
			frame.Data = buf[:0]
			h(frame)
			continue
		}

		n, err := dev.readFrame(buf)
		if err != nil {
			// EINVAL means the stream was turned off under us.
			if err == syscall.EINVAL {
				return
			}
			log.Warn("read frame on %s: %v", in.owner.path, err)
			frame.NoInput = true
			frame.Data = buf[:0]
			h(frame)
			continue
		}

		frame.Data = buf[:n]
		h(frame)
	}
}

func (in *input) Stop() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.quit == nil {
		return nil
	}
	close(in.quit)

	// Turning the stream off unblocks a read loop stuck in dequeue.
	err := in.owner.dev.stopStreaming()
	<-in.done

	in.quit = nil
	in.done = nil

	in.owner.mu.Lock()
	in.owner.open = false
	in.owner.mu.Unlock()
	return err
}
