package bmcapture

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/jd-boyd/bmcapture/internal/driver"
	"github.com/jd-boyd/bmcapture/internal/logging"
	"github.com/jd-boyd/bmcapture/internal/yuv"
)

var log = logging.DefaultLogger.WithTag("bmcapture")

// Channel is one capture stream on a device. Frames arrive on a driver
// goroutine and are handed to the caller through a triple buffer, so the
// driver never waits for the consumer and the consumer always sees the
// freshest completed frame.
//
// The consumer side (Update, ReadFrame and the accessors) may be used from
// one goroutine at a time.
type Channel struct {
	host deviceHost
	port int

	mu        sync.Mutex
	capturing bool
	input     driver.Input
	buffer    *TripleBuffer[*capturedFrame]
	monitor   *signalMonitor

	width  int
	height int
	mode   CaptureMode

	tables *yuv.Tables

	// conversions counts cache-miss colorspace conversions, for
	// instrumentation and tests.
	conversions atomic.Uint64

	// signalCh is closed when the monitor first acquires a lock after a
	// StartCapture, waking WaitForSignal callers.
	signalCh chan struct{}
}

// deviceHost is what a channel needs from its device: a way to open a driver
// input for a port and a way to announce its own teardown.
type deviceHost interface {
	openInput(port, width, height int, frameRate float64) (driver.Input, error)
	forgetChannel(c *Channel)
}

func newChannel(host deviceHost, port int) *Channel {
	return &Channel{
		host:    host,
		port:    port,
		monitor: newSignalMonitor(),
	}
}

// Port returns the device connector this channel captures from.
func (c *Channel) Port() int {
	return c.port
}

// StartCapture configures the channel for the given geometry and frame rate
// and begins receiving frames. The mode fixes the latency budget ReadFrame
// uses for the channel's lifetime.
func (c *Channel) StartCapture(width, height int, frameRate float64, mode CaptureMode) error {
	if width < 1 || height < 1 || frameRate <= 0 {
		return errors.Errorf("invalid capture geometry %dx%d@%g", width, height, frameRate)
	}
	if !mode.valid() {
		return errors.Errorf("invalid capture mode %d", int(mode))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capturing {
		return errors.New("capture already started")
	}

	input, err := c.host.openInput(c.port, width, height, frameRate)
	if err != nil {
		return errors.Wrap(err, "open input")
	}

	// Building the conversion tables up front costs a moment here but
	// keeps the first ReadFrame from stalling on a 16 MiB table fill.
	if c.tables == nil {
		c.tables = yuv.NewTables()
	}

	c.buffer = NewTripleBuffer(newCapturedFrame(), newCapturedFrame(), newCapturedFrame())
	c.monitor.reset()
	c.signalCh = make(chan struct{})
	c.width = width
	c.height = height
	c.mode = mode
	c.capturing = true
	c.input = input

	if err := input.Start(c.handleFrame); err != nil {
		c.capturing = false
		c.input = nil
		return errors.Wrap(err, "start input")
	}
	log.Info("capture started port=%d %dx%d@%g mode=%s", c.port, width, height, frameRate, mode)
	return nil
}

// handleFrame is the driver callback. It observes the signal state, copies
// the frame into the back slot and publishes it. Priming: until the lock
// threshold is reached each frame is also promoted straight to the front
// slot, so the first ReadFrame after lock already has pixels.
func (c *Channel) handleFrame(f driver.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.capturing {
		return
	}

	acquired := c.monitor.observe(!f.NoInput)
	if acquired {
		log.Info("signal lock acquired port=%d after %d frame(s)", c.port, c.monitor.minFramesForLock)
		select {
		case <-c.signalCh:
			// already signaled once; a relock after loss is not news to
			// WaitForSignal callers
		default:
			close(c.signalCh)
		}
	}
	if f.NoInput {
		if c.monitor.frameCount == 1 {
			log.Debug("no input signal port=%d", c.port)
		}
		return
	}
	if len(f.Data) < f.Height*f.RowBytes {
		log.Warn("short frame port=%d: %d bytes for %dx%d", c.port, len(f.Data), f.Width, f.Height)
		return
	}

	back := c.buffer.Back()
	if !back.guard.TryAcquire() {
		// A reader still holds the slot from before a rotation. Drop
		// this frame rather than stall the driver thread.
		log.Debug("back slot busy, dropping frame port=%d", c.port)
		return
	}
	back.store(f.Width, f.Height, f.RowBytes, f.Data)
	back.guard.Release()
	c.buffer.SwapBack()

	if c.monitor.frameCount <= uint64(c.monitor.minFramesForLock) {
		c.primeBuffer()
	}
}

// primeBuffer pushes the latest publication through to the front slot and
// back-fills the other slots with a copy, so every slot holds real pixels
// before the consumer's first swap.
func (c *Channel) primeBuffer() {
	c.buffer.SwapFront()
	front := c.buffer.Front()
	if front.empty() {
		return
	}
	back := c.buffer.Back()
	if back.empty() && back.guard.TryAcquire() {
		back.copyFrom(front)
		back.guard.Release()
	}
}

// Update promotes the freshest completed frame for reading. Returns true if
// ReadFrame will see a frame, false when no frame has ever arrived. During
// the priming window it returns true without swapping.
func (c *Channel) Update() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.capturing || c.monitor.frameCount == 0 {
		return false
	}
	if c.monitor.frameCount <= uint64(c.monitor.minFramesForLock) {
		return true
	}
	c.buffer.SwapFront()
	return true
}

// ReadFrame copies the current front frame into dst in the requested format,
// converting from the raw capture format on first use and serving repeats
// from the per-frame cache. It waits up to the capture mode's timeout for
// exclusive access to the frame; on timeout, or if dst is not exactly the
// frame's size, it returns ok=false and dst is untouched.
func (c *Channel) ReadFrame(format PixelFormat, dst []byte) (Geometry, bool) {
	c.mu.Lock()
	if !c.capturing || c.buffer == nil {
		c.mu.Unlock()
		return Geometry{}, false
	}
	front := c.buffer.Front()
	mode := c.mode
	c.mu.Unlock()

	if format.Channels() == 0 {
		return Geometry{}, false
	}

	if !front.guard.Acquire(mode.Timeout()) {
		log.Debug("frame access timed out after %s", mode.Timeout())
		return Geometry{}, false
	}
	defer front.guard.Release()

	if front.empty() {
		return Geometry{}, false
	}
	geom := Geometry{Width: front.width, Height: front.height, Channels: format.Channels()}

	want := geom.Width * geom.Height * geom.Channels
	if len(dst) < want {
		log.Warn("frame buffer too small: got %d, need %d", len(dst), want)
		return geom, false
	}

	switch format {
	case FormatYUV:
		copy(dst, front.yuv[:want])
	case FormatRGB:
		if !front.rgbValid {
			if cap(front.rgb) < want {
				front.rgb = make([]byte, want)
			}
			front.rgb = front.rgb[:want]
			c.tables.ToRGB(front.yuv, front.rgb, front.pixelCount())
			front.rgbValid = true
			c.conversions.Add(1)
		}
		copy(dst, front.rgb)
	case FormatGray:
		if !front.grayValid {
			if cap(front.gray) < want {
				front.gray = make([]byte, want)
			}
			front.gray = front.gray[:want]
			yuv.ToGray(front.yuv, front.gray, front.pixelCount())
			front.grayValid = true
			c.conversions.Add(1)
		}
		copy(dst, front.gray)
	}
	return geom, true
}

// FrameSize returns the byte size a ReadFrame destination buffer must have
// for the given format, or 0 when not capturing.
func (c *Channel) FrameSize(format PixelFormat) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.capturing {
		return 0
	}
	return c.width * c.height * format.Channels()
}

// Width returns the configured frame width, or 0 when not capturing.
func (c *Channel) Width() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.capturing {
		return 0
	}
	return c.width
}

// Height returns the configured frame height, or 0 when not capturing.
func (c *Channel) Height() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.capturing {
		return 0
	}
	return c.height
}

// HasValidSignal reports whether the channel currently holds a signal lock.
func (c *Channel) HasValidSignal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capturing && c.monitor.valid()
}

// HasStableFrameRate reports whether frames have been arriving recently
// enough, and in sufficient number, to trust the frame rate.
func (c *Channel) HasStableFrameRate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capturing && c.monitor.rateStable()
}

// FrameCount returns the number of frames received since capture started,
// including frames flagged as having no input source.
func (c *Channel) FrameCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.capturing {
		return 0
	}
	return c.monitor.frameCount
}

// Conversions returns how many colorspace conversions the channel has
// performed. Repeated reads of an unchanged frame in the same format do not
// increase it.
func (c *Channel) Conversions() uint64 {
	return c.conversions.Load()
}

// SetSignalParameters tunes the signal-lock hysteresis. Capture must be
// running and both thresholds must be at least 1.
func (c *Channel) SetSignalParameters(minFramesForLock, maxLostFrames int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.capturing {
		return errNotCapturing
	}
	if minFramesForLock < 1 || maxLostFrames < 1 {
		return errInvalidSignalParameters
	}
	c.monitor.setParameters(minFramesForLock, maxLostFrames)
	return nil
}

// WaitForSignal blocks until the channel acquires a signal lock or the
// timeout elapses. Returns true on lock.
func (c *Channel) WaitForSignal(timeout time.Duration) bool {
	c.mu.Lock()
	if !c.capturing {
		c.mu.Unlock()
		return false
	}
	ch := c.signalCh
	c.mu.Unlock()

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-ch:
		return true
	case <-t.C:
		return false
	}
}

// StopCapture quiesces the driver input and discards buffered frames. Safe
// to call when not capturing.
func (c *Channel) StopCapture() {
	c.mu.Lock()
	if !c.capturing {
		c.mu.Unlock()
		return
	}
	input := c.input
	c.capturing = false
	c.input = nil
	c.mu.Unlock()

	// Stop outside the lock: the driver goroutine may be blocked in
	// handleFrame waiting for it.
	if input != nil {
		if err := input.Stop(); err != nil {
			log.Warn("stop input port=%d: %v", c.port, err)
		}
	}

	c.mu.Lock()
	c.buffer = nil
	c.monitor.reset()
	c.mu.Unlock()
	log.Info("capture stopped port=%d", c.port)
}

// Close stops capture and detaches the channel from its device.
func (c *Channel) Close() {
	c.StopCapture()
	c.host.forgetChannel(c)
}
