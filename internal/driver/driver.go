/*
Package driver defines the boundary between the capture pipeline and the
hardware that produces frames.

A Backend enumerates capture Devices. A Device exposes its input connectors
and opens an Input for a requested Mode. An Input delivers frames by calling
the registered HandlerFunc from the driver's own goroutine; the Frame passed
to the handler is valid only for the duration of the call, so handlers must
copy out any bytes they want to keep.

Backends register themselves by name; see Register.
*/
package driver

// Mode describes a capture configuration requested from a device.
type Mode struct {
	Width     int
	Height    int
	FrameRate float64
}

// Frame is one hardware frame as delivered to a HandlerFunc.
//
// Data points at height*RowBytes bytes of packed 4:2:2 YUV (UYVY) and is
// only valid until the handler returns. NoInput is set when the hardware
// reports that no input source is connected; Data may then be blank or
// garbage, but dimensions are still populated.
type Frame struct {
	Width    int
	Height   int
	RowBytes int
	Data     []byte
	NoInput  bool
}

// HandlerFunc receives frames from an Input. It is called from the driver's
// frame delivery goroutine and must not retain f.Data.
type HandlerFunc func(f Frame)

// Input is an open capture stream on one device connector.
type Input interface {
	// Start begins frame delivery to h. It returns an error if the stream
	// cannot be started; no callbacks are made in that case.
	Start(h HandlerFunc) error

	// Stop quiesces frame delivery. When Stop returns, no further calls to
	// the handler will be made.
	Stop() error
}

// Device is one physical capture device.
type Device interface {
	Name() string

	// Connectors lists the device's physical input ports, e.g. "HDMI", "SDI".
	Connectors() ([]string, error)

	// SelectConnector routes the given port to the device's capture input.
	SelectConnector(index int) error

	// MaxChannels reports how many simultaneous capture channels the
	// hardware supports.
	MaxChannels() int

	// OpenInput prepares a capture stream on the given connector. The
	// device resolves mode against its supported modes; see Match.
	OpenInput(connector int, mode Mode) (Input, error)

	Close() error
}

// Backend enumerates the devices of one driver family.
type Backend interface {
	Name() string
	Devices() ([]Device, error)
	Close() error
}
