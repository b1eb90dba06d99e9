package bmcapture

import (
	"time"

	"github.com/pkg/errors"
)

// PixelFormat selects the representation ReadFrame copies out.
type PixelFormat int

const (
	FormatRGB  PixelFormat = iota // 3 channels, 8-bit RGB
	FormatYUV                     // raw packed 4:2:2, 2 bytes per pixel
	FormatGray                    // 1 channel, 8-bit luma
)

// Channels returns the number of bytes per pixel for the format, or 0 for an
// unknown format.
func (f PixelFormat) Channels() int {
	switch f {
	case FormatRGB:
		return 3
	case FormatYUV:
		return 2
	case FormatGray:
		return 1
	default:
		return 0
	}
}

func (f PixelFormat) String() string {
	switch f {
	case FormatRGB:
		return "rgb"
	case FormatYUV:
		return "yuv"
	case FormatGray:
		return "gray"
	default:
		return "unknown"
	}
}

// ParsePixelFormat converts a format name ("rgb", "yuv", "gray") to its
// PixelFormat.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch s {
	case "rgb":
		return FormatRGB, nil
	case "yuv":
		return FormatYUV, nil
	case "gray", "grey":
		return FormatGray, nil
	default:
		return 0, errors.Errorf("unsupported pixel format %q", s)
	}
}

// CaptureMode is a named latency budget: how long a frame read will wait for
// exclusive access before giving up. The numeric value is the timeout in
// milliseconds. It is selected at capture start and fixed for the channel's
// lifetime.
type CaptureMode int

const (
	// LowLatency drops a read quickly when the frame is busy. For latency
	// critical applications.
	LowLatency CaptureMode = 75

	// NoFrameDrops waits longer for frame access. For applications that
	// would rather stall than miss a frame.
	NoFrameDrops CaptureMode = 500
)

// Timeout returns the mode's latency budget.
func (m CaptureMode) Timeout() time.Duration {
	return time.Duration(m) * time.Millisecond
}

func (m CaptureMode) valid() bool {
	return m == LowLatency || m == NoFrameDrops
}

func (m CaptureMode) String() string {
	switch m {
	case LowLatency:
		return "low-latency"
	case NoFrameDrops:
		return "no-frame-drops"
	default:
		return "invalid"
	}
}

// Geometry describes the frame a ReadFrame call saw.
type Geometry struct {
	Width    int
	Height   int
	Channels int
}
