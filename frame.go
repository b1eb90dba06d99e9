package bmcapture

// capturedFrame is one slot's worth of capture state: the raw packed 4:2:2
// bytes plus cached conversions. Each instance owns a stable guard so timed
// access survives buffer rotation.
type capturedFrame struct {
	guard *Guard

	width    int
	height   int
	rowBytes int

	// yuv holds height*rowBytes of packed UYVY. rgb and gray are filled on
	// demand and valid only while their flag is set.
	yuv  []byte
	rgb  []byte
	gray []byte

	rgbValid  bool
	grayValid bool
}

func newCapturedFrame() *capturedFrame {
	return &capturedFrame{guard: newGuard()}
}

// store copies raw frame bytes into the slot and invalidates cached
// conversions. The destination buffer is grown as needed and reused across
// frames of the same geometry.
func (f *capturedFrame) store(width, height, rowBytes int, data []byte) {
	n := height * rowBytes
	if cap(f.yuv) < n {
		f.yuv = make([]byte, n)
	}
	f.yuv = f.yuv[:n]
	copy(f.yuv, data[:n])
	f.width = width
	f.height = height
	f.rowBytes = rowBytes
	f.rgbValid = false
	f.grayValid = false
}

// copyFrom duplicates another slot's raw bytes. Used when priming the buffer
// with the first frames of a fresh signal.
func (f *capturedFrame) copyFrom(src *capturedFrame) {
	f.store(src.width, src.height, src.rowBytes, src.yuv)
}

func (f *capturedFrame) pixelCount() int {
	return f.width * f.height
}

func (f *capturedFrame) empty() bool {
	return len(f.yuv) == 0
}
