//go:build linux && (amd64 || arm64)

package v4l2

import (
	"bytes"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// A V4L2 character device.
type device struct {
	// Device path, usually "/dev/video0".
	path string

	// File descriptor of the open device node.
	fd int

	// Memory-mapped frame buffer. Non-nil while streaming.
	mmap []byte
}

func openDevice(path string) (*device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK, 0666)
	if err != nil {
		return nil, xerrors.Errorf("open %s: %w", path, err)
	}
	return &device{path: path, fd: fd}, nil
}

func (dev *device) close() error {
	return unix.Close(dev.fd)
}

func (dev *device) ioctl(request uint, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(
			unix.SYS_IOCTL,
			uintptr(dev.fd),
			uintptr(request),
			uintptr(arg),
		)
		if errno == 0 {
			return nil
		}
		if errno != unix.EINTR {
			return errno
		}
	}
}

func (dev *device) queryCapability() (*v4l2_capability, error) {
	caps := new(v4l2_capability)
	if err := dev.ioctl(VIDIOC_QUERYCAP, unsafe.Pointer(caps)); err != nil {
		return nil, err
	}
	return caps, nil
}

func (dev *device) card() (string, error) {
	caps, err := dev.queryCapability()
	if err != nil {
		return "", err
	}
	return cstring(caps.card[:]), nil
}

func (dev *device) isCaptureDevice() bool {
	caps, err := dev.queryCapability()
	if err != nil {
		return false
	}
	c := caps.device_caps
	if c == 0 {
		c = caps.capabilities
	}
	return c&V4L2_CAP_VIDEO_CAPTURE != 0
}

// enumInputs lists the device's input connectors.
func (dev *device) enumInputs() ([]string, error) {
	var names []string
	for i := uint32(0); ; i++ {
		in := v4l2_input{index: i}
		if err := dev.ioctl(VIDIOC_ENUMINPUT, unsafe.Pointer(&in)); err != nil {
			if err == syscall.EINVAL {
				break
			}
			return nil, err
		}
		names = append(names, cstring(in.name[:]))
	}
	return names, nil
}

func (dev *device) selectInput(index int) error {
	n := int32(index)
	return dev.ioctl(VIDIOC_S_INPUT, unsafe.Pointer(&n))
}

// setFormat requests packed UYVY at the given geometry and returns the
// geometry the driver actually configured.
func (dev *device) setFormat(width, height int) (gotWidth, gotHeight, rowBytes, imageSize int, err error) {
	pfmt := v4l2_pix_format{
		width:       uint32(width),
		height:      uint32(height),
		pixelformat: V4L2_PIX_FMT_UYVY,
		field:       V4L2_FIELD_NONE,
	}
	fmt := v4l2_format{
		typ: V4L2_BUF_TYPE_VIDEO_CAPTURE,
		fmt: pfmt.marshal(),
	}
	if err = dev.ioctl(VIDIOC_S_FMT, unsafe.Pointer(&fmt)); err != nil {
		return
	}

	pfmt.unmarshal(fmt.fmt)
	if pfmt.pixelformat != V4L2_PIX_FMT_UYVY {
		err = errFormatUnsupported
		return
	}
	return int(pfmt.width), int(pfmt.height), int(pfmt.bytesperline), int(pfmt.sizeimage), nil
}

// setFrameRate requests the given rate via the time-per-frame streaming
// parameter. Drivers that cannot honor it pick the nearest supported rate.
func (dev *device) setFrameRate(fps float64) error {
	parm := v4l2_streamparm{
		typ: V4L2_BUF_TYPE_VIDEO_CAPTURE,
	}
	parm.capture.timeperframe = v4l2_fract{
		numerator:   1000,
		denominator: uint32(fps * 1000),
	}
	return dev.ioctl(VIDIOC_S_PARM, unsafe.Pointer(&parm))
}

func (dev *device) requestBuffers(n int) error {
	rb := v4l2_requestbuffers{
		count:  uint32(n),
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	return dev.ioctl(VIDIOC_REQBUFS, unsafe.Pointer(&rb))
}

func (dev *device) queryBuffer(n uint32) (length, offset uint32, err error) {
	qb := v4l2_buffer{
		index:  n,
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	if err = dev.ioctl(VIDIOC_QUERYBUF, unsafe.Pointer(&qb)); err != nil {
		return
	}

	length = qb.length
	offset = nativeEndian.Uint32(qb.m[0:4])
	return
}

func (dev *device) mapMemory() error {
	if dev.mmap != nil {
		panic("v4l2: memory already mapped")
	}

	if err := dev.requestBuffers(1); err != nil {
		return err
	}

	length, offset, err := dev.queryBuffer(0)
	if err != nil {
		return err
	}

	dev.mmap, err = unix.Mmap(
		dev.fd,
		int64(offset),
		int(length),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED,
	)
	return err
}

func (dev *device) unmapMemory() error {
	if dev.mmap != nil {
		if err := unix.Munmap(dev.mmap); err != nil {
			return err
		}
		dev.mmap = nil
	}
	return dev.requestBuffers(0)
}

func (dev *device) enqueue(index int) error {
	qbuf := v4l2_buffer{
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
		index:  uint32(index),
	}
	return dev.ioctl(VIDIOC_QBUF, unsafe.Pointer(&qbuf))
}

func (dev *device) dequeue() (int, error) {
	dqbuf := v4l2_buffer{
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	err := dev.ioctl(VIDIOC_DQBUF, unsafe.Pointer(&dqbuf))
	return int(dqbuf.bytesused), err
}

func (dev *device) enableStream() error {
	typ := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
	return dev.ioctl(VIDIOC_STREAMON, unsafe.Pointer(&typ))
}

func (dev *device) disableStream() error {
	// Also dequeues any outstanding buffers.
	typ := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
	return dev.ioctl(VIDIOC_STREAMOFF, unsafe.Pointer(&typ))
}

// startStreaming maps the driver buffer and turns the stream on.
func (dev *device) startStreaming() error {
	if err := dev.mapMemory(); err != nil {
		return err
	}
	if err := dev.enqueue(0); err != nil {
		return err
	}
	return dev.enableStream()
}

// stopStreaming turns the stream off and releases the mapping.
func (dev *device) stopStreaming() error {
	if err := dev.disableStream(); err != nil {
		return err
	}
	return dev.unmapMemory()
}

// waitFrame blocks until a frame is ready or the timeout elapses. Returns
// false on timeout.
func (dev *device) waitFrame(timeoutMs int) (bool, error) {
	for {
		fds := unix.FdSet{}
		fds.Bits[dev.fd/64] |= 1 << (uint(dev.fd) % 64)
		tv := unix.Timeval{Sec: int64(timeoutMs / 1000), Usec: int64(timeoutMs%1000) * 1000}
		n, err := unix.Select(dev.fd+1, &fds, nil, nil, &tv)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

// readFrame dequeues the ready frame into dst (copying out of the mapped
// buffer) and re-enqueues it. Returns the byte count.
func (dev *device) readFrame(dst []byte) (int, error) {
	if dev.mmap == nil {
		panic("v4l2: capture not started")
	}

	n, err := dev.dequeue()
	if err != nil {
		return 0, err
	}
	if n > len(dst) {
		n = len(dst)
	}
	copy(dst, dev.mmap[:n])

	return n, dev.enqueue(0)
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
