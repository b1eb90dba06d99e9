//go:build linux && (amd64 || arm64)

// Constants and struct layouts from <linux/videodev2.h>, 64-bit variants.

package v4l2

import (
	"encoding/binary"
	"unsafe"
)

const (
	VIDIOC_QUERYCAP  = 0x80685600
	VIDIOC_G_FMT     = 0xc0d05604
	VIDIOC_S_FMT     = 0xc0d05605
	VIDIOC_REQBUFS   = 0xc0145608
	VIDIOC_QUERYBUF  = 0xc0585609
	VIDIOC_QBUF      = 0xc058560f
	VIDIOC_DQBUF     = 0xc0585611
	VIDIOC_STREAMON  = 0x40045612
	VIDIOC_STREAMOFF = 0x40045613
	VIDIOC_S_PARM    = 0xc0cc5616
	VIDIOC_ENUMINPUT = 0xc050561a
	VIDIOC_G_INPUT   = 0x80045626
	VIDIOC_S_INPUT   = 0xc0045627
)

const (
	V4L2_BUF_TYPE_VIDEO_CAPTURE = 1
	V4L2_MEMORY_MMAP            = 1
	V4L2_FIELD_NONE             = 1

	V4L2_CAP_VIDEO_CAPTURE = 0x00000001

	// Packed 4:2:2, byte order U Y0 V Y1. fourcc 'UYVY'.
	V4L2_PIX_FMT_UYVY = 0x59565955
)

type v4l2_capability struct {
	driver       [16]byte
	card         [32]byte
	bus_info     [32]byte
	version      uint32
	capabilities uint32
	device_caps  uint32
	reserved     [3]uint32
}

type v4l2_pix_format struct {
	width        uint32
	height       uint32
	pixelformat  uint32
	field        uint32
	bytesperline uint32
	sizeimage    uint32
	colorspace   uint32
	priv         uint32
	flags        uint32
	ycbcr_enc    uint32
	quantization uint32
	xfer_func    uint32
}

// v4l2_format's fmt member is a 200-byte union; only the pix_format arm is
// used here.
type v4l2_format struct {
	typ uint32
	_   [4]byte
	fmt [200]byte
}

func (pf *v4l2_pix_format) marshal() (out [200]byte) {
	copy(out[:], (*[unsafe.Sizeof(*pf)]byte)(unsafe.Pointer(pf))[:])
	return
}

func (pf *v4l2_pix_format) unmarshal(in [200]byte) {
	copy((*[unsafe.Sizeof(*pf)]byte)(unsafe.Pointer(pf))[:], in[:])
}

type v4l2_requestbuffers struct {
	count        uint32
	typ          uint32
	memory       uint32
	capabilities uint32
	flags        uint8
	reserved     [3]uint8
}

type v4l2_timecode struct {
	typ      uint32
	flags    uint32
	frames   uint8
	seconds  uint8
	minutes  uint8
	hours    uint8
	userbits [4]uint8
}

type v4l2_buffer struct {
	index     uint32
	typ       uint32
	bytesused uint32
	flags     uint32
	field     uint32
	_         [4]byte
	timestamp [16]byte // struct timeval
	timecode  v4l2_timecode
	sequence  uint32
	memory    uint32
	m         [8]byte // union: mmap offset / userptr
	length    uint32
	reserved2 uint32
	request_fd uint32
	_         [4]byte
}

type v4l2_fract struct {
	numerator   uint32
	denominator uint32
}

type v4l2_captureparm struct {
	capability   uint32
	capturemode  uint32
	timeperframe v4l2_fract
	extendedmode uint32
	readbuffers  uint32
	reserved     [4]uint32
}

type v4l2_streamparm struct {
	typ     uint32
	capture v4l2_captureparm
	_       [160]byte // pad union to 200 bytes
}

type v4l2_input struct {
	index        uint32
	name         [32]byte
	typ          uint32
	audioset     uint32
	tuner        uint32
	std          uint64
	status       uint32
	capabilities uint32
	reserved     [3]uint32
	_            [4]byte
}

var nativeEndian binary.ByteOrder = func() binary.ByteOrder {
	var x uint16 = 1
	if *(*byte)(unsafe.Pointer(&x)) == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}()
