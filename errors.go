package bmcapture

import "errors"

var (
	errNotCapturing            = errors.New("not capturing")
	errDeviceClosed            = errors.New("device closed")
	errInvalidSignalParameters = errors.New("signal parameters must be at least 1")
)
