// Package v4l2 implements the capture driver boundary on top of the
// Video4Linux2 API, streaming packed UYVY frames via memory-mapped kernel
// buffers. It registers itself as backend "v4l2" on Linux.
package v4l2
