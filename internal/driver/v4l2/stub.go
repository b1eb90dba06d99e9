//go:build !linux || !(amd64 || arm64)

package v4l2

// Video4Linux is Linux-specific. On other platforms no backend is registered
// and this package compiles to nothing.
