/*
Package bmcapture delivers live video frames from a hardware capture source
to a polling consumer with bounded latency.

A Context owns the connection to a capture driver backend and enumerates
Devices. A Device owns one or more capture Channels, each bound to a physical
input port. The hardware driver pushes frames into a channel from its own
goroutine; the consumer polls with Update to advance to the newest frame and
ReadFrame to copy it out in RGB, packed YUV, or grayscale.

	ctx, err := bmcapture.NewContext()
	...
	dev, err := ctx.OpenDevice(0)
	...
	ch, err := dev.NewChannel(0)
	...
	err = ch.StartCapture(1920, 1080, 29.97, bmcapture.LowLatency)
	...
	buf := make([]byte, ch.FrameSize(bmcapture.FormatRGB))
	for {
		if ch.Update() {
			if _, ok := ch.ReadFrame(bmcapture.FormatRGB, buf); ok {
				// process buf
			}
		}
	}

Producer and consumer never block each other: frames are handed off through
a triple buffer, and a frame read waits at most the capture mode's latency
budget for exclusive access before reporting "busy".
*/
package bmcapture
