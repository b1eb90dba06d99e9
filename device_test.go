package bmcapture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jd-boyd/bmcapture/internal/driver/fake"
)

func openFakeDevice(t *testing.T) (*Context, *Device) {
	t.Helper()
	ctx, err := NewContextWithBackend("fake")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ctx.Close() })

	d, err := ctx.OpenDevice(0)
	if err != nil {
		t.Fatal(err)
	}
	// Run the synthetic frame clock fast so tests do not wait on wall time.
	d.drv.(*fake.Device).Interval = time.Millisecond
	return ctx, d
}

func TestContextEnumeration(t *testing.T) {
	ctx, err := NewContextWithBackend("fake")
	if err != nil {
		t.Fatal(err)
	}
	defer ctx.Close()

	n, err := ctx.NumDevices()
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	names, err := ctx.DeviceNames()
	assert.NoError(t, err)
	assert.Equal(t, []string{"Fake Capture A"}, names)

	_, err = ctx.OpenDevice(5)
	assert.Error(t, err)
	_, err = ctx.OpenDevice(-1)
	assert.Error(t, err)
}

func TestContextUnknownBackend(t *testing.T) {
	_, err := NewContextWithBackend("no-such-backend")
	assert.Error(t, err)
}

func TestBackendsIncludeFake(t *testing.T) {
	assert.Contains(t, Backends(), "fake")
}

func TestDevicePorts(t *testing.T) {
	_, d := openFakeDevice(t)

	ports, err := d.Ports()
	assert.NoError(t, err)
	assert.Equal(t, []string{"SDI", "HDMI"}, ports)

	assert.NoError(t, d.SelectPort(1))
	assert.Error(t, d.SelectPort(7))
}

func TestDeviceChannelLimit(t *testing.T) {
	_, d := openFakeDevice(t)

	max := d.MaxChannels()
	assert.Equal(t, 2, max)
	for i := 0; i < max; i++ {
		_, err := d.NewChannel(0)
		assert.NoError(t, err)
	}
	_, err := d.NewChannel(0)
	assert.Error(t, err, "opening past the channel limit must fail")
}

func TestDeviceCapture(t *testing.T) {
	_, d := openFakeDevice(t)

	err := d.StartCapture(640, 480, 30, LowLatency)
	assert.NoError(t, err)
	defer d.StopCapture()

	assert.True(t, d.WaitForSignal(2*time.Second), "fake source must lock quickly")
	assert.True(t, d.HasValidSignal())

	assert.True(t, d.Update())
	dst := make([]byte, d.FrameSize(FormatRGB))
	geom, ok := d.ReadFrame(FormatRGB, dst)
	assert.True(t, ok)
	assert.Equal(t, Geometry{Width: 640, Height: 480, Channels: 3}, geom)
}

func TestDeviceCaptureUnsupportedMode(t *testing.T) {
	_, d := openFakeDevice(t)

	err := d.StartCapture(123, 45, 30, LowLatency)
	assert.Error(t, err, "a mode the device does not support must be rejected")
}

func TestDeviceClosed(t *testing.T) {
	ctx, err := NewContextWithBackend("fake")
	if err != nil {
		t.Fatal(err)
	}
	defer ctx.Close()

	d, err := ctx.OpenDevice(0)
	assert.NoError(t, err)
	assert.NoError(t, d.Close())

	_, err = d.Ports()
	assert.Equal(t, errDeviceClosed, err)
	_, err = d.NewChannel(0)
	assert.Equal(t, errDeviceClosed, err)
	assert.Equal(t, errDeviceClosed, d.StartCapture(640, 480, 30, LowLatency))
}

func TestSignalLossThroughFakeBackend(t *testing.T) {
	_, d := openFakeDevice(t)
	fd := d.drv.(*fake.Device)
	fd.DropSignalAt = 30

	c, err := d.NewChannel(0)
	assert.NoError(t, err)
	if err := c.StartCapture(640, 480, 30, NoFrameDrops); err != nil {
		t.Fatal(err)
	}
	defer c.StopCapture()

	assert.True(t, c.WaitForSignal(2*time.Second))

	// The simulated cable pull must eventually break the lock.
	deadline := time.Now().Add(2 * time.Second)
	for c.HasValidSignal() {
		if time.Now().After(deadline) {
			t.Fatal("signal lock survived a sustained dropout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
