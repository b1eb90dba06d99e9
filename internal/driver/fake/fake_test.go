package fake

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jd-boyd/bmcapture/internal/driver"
)

func TestOpenInputModeMatching(t *testing.T) {
	dev := NewDevice("test")

	_, err := dev.OpenInput(0, driver.Mode{Width: 1920, Height: 1080, FrameRate: 30})
	assert.NoError(t, err, "29.97 should satisfy a request for 30")

	_, err = dev.OpenInput(0, driver.Mode{Width: 123, Height: 45, FrameRate: 30})
	assert.Error(t, err)

	_, err = dev.OpenInput(5, driver.Mode{Width: 1920, Height: 1080, FrameRate: 30})
	assert.Error(t, err)
}

func TestFrameDelivery(t *testing.T) {
	dev := NewDevice("test")
	dev.Interval = time.Millisecond

	in, err := dev.OpenInput(0, driver.Mode{Width: 640, Height: 480, FrameRate: 30})
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var frames []driver.Frame
	err = in.Start(func(f driver.Frame) {
		mu.Lock()
		frames = append(frames, driver.Frame{
			Width:    f.Width,
			Height:   f.Height,
			RowBytes: f.RowBytes,
			NoInput:  f.NoInput,
		})
		mu.Unlock()
	})
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)
	if err := in.Stop(); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(frames) == 0 {
		t.Fatal("no frames delivered")
	}
	f := frames[0]
	assert.Equal(t, 640, f.Width)
	assert.Equal(t, 480, f.Height)
	assert.Equal(t, 1280, f.RowBytes)
	assert.False(t, f.NoInput)
}

func TestStopQuiescesDelivery(t *testing.T) {
	dev := NewDevice("test")
	dev.Interval = time.Millisecond

	in, _ := dev.OpenInput(0, driver.Mode{Width: 640, Height: 480, FrameRate: 30})

	var mu sync.Mutex
	count := 0
	in.Start(func(f driver.Frame) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	time.Sleep(5 * time.Millisecond)
	in.Stop()

	mu.Lock()
	after := count
	mu.Unlock()
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, after, count, "no callbacks after Stop returns")
	mu.Unlock()
}

func TestSignalLossInjection(t *testing.T) {
	dev := NewDevice("test")
	dev.Interval = time.Millisecond
	dev.SignalAfter = 3

	in, _ := dev.OpenInput(0, driver.Mode{Width: 640, Height: 480, FrameRate: 30})

	var mu sync.Mutex
	var noInput []bool
	in.Start(func(f driver.Frame) {
		mu.Lock()
		noInput = append(noInput, f.NoInput)
		mu.Unlock()
	})
	time.Sleep(20 * time.Millisecond)
	in.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(noInput) < 5 {
		t.Fatalf("only %d frames delivered", len(noInput))
	}
	assert.True(t, noInput[0])
	assert.True(t, noInput[2])
	assert.False(t, noInput[3])
	assert.False(t, noInput[4])
}
