package bmcapture

// Config collects the capture settings for one channel. Zero values fall
// back to the defaults noted per field.
type Config struct {
	Width  int
	Height int

	// FrameRate in frames per second. Whole NTSC rates (24, 30, 60) also
	// match their fractional broadcast variants.
	FrameRate float64

	// Mode is the latency budget for frame reads. Defaults to LowLatency.
	Mode CaptureMode

	// Signal-lock hysteresis thresholds. Default to DefaultMinFramesForLock
	// and DefaultMaxLostFrames.
	MinFramesForLock int
	MaxLostFrames    int
}

func (cfg Config) withDefaults() Config {
	if cfg.Mode == 0 {
		cfg.Mode = LowLatency
	}
	if cfg.MinFramesForLock == 0 {
		cfg.MinFramesForLock = DefaultMinFramesForLock
	}
	if cfg.MaxLostFrames == 0 {
		cfg.MaxLostFrames = DefaultMaxLostFrames
	}
	return cfg
}

// Start begins capturing with the given configuration. Equivalent to
// StartCapture followed by SetSignalParameters.
func (c *Channel) Start(cfg Config) error {
	cfg = cfg.withDefaults()
	if err := c.StartCapture(cfg.Width, cfg.Height, cfg.FrameRate, cfg.Mode); err != nil {
		return err
	}
	if err := c.SetSignalParameters(cfg.MinFramesForLock, cfg.MaxLostFrames); err != nil {
		c.StopCapture()
		return err
	}
	return nil
}
