package audio

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

// Microphone acquisition failures. Voice mode is unusable without the
// device; text mode remains available as a fallback.
var (
	ErrPermissionDenied  = errors.New("microphone access denied")
	ErrDeviceUnavailable = errors.New("no capture device available")
)

// CaptureConfig holds configuration for microphone capture
type CaptureConfig struct {
	// SampleRate is the capture rate in Hz. The realtime protocol expects
	// 24000.
	SampleRate int

	// FrameSamples is the number of samples per emitted frame. The wire
	// protocol tolerates any chunking; ~2048 samples keeps outbound
	// messages at a steady cadence.
	FrameSamples int
}

// FrameFunc receives one fixed-size frame of raw capture samples. Encoding
// to the wire format is the caller's responsibility, keeping capture
// protocol-agnostic. Invoked from the audio device goroutine; implementations
// must not block.
type FrameFunc func(samples []int16)

// Capture owns the microphone for its lifetime and emits fixed-size PCM
// frames at a steady cadence while started.
type Capture struct {
	cfg     CaptureConfig
	onFrame FrameFunc
	logger  zerolog.Logger

	mu         sync.Mutex
	started    bool
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
	deviceRate int
	pending    []int16
	level      float64
}

// NewCapture constructs a Capture. Frames flow to onFrame only between
// Start and Stop.
func NewCapture(cfg CaptureConfig, onFrame FrameFunc, logger zerolog.Logger) *Capture {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 24000
	}
	if cfg.FrameSamples <= 0 {
		cfg.FrameSamples = 2048
	}
	return &Capture{cfg: cfg, onFrame: onFrame, logger: logger}
}

// Start acquires the microphone and begins emitting frames. Calling Start
// while already started is a no-op.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {})
	if err != nil {
		return classifyDeviceError(err)
	}

	devCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	devCfg.Capture.Format = malgo.FormatS16
	devCfg.Capture.Channels = 1
	devCfg.SampleRate = uint32(c.cfg.SampleRate)
	devCfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			c.onDeviceData(input)
		},
	}

	device, err := malgo.InitDevice(mctx.Context, devCfg, callbacks)
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return classifyDeviceError(err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		return classifyDeviceError(err)
	}

	c.ctx = mctx
	c.device = device
	c.deviceRate = int(device.SampleRate())
	c.started = true
	c.pending = c.pending[:0]
	c.logger.Debug().
		Int("sample_rate", c.cfg.SampleRate).
		Int("frame_samples", c.cfg.FrameSamples).
		Msg("Microphone capture started")
	return nil
}

// onDeviceData accumulates device callback buffers and emits full frames.
func (c *Capture) onDeviceData(input []byte) {
	samples, err := BytesToInt16(input)
	if err != nil {
		return
	}

	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	if c.deviceRate != 0 && c.deviceRate != c.cfg.SampleRate {
		// The device could not open at the protocol rate.
		samples = Resample(samples, c.deviceRate, c.cfg.SampleRate)
	}
	c.pending = append(c.pending, samples...)
	var frames [][]int16
	for len(c.pending) >= c.cfg.FrameSamples {
		frame := make([]int16, c.cfg.FrameSamples)
		copy(frame, c.pending[:c.cfg.FrameSamples])
		c.pending = c.pending[c.cfg.FrameSamples:]
		frames = append(frames, frame)
	}
	if len(frames) > 0 {
		c.level = CalculateRMS(frames[len(frames)-1])
	}
	onFrame := c.onFrame
	c.mu.Unlock()

	if onFrame == nil {
		return
	}
	for _, frame := range frames {
		onFrame(frame)
	}
}

// Stop releases the microphone and stops frame emission. Safe to call
// multiple times and safe to call without a prior Start.
func (c *Capture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}
	c.started = false
	c.pending = nil

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	if c.ctx != nil {
		_ = c.ctx.Uninit()
		c.ctx.Free()
		c.ctx = nil
	}
	c.logger.Debug().Msg("Microphone capture stopped")
}

// Level returns the RMS energy of the most recent frame, for input level
// indicators.
func (c *Capture) Level() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// classifyDeviceError maps miniaudio failures onto the capture error
// taxonomy.
func classifyDeviceError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "access denied"), strings.Contains(msg, "permission"):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case strings.Contains(msg, "no device"), strings.Contains(msg, "device type"), strings.Contains(msg, "no backend"):
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
}
