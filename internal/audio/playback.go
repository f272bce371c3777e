package audio

import (
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

// PlayerConfig holds configuration for audio playback
type PlayerConfig struct {
	// SampleRate is the playback rate in Hz. Matches the rate the remote
	// model streams at.
	SampleRate int
}

// Player plays a stream of PCM16 chunks gaplessly. Chunks are queued as they
// arrive off the wire and the output device pulls samples through ReadPCM, so
// consecutive chunks are rendered back to back with no scheduling gap. When
// the queue runs dry the device gets silence until the next chunk lands.
//
// Stop clears everything queued, which is what cuts the agent's voice on a
// barge-in. After Stop, Enqueue is a no-op.
type Player struct {
	cfg    PlayerConfig
	logger zerolog.Logger

	mu        sync.Mutex
	queue     [][]byte
	offset    int
	scheduled int64
	played    int64
	stopped   bool

	ctx    *malgo.AllocatedContext
	device *malgo.Device
}

// NewPlayer constructs a stopped-capable but not-yet-started Player.
func NewPlayer(cfg PlayerConfig, logger zerolog.Logger) *Player {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 24000
	}
	return &Player{cfg: cfg, logger: logger}
}

// Start opens the output device. Enqueue works without Start (chunks buffer
// until a device pulls them), so tests exercise the queue without hardware.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device != nil || p.stopped {
		return nil
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {})
	if err != nil {
		return classifyDeviceError(err)
	}

	devCfg := malgo.DefaultDeviceConfig(malgo.Playback)
	devCfg.Playback.Format = malgo.FormatS16
	devCfg.Playback.Channels = 1
	devCfg.SampleRate = uint32(p.cfg.SampleRate)
	devCfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(output, _ []byte, frameCount uint32) {
			p.ReadPCM(output)
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

	p.ctx = mctx
	p.device = device
	p.logger.Debug().Int("sample_rate", p.cfg.SampleRate).Msg("Playback started")
	return nil
}

// Enqueue appends a decoded PCM16 chunk to the playback queue. Chunks play in
// arrival order, each starting exactly where its predecessor ended. Chunks
// arriving after Stop are dropped.
func (p *Player) Enqueue(pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	chunk := make([]byte, len(pcm))
	copy(chunk, pcm)
	p.queue = append(p.queue, chunk)
	p.scheduled += int64(len(chunk) / 2)
}

// ReadPCM fills dst with the next queued samples, zero-filling whatever the
// queue cannot cover. This is the device pull path; queued chunks come out as
// one contiguous stream.
func (p *Player) ReadPCM(dst []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for n < len(dst) && len(p.queue) > 0 {
		head := p.queue[0]
		copied := copy(dst[n:], head[p.offset:])
		n += copied
		p.offset += copied
		if p.offset >= len(head) {
			p.queue = p.queue[1:]
			p.offset = 0
		}
	}
	p.played += int64(n / 2)

	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// Stop drops everything queued and unplayed, closes the output device, and
// leaves the player in a terminal state. Safe to call multiple times and safe
// to call without a prior Start.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true
	p.queue = nil
	p.offset = 0

	if p.device != nil {
		p.device.Uninit()
		p.device = nil
	}
	if p.ctx != nil {
		_ = p.ctx.Uninit()
		p.ctx.Free()
		p.ctx = nil
	}
	p.logger.Debug().Msg("Playback stopped")
}

// Flush drops queued audio without closing the device. Used when the remote
// signals a barge-in mid-session: the interrupted reply is cut but the device
// stays open for the next one.
func (p *Player) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	dropped := int64(0)
	for i, chunk := range p.queue {
		n := len(chunk)
		if i == 0 {
			n -= p.offset
		}
		dropped += int64(n / 2)
	}
	p.queue = nil
	p.offset = 0
	p.scheduled -= dropped
	if dropped > 0 {
		p.logger.Debug().Int64("dropped_samples", dropped).Msg("Playback queue flushed")
	}
}

// Buffered returns the duration of audio queued but not yet pulled by the
// device.
func (p *Player) Buffered() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	pending := p.scheduled - p.played
	if pending < 0 {
		pending = 0
	}
	return time.Duration(pending) * time.Second / time.Duration(p.cfg.SampleRate)
}

// Played returns the total number of samples pulled from the queue since
// construction.
func (p *Player) Played() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}
