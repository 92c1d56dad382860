// Package theremin is a monophonic keyboard theremin: a continuous FM
// synthesizer whose pitch is stepped through a fixed scale by discrete
// commands while the audio device pulls buffers on its own schedule.
package theremin

import (
	"errors"
	"sync"

	intaudio "github.com/redoctopus/ThereminHero2/internal/audio"
	intfx "github.com/redoctopus/ThereminHero2/internal/effects"
	intfm "github.com/redoctopus/ThereminHero2/internal/fm"
	"github.com/redoctopus/ThereminHero2/internal/scale"
)

// Voice selects the modulator/carrier frequency ratio preset.
type Voice string

const (
	VoicePiano  Voice = "piano"
	VoiceGuitar Voice = "guitar"
)

func voiceRatio(v Voice) float64 {
	if v == VoiceGuitar {
		return 0.5
	}
	return 2.0
}

type Option func(*config)

type config struct {
	voice     Voice
	decay     bool
	scale     scale.Table
	echo      *echoConfig
	sampleTap func([]float32)
}

type echoConfig struct {
	delayMs  float64
	feedback float32
	wet      float32
}

func defaultConfig() config {
	return config{
		voice: VoicePiano,
		decay: true,
		scale: scale.C4Major(),
	}
}

func WithVoice(v Voice) Option {
	return func(cfg *config) {
		cfg.voice = v
	}
}

// WithDecayEnvelope controls the repeating swell-and-decay envelope on the
// modulation depth. Enabled by default.
func WithDecayEnvelope(enabled bool) Option {
	return func(cfg *config) {
		cfg.decay = enabled
	}
}

func WithScale(tbl scale.Table) Option {
	return func(cfg *config) {
		cfg.scale = tbl
	}
}

// WithEcho adds a feedback delay to the output stage.
func WithEcho(delayMs float64, feedback, wet float32) Option {
	return func(cfg *config) {
		cfg.echo = &echoConfig{delayMs: delayMs, feedback: feedback, wet: wet}
	}
}

// WithSampleTap installs a callback invoked with each rendered buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) Option {
	return func(cfg *config) {
		cfg.sampleTap = tap
	}
}

// Instrument is the playable theremin. Construction does not touch the
// audio device; Start opens it and begins streaming.
type Instrument struct {
	mu         sync.Mutex
	sampleRate int
	engine     *intfm.Engine
	stage      *outputStage
	audio      *intaudio.Player
	voice      Voice
	volume     float64
}

// outputStage sits between the engine and the device: it renders a buffer,
// applies the effect chain, silences the output while muted, and feeds the
// sample tap. Muting here keeps the engine's phase state intact.
type outputStage struct {
	engine    *intfm.Engine
	effects   *intfx.Chain
	sampleTap func([]float32)
}

func (s *outputStage) Process(dst []float32) {
	s.engine.RenderBuffer(dst)
	if s.effects != nil {
		for i := range dst {
			dst[i] = s.effects.Process(dst[i])
		}
	}
	if s.engine.Muted() {
		for i := range dst {
			dst[i] = 0
		}
	}
	if s.sampleTap != nil {
		s.sampleTap(dst)
	}
}

func NewInstrument(sampleRate int, opts ...Option) (*Instrument, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.scale.Len() == 0 {
		return nil, errors.New("scale table must not be empty")
	}

	params := intfm.DefaultParams()
	params.ModRatio = voiceRatio(cfg.voice)
	params.DecayEnabled = cfg.decay
	engine := intfm.New(sampleRate, cfg.scale, params)

	var chain *intfx.Chain
	if cfg.echo != nil {
		chain = intfx.NewChain(intfx.NewDelay(sampleRate, cfg.echo.delayMs, cfg.echo.feedback, cfg.echo.wet))
	}

	return &Instrument{
		sampleRate: sampleRate,
		engine:     engine,
		stage: &outputStage{
			engine:    engine,
			effects:   chain,
			sampleTap: cfg.sampleTap,
		},
		voice:  cfg.voice,
		volume: 1,
	}, nil
}

// Start opens the audio device and begins streaming. A missing or failing
// device is reported as an error; there is no retry.
func (ins *Instrument) Start() error {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	if ins.audio != nil {
		ins.audio.Play()
		return nil
	}
	backend, err := intaudio.NewPlayer(ins.sampleRate, ins.stage)
	if err != nil {
		return err
	}
	ins.audio = backend
	ins.audio.Play()
	return nil
}

// Stop closes the audio device. The oscillator state stays valid, so a
// later Start resumes from the same note.
func (ins *Instrument) Stop() error {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	if ins.audio == nil {
		return nil
	}
	err := ins.audio.Stop()
	ins.audio = nil
	return err
}

// RaisePitch steps one note up the scale and returns the new index.
// A no-op at the top of the scale.
func (ins *Instrument) RaisePitch() int { return ins.engine.RaisePitch() }

// LowerPitch steps one note down the scale and returns the new index.
// A no-op at the bottom of the scale.
func (ins *Instrument) LowerPitch() int { return ins.engine.LowerPitch() }

// ToggleVoice switches between the piano and guitar presets and returns
// the new voice. The modulator pitch is recomputed from the ratio at the
// next render, so it can never go stale.
func (ins *Instrument) ToggleVoice() Voice {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	if ins.voice == VoicePiano {
		ins.voice = VoiceGuitar
	} else {
		ins.voice = VoicePiano
	}
	ins.engine.SetModRatio(voiceRatio(ins.voice))
	return ins.voice
}

// ToggleMute flips the mute flag and returns the new state. Muting
// silences the output stage only; the oscillator keeps running.
func (ins *Instrument) ToggleMute() bool {
	muted := !ins.engine.Muted()
	ins.engine.SetMuted(muted)
	return muted
}

func (ins *Instrument) Muted() bool { return ins.engine.Muted() }

func (ins *Instrument) PitchIndex() int { return ins.engine.PitchIndex() }

func (ins *Instrument) NoteName() string { return ins.engine.NoteName() }

func (ins *Instrument) Voice() Voice {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	return ins.voice
}

// SetMasterVolume sets the runtime volume scalar. 1.0 is default.
func (ins *Instrument) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	ins.mu.Lock()
	defer ins.mu.Unlock()
	ins.volume = volume
	ins.engine.SetMasterGain(volume)
}

func (ins *Instrument) MasterVolume() float64 {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	return ins.volume
}

func (ins *Instrument) SampleRate() int { return ins.sampleRate }
