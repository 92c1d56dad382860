package fm

import (
	"math"
	"sync/atomic"

	"github.com/redoctopus/ThereminHero2/internal/envelope"
	"github.com/redoctopus/ThereminHero2/internal/scale"
)

const twoPi = math.Pi * 2

type Params struct {
	ModRatio     float64 // modulator frequency as a multiple of the carrier
	ModDepth     float64 // peak modulation index
	DecaySec     float64 // time for the modulation depth to fall from peak to zero
	DecayEnabled bool
	MasterGain   float64
}

func DefaultParams() Params {
	return Params{
		ModRatio:     2.0,
		ModDepth:     0.4,
		DecaySec:     1.0,
		DecayEnabled: true,
		MasterGain:   1.0,
	}
}

// Engine holds the oscillator state shared between the control goroutine
// and the audio render goroutine, and renders FM audio buffers from it.
//
// Field ownership is split so the render path never blocks: pitchIndex,
// modRatio, masterGain, muted and decayOn are written only by the control
// goroutine and read by the render goroutine through atomics. The phase
// accumulators and the envelope are touched only inside RenderBuffer.
// No field is read-modify-written from both sides.
type Engine struct {
	sampleRate float64
	scale      scale.Table
	modDepth   float64
	decaySec   float64

	pitchIndex atomic.Int32
	modRatio   atomic.Uint64 // float64 bit pattern
	masterGain atomic.Uint64 // float64 bit pattern
	muted      atomic.Bool
	decayOn    atomic.Bool

	carrierPhase float64
	modPhase     float64
	env          envelope.Decay
}

func New(sampleRate int, tbl scale.Table, params Params) *Engine {
	if params.ModDepth < 0 {
		params.ModDepth = 0
	}
	if params.DecaySec <= 0 {
		params.DecaySec = 1.0
	}
	e := &Engine{
		sampleRate: float64(sampleRate),
		scale:      tbl,
		modDepth:   params.ModDepth,
		decaySec:   params.DecaySec,
		env:        envelope.NewDecay(params.ModDepth),
	}
	e.modRatio.Store(math.Float64bits(params.ModRatio))
	e.masterGain.Store(math.Float64bits(params.MasterGain))
	e.decayOn.Store(params.DecayEnabled)
	return e
}

// RenderBuffer fills dst with the next len(dst) mono samples and advances
// the phase accumulators so the following call continues the waveform with
// no discontinuity at the buffer boundary. It runs on the audio goroutine
// and performs no locking or allocation.
func (e *Engine) RenderBuffer(dst []float32) {
	n := len(dst)
	if n == 0 {
		return
	}

	// Latch the control parameters once. The phase update below must use
	// the same pitches that shaped this buffer, even if the control
	// goroutine changes them mid-render.
	cPitch := e.scale.Frequency(int(e.pitchIndex.Load()))
	mPitch := e.ModRatio() * cPitch
	cPhase := e.carrierPhase
	mPhase := e.modPhase
	amp := e.env.Value()
	gain := e.MasterGain()

	cw := twoPi * cPitch / e.sampleRate
	mw := twoPi * mPitch / e.sampleRate
	for i := 0; i < n; i++ {
		t := float64(i)
		dst[i] = float32(gain * math.Sin(amp*math.Sin(mw*t+mPhase)+cw*t+cPhase))
	}

	// Wrap into [0, 2pi) so long sessions do not lose float precision.
	e.carrierPhase = math.Mod(cw*float64(n)+cPhase, twoPi)
	e.modPhase = math.Mod(mw*float64(n)+mPhase, twoPi)

	if e.decayOn.Load() {
		e.env.Advance(e.modDepth * float64(n) / (e.decaySec * e.sampleRate))
	}
}

// RaisePitch moves to the next higher note and returns the new index. At
// the top of the scale it leaves the index unchanged.
func (e *Engine) RaisePitch() int {
	i := int(e.pitchIndex.Load())
	if i < e.scale.Len()-1 {
		i++
		e.pitchIndex.Store(int32(i))
	}
	return i
}

// LowerPitch moves to the next lower note and returns the new index. At
// the bottom of the scale it leaves the index unchanged.
func (e *Engine) LowerPitch() int {
	i := int(e.pitchIndex.Load())
	if i > 0 {
		i--
		e.pitchIndex.Store(int32(i))
	}
	return i
}

func (e *Engine) PitchIndex() int { return int(e.pitchIndex.Load()) }

func (e *Engine) NoteName() string { return e.scale.Name(e.PitchIndex()) }

// CarrierPitch returns the frequency of the currently selected note in Hz.
func (e *Engine) CarrierPitch() float64 {
	return e.scale.Frequency(e.PitchIndex())
}

func (e *Engine) SetModRatio(ratio float64) {
	if ratio <= 0 {
		return
	}
	e.modRatio.Store(math.Float64bits(ratio))
}

func (e *Engine) ModRatio() float64 {
	return math.Float64frombits(e.modRatio.Load())
}

func (e *Engine) SetMasterGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	e.masterGain.Store(math.Float64bits(gain))
}

func (e *Engine) MasterGain() float64 {
	return math.Float64frombits(e.masterGain.Load())
}

func (e *Engine) SetMuted(muted bool) { e.muted.Store(muted) }

func (e *Engine) Muted() bool { return e.muted.Load() }

func (e *Engine) SetDecayEnabled(enabled bool) { e.decayOn.Store(enabled) }

func (e *Engine) DecayEnabled() bool { return e.decayOn.Load() }

func (e *Engine) Scale() scale.Table { return e.scale }

// CarrierPhase reports the carrier phase accumulator. Render-context state;
// read it only from the goroutine that calls RenderBuffer.
func (e *Engine) CarrierPhase() float64 { return e.carrierPhase }

// ModulatorPhase reports the modulator phase accumulator. Render-context
// state; read it only from the goroutine that calls RenderBuffer.
func (e *Engine) ModulatorPhase() float64 { return e.modPhase }

// ModAmplitude reports the current modulation depth. Render-context state;
// read it only from the goroutine that calls RenderBuffer.
func (e *Engine) ModAmplitude() float64 { return e.env.Value() }
