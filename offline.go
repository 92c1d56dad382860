package theremin

import (
	"encoding/binary"
	"math"

	intfx "github.com/redoctopus/ThereminHero2/internal/effects"
	intfm "github.com/redoctopus/ThereminHero2/internal/fm"
)

// deviceBufferFrames matches the live device configuration: 800 samples at
// 48kHz is one buffer per display frame at 60Hz.
const deviceBufferFrames = 800

// RenderSamples renders seconds of output for the note at pitchIndex
// without opening an audio device. Rendering happens in device-sized
// chunks so the phase accumulators and the decay envelope advance exactly
// as they would during live playback.
func RenderSamples(sampleRate int, seconds float64, pitchIndex int, opts ...Option) []float32 {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	params := intfm.DefaultParams()
	params.ModRatio = voiceRatio(cfg.voice)
	params.DecayEnabled = cfg.decay
	engine := intfm.New(sampleRate, cfg.scale, params)
	for i := cfg.scale.Clamp(pitchIndex); i > 0; i-- {
		engine.RaisePitch()
	}

	frames := int(float64(sampleRate) * seconds)
	if frames < 0 {
		frames = 0
	}
	out := make([]float32, frames)
	for off := 0; off < frames; off += deviceBufferFrames {
		end := off + deviceBufferFrames
		if end > frames {
			end = frames
		}
		engine.RenderBuffer(out[off:end])
	}
	if cfg.echo != nil {
		echo := intfx.NewDelay(sampleRate, cfg.echo.delayMs, cfg.echo.feedback, cfg.echo.wet)
		for i := range out {
			out[i] = echo.Process(out[i])
		}
	}
	return out
}

// EncodeWAVFloat32LE wraps samples in a WAV container (IEEE float format).
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
