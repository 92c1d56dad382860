package theremin

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestRenderSamplesLengthAndFirstSample(t *testing.T) {
	samples := RenderSamples(48000, 0.5, 0)
	if len(samples) != 24000 {
		t.Fatalf("rendered %d samples, want 24000", len(samples))
	}
	// With all phases at zero the first sample is sin(0.4*sin(0)) = 0.
	if samples[0] != 0 {
		t.Errorf("sample[0] = %f, want 0", samples[0])
	}
	var nonZero int
	for _, s := range samples {
		if s != 0 {
			nonZero++
		}
	}
	if nonZero < len(samples)/2 {
		t.Errorf("only %d of %d samples non-zero", nonZero, len(samples))
	}
}

func TestRenderSamplesClampsPitchIndex(t *testing.T) {
	// Out-of-range selection clamps rather than failing.
	high := RenderSamples(48000, 0.01, 99)
	top := RenderSamples(48000, 0.01, 7)
	for i := range high {
		if high[i] != top[i] {
			t.Fatalf("sample %d differs between clamped and top index", i)
		}
	}
}

func TestRenderSamplesZeroDuration(t *testing.T) {
	if got := RenderSamples(48000, 0, 0); len(got) != 0 {
		t.Fatalf("rendered %d samples for zero duration, want 0", len(got))
	}
}

func TestEncodeWAVFloat32LEHeader(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1}
	wav := EncodeWAVFloat32LE(samples, 48000, 1)
	if len(wav) != 44+16 {
		t.Fatalf("wav length = %d, want 60", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint16(wav[20:]); got != 3 {
		t.Errorf("format tag = %d, want 3 (IEEE float)", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:]); got != 48000 {
		t.Errorf("sample rate = %d, want 48000", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:]); got != 16 {
		t.Errorf("data size = %d, want 16", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(wav[48:])); got != 0.5 {
		t.Errorf("second sample = %f, want 0.5", got)
	}
}
