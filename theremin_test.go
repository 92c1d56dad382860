package theremin

import "testing"

func TestNewInstrumentDefaults(t *testing.T) {
	ins, err := NewInstrument(48000)
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	if got := ins.PitchIndex(); got != 0 {
		t.Errorf("initial pitch index = %d, want 0", got)
	}
	if got := ins.NoteName(); got != "C4" {
		t.Errorf("initial note = %q, want C4", got)
	}
	if got := ins.Voice(); got != VoicePiano {
		t.Errorf("initial voice = %q, want piano", got)
	}
	if ins.Muted() {
		t.Error("instrument should start unmuted")
	}
	if got := ins.MasterVolume(); got != 1 {
		t.Errorf("initial master volume = %v, want 1", got)
	}
}

func TestNewInstrumentRejectsBadSampleRate(t *testing.T) {
	if _, err := NewInstrument(0); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if _, err := NewInstrument(-48000); err == nil {
		t.Error("expected error for negative sample rate")
	}
}

func TestPitchStepsClampAtScaleEnds(t *testing.T) {
	ins, err := NewInstrument(48000)
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	if got := ins.LowerPitch(); got != 0 {
		t.Errorf("LowerPitch at bottom = %d, want 0", got)
	}
	for i := 1; i <= 7; i++ {
		if got := ins.RaisePitch(); got != i {
			t.Fatalf("RaisePitch step %d = %d", i, got)
		}
	}
	if got := ins.RaisePitch(); got != 7 {
		t.Errorf("RaisePitch at top = %d, want 7", got)
	}
	if got := ins.NoteName(); got != "C5" {
		t.Errorf("top note = %q, want C5", got)
	}
}

func TestToggleVoiceSwitchesPresets(t *testing.T) {
	ins, err := NewInstrument(48000)
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	if got := ins.ToggleVoice(); got != VoiceGuitar {
		t.Errorf("first toggle = %q, want guitar", got)
	}
	if got := ins.engine.ModRatio(); got != 0.5 {
		t.Errorf("guitar mod ratio = %f, want 0.5", got)
	}
	if got := ins.ToggleVoice(); got != VoicePiano {
		t.Errorf("second toggle = %q, want piano", got)
	}
	if got := ins.engine.ModRatio(); got != 2.0 {
		t.Errorf("piano mod ratio = %f, want 2.0", got)
	}
}

func TestToggleMute(t *testing.T) {
	ins, err := NewInstrument(48000)
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	if got := ins.ToggleMute(); !got || !ins.Muted() {
		t.Error("first toggle should mute")
	}
	if got := ins.ToggleMute(); got || ins.Muted() {
		t.Error("second toggle should unmute")
	}
}

func TestOutputStageSilencesWhileMutedButKeepsPhase(t *testing.T) {
	ins, err := NewInstrument(48000)
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	ins.ToggleMute()
	buf := make([]float32, 800)
	ins.stage.Process(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("muted sample %d = %f, want 0", i, s)
		}
	}
	if ins.engine.CarrierPhase() == 0 {
		t.Error("phase should advance while muted")
	}
	// Unmuting mid-stream continues the waveform instead of restarting it.
	ins.ToggleMute()
	ins.stage.Process(buf)
	var nonZero bool
	for _, s := range buf {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("unmuted output should be audible")
	}
}

func TestSampleTapObservesRenderedBuffers(t *testing.T) {
	var tapped int
	ins, err := NewInstrument(48000, WithSampleTap(func(buf []float32) {
		tapped += len(buf)
	}))
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	buf := make([]float32, 800)
	ins.stage.Process(buf)
	ins.stage.Process(buf)
	if tapped != 1600 {
		t.Errorf("tap observed %d samples, want 1600", tapped)
	}
}

func TestEchoOptionWiresEffectChain(t *testing.T) {
	ins, err := NewInstrument(48000, WithEcho(100, 0.4, 0.3))
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	if ins.stage.effects == nil {
		t.Fatal("echo option should install an effect chain")
	}
	buf := make([]float32, 800)
	ins.stage.Process(buf)
}

func TestSetMasterVolumeClampsAtZero(t *testing.T) {
	ins, err := NewInstrument(48000)
	if err != nil {
		t.Fatalf("new instrument: %v", err)
	}
	ins.SetMasterVolume(0.35)
	if got := ins.MasterVolume(); got != 0.35 {
		t.Errorf("master volume = %v, want 0.35", got)
	}
	ins.SetMasterVolume(-2)
	if got := ins.MasterVolume(); got != 0 {
		t.Errorf("master volume should clamp to 0, got %v", got)
	}
}
