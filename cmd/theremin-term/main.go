// Command theremin-term plays the theremin from a raw-mode terminal:
// arrow keys step the pitch, audio goes straight to the default output
// device. It can also render a note to a WAV file without any device.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	theremin "github.com/redoctopus/ThereminHero2"
	intfx "github.com/redoctopus/ThereminHero2/internal/effects"
	intfm "github.com/redoctopus/ThereminHero2/internal/fm"
	"github.com/redoctopus/ThereminHero2/internal/scale"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		voiceName  = flag.String("voice", "piano", "voice: piano|guitar")
		noDecay    = flag.Bool("no-decay", false, "disable the modulation decay envelope")
		echo       = flag.Bool("echo", false, "add a feedback echo to the output")
		volume     = flag.Float64("volume", 1.0, "master volume scalar")
		wavPath    = flag.String("wav", "", "render to a WAV file instead of playing live")
		seconds    = flag.Float64("seconds", 2.0, "duration to render with -wav")
		noteIndex  = flag.Int("note", 0, "scale index of the note to render with -wav")
	)
	flag.Parse()
	log.SetFlags(0)

	voice, err := parseVoice(*voiceName)
	if err != nil {
		log.Fatal(err)
	}

	if *wavPath != "" {
		opts := []theremin.Option{theremin.WithVoice(voice)}
		if *noDecay {
			opts = append(opts, theremin.WithDecayEnvelope(false))
		}
		if *echo {
			opts = append(opts, theremin.WithEcho(250, 0.4, 0.3))
		}
		samples := theremin.RenderSamples(*sampleRate, *seconds, *noteIndex, opts...)
		wav := theremin.EncodeWAVFloat32LE(samples, *sampleRate, 1)
		if err := os.WriteFile(*wavPath, wav, 0o644); err != nil {
			log.Fatalf("write %q: %v", *wavPath, err)
		}
		fmt.Printf("wrote %s (%.1fs, %d samples)\n", *wavPath, *seconds, len(samples))
		return
	}

	params := intfm.DefaultParams()
	params.ModRatio = voiceRatio(voice)
	params.DecayEnabled = !*noDecay
	if *volume >= 0 {
		params.MasterGain = *volume
	}
	eng := intfm.New(*sampleRate, scale.C4Major(), params)

	var chain *intfx.Chain
	if *echo {
		chain = intfx.NewChain(intfx.NewDelay(*sampleRate, 250, 0.4, 0.3))
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Second * 800 / time.Duration(*sampleRate),
	})
	if err != nil {
		log.Fatalf("open audio device: %v", err)
	}
	<-ready

	player := otoCtx.NewPlayer(&engineReader{eng: eng, chain: chain})
	player.Play()
	defer player.Close()

	fmt.Println("theremin-term: up/down = pitch, i = instrument, m = mute, q = quit")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return readKeys(eng)
	})
	g.Go(func() error {
		return printStatus(ctx, eng)
	})
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	fmt.Println()
}

func parseVoice(name string) (theremin.Voice, error) {
	switch name {
	case "piano":
		return theremin.VoicePiano, nil
	case "guitar":
		return theremin.VoiceGuitar, nil
	default:
		return "", fmt.Errorf("invalid -voice %q (expected piano|guitar)", name)
	}
}

func voiceRatio(v theremin.Voice) float64 {
	if v == theremin.VoiceGuitar {
		return 0.5
	}
	return 2.0
}

// engineReader feeds the engine's mono output to oto as f32le bytes.
// Read runs on the audio goroutine.
type engineReader struct {
	eng   *intfm.Engine
	chain *intfx.Chain
	buf   []float32
}

func (r *engineReader) Read(p []byte) (int, error) {
	n := len(p) / 4
	if n == 0 {
		return 0, nil
	}
	if cap(r.buf) < n {
		r.buf = make([]float32, n)
	}
	buf := r.buf[:n]
	r.eng.RenderBuffer(buf)
	if r.chain != nil {
		for i := range buf {
			buf[i] = r.chain.Process(buf[i])
		}
	}
	if r.eng.Muted() {
		for i := range buf {
			buf[i] = 0
		}
	}
	for i, s := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return n * 4, nil
}

// readKeys puts stdin in raw mode and applies key commands until quit.
// Raw mode disables ISIG, so Ctrl-C arrives as byte 0x03 and is handled
// here.
func readKeys(eng *intfm.Engine) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		switch {
		case buf[0] == 'q' || buf[0] == 0x03:
			return nil
		case buf[0] == 0x1b && n == 1: // bare escape
			return nil
		case n == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'A':
			eng.RaisePitch()
		case n == 3 && buf[0] == 0x1b && buf[1] == '[' && buf[2] == 'B':
			eng.LowerPitch()
		case buf[0] == 'i':
			// Toggle between the two presets; the ratio is the only
			// stored voice state, so both goroutines read it atomically.
			if eng.ModRatio() == voiceRatio(theremin.VoicePiano) {
				eng.SetModRatio(voiceRatio(theremin.VoiceGuitar))
			} else {
				eng.SetModRatio(voiceRatio(theremin.VoicePiano))
			}
		case buf[0] == 'm':
			eng.SetMuted(!eng.Muted())
		}
	}
}

// printStatus redraws the one-line display roughly once per frame.
func printStatus(ctx context.Context, eng *intfm.Engine) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			mute := ""
			if eng.Muted() {
				mute = "  [muted]"
			}
			voice := theremin.VoicePiano
			if eng.ModRatio() == voiceRatio(theremin.VoiceGuitar) {
				voice = theremin.VoiceGuitar
			}
			fmt.Printf("\r%-4s %7.2f Hz  %s%s    ", eng.NoteName(), eng.CarrierPitch(), voice, mute)
		}
	}
}
